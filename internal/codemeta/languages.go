package codemeta

import (
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/classgrep/internal/types"
)

// languageSpec binds a grammar to its construct query.
// Every construct capture is named after a types.NodeKind and paired with a
// "<kind>.name" capture; "package" captures carry the Java package clause.
type languageSpec struct {
	grammar func() unsafe.Pointer
	query   string
}

var languageSpecs = map[types.Language]languageSpec{
	types.LanguageJava: {
		grammar: tree_sitter_java.Language,
		query: `
        (package_declaration) @package
        (class_declaration name: (identifier) @class.name) @class
        (record_declaration name: (identifier) @record.name) @record
        (interface_declaration name: (identifier) @interface.name) @interface
        (enum_declaration name: (identifier) @enum.name) @enum
        (annotation_type_declaration name: (identifier) @annotation.name) @annotation
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (field_declaration declarator: (variable_declarator name: (identifier) @field.name)) @field
    `,
	},
	types.LanguageGo: {
		grammar: tree_sitter_go.Language,
		query: `
        (function_declaration name: (identifier) @function.name) @function
        (method_declaration name: (field_identifier) @method.name) @method
        (type_spec name: (type_identifier) @type.name) @type
    `,
	},
	types.LanguageCSharp: {
		grammar: tree_sitter_csharp.Language,
		query: `
        (namespace_declaration name: (_) @namespace.name) @namespace
        (class_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @interface.name) @interface
        (struct_declaration name: (identifier) @struct.name) @struct
        (record_declaration name: (identifier) @record.name) @record
        (enum_declaration name: (identifier) @enum.name) @enum
        (method_declaration name: (identifier) @method.name) @method
        (constructor_declaration name: (identifier) @constructor.name) @constructor
        (property_declaration name: (identifier) @property.name) @property
        (field_declaration
            (variable_declaration
                (variable_declarator (identifier) @field.name))) @field
    `,
	},
	types.LanguagePython: {
		grammar: tree_sitter_python.Language,
		query: `
        (class_definition name: (identifier) @class.name) @class
        (function_definition name: (identifier) @function.name) @function
    `,
	},
	types.LanguageJavaScript: {
		grammar: tree_sitter_javascript.Language,
		query: `
        (class_declaration name: (identifier) @class.name) @class
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (variable_declarator
            name: (identifier) @function.name
            value: [(arrow_function) (function_expression) (generator_function)]) @function
        (method_definition name: (property_identifier) @method.name) @method
    `,
	},
	types.LanguageTypeScript: {
		grammar: tree_sitter_typescript.LanguageTypescript,
		query: `
        (class_declaration name: (type_identifier) @class.name) @class
        (interface_declaration name: (type_identifier) @interface.name) @interface
        (type_alias_declaration name: (type_identifier) @type.name) @type
        (enum_declaration name: (identifier) @enum.name) @enum
        (function_declaration name: (identifier) @function.name) @function
        (generator_function_declaration name: (identifier) @function.name) @function
        (method_definition name: (property_identifier) @method.name) @method
    `,
	},
	types.LanguageRust: {
		grammar: tree_sitter_rust.Language,
		query: `
        (mod_item name: (identifier) @module.name) @module
        (struct_item name: (type_identifier) @struct.name) @struct
        (enum_item name: (type_identifier) @enum.name) @enum
        (trait_item name: (type_identifier) @trait.name) @trait
        (type_item name: (type_identifier) @type.name) @type
        (function_item name: (identifier) @function.name) @function
    `,
	},
	types.LanguageCpp: {
		grammar: tree_sitter_cpp.Language,
		query: `
        (namespace_definition name: (_) @namespace.name) @namespace
        (class_specifier name: (type_identifier) @class.name) @class
        (struct_specifier name: (type_identifier) @struct.name) @struct
        (enum_specifier name: (type_identifier) @enum.name) @enum
        (function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
        (function_definition declarator: (function_declarator declarator: (field_identifier) @method.name)) @method
    `,
	},
	types.LanguagePHP: {
		grammar: tree_sitter_php.LanguagePHP,
		query: `
        (namespace_definition name: (namespace_name) @namespace.name) @namespace
        (class_declaration name: (name) @class.name) @class
        (interface_declaration name: (name) @interface.name) @interface
        (trait_declaration name: (name) @trait.name) @trait
        (enum_declaration name: (name) @enum.name) @enum
        (function_definition name: (name) @function.name) @function
        (method_declaration name: (name) @method.name) @method
    `,
	},
	types.LanguageZig: {
		grammar: tree_sitter_zig.Language,
		query: `
        (function_declaration (identifier) @function.name) @function
        (variable_declaration
          (identifier) @struct.name
          (struct_declaration) @struct)
        (variable_declaration
          (identifier) @struct.name
          (union_declaration) @struct)
    `,
	},
}
