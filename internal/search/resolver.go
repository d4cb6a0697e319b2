package search

import (
	"github.com/standardbeagle/classgrep/internal/debug"
	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/types"
)

// PositionIndex maps a text offset of a unit to the smallest covering construct
type PositionIndex interface {
	ConstructAt(unit types.Unit, offset int) (types.NodeRef, bool, error)
}

// NodeResolver turns an index reference into a logical node
type NodeResolver interface {
	ResolveNode(ref types.NodeRef) (types.Node, error)
}

// Resolver finds the enclosing construct of a match. It never fails: missing
// indexes, absent entries and lookup errors all report no construct.
type Resolver struct {
	index PositionIndex
	nodes NodeResolver
}

// NewResolver creates a resolver; either argument may be nil
func NewResolver(index PositionIndex, nodes NodeResolver) *Resolver {
	return &Resolver{index: index, nodes: nodes}
}

// Resolve returns the construct covering offset in unit
func (r *Resolver) Resolve(unit types.Unit, offset int) (types.Node, bool) {
	if r == nil || r.index == nil || r.nodes == nil {
		return types.Node{}, false
	}

	ref, ok, err := r.index.ConstructAt(unit, offset)
	if err != nil {
		debug.LogSearch("%v\n", cgerrors.NewResolutionError(unit.RawName, offset, err))
		return types.Node{}, false
	}
	if !ok {
		return types.Node{}, false
	}

	node, err := r.nodes.ResolveNode(ref)
	if err != nil {
		debug.LogSearch("%v\n", cgerrors.NewResolutionError(unit.RawName, offset, err))
		return types.Node{}, false
	}
	return node, true
}
