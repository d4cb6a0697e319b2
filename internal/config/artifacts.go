// Build output detection from project build files.
// Generated classes and copied sources under output directories would
// duplicate corpus units, so their directories are excluded.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// OutputDetector finds build output directories declared by a project
type OutputDetector struct {
	projectRoot string
}

// NewOutputDetector creates a detector for projectRoot
func NewOutputDetector(projectRoot string) *OutputDetector {
	return &OutputDetector{projectRoot: projectRoot}
}

// Exclusions returns doublestar patterns for every declared output directory
func (d *OutputDetector) Exclusions() []string {
	var patterns []string
	patterns = append(patterns, d.mavenOutputs()...)
	patterns = append(patterns, d.gradleOutputs()...)
	patterns = append(patterns, d.cargoOutputs()...)
	patterns = append(patterns, d.pyprojectOutputs()...)
	patterns = append(patterns, d.tsconfigOutputs()...)
	return DeduplicatePatterns(patterns)
}

func dirPattern(dir string) string {
	dir = strings.Trim(strings.TrimSpace(dir), "\"'/")
	dir = strings.TrimPrefix(dir, "./")
	if dir == "" || strings.Contains(dir, "${") {
		return ""
	}
	return "**/" + dir + "/**"
}

// mavenOutputs reads <build><directory> from pom.xml
func (d *OutputDetector) mavenOutputs() []string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "pom.xml"))
	if err != nil {
		return nil
	}
	content := string(data)
	build := strings.Index(content, "<build>")
	if build < 0 {
		return nil
	}
	content = content[build:]
	start := strings.Index(content, "<directory>")
	end := strings.Index(content, "</directory>")
	if start < 0 || end < start {
		return nil
	}
	if p := dirPattern(content[start+len("<directory>") : end]); p != "" {
		return []string{p}
	}
	return nil
}

// gradleOutputs looks for buildDir assignments in build.gradle(.kts)
func (d *OutputDetector) gradleOutputs() []string {
	var patterns []string
	for _, name := range []string{"build.gradle", "build.gradle.kts"} {
		data, err := os.ReadFile(filepath.Join(d.projectRoot, name))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "buildDir") {
				continue
			}
			if eq := strings.Index(line, "="); eq >= 0 {
				if p := dirPattern(line[eq+1:]); p != "" {
					patterns = append(patterns, p)
				}
			}
		}
	}
	return patterns
}

// cargoOutputs reads [build] target-dir from Cargo.toml
func (d *OutputDetector) cargoOutputs() []string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var cargo struct {
		Build struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"build"`
	}
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}
	if p := dirPattern(cargo.Build.TargetDir); p != "" {
		return []string{p}
	}
	return nil
}

// pyprojectOutputs reads tool.poetry.build.target-dir from pyproject.toml
func (d *OutputDetector) pyprojectOutputs() []string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var pyproject map[string]interface{}
	if toml.Unmarshal(data, &pyproject) != nil {
		return nil
	}
	tool, _ := pyproject["tool"].(map[string]interface{})
	poetry, _ := tool["poetry"].(map[string]interface{})
	build, _ := poetry["build"].(map[string]interface{})
	if dir, ok := build["target-dir"].(string); ok {
		if p := dirPattern(dir); p != "" {
			return []string{p}
		}
	}
	return nil
}

// tsconfigOutputs reads compilerOptions.outDir from tsconfig.json
func (d *OutputDetector) tsconfigOutputs() []string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "tsconfig.json"))
	if err != nil {
		return nil
	}
	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
		} `json:"compilerOptions"`
	}
	if json.Unmarshal(data, &tsconfig) != nil {
		return nil
	}
	if p := dirPattern(tsconfig.CompilerOptions.OutDir); p != "" {
		return []string{p}
	}
	return nil
}
