package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestOutputDetector(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pom.xml", `<project><build><directory>mvn-out</directory></build></project>`)
	writeFile(t, dir, "build.gradle", "apply plugin: 'java'\nbuildDir = 'gradle-out'\n")
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"x\"\n\n[build]\ntarget-dir = \"cargo-out\"\n")
	writeFile(t, dir, "pyproject.toml", "[tool.poetry.build]\ntarget-dir = \"py-out\"\n")
	writeFile(t, dir, "tsconfig.json", `{"compilerOptions": {"outDir": "./ts-out"}}`)

	got := NewOutputDetector(dir).Exclusions()

	assert.ElementsMatch(t, []string{
		"**/mvn-out/**",
		"**/gradle-out/**",
		"**/cargo-out/**",
		"**/py-out/**",
		"**/ts-out/**",
	}, got)
}

func TestOutputDetector_SkipsPropertyReferences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pom.xml", `<project><build><directory>${project.basedir}/out</directory></build></project>`)

	assert.Empty(t, NewOutputDetector(dir).Exclusions())
}

func TestOutputDetector_EmptyProject(t *testing.T) {
	assert.Empty(t, NewOutputDetector(t.TempDir()).Exclusions())
}
