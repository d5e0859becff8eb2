package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
model: gpt-5.2-pro
stages:
  analyze:
    max_iterations: 8
    max_rpm: 20
    model: gpt-5.2-reasoning
  verify:
    instructions: "Check that {{.FilePath}} is a financial filing."
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-5.2-pro", m.Model)
	assert.Equal(t, 8, m.Stages[StageAnalyze].MaxIterations)
	assert.Equal(t, 20, m.Stages[StageAnalyze].MaxRPM)
	assert.Equal(t, "gpt-5.2-reasoning", m.Stages[StageAnalyze].Model)
	assert.Contains(t, m.Stages[StageVerify].Instructions, "financial filing")
	assert.Empty(t, m.Stages[StageVerify].Model)
}

func TestLoadManifest_UnknownStage(t *testing.T) {
	path := writeManifest(t, `
stages:
  summarize:
    max_rpm: 5
`)
	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestLoadManifest_NegativeLimit(t *testing.T) {
	path := writeManifest(t, `
stages:
  verify:
    max_rpm: -1
`)
	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNilManifestAccessors(t *testing.T) {
	var m *Manifest
	assert.Nil(t, m.overrideFor(StageVerify))
	assert.Empty(t, m.instructionFor(StageVerify))
}
