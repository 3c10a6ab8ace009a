package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OwlyNest/owlyc/internal/diag"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "owly.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owly.toml")
	contents := `
pointer_size = 4
pointer_align = 4
treat_warnings_as_errors = true
color = "never"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), opts.PointerSize)
	assert.Equal(t, uint32(4), opts.PointerAlign)
	assert.True(t, opts.TreatWarningsAsErrors)
	assert.Equal(t, diag.ColorNever, opts.StderrColor())
	// Untouched fields keep their Default() value.
	assert.Equal(t, 20, opts.MaxErrors)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owly.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStderrColorDefaultsToIfTerminal(t *testing.T) {
	assert.Equal(t, diag.ColorIfTerminal, Default().StderrColor())
	assert.Equal(t, diag.ColorAlways, Options{Color: ColorAlways}.StderrColor())
}
