package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBasic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(p, []byte(`
[package]
name = "geomkit"

[build]
main_module = "app/main"
`), 0o644))

	m, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "geomkit", m.Name)
	require.Equal(t, "app/main", m.MainModule)
}

func TestLoadDefaultsMainModule(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(p, []byte(`
[package]
name = "geomkit"
`), 0o644))

	m, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, DefaultMainModule, m.MainModule)
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(p, []byte(`
[package]
this line has no equals sign
`), 0o644))

	_, err := Load(p)
	require.Error(t, err)
}
