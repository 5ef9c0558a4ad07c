package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModuleName(t *testing.T) {
	cases := []struct {
		rel  string
		want string
	}{
		{"main.ore", "main"},
		{"geom.ore", "geom"},
		{filepath.Join("geom", "point.ore"), "geom/point"},
		{filepath.Join("app", "geom", "point.ore"), "app/geom/point"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, moduleName(c.rel), "rel=%q", c.rel)
	}
}

func TestBuild_UnknownImport(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "ore.manifest"), `[package]
name = "a"

[build]
main_module = "main"
`)
	mustWrite(t, filepath.Join(dir, "src", "main.ore"), `
		import nope;

		main :: () -> i32 {
			return 0;
		}
	`)

	_, bag, err := Build(dir)
	if err != nil {
		t.Fatal(err)
	}
	if bag == nil || !bag.HasErrors() {
		t.Fatalf("expected diagnostics")
	}
}

func TestBuild_LocalModuleImportResolves(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "ore.manifest"), `[package]
name = "a"

[build]
main_module = "main"
`)
	mustWrite(t, filepath.Join(dir, "src", "main.ore"), `
		import utils;

		main :: () -> i32 {
			return utils::one();
		}
	`)
	mustWrite(t, filepath.Join(dir, "src", "utils.ore"), `
		one :: () -> i32 {
			return 1;
		}
	`)

	res, bag, err := Build(dir)
	if err != nil {
		t.Fatal(err)
	}
	if bag != nil && bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
	if res.Program == nil || len(res.Program.Procs) != 2 {
		t.Fatalf("expected 2 procs, got %+v", res.Program)
	}
}

func TestInitPackage(t *testing.T) {
	dir := t.TempDir()
	if err := InitPackage(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ore.manifest")); err != nil {
		t.Fatalf("missing manifest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "main.ore")); err != nil {
		t.Fatalf("missing main.ore: %v", err)
	}
}

func mustWrite(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
