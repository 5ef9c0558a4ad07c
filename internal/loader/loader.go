// Package loader discovers a project's modules on disk and drives them
// through the parser and checker. Sources live under ./src/ and are found
// by recursive directory walk; every regular file is a module, named by its
// path relative to src/ with the extension stripped and separators kept.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"orelang/internal/ast"
	"orelang/internal/checker"
	"orelang/internal/config"
	"orelang/internal/diag"
	"orelang/internal/ir"
	"orelang/internal/parser"
	"orelang/internal/source"
)

const SourceExt = ".ore"

// BuildResult is what a successful (diagnostic-free) Build leaves behind:
// the checked program registry, ready for internal/llvmtarget's hand-off.
type BuildResult struct {
	Manifest *config.Manifest
	Modules  []*ast.Module
	Program  *ir.Program
}

// InitPackage scaffolds a new project at dir: ore.manifest plus a skeletal
// src/main.ore. Matches cmd/orec's `new` subcommand.
func InitPackage(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(abs, "src"), 0o755); err != nil {
		return err
	}
	name := filepath.Base(abs)

	manifestPath := filepath.Join(abs, config.ManifestName)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		content := fmt.Sprintf("[package]\nname = %q\n\n[build]\nmain_module = %q\n", name, config.DefaultMainModule)
		if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
			return err
		}
	}

	mainPath := filepath.Join(abs, "src", "main"+SourceExt)
	if _, err := os.Stat(mainPath); os.IsNotExist(err) {
		content := "main :: () -> i32 {\n\treturn 0;\n}\n"
		if err := os.WriteFile(mainPath, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Build walks dir's src/ tree, parses every module, and runs the checker
// over the whole set. The returned diag.Bag carries every diagnostic the
// parser or checker reported, in emission order (spec.md §5's ordering
// guarantee) — the loader never sorts or filters it.
func Build(dir string) (*BuildResult, *diag.Bag, error) {
	root, maniPath, err := findPackageRoot(dir)
	if err != nil {
		return nil, nil, err
	}

	bag := &diag.Bag{}

	var mani *config.Manifest
	if maniPath != "" {
		mani, err = config.Load(maniPath)
		if err != nil {
			bag.Report(diag.OsFileReadFailed, source.Span{}, err.Error())
			return nil, bag, nil
		}
	} else {
		mani = &config.Manifest{Name: filepath.Base(root), MainModule: config.DefaultMainModule}
	}

	srcDir := filepath.Join(root, "src")
	paths, err := discoverModules(srcDir)
	if err != nil {
		bag.Report(diag.OsDirCreateFailed, source.Span{}, err.Error())
		return nil, bag, nil
	}
	if len(paths) == 0 {
		bag.Report(diag.MainFileNotFound, source.Span{}, "no source files under "+srcDir)
		return &BuildResult{Manifest: mani}, bag, nil
	}

	var mods []*ast.Module
	for _, rel := range paths {
		full := filepath.Join(srcDir, rel)
		b, err := os.ReadFile(full)
		if err != nil {
			bag.Report(diag.OsFileOpenFailed, source.Span{}, err.Error())
			continue
		}
		name := moduleName(rel)
		file := source.NewFile(full, string(b))
		mod := parser.Parse(name, file, bag)
		mods = append(mods, mod)
	}
	if bag.HasErrors() {
		return &BuildResult{Manifest: mani, Modules: mods}, bag, nil
	}

	prog := &ir.Program{}
	c := checker.New(mods, mani.MainModule, prog, bag)
	c.Run()

	if bag.HasErrors() {
		return &BuildResult{Manifest: mani, Modules: mods, Program: prog}, bag, nil
	}
	if err := enterBuildDir(root); err != nil {
		bag.Report(diag.OsDirCreateFailed, source.Span{}, err.Error())
	}

	return &BuildResult{Manifest: mani, Modules: mods, Program: prog}, bag, nil
}

// enterBuildDir creates ./build/ under root if absent and changes the
// process's working directory into it, per spec.md §6: the (external) LLVM
// emitter writes its object file relative to that directory, not the
// project root.
func enterBuildDir(root string) error {
	buildDir := filepath.Join(root, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	return os.Chdir(buildDir)
}

// discoverModules walks srcDir recursively and returns every regular
// file's path relative to srcDir, sorted for deterministic build order
// (spec.md leaves discovery order unspecified; determinism here avoids a
// flaky diagnostic ordering run-to-run).
func discoverModules(srcDir string) ([]string, error) {
	var rels []string
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(rels)
	return rels, nil
}

// moduleName derives a module's logical name from its path relative to
// src/: extension stripped, path separators kept as separators.
func moduleName(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel)
}

func findPackageRoot(dir string) (root string, manifestPath string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	cur := abs
	for {
		mp := filepath.Join(cur, config.ManifestName)
		if _, err := os.Stat(mp); err == nil {
			return cur, mp, nil
		}
		if _, err := os.Stat(filepath.Join(cur, "src")); err == nil {
			return cur, "", nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return abs, "", nil
}
