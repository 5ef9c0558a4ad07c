// Package config reads the project manifest (`ore.manifest`) at a package
// root: `[package] name` and `[build] main_module`. Purely ambient project
// metadata — it has no bearing on lexer/parser/checker semantics.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ManifestName = "ore.manifest"

// DefaultMainModule is the module name the loader treats as the
// compilation entry point when ore.manifest omits [build] main_module.
const DefaultMainModule = "main"

type Manifest struct {
	Path       string
	Name       string
	MainModule string
}

// Load reads path into a flat section->key->value table, then lifts just
// the two keys this repo's manifest format defines ([package] name and
// [build] main_module) out of it. Everything else in the file is parsed but
// ignored — spec.md's manifest carries no dependency table, so there is
// nothing else to lift.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sections, err := scanSections(path, string(b))
	if err != nil {
		return nil, err
	}

	m := &Manifest{Path: path, MainModule: DefaultMainModule}
	if name, ok := sections["package"]["name"]; ok {
		m.Name = name
	}
	if main, ok := sections["build"]["main_module"]; ok {
		m.MainModule = main
	}
	if m.Name == "" {
		m.Name = filepath.Base(filepath.Dir(path))
	}
	return m, nil
}

// scanSections turns an ore.manifest's `[section]` / `key = "value"` body
// into a table of quote-stripped values, rejecting any non-blank,
// non-comment, non-header line it can't split on `=`.
func scanSections(path, body string) (map[string]map[string]string, error) {
	sections := map[string]map[string]string{}
	section := ""
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := stripComment(sc.Text())
		if line == "" {
			continue
		}
		if header, ok := sectionHeader(line); ok {
			section = header
			if sections[section] == nil {
				sections[section] = map[string]string{}
			}
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		key, val = strings.TrimSpace(key), quotedValue(val)
		if !ok || key == "" || val == "" {
			return nil, fmt.Errorf("%s: invalid line: %q", path, line)
		}
		if sections[section] == nil {
			sections[section] = map[string]string{}
		}
		sections[section][key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func sectionHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", false
	}
	return strings.TrimSpace(line[1 : len(line)-1]), true
}

// quotedValue trims a value and strips one layer of surrounding double
// quotes, if present.
func quotedValue(raw string) string {
	v := strings.TrimSpace(raw)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}
