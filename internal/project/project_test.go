package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xful-bep/crysknife/internal/intelligence"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParsePackageLock(t *testing.T) {
	t.Run("lockfile v3 with packages", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "package-lock.json")
		writeFile(t, path, `{
			"name": "test-project",
			"lockfileVersion": 3,
			"packages": {
				"": {"name": "test-project", "version": "1.0.0"},
				"node_modules/lodash": {
					"version": "4.17.21",
					"resolved": "https://registry.npmjs.org/lodash/-/lodash-4.17.21.tgz"
				},
				"node_modules/express/node_modules/@ctrl/tinycolor": {"version": "4.1.1"},
				"node_modules/local-lib": {"link": true},
				"packages/aliased": {"name": "aliased", "version": "0.1.0"}
			}
		}`)

		deps, err := ParsePackageLock(path)
		if err != nil {
			t.Fatalf("ParsePackageLock() error = %v", err)
		}
		want := []Dependency{
			{Name: "@ctrl/tinycolor", Version: "4.1.1", Source: SourceLockfile},
			{Name: "aliased", Version: "0.1.0", Source: SourceLockfile},
			{Name: "lodash", Version: "4.17.21", Source: SourceLockfile},
		}
		if len(deps) != len(want) {
			t.Fatalf("deps = %+v, want %+v", deps, want)
		}
		for i := range want {
			if deps[i] != want[i] {
				t.Errorf("deps[%d] = %+v, want %+v", i, deps[i], want[i])
			}
		}
	})

	t.Run("lockfile v1 with nested dependencies", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "package-lock.json")
		writeFile(t, path, `{
			"lockfileVersion": 1,
			"dependencies": {
				"axios": {
					"version": "1.4.0",
					"dependencies": {"ngx-bootstrap": {"version": "19.0.3"}}
				}
			}
		}`)

		deps, err := ParsePackageLock(path)
		if err != nil {
			t.Fatalf("ParsePackageLock() error = %v", err)
		}
		if len(deps) != 2 || deps[0].Name != "axios" || deps[1].Name != "ngx-bootstrap" || deps[1].Version != "19.0.3" {
			t.Errorf("deps = %+v", deps)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := ParsePackageLock("/nonexistent/package-lock.json"); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "package-lock.json")
		writeFile(t, path, `{invalid`)
		if _, err := ParsePackageLock(path); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestInstalledModules(t *testing.T) {
	dir := t.TempDir()
	nm := filepath.Join(dir, "node_modules")
	writeFile(t, filepath.Join(nm, "lodash", "package.json"), `{"name":"lodash","version":"4.17.21"}`)
	writeFile(t, filepath.Join(nm, "@ctrl", "tinycolor", "package.json"), `{"version":"4.1.2"}`)
	writeFile(t, filepath.Join(nm, "readme.txt"), "hi")
	if err := os.MkdirAll(filepath.Join(nm, ".cache"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(nm, "broken"), 0o755); err != nil {
		t.Fatal(err)
	}

	deps, err := InstalledModules(dir)
	if err != nil {
		t.Fatalf("InstalledModules() error = %v", err)
	}
	want := []Dependency{
		{Name: "@ctrl/tinycolor", Version: "4.1.2", Source: SourceNodeModules},
		{Name: "broken", Version: "", Source: SourceNodeModules},
		{Name: "lodash", Version: "4.17.21", Source: SourceNodeModules},
	}
	if len(deps) != len(want) {
		t.Fatalf("deps = %+v, want %+v", deps, want)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Errorf("deps[%d] = %+v, want %+v", i, deps[i], want[i])
		}
	}

	if _, err := InstalledModules(t.TempDir()); err == nil {
		t.Error("expected error when node_modules doesn't exist")
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"my-app"}`)
	writeFile(t, filepath.Join(dir, "package-lock.json"), `{"lockfileVersion":3,"packages":{"node_modules/a":{"version":"1.0.0"}}}`)
	writeFile(t, filepath.Join(dir, "node_modules", "b", "package.json"), `{"version":"2.0.0"}`)

	deps, err := Collect(dir)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(deps) != 2 || deps[0].Source != SourceLockfile || deps[1].Source != SourceNodeModules {
		t.Errorf("deps = %+v", deps)
	}
	if got := ProjectName(dir); got != "my-app" {
		t.Errorf("ProjectName() = %q", got)
	}

	if _, err := Collect(t.TempDir()); !errors.Is(err, ErrNoDependencies) {
		t.Errorf("empty dir: expected ErrNoDependencies, got %v", err)
	}
}

func TestManifest(t *testing.T) {
	deps := []Dependency{
		{Name: "@ctrl/tinycolor", Version: "3.0.0"},
		{Name: "@ctrl/tinycolor", Version: "4.1.1"},
		{Name: "@ctrl/tinycolor", Version: "3.1.0"},
		{Name: "lodash", Version: ""},
		{Name: "lodash", Version: "4.17.21"},
	}
	m := Manifest("my-app", deps, intelligence.Default())

	if m["name"] != "my-app" {
		t.Errorf("name = %v", m["name"])
	}
	block, ok := m["dependencies"].(map[string]any)
	if !ok {
		t.Fatalf("dependencies = %T", m["dependencies"])
	}
	if block["@ctrl/tinycolor"] != "4.1.1" {
		t.Errorf("tinycolor = %v, want the infected copy", block["@ctrl/tinycolor"])
	}
	if block["lodash"] != "4.17.21" {
		t.Errorf("lodash = %v", block["lodash"])
	}

	if _, ok := Manifest("", nil, intelligence.Default())["name"]; ok {
		t.Error("empty project name must be omitted")
	}
}
