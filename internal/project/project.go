// Package project collects the installed dependencies of an npm project
// directory so they can be checked like a package.json.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xful-bep/crysknife/internal/intelligence"
)

// Sources a dependency can be collected from.
const (
	SourceLockfile    = "package-lock.json"
	SourceNodeModules = "node_modules"
)

// ErrNoDependencies is returned when a directory has neither a lockfile nor
// a node_modules tree.
var ErrNoDependencies = errors.New("no package-lock.json or node_modules found")

// PackageLock is a package-lock.json file of any lockfile version.
type PackageLock struct {
	Name            string `json:"name"`
	LockfileVersion int    `json:"lockfileVersion"`
	// Packages is the v2/v3 flat layout keyed by install path.
	Packages map[string]LockPackage `json:"packages"`
	// Dependencies is the v1 nested layout.
	Dependencies map[string]LegacyLockPackage `json:"dependencies"`
}

type LockPackage struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Resolved string `json:"resolved"`
	Link     bool   `json:"link"`
}

type LegacyLockPackage struct {
	Version      string                       `json:"version"`
	Resolved     string                       `json:"resolved"`
	Dependencies map[string]LegacyLockPackage `json:"dependencies"`
}

// Dependency is one installed copy of a package.
type Dependency struct {
	Name    string
	Version string
	Source  string
}

// ParsePackageLock reads every installed package from a lockfile, nested
// copies included.
func ParsePackageLock(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lock PackageLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var deps []Dependency
	if len(lock.Packages) > 0 {
		for key, pkg := range lock.Packages {
			if key == "" || pkg.Link {
				continue
			}
			name := pkg.Name
			if name == "" {
				name = installName(key)
			}
			deps = append(deps, Dependency{Name: name, Version: pkg.Version, Source: SourceLockfile})
		}
	} else {
		deps = walkLegacy(lock.Dependencies, deps)
	}

	sortDependencies(deps)
	return deps, nil
}

// installName turns "node_modules/a/node_modules/@s/b" into "@s/b".
func installName(key string) string {
	if i := strings.LastIndex(key, "node_modules/"); i >= 0 {
		return key[i+len("node_modules/"):]
	}
	return key
}

func walkLegacy(tree map[string]LegacyLockPackage, deps []Dependency) []Dependency {
	for name, pkg := range tree {
		deps = append(deps, Dependency{Name: name, Version: pkg.Version, Source: SourceLockfile})
		deps = walkLegacy(pkg.Dependencies, deps)
	}
	return deps
}

// InstalledModules lists the top-level packages in root/node_modules with
// the version from each package's own package.json. A package without a
// readable package.json is listed with an empty version.
func InstalledModules(root string) ([]Dependency, error) {
	nodeModules := filepath.Join(root, "node_modules")
	entries, err := os.ReadDir(nodeModules)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	add := func(name, dir string) {
		deps = append(deps, Dependency{Name: name, Version: installedVersion(dir), Source: SourceNodeModules})
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.HasPrefix(entry.Name(), "@") {
			scoped, err := os.ReadDir(filepath.Join(nodeModules, entry.Name()))
			if err != nil {
				continue
			}
			for _, s := range scoped {
				if s.IsDir() {
					add(entry.Name()+"/"+s.Name(), filepath.Join(nodeModules, entry.Name(), s.Name()))
				}
			}
			continue
		}
		add(entry.Name(), filepath.Join(nodeModules, entry.Name()))
	}

	sortDependencies(deps)
	return deps, nil
}

func installedVersion(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &pkg) != nil {
		return ""
	}
	return pkg.Version
}

// Collect gathers the dependencies of the project in dir from its lockfile
// and node_modules. Either may be missing, but not both.
func Collect(dir string) ([]Dependency, error) {
	var deps []Dependency
	found := false

	lock, err := ParsePackageLock(filepath.Join(dir, SourceLockfile))
	switch {
	case err == nil:
		found = true
		deps = append(deps, lock...)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	installed, err := InstalledModules(dir)
	switch {
	case err == nil:
		found = true
		deps = append(deps, installed...)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDependencies)
	}
	return deps, nil
}

// Manifest folds deps into a package.json document. A package installed at
// several versions keeps the one the registry marks infected, if any.
func Manifest(name string, deps []Dependency, reg *intelligence.Registry) map[string]any {
	versions := make(map[string]string, len(deps))
	for _, d := range deps {
		current, seen := versions[d.Name]
		switch {
		case !seen, current == "":
			versions[d.Name] = d.Version
		case d.Version != "" && !reg.IsPackageInfected(d.Name, current).SpecificVersion &&
			reg.IsPackageInfected(d.Name, d.Version).SpecificVersion:
			versions[d.Name] = d.Version
		}
	}

	block := make(map[string]any, len(versions))
	for n, v := range versions {
		block[n] = v
	}
	manifest := map[string]any{"dependencies": block}
	if name != "" {
		manifest["name"] = name
	}
	return manifest
}

// ProjectName reads the name field of dir/package.json, or returns "".
func ProjectName(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(data, &pkg) != nil {
		return ""
	}
	return pkg.Name
}

func sortDependencies(deps []Dependency) {
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		return deps[i].Version < deps[j].Version
	})
}
