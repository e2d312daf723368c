package intelligence

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk format of a registry override. YAML and JSON are both
// accepted since JSON is a subset of YAML.
type File struct {
	Packages   []InfectedPackage `yaml:"packages"`
	Indicators *Indicators       `yaml:"indicators,omitempty"`
}

// Load reads a registry override from r and layers it over base. Entries with
// a name already in base replace that entry; new names are appended.
// Indicators, when present, replace the base indicators field by field.
func Load(base *Registry, r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid registry file: %w", err)
	}
	return base.Extend(f)
}

// LoadFile is Load for a path.
func LoadFile(base *Registry, path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reg, err := Load(base, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Extend returns a new registry with f layered over r. r is not modified.
func (r *Registry) Extend(f File) (*Registry, error) {
	pkgs := r.Packages()
	index := make(map[string]int, len(pkgs))
	for i, p := range pkgs {
		index[p.Name] = i
	}

	seen := make(map[string]bool, len(f.Packages))
	for _, p := range f.Packages {
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate infected package %q", p.Name)
		}
		seen[p.Name] = true
		if i, ok := index[p.Name]; ok {
			pkgs[i] = p
			continue
		}
		index[p.Name] = len(pkgs)
		pkgs = append(pkgs, p)
	}

	ind := r.indicators
	if f.Indicators != nil {
		if f.Indicators.BundleHash != "" {
			ind.BundleHash = f.Indicators.BundleHash
		}
		if f.Indicators.WebhookEndpoint != "" {
			ind.WebhookEndpoint = f.Indicators.WebhookEndpoint
		}
		if f.Indicators.LifecycleScript != "" {
			ind.LifecycleScript = f.Indicators.LifecycleScript
		}
	}
	return NewRegistry(pkgs, ind)
}
