package intelligence

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is an immutable index of infected packages and malware indicators.
// Build one with NewRegistry (or Default) at startup and share it by pointer;
// no method mutates it, so it is safe for concurrent use.
type Registry struct {
	packages   []InfectedPackage
	byName     map[string]int
	indicators Indicators
}

// NewRegistry indexes pkgs. Package names must be unique.
func NewRegistry(pkgs []InfectedPackage, indicators Indicators) (*Registry, error) {
	r := &Registry{
		packages:   make([]InfectedPackage, 0, len(pkgs)),
		byName:     make(map[string]int, len(pkgs)),
		indicators: indicators,
	}
	for _, p := range pkgs {
		if p.Name == "" {
			return nil, fmt.Errorf("infected package with empty name")
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate infected package %q", p.Name)
		}
		p.Versions = append([]string(nil), p.Versions...)
		r.byName[p.Name] = len(r.packages)
		r.packages = append(r.packages, p)
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the bundled dataset.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(builtinPackages, builtinIndicators)
		if err != nil {
			panic(fmt.Sprintf("intelligence: bundled dataset is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Len returns the number of packages in the registry.
func (r *Registry) Len() int { return len(r.packages) }

// Indicators returns the malware signatures.
func (r *Registry) Indicators() Indicators { return r.indicators }

// Packages returns a copy of every entry, in registry order.
func (r *Registry) Packages() []InfectedPackage {
	out := make([]InfectedPackage, len(r.packages))
	for i, p := range r.packages {
		out[i] = clonePackage(p)
	}
	return out
}

// Has reports whether name is a known-infected package (any version).
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (InfectedPackage, bool) {
	i, ok := r.byName[name]
	if !ok {
		return InfectedPackage{}, false
	}
	return clonePackage(r.packages[i]), true
}

// Categories returns the distinct categories in sorted order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, p := range r.packages {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// Priority returns up to n entries to use when probing a registry for
// packages owned by an account. The first entry of every category comes
// first (so one probe covers each maintainer group), followed by the rest in
// registry order.
func (r *Registry) Priority(n int) []InfectedPackage {
	if n <= 0 {
		return nil
	}
	var lead, rest []InfectedPackage
	seen := make(map[string]bool)
	for _, p := range r.packages {
		if !seen[p.Category] {
			seen[p.Category] = true
			lead = append(lead, clonePackage(p))
			continue
		}
		rest = append(rest, clonePackage(p))
	}
	out := append(lead, rest...)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func clonePackage(p InfectedPackage) InfectedPackage {
	p.Versions = append([]string(nil), p.Versions...)
	return p
}
