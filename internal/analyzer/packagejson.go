package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/intelligence"
)

// dependencyFields are merged in this order; a later field wins when a
// package is declared twice.
var dependencyFields = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}

// PackageJSONAnalyzer checks the declared dependencies of a manifest against
// the infection registry.
type PackageJSONAnalyzer struct {
	reg    *intelligence.Registry
	logger *zap.Logger
}

func NewPackageJSONAnalyzer(reg *intelligence.Registry, logger *zap.Logger) *PackageJSONAnalyzer {
	return &PackageJSONAnalyzer{reg: reg, logger: logger}
}

func (a *PackageJSONAnalyzer) Kind() Kind { return KindPackageJSON }

// Analyze parses content as a package.json document.
func (a *PackageJSONAnalyzer) Analyze(_ context.Context, content string) (*analysis.Result, error) {
	doc, err := analysis.ParseJSON(content)
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}
	manifest, ok := doc.(map[string]any)
	if !ok {
		return nil, &MalformedInputError{Err: fmt.Errorf("expected an object, got %s", jsonType(doc))}
	}
	return a.AnalyzeManifest(manifest), nil
}

// AnalyzeManifest checks every declared dependency. Range prefixes are
// stripped from the version before the exact-match lookup, so "^1.2.3"
// is checked as "1.2.3". The npm module is only set when a dependency is
// infected.
func (a *PackageJSONAnalyzer) AnalyzeManifest(manifest map[string]any) *analysis.Result {
	deps := DeclaredDependencies(manifest)

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		infected []analysis.InfectedPackageInfo
		reasons  []string
	)
	for _, name := range names {
		version := deps[name]
		if !a.reg.IsPackageInfected(name, version).Infected {
			continue
		}
		infected = append(infected, infectedInfo(a.reg, name, version))
		reasons = append(reasons, fmt.Sprintf("Infected package in dependencies: %s@%s", name, version))
	}

	a.logger.Debug("manifest checked",
		zap.Int("dependencies", len(deps)),
		zap.Int("infected", len(infected)),
	)

	res := analysis.NewClean()
	res.System = npmSystem("package-json")
	if len(infected) == 0 {
		return res
	}
	npm := &analysis.NPMModule{
		Suspicious:        analysis.Ptr(true),
		Packages:          names,
		SuspiciousReasons: reasons,
		InfectedPackages:  infected,
	}
	if name, ok := manifest["name"].(string); ok {
		npm.PackageName = name
	}
	res.Modules.NPM = npm
	return res
}

// ManifestPackages returns the sorted names of every dependency declared in
// content, or nil when content is not a JSON object.
func ManifestPackages(content string) []string {
	doc, err := analysis.ParseJSON(content)
	if err != nil {
		return nil
	}
	manifest, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	deps := DeclaredDependencies(manifest)
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeclaredDependencies unions the dependency fields of a manifest into
// name -> cleaned version.
func DeclaredDependencies(manifest map[string]any) map[string]string {
	deps := make(map[string]string)
	for _, field := range dependencyFields {
		block, ok := manifest[field].(map[string]any)
		if !ok {
			continue
		}
		for name, v := range block {
			deps[name] = CleanVersion(analysis.Stringify(v))
		}
	}
	return deps
}

// CleanVersion strips range operators from a declared version.
func CleanVersion(v string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(v), "^~>=<"))
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
