package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/github"
	"github.com/xful-bep/crysknife/internal/intelligence"
	"github.com/xful-bep/crysknife/internal/registry"
)

// Analyzer turns a query of one Kind into a complete result, or fails with
// one of the errors in this package.
type Analyzer interface {
	Kind() Kind
	Analyze(ctx context.Context, query string) (*analysis.Result, error)
}

// Deps are the collaborators shared by the analyzers.
type Deps struct {
	Registry *intelligence.Registry
	NPM      *registry.Client
	GitHub   *github.Client
	Decoder  *analysis.Decoder
	Logger   *zap.Logger
	Sampler  SamplerOptions
	// InspectTarball enables downloading the checked version's tarball in
	// npm-package analyses. Tarballs are fetched with Tarballs when set.
	InspectTarball bool
	Tarballs       *fetch.Client
}

// Dispatcher routes a query to the analyzer registered for its kind.
type Dispatcher struct {
	analyzers map[Kind]Analyzer
}

// NewDispatcher registers analyzers by kind. A later analyzer replaces an
// earlier one of the same kind.
func NewDispatcher(analyzers ...Analyzer) *Dispatcher {
	d := &Dispatcher{analyzers: make(map[Kind]Analyzer, len(analyzers))}
	for _, a := range analyzers {
		d.analyzers[a.Kind()] = a
	}
	return d
}

// New builds a dispatcher with all six analyzers.
func New(deps Deps) *Dispatcher {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Registry == nil {
		deps.Registry = intelligence.Default()
	}
	if deps.Decoder == nil {
		deps.Decoder = analysis.NewDecoder(deps.Logger)
	}
	if deps.NPM == nil {
		deps.NPM = registry.NewClient("", nil)
	}
	if deps.GitHub == nil {
		deps.GitHub = github.NewClient("", "", nil)
	}

	env := NewEnvironmentAnalyzer(deps.Registry, deps.Logger)
	manifest := NewPackageJSONAnalyzer(deps.Registry, deps.Logger)
	pkg := NewNPMPackageAnalyzer(deps.NPM, deps.Registry, deps.Logger)
	pkg.InspectTarball = deps.InspectTarball
	if deps.Tarballs != nil {
		pkg.fetch = deps.Tarballs
	}

	return NewDispatcher(
		NewGitHubAccountAnalyzer(deps.GitHub, deps.Decoder, deps.Logger),
		NewNPMAccountAnalyzer(deps.NPM, deps.Registry, deps.Logger, deps.Sampler),
		pkg,
		NewFileUploadAnalyzer(manifest, env),
		NewBase64Analyzer(deps.Decoder, env),
		manifest,
	)
}

// Analyze runs the analyzer for kind. Analyzer errors are returned unchanged.
func (d *Dispatcher) Analyze(ctx context.Context, kind Kind, query string) (*analysis.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	a, ok := d.analyzers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	return a.Analyze(ctx, query)
}

// Kinds returns the registered kinds, sorted.
func (d *Dispatcher) Kinds() []Kind {
	kinds := make([]Kind, 0, len(d.analyzers))
	for k := range d.analyzers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func infectedInfo(reg *intelligence.Registry, name, detected string) analysis.InfectedPackageInfo {
	info := analysis.InfectedPackageInfo{Name: name, DetectedVersion: detected, Category: "unknown"}
	if p, ok := reg.Lookup(name); ok {
		info.Versions = p.Versions
		if p.Category != "" {
			info.Category = p.Category
		}
	}
	if info.Versions == nil {
		info.Versions = []string{}
	}
	return info
}

func npmSystem(detailed string) analysis.System {
	return analysis.System{
		Platform:             "npm",
		Architecture:         analysis.Unknown,
		PlatformDetailed:     detailed,
		ArchitectureDetailed: analysis.Unknown,
	}
}
