package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/intelligence"
	"github.com/xful-bep/crysknife/internal/registry"
)

// SamplerOptions bound the fallback probe of known-infected packages.
type SamplerOptions struct {
	// Size is how many registry packages are probed. Zero disables the probe.
	Size int
	// Concurrency is how many probes run at once.
	Concurrency int
	// RatePerSecond throttles probe requests.
	RatePerSecond float64
}

// DefaultSamplerOptions returns the probe bounds used when none are set.
func DefaultSamplerOptions() SamplerOptions {
	return SamplerOptions{Size: 12, Concurrency: 4, RatePerSecond: 5}
}

// NPMAccountAnalyzer finds the packages an npm account publishes or
// maintains and cross-references their names with the infection registry.
type NPMAccountAnalyzer struct {
	client  *registry.Client
	reg     *intelligence.Registry
	logger  *zap.Logger
	sampler SamplerOptions
	limiter *rate.Limiter
}

func NewNPMAccountAnalyzer(client *registry.Client, reg *intelligence.Registry, logger *zap.Logger, opts SamplerOptions) *NPMAccountAnalyzer {
	if opts == (SamplerOptions{}) {
		opts = DefaultSamplerOptions()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &NPMAccountAnalyzer{
		client:  client,
		reg:     reg,
		logger:  logger,
		sampler: opts,
		limiter: rate.NewLimiter(limit, opts.Concurrency),
	}
}

func (a *NPMAccountAnalyzer) Kind() Kind { return KindNPMAccount }

// Analyze lists the account's packages and flags every name present in the
// registry. Account listings carry no versions, so any listed name counts.
func (a *NPMAccountAnalyzer) Analyze(ctx context.Context, user string) (*analysis.Result, error) {
	user = strings.TrimLeft(strings.TrimSpace(user), "@~")
	if user == "" {
		return nil, ErrEmptyQuery
	}
	log := a.logger.With(zap.String("user", user))

	names, err := a.discover(ctx, log, user)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		log.Debug("no packages found")
		return analysis.NewClean(), nil
	}

	var infected []string
	for _, name := range names {
		if a.reg.Has(name) {
			infected = append(infected, name)
		}
	}
	log.Debug("packages cross-referenced", zap.Int("packages", len(names)), zap.Int("infected", len(infected)))

	res := analysis.NewClean()
	res.System = npmSystem("npm-account")

	if len(infected) == 0 {
		res.Modules.NPM = &analysis.NPMModule{
			Username:   analysis.Ptr(user),
			Suspicious: analysis.Ptr(false),
			Packages:   names,
		}
		return res, nil
	}

	npm := &analysis.NPMModule{
		Authenticated:      true,
		Username:           analysis.Ptr(user),
		Suspicious:         analysis.Ptr(true),
		Packages:           names,
		SuspiciousPackages: infected,
	}
	for _, name := range infected {
		npm.InfectedPackages = append(npm.InfectedPackages, infectedInfo(a.reg, name, ""))
		npm.SuspiciousReasons = append(npm.SuspiciousReasons, fmt.Sprintf("Account maintains infected package: %s", name))
	}
	res.Modules.NPM = npm
	return res, nil
}

// discover tries, in order: the user package listing, maintainer and author
// searches, a broad text search and finally the registry sample probe. The
// first step that yields packages wins. Rate limiting always aborts; other
// failures only abort on the primary listing.
func (a *NPMAccountAnalyzer) discover(ctx context.Context, log *zap.Logger, user string) ([]string, error) {
	pkgs, err := a.client.GetUserPackages(ctx, user)
	switch {
	case err == nil && len(pkgs) > 0:
		names := make([]string, 0, len(pkgs))
		for name := range pkgs {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	case err != nil && !fetch.IsNotFound(err):
		return nil, classify(serviceNPM, err)
	}

	for _, text := range []string{"maintainer:" + user, "author:" + user, user} {
		names, err := a.search(ctx, user, text)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				return nil, err
			}
			log.Debug("search failed", zap.String("text", text), zap.Error(err))
			continue
		}
		if len(names) > 0 {
			return names, nil
		}
	}

	return a.sample(ctx, log, user)
}

func (a *NPMAccountAnalyzer) search(ctx context.Context, user, text string) ([]string, error) {
	res, err := a.client.Search(ctx, text, registry.MaxSearchSize)
	if err != nil {
		return nil, classify(serviceNPM, err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, obj := range res.Objects {
		if obj.Package.OwnedBy(user) && !seen[obj.Package.Name] {
			seen[obj.Package.Name] = true
			names = append(names, obj.Package.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// sample fetches the metadata of a bounded set of registry packages and keeps
// the ones the user authors or maintains.
func (a *NPMAccountAnalyzer) sample(ctx context.Context, log *zap.Logger, user string) ([]string, error) {
	candidates := a.reg.Priority(a.sampler.Size)
	if len(candidates) == 0 {
		return nil, nil
	}
	log.Debug("probing registry sample", zap.Int("candidates", len(candidates)))

	var (
		mu    sync.Mutex
		owned []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.sampler.Concurrency)

	for _, p := range candidates {
		name := p.Name
		g.Go(func() error {
			if err := a.limiter.Wait(gctx); err != nil {
				return err
			}
			meta, err := a.client.GetPackage(gctx, name)
			if err != nil {
				if cerr := classify(serviceNPM, err); errors.Is(cerr, ErrRateLimited) {
					return cerr
				}
				return nil
			}
			if ownedBy(meta, user) {
				mu.Lock()
				owned = append(owned, name)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("probing registry sample: %w", err)
	}

	sort.Strings(owned)
	return owned, nil
}

func ownedBy(meta *registry.PackageMetadata, user string) bool {
	if meta.Author != nil && meta.Author.Matches(user) {
		return true
	}
	for _, m := range meta.Maintainers {
		if m.Matches(user) {
			return true
		}
	}
	return false
}
