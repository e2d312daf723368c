// Package audit is the caller-facing entry point: it dispatches a query to
// its analyzer, sanitizes the result and grades it into a report.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/fetch"
	"github.com/xful-bep/crysknife/internal/github"
	"github.com/xful-bep/crysknife/internal/intelligence"
	"github.com/xful-bep/crysknife/internal/registry"
	"github.com/xful-bep/crysknife/internal/reporter"
)

// Config holds the audit configuration.
type Config struct {
	RegistryURL string
	GitHubAPI   string
	GitHubToken string
	// Timeout is the HTTP client deadline in seconds.
	Timeout       int
	MaxIterations int
	// SampleSize, SampleConcurrency and SampleRate bound the npm-account
	// fallback probe.
	SampleSize        int
	SampleConcurrency int
	SampleRate        float64
	// RegistryFile is layered over the bundled infection registry.
	RegistryFile   string
	InspectTarball bool
	// Concurrency caps how many queries RunBatch analyzes at once.
	Concurrency int
}

// Runner handles audit execution. It is safe for concurrent use.
type Runner struct {
	cfg        Config
	registry   *intelligence.Registry
	dispatcher *analyzer.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewRunner creates a new Runner with the given configuration. A nil logger
// discards logs.
func NewRunner(cfg Config, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = int(fetch.DefaultTimeout / time.Second)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = analysis.DefaultMaxIterations
	}
	sampler := analyzer.DefaultSamplerOptions()
	if cfg.SampleSize != 0 {
		sampler.Size = cfg.SampleSize
	}
	if cfg.SampleConcurrency != 0 {
		sampler.Concurrency = cfg.SampleConcurrency
	}
	if cfg.SampleRate != 0 {
		sampler.RatePerSecond = cfg.SampleRate
	}

	reg := intelligence.Default()
	if cfg.RegistryFile != "" {
		var err error
		reg, err = intelligence.LoadFile(reg, cfg.RegistryFile)
		if err != nil {
			return nil, fmt.Errorf("loading registry file: %w", err)
		}
		logger.Info("registry file loaded", zap.String("path", cfg.RegistryFile), zap.Int("packages", reg.Len()))
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	decoder := analysis.NewDecoder(logger)
	decoder.MaxIterations = cfg.MaxIterations

	// Each service gets its own fetch client since they carry different headers.
	dispatcher := analyzer.New(analyzer.Deps{
		Registry:       reg,
		NPM:            registry.NewClient(cfg.RegistryURL, fetch.New(timeout)),
		GitHub:         github.NewClient(cfg.GitHubAPI, cfg.GitHubToken, fetch.New(timeout)),
		Decoder:        decoder,
		Logger:         logger,
		Sampler:        sampler,
		InspectTarball: cfg.InspectTarball,
		Tarballs:       fetch.New(timeout),
	})

	return &Runner{
		cfg:        cfg,
		registry:   reg,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// Registry returns the infection registry the runner checks against.
func (r *Runner) Registry() *intelligence.Registry { return r.registry }

// Kinds returns the analysis kinds the runner accepts.
func (r *Runner) Kinds() []analyzer.Kind { return r.dispatcher.Kinds() }

// Analyze dispatches the query and returns the sanitized result. Analyzer
// errors are returned unchanged.
func (r *Runner) Analyze(ctx context.Context, kind analyzer.Kind, query string) (*analysis.Result, error) {
	log := r.logger.With(zap.String("kind", string(kind)))
	log.Debug("analysis started", zap.Int("query_length", len(query)))
	start := r.now()

	res, err := r.dispatcher.Analyze(ctx, kind, query)
	if err != nil {
		log.Warn("analysis failed", zap.Error(err), zap.Duration("elapsed", r.now().Sub(start)))
		return nil, err
	}

	clean := analysis.Sanitize(res)
	log.Info("analysis completed",
		zap.String("platform", clean.System.Platform),
		zap.Int("env_count", len(clean.Environment)),
		zap.Strings("modules", clean.Modules.Names()),
		zap.Duration("elapsed", r.now().Sub(start)),
	)
	return clean, nil
}

// Run analyzes the query and grades the sanitized result into a report.
func (r *Runner) Run(ctx context.Context, kind analyzer.Kind, query string) (reporter.SecurityReport, error) {
	res, err := r.Analyze(ctx, kind, query)
	if err != nil {
		return reporter.SecurityReport{}, err
	}
	report := reporter.NewSecurityReport(string(kind), DisplayQuery(kind, query), res, r.now())
	report.ID = r.newID()
	if kind == analyzer.KindPackageJSON {
		report.Dependencies = analyzer.ManifestPackages(query)
	}
	return report, nil
}

// Request is one query of a batch.
type Request struct {
	Kind  analyzer.Kind
	Query string
}

// Outcome is the report or error for one Request.
type Outcome struct {
	Request Request
	Report  reporter.SecurityReport
	Err     error
}

// RunBatch analyzes every request with at most Config.Concurrency in flight.
// Outcomes keep the order of reqs; one failing request does not stop the
// others.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	concurrency := r.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report, err := r.Run(ctx, req.Kind, req.Query)
			outcomes[i] = Outcome{Request: req, Report: report, Err: err}
		}(i, req)
	}
	wg.Wait()
	return outcomes
}

// DisplayQuery is how a query appears in reports. Pasted and uploaded
// content can hold secrets, so only its size is shown.
func DisplayQuery(kind analyzer.Kind, query string) string {
	if kind.Networked() {
		return query
	}
	return fmt.Sprintf("(%d bytes of %s)", len(query), kind.Label())
}
