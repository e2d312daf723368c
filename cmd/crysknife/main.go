package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/audit"
	"github.com/xful-bep/crysknife/internal/log"
	"github.com/xful-bep/crysknife/internal/policy"
	"github.com/xful-bep/crysknife/internal/project"
	"github.com/xful-bep/crysknife/internal/reporter"
	"github.com/xful-bep/crysknife/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	registryURL       string
	githubAPI         string
	githubToken       string
	format            string
	outputFile        string
	timeout           int
	maxIterations     int
	sampleSize        int
	sampleConcurrency int
	registryFile      string
	inspectTarball    bool
	concurrency       int
	verbose           bool
	quiet             bool
	logEnv            string
	failOnCompromise  bool
	failOn            string
	bannedPackages    []string
	interactive       bool
	scanKind          string
	listenAddr        string
	rateLimit         float64
	trustProxy        bool
	category          string

	// runPolicy is built from the fail-on flags and config by loadConfiguration.
	runPolicy *policy.Policy
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	reporter.Version = version

	rootCmd := &cobra.Command{
		Use:   "crysknife",
		Short: "Check accounts, packages and leaked data for Shai-Hulud compromise",
		Long: fmt.Sprintf(`crysknife checks whether a GitHub account, an npm account or package,
a leaked data.json, a pasted base64 payload or a package.json shows signs of
compromise by the Shai-Hulud npm worm.

Build Info: Commit %s, Date %s

Examples:
  crysknife github octocat
  crysknife npm-package @ctrl/tinycolor@4.1.1
  crysknife package-json ./package.json --format markdown --output report.md
  crysknife base64 - < payload.txt
  crysknife serve --listen :8080 --rate-limit 1`, commit, date),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfiguration(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runTUI()
			}
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&registryURL, "registry", "r", "", "npm registry URL (default: https://registry.npmjs.org)")
	pf.StringVar(&githubAPI, "github-api", "", "GitHub API URL (default: https://api.github.com)")
	pf.StringVar(&githubToken, "github-token", "", "GitHub token to raise API rate limits (also read from GITHUB_TOKEN)")
	pf.StringVar(&format, "format", reporter.FormatTerminal, "output format ("+strings.Join(reporter.Formats(), ", ")+")")
	pf.StringVarP(&outputFile, "output", "o", "", "write report to file instead of stdout")
	pf.IntVar(&timeout, "timeout", 30, "HTTP timeout in seconds")
	pf.IntVar(&maxIterations, "max-iterations", analysis.DefaultMaxIterations, "maximum base64 layers to decode")
	pf.IntVar(&sampleSize, "sample-size", 0, "known-infected packages probed when an npm account lists nothing (default 12)")
	pf.IntVar(&sampleConcurrency, "sample-concurrency", 0, "concurrent probes for the npm account sample (default 4)")
	pf.StringVar(&registryFile, "registry-file", "", "YAML or JSON file extending the infected package registry")
	pf.BoolVar(&inspectTarball, "inspect-tarball", false, "download and scan the checked package tarball")
	pf.IntVarP(&concurrency, "concurrency", "c", 5, "max concurrent analyses for scan with several queries")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging and full environment in reports")
	pf.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	pf.StringVar(&logEnv, "log-env", "dev", "log format: dev or prod (JSON)")
	pf.BoolVar(&failOnCompromise, "fail-on-compromise", false, "exit with code 2 when evidence of compromise is found (same as --fail-on warning)")
	pf.StringVar(&failOn, "fail-on", "", "exit with code 2 when the level reaches this threshold (warning, critical)")
	pf.StringSliceVar(&bannedPackages, "ban", nil, "exit with code 2 when a report names one of these packages")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run in interactive TUI mode")

	rootCmd.AddCommand(
		newKindCmd(analyzer.KindGitHubAccount, "github <account>", "Look for a Shai-Hulud exfiltration repository on a GitHub account"),
		newKindCmd(analyzer.KindNPMAccount, "npm-account <user>", "Check the packages an npm account publishes or maintains"),
		newKindCmd(analyzer.KindNPMPackage, "npm-package <name[@version]>", "Check one npm package against the known infected releases"),
		newFileCmd(analyzer.KindFileUpload, "file <path>", "Scan a leaked data.json or any JSON document", ""),
		newFileCmd(analyzer.KindPackageJSON, "package-json [path]", "Check the dependencies of a package.json", "package.json"),
		newBase64Cmd(),
		newProjectCmd(),
		newScanCmd(),
		newServeCmd(),
		newTUICmd(),
		newMcpCmd(),
		newRegistryCmd(),
	)
	return rootCmd
}

// ExitError signals a non-standard exit code (e.g., 2 for --fail-on-compromise).
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func newKindCmd(kind analyzer.Kind, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), kind, args[0], "")
		},
	}
}

func newFileCmd(kind analyzer.Kind, use, short, defaultPath string) *cobra.Command {
	args := cobra.ExactArgs(1)
	if defaultPath != "" {
		args = cobra.MaximumNArgs(1)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultPath
			if len(args) > 0 {
				path = args[0]
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			return runQuery(cmd.Context(), kind, string(data), path)
		},
	}
}

func newBase64Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "base64 [payload|-]",
		Short: "Decode a pasted base64 payload (read from stdin when omitted or -)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload string
			if len(args) == 0 || args[0] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				payload = string(data)
			} else {
				payload = args[0]
			}
			return runQuery(cmd.Context(), analyzer.KindBase64, payload, "")
		},
	}
}

func newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project [dir]",
		Short: "Check the installed dependencies of a project (package-lock.json and node_modules)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			deps, err := project.Collect(dir)
			if err != nil {
				return err
			}
			runner, err := newRunner()
			if err != nil {
				return err
			}
			manifest, err := json.Marshal(project.Manifest(project.ProjectName(dir), deps, runner.Registry()))
			if err != nil {
				return err
			}
			return runWith(cmd.Context(), runner, analyzer.KindPackageJSON, string(manifest), dir)
		},
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan --kind <kind> <query>...",
		Short: "Analyze one or more queries of any kind",
		Long: `Analyze queries of the given kind. Several queries are analyzed
concurrently (see --concurrency) and reported in order.

Kinds: ` + kindList(),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := analyzer.ParseKind(scanKind)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return runQuery(cmd.Context(), kind, args[0], "")
			}
			return runBatch(cmd.Context(), kind, args)
		},
	}
	cmd.Flags().StringVarP(&scanKind, "kind", "k", string(analyzer.KindNPMPackage), "analysis kind")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve POST /api/analyze with a {"type", "query"} body, plus /metrics
for Prometheus and /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			runner, err := audit.NewRunner(auditConfig(), logger)
			if err != nil {
				return err
			}
			srv := server.New(runner, server.Config{Addr: listenAddr, RateLimit: rateLimit, TrustProxy: trustProxy}, logger)
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", server.DefaultAddr, "address to listen on")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 1, "requests per second allowed per client (0 disables)")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "key rate limits by X-Forwarded-For (only behind a proxy that sets it)")
	return cmd
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
}

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the infected package registry",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known infected packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			out, cleanup, err := resolveOutput()
			if err != nil {
				return err
			}
			if cleanup != nil {
				defer cleanup()
			}
			return printRegistry(out, runner, category)
		},
	}
	list.Flags().StringVar(&category, "category", "", "only list packages of this category")

	check := &cobra.Command{
		Use:   "check <name[@version]>",
		Short: "Check a package against the registry without network access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			return checkPackage(cmd.OutOrStdout(), runner, args[0])
		},
	}

	cmd.AddCommand(list, check)
	return cmd
}

func kindList() string {
	kinds := analyzer.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newLogger() (*zap.Logger, error) {
	if quiet {
		return log.Quiet(), nil
	}
	return log.New(logEnv, verbose)
}

func auditConfig() audit.Config {
	return audit.Config{
		RegistryURL:       registryURL,
		GitHubAPI:         githubAPI,
		GitHubToken:       githubToken,
		Timeout:           timeout,
		MaxIterations:     maxIterations,
		SampleSize:        sampleSize,
		SampleConcurrency: sampleConcurrency,
		RegistryFile:      registryFile,
		InspectTarball:    inspectTarball,
		Concurrency:       concurrency,
	}
}

func newRunner() (*audit.Runner, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	return audit.NewRunner(auditConfig(), logger)
}

func resolveOutput() (io.Writer, func(), error) {
	if outputFile == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// runQuery analyzes one query and renders the report. display replaces the
// search query shown in the report when set.
func runQuery(ctx context.Context, kind analyzer.Kind, query, display string) error {
	runner, err := newRunner()
	if err != nil {
		return err
	}
	return runWith(ctx, runner, kind, query, display)
}

func runWith(ctx context.Context, runner *audit.Runner, kind analyzer.Kind, query, display string) error {
	report, err := runner.Run(ctx, kind, query)
	if err != nil {
		return err
	}
	if display != "" {
		report.SearchQuery = display
	}

	out, cleanup, err := resolveOutput()
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err := reporter.NewWithOptions(out, format, verbose).Render(report); err != nil {
		return err
	}
	return checkFailOn(report)
}

func runBatch(ctx context.Context, kind analyzer.Kind, queries []string) error {
	runner, err := newRunner()
	if err != nil {
		return err
	}
	reqs := make([]audit.Request, len(queries))
	for i, q := range queries {
		reqs[i] = audit.Request{Kind: kind, Query: q}
	}
	outcomes := runner.RunBatch(ctx, reqs)

	out, cleanup, err := resolveOutput()
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rep := reporter.NewWithOptions(out, format, verbose)

	var failed int
	var firstFail error
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", audit.DisplayQuery(kind, o.Request.Query), o.Err)
			continue
		}
		if err := rep.Render(o.Report); err != nil {
			return err
		}
		if firstFail == nil {
			firstFail = checkFailOn(o.Report)
		}
	}
	if firstFail != nil {
		return firstFail
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(outcomes))
	}
	return nil
}

func checkFailOn(report reporter.SecurityReport) error {
	violations := policy.Evaluate(report, runPolicy)
	if len(violations) == 0 {
		return nil
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}
	return &ExitError{
		Code:    2,
		Message: fmt.Sprintf("policy violated for %s (level %s):\n  %s", report.SearchQuery, report.Level, strings.Join(msgs, "\n  ")),
	}
}

func printRegistry(w io.Writer, runner *audit.Runner, category string) error {
	var pkgs []any
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if format != reporter.FormatJSON {
		fmt.Fprintln(tw, "PACKAGE\tCATEGORY\tVERSIONS")
	}
	for _, p := range runner.Registry().Packages() {
		if category != "" && p.Category != category {
			continue
		}
		if format == reporter.FormatJSON {
			pkgs = append(pkgs, p)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Category, strings.Join(p.Versions, ", "))
	}
	if format == reporter.FormatJSON {
		return writeJSON(w, pkgs)
	}
	return tw.Flush()
}

func checkPackage(w io.Writer, runner *audit.Runner, spec string) error {
	name, version, err := analyzer.ParsePackageSpec(spec)
	if err != nil {
		return err
	}
	check := runner.Registry().IsPackageInfected(name, version)
	if format == reporter.FormatJSON {
		if err := writeJSON(w, check); err != nil {
			return err
		}
	} else {
		switch {
		case check.Infected && version != "":
			fmt.Fprintf(w, "%s@%s is a known compromised release\n", name, version)
		case check.Infected:
			fmt.Fprintf(w, "%s has compromised releases: %s\n", name, strings.Join(check.InfectedVersions, ", "))
		case runner.Registry().Has(name):
			fmt.Fprintf(w, "%s@%s is not a known compromised release (compromised: %s)\n", name, version, strings.Join(check.InfectedVersions, ", "))
		default:
			fmt.Fprintf(w, "%s is not in the infected package registry\n", name)
		}
	}
	if check.Infected && runPolicy != nil && runPolicy.FailOn != "" {
		return &ExitError{Code: 2, Message: fmt.Sprintf("%s is infected", spec)}
	}
	return nil
}
