package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/policy"
	"github.com/xful-bep/crysknife/internal/reporter"
)

type configFile struct {
	Registry          string   `yaml:"registry"`
	GitHubAPI         string   `yaml:"github-api"`
	GitHubToken       string   `yaml:"github-token"`
	Format            string   `yaml:"format"`
	Timeout           int      `yaml:"timeout"`
	MaxIterations     int      `yaml:"max-iterations"`
	SampleSize        int      `yaml:"sample-size"`
	SampleConcurrency int      `yaml:"sample-concurrency"`
	RegistryFile      string   `yaml:"registry-file"`
	InspectTarball    bool     `yaml:"inspect-tarball"`
	Concurrency       int      `yaml:"concurrency"`
	LogEnv            string   `yaml:"log-env"`
	Verbose           bool     `yaml:"verbose"`
	Quiet             bool     `yaml:"quiet"`
	FailOnCompromise  bool     `yaml:"fail-on-compromise"`
	FailOn            string   `yaml:"fail-on"`
	BannedPackages    []string `yaml:"banned-packages"`
	RequiredScopes    []string `yaml:"required-scopes"`
	Listen            string   `yaml:"listen"`
	RateLimit         float64  `yaml:"rate-limit"`
	TrustProxy        bool     `yaml:"trust-proxy"`
}

// loadConfiguration layers the config file and CRYSKNIFE_* variables under
// the command line: flag > env > file > default.
func loadConfiguration(cmd *cobra.Command) error {
	var requiredScopes []string
	if cfgPath := findConfigFile(); cfgPath != "" {
		cfg, err := loadConfigFile(cfgPath)
		if err != nil {
			return err
		}
		applyConfig(cmd, cfg)
		if cfg != nil {
			requiredScopes = cfg.RequiredScopes
		}
	}
	resolveConfig(cmd)

	p := &policy.Policy{BannedPackages: bannedPackages, RequiredScopes: requiredScopes}
	switch {
	case failOn != "":
		level, err := policy.ParseLevel(failOn)
		if err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
		p.FailOn = level
	case failOnCompromise:
		p.FailOn = analysis.LevelWarning
	}
	runPolicy = p

	if quiet && verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}
	if !reporter.ValidFormat(format) {
		return fmt.Errorf("invalid format %q: must be one of %v", format, reporter.Formats())
	}
	if timeout < 0 || maxIterations < 0 {
		return fmt.Errorf("--timeout and --max-iterations must not be negative")
	}
	return nil
}

func loadConfigFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv("CRYSKNIFE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(".crysknife.yaml"); err == nil {
		return ".crysknife.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", "crysknife", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func applyConfig(cmd *cobra.Command, cfg *configFile) {
	if cfg == nil {
		return
	}
	setString := func(flag, v string, target *string) {
		if v != "" && !flagChanged(cmd, flag) {
			*target = v
		}
	}
	setInt := func(flag string, v int, target *int) {
		if v != 0 && !flagChanged(cmd, flag) {
			*target = v
		}
	}
	setBool := func(flag string, v bool, target *bool) {
		if v && !flagChanged(cmd, flag) {
			*target = true
		}
	}

	setString("registry", cfg.Registry, &registryURL)
	setString("github-api", cfg.GitHubAPI, &githubAPI)
	setString("github-token", cfg.GitHubToken, &githubToken)
	setString("format", cfg.Format, &format)
	setString("registry-file", cfg.RegistryFile, &registryFile)
	setString("log-env", cfg.LogEnv, &logEnv)
	setString("listen", cfg.Listen, &listenAddr)
	setString("fail-on", cfg.FailOn, &failOn)
	if len(cfg.BannedPackages) > 0 && !flagChanged(cmd, "ban") {
		bannedPackages = cfg.BannedPackages
	}
	setInt("timeout", cfg.Timeout, &timeout)
	setInt("max-iterations", cfg.MaxIterations, &maxIterations)
	setInt("sample-size", cfg.SampleSize, &sampleSize)
	setInt("sample-concurrency", cfg.SampleConcurrency, &sampleConcurrency)
	setInt("concurrency", cfg.Concurrency, &concurrency)
	setBool("inspect-tarball", cfg.InspectTarball, &inspectTarball)
	setBool("verbose", cfg.Verbose, &verbose)
	setBool("quiet", cfg.Quiet, &quiet)
	setBool("fail-on-compromise", cfg.FailOnCompromise, &failOnCompromise)
	if cfg.RateLimit != 0 && !flagChanged(cmd, "rate-limit") {
		rateLimit = cfg.RateLimit
	}
	setBool("trust-proxy", cfg.TrustProxy, &trustProxy)
}

func resolveConfig(cmd *cobra.Command) {
	resolveStringEnv(cmd, "registry", "CRYSKNIFE_REGISTRY", &registryURL)
	resolveStringEnv(cmd, "github-api", "CRYSKNIFE_GITHUB_API", &githubAPI)
	resolveStringEnv(cmd, "github-token", "GITHUB_TOKEN", &githubToken)
	resolveStringEnv(cmd, "github-token", "CRYSKNIFE_GITHUB_TOKEN", &githubToken)
	resolveStringEnv(cmd, "format", "CRYSKNIFE_FORMAT", &format)
	resolveStringEnv(cmd, "registry-file", "CRYSKNIFE_REGISTRY_FILE", &registryFile)
	resolveStringEnv(cmd, "log-env", "CRYSKNIFE_LOG_ENV", &logEnv)
	resolveStringEnv(cmd, "listen", "CRYSKNIFE_LISTEN", &listenAddr)
	resolveIntEnv(cmd, "timeout", "CRYSKNIFE_TIMEOUT", &timeout)
	resolveIntEnv(cmd, "max-iterations", "CRYSKNIFE_MAX_ITERATIONS", &maxIterations)
	resolveIntEnv(cmd, "sample-size", "CRYSKNIFE_SAMPLE_SIZE", &sampleSize)
	resolveIntEnv(cmd, "sample-concurrency", "CRYSKNIFE_SAMPLE_CONCURRENCY", &sampleConcurrency)
	resolveIntEnv(cmd, "concurrency", "CRYSKNIFE_CONCURRENCY", &concurrency)
	resolveBoolEnv(cmd, "inspect-tarball", "CRYSKNIFE_INSPECT_TARBALL", &inspectTarball)
	resolveBoolEnv(cmd, "verbose", "CRYSKNIFE_VERBOSE", &verbose)
	resolveBoolEnv(cmd, "quiet", "CRYSKNIFE_QUIET", &quiet)
	resolveBoolEnv(cmd, "fail-on-compromise", "CRYSKNIFE_FAIL_ON_COMPROMISE", &failOnCompromise)
	resolveStringEnv(cmd, "fail-on", "CRYSKNIFE_FAIL_ON", &failOn)
	resolveFloatEnv(cmd, "rate-limit", "CRYSKNIFE_RATE_LIMIT", &rateLimit)
	resolveBoolEnv(cmd, "trust-proxy", "CRYSKNIFE_TRUST_PROXY", &trustProxy)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func resolveStringEnv(cmd *cobra.Command, flagName, envKey string, target *string) {
	if flagChanged(cmd, flagName) {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		*target = v
	}
}

func resolveIntEnv(cmd *cobra.Command, flagName, envKey string, target *int) {
	if flagChanged(cmd, flagName) {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func resolveBoolEnv(cmd *cobra.Command, flagName, envKey string, target *bool) {
	if flagChanged(cmd, flagName) {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

func resolveFloatEnv(cmd *cobra.Command, flagName, envKey string, target *float64) {
	if flagChanged(cmd, flagName) {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
