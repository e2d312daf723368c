package reporter

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/package-url/packageurl-go"

	"github.com/xful-bep/crysknife/internal/analysis"
)

// SecurityReport is a sanitized analysis together with its verdict.
type SecurityReport struct {
	ID              string           `json:"id,omitempty"`
	Timestamp       string           `json:"timestamp"`
	SearchType      string           `json:"searchType"`
	SearchQuery     string           `json:"searchQuery"`
	Analysis        *analysis.Result `json:"analysis"`
	IsCompromised   bool             `json:"isCompromised"`
	Level           analysis.Level   `json:"level"`
	Recommendations []string         `json:"recommendations"`
	// Dependencies lists every package a package-json query declares,
	// infected or not.
	Dependencies []string `json:"dependencies,omitempty"`
}

// NewSecurityReport grades res. res must already be sanitized.
func NewSecurityReport(searchType, query string, res *analysis.Result, at time.Time) SecurityReport {
	recs := analysis.Recommendations(res)
	if recs == nil {
		recs = []string{}
	}
	return SecurityReport{
		Timestamp:       at.UTC().Format(time.RFC3339),
		SearchType:      searchType,
		SearchQuery:     query,
		Analysis:        res,
		IsCompromised:   analysis.IsCompromised(res),
		Level:           analysis.CompromiseLevel(res),
		Recommendations: recs,
	}
}

// Severity ranks a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "info"
	}
}

// Rule identifiers, also used as SARIF rule IDs.
const (
	RuleCredentialExposure = "credential-exposure"
	RuleCloudSecrets       = "cloud-secrets"
	RuleInfectedPackage    = "infected-package"
	RuleInfectedHistory    = "infected-history"
	RuleMalwareIndicator   = "malware-indicator"
	RuleSecretScanner      = "secret-scanner"
)

// Finding is one piece of evidence extracted from a result for display.
type Finding struct {
	Rule     string   `json:"rule"`
	Module   string   `json:"module"`
	Severity Severity `json:"-"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail,omitempty"`
	PURL     string   `json:"purl,omitempty"`
}

// Findings lists the evidence in res, most severe first.
func Findings(res *analysis.Result) []Finding {
	if res == nil {
		return nil
	}
	var out []Finding
	m := res.Modules

	if gh := m.GitHub; gh != nil && gh.Authenticated {
		f := Finding{Rule: RuleCredentialExposure, Module: "github", Severity: SeverityHigh, Title: "GitHub account exposed"}
		if gh.Token != nil && *gh.Token != "" {
			f.Severity = SeverityCritical
			f.Title = "GitHub token exposed"
			f.Detail = "token " + *gh.Token
		}
		if login, ok := gh.Username["login"]; ok {
			f.Detail = strings.TrimSpace(f.Detail + " (login " + analysis.Stringify(login) + ")")
		}
		out = append(out, f)
	}

	if npm := m.NPM; npm != nil {
		if npm.Authenticated {
			f := Finding{Rule: RuleCredentialExposure, Module: "npm", Severity: SeverityHigh, Title: "npm account exposed"}
			if npm.Username != nil && *npm.Username != "" {
				f.Detail = "user " + *npm.Username
			}
			out = append(out, f)
		}
		for _, p := range npm.InfectedPackages {
			out = append(out, infectedFinding(p))
		}
		for _, ind := range npm.MalwareIndicators {
			out = append(out, Finding{Rule: RuleMalwareIndicator, Module: "npm", Severity: SeverityHigh, Title: "Malware indicator", Detail: ind})
		}
	}

	for _, s := range []struct {
		name   string
		module *analysis.SecretsModule
	}{{"aws", m.AWS}, {"gcp", m.GCP}} {
		if s.module == nil || len(s.module.Secrets) == 0 {
			continue
		}
		out = append(out, Finding{
			Rule:     RuleCloudSecrets,
			Module:   s.name,
			Severity: SeverityCritical,
			Title:    strings.ToUpper(s.name) + " secrets exposed",
			Detail:   fmt.Sprintf("%d secret%s", len(s.module.Secrets), plural(len(s.module.Secrets))),
		})
	}

	if th := m.TruffleHog; th != nil && (th.Available || th.Installed) {
		f := Finding{Rule: RuleSecretScanner, Module: "truffleHog", Severity: SeverityMedium, Title: "Secret scanner ran on the host"}
		if th.Version != nil {
			f.Detail = "trufflehog " + *th.Version
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

// infectedFinding grades a registry hit. A detected version outside the
// known-bad list means the package only has a compromised history.
func infectedFinding(p analysis.InfectedPackageInfo) Finding {
	f := Finding{
		Rule:     RuleInfectedPackage,
		Module:   "npm",
		Severity: SeverityCritical,
		Title:    "Infected package " + p.Name,
		Detail:   "compromised versions: " + strings.Join(p.Versions, ", "),
		PURL:     PackageURL(p.Name, p.DetectedVersion),
	}
	if p.DetectedVersion != "" && !slices.Contains(p.Versions, p.DetectedVersion) {
		f.Rule = RuleInfectedHistory
		f.Severity = SeverityMedium
		f.Title = "Previously compromised package " + p.Name
		f.Detail = fmt.Sprintf("version %s is clean; %s", p.DetectedVersion, f.Detail)
	}
	return f
}

// PackageURL renders an npm package as a purl. Scoped names put the scope in
// the namespace.
func PackageURL(name, version string) string {
	namespace := ""
	if strings.HasPrefix(name, "@") {
		if i := strings.IndexByte(name, '/'); i > 0 {
			namespace, name = name[:i], name[i+1:]
		}
	}
	return packageurl.NewPackageURL(packageurl.TypeNPM, namespace, name, version, nil, "").ToString()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
