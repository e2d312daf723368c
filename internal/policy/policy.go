package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/reporter"
)

// Policy defines when a report should fail a run.
type Policy struct {
	// FailOn is the lowest level that fails. Empty never fails on level.
	FailOn         analysis.Level `yaml:"fail-on"`
	BannedPackages []string       `yaml:"banned-packages"` // explicit blocklist
	RequiredScopes []string       `yaml:"required-scopes"` // e.g. ["@myorg"]; only checked for package-json style reports
}

// Violation represents a policy violation.
type Violation struct {
	Rule        string
	Description string
	Package     string
}

func (v Violation) String() string {
	if v.Package == "" {
		return fmt.Sprintf("[%s] %s", v.Rule, v.Description)
	}
	return fmt.Sprintf("[%s] %s (%s)", v.Rule, v.Description, v.Package)
}

// ParseLevel accepts safe, warning and critical, case-insensitively.
func ParseLevel(s string) (analysis.Level, error) {
	l := analysis.Level(strings.ToLower(strings.TrimSpace(s)))
	if rank(l) < 0 {
		return "", fmt.Errorf("invalid level %q: must be one of safe, warning, critical", s)
	}
	return l, nil
}

func rank(l analysis.Level) int {
	switch l {
	case analysis.LevelSafe:
		return 0
	case analysis.LevelWarning:
		return 1
	case analysis.LevelCritical:
		return 2
	}
	return -1
}

// Empty reports whether p can never be violated.
func (p *Policy) Empty() bool {
	return p == nil || (p.FailOn == "" && len(p.BannedPackages) == 0 && len(p.RequiredScopes) == 0)
}

// Evaluate checks a report against the policy.
func Evaluate(report reporter.SecurityReport, p *Policy) []Violation {
	if p.Empty() {
		return nil
	}
	var violations []Violation

	// A fail-on of "safe" fails every run, matching the threshold semantics.
	if p.FailOn != "" && rank(report.Level) >= rank(p.FailOn) {
		violations = append(violations, Violation{
			Rule:        "fail-on",
			Description: fmt.Sprintf("Level %s reached the %s threshold", report.Level, p.FailOn),
		})
	}

	pkgs := slices.Clone(report.Dependencies)
	add := func(name string) {
		if !slices.Contains(pkgs, name) {
			pkgs = append(pkgs, name)
		}
	}
	if report.Analysis != nil && report.Analysis.Modules.NPM != nil {
		npm := report.Analysis.Modules.NPM
		for _, name := range npm.Packages {
			add(name)
		}
		for _, ip := range npm.InfectedPackages {
			add(ip.Name)
		}
	}

	for _, name := range pkgs {
		if slices.Contains(p.BannedPackages, name) {
			violations = append(violations, Violation{
				Rule:        "banned-package",
				Description: fmt.Sprintf("Package %q is explicitly banned", name),
				Package:     name,
			})
		}
		if len(p.RequiredScopes) > 0 && report.SearchType == "package-json" && !inScopes(name, p.RequiredScopes) {
			violations = append(violations, Violation{
				Rule:        "required-scope",
				Description: fmt.Sprintf("Package %q does not belong to required scopes: %v", name, p.RequiredScopes),
				Package:     name,
			})
		}
	}

	return violations
}

func inScopes(name string, scopes []string) bool {
	for _, scope := range scopes {
		if strings.HasPrefix(name, strings.TrimSuffix(scope, "/")+"/") {
			return true
		}
	}
	return false
}
