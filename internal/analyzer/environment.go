package analyzer

import (
	"encoding/json"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/intelligence"
)

// EnvironmentAnalyzer inspects leaked environment data. It backs the
// file-upload and base64-input kinds and never touches the network.
type EnvironmentAnalyzer struct {
	reg    *intelligence.Registry
	logger *zap.Logger
}

func NewEnvironmentAnalyzer(reg *intelligence.Registry, logger *zap.Logger) *EnvironmentAnalyzer {
	return &EnvironmentAnalyzer{reg: reg, logger: logger}
}

// AnalyzeDocument inspects a parsed JSON document. An object with system,
// environment and modules blocks is passed through and its environment
// scanned for indicators and infected packages. Anything else, including a
// document the decoder accepted with only two of the blocks, is scanned as
// plain text.
func (a *EnvironmentAnalyzer) AnalyzeDocument(doc any) *analysis.Result {
	if m, ok := doc.(map[string]any); ok {
		if analysis.IsFullLeak(m) {
			return a.analyzeLeak(m)
		}
	}
	return a.analyzeText(doc)
}

func (a *EnvironmentAnalyzer) analyzeLeak(doc map[string]any) *analysis.Result {
	res, err := analysis.Payload(doc).Result()
	if err != nil {
		a.logger.Warn("some leak modules have an unexpected shape", zap.Error(err))
	}
	env := res.Environment

	malware := a.reg.CheckMalwareIndicators(env)

	var infected []analysis.InfectedPackageInfo
	seen := make(map[string]bool)
	add := func(info analysis.InfectedPackageInfo) {
		if !seen[info.Name] {
			seen[info.Name] = true
			infected = append(infected, info)
		}
	}

	pkgName := env["npm_package_name"]
	pkgVersion := env["npm_package_version"]
	if pkgName != "" {
		if check := a.reg.IsPackageInfected(pkgName, pkgVersion); check.Infected {
			add(infectedInfo(a.reg, pkgName, pkgVersion))
		}
	}
	if resolved := env["npm_package_resolved"]; resolved != "" {
		for _, p := range a.reg.FindInfectedPackagesInText(resolved) {
			add(packageInfo(p))
		}
	}
	if text, err := json.Marshal(env); err == nil {
		for _, p := range a.reg.FindInfectedPackagesInText(string(text)) {
			add(packageInfo(p))
		}
	}

	if len(infected) == 0 && !malware.HasMalware {
		return res
	}

	username := env["USER"]
	if username == "" {
		username = env["USERNAME"]
	}
	reasons := append([]string(nil), malware.Indicators...)
	for _, p := range infected {
		if reason := "Infected package detected: " + p.Name; !slices.Contains(reasons, reason) {
			reasons = append(reasons, reason)
		}
	}

	npm := res.Modules.NPM
	if npm == nil {
		npm = &analysis.NPMModule{}
		res.Modules.NPM = npm
	}
	npm.Authenticated = npm.Authenticated || pkgName != ""
	npm.Username = analysis.Ptr(username)
	npm.Suspicious = analysis.Ptr(true)
	npm.SuspiciousReasons = append(npm.SuspiciousReasons, reasons...)
	npm.InfectedPackages = append(npm.InfectedPackages, infected...)
	npm.MalwareIndicators = append(npm.MalwareIndicators, malware.Indicators...)

	a.logger.Info("leak data flagged",
		zap.Int("infected_packages", len(infected)),
		zap.Int("indicators", len(malware.Indicators)),
	)
	return res
}

// analyzeText handles documents without the leak shape: registry names are
// searched in the serialized document, and top-level scalar fields are
// checked for indicators as if they were environment variables.
func (a *EnvironmentAnalyzer) analyzeText(doc any) *analysis.Result {
	res := analysis.NewClean()

	text, err := json.Marshal(doc)
	if err != nil {
		return res
	}
	found := a.reg.FindInfectedPackagesInText(string(text))

	scalars := make(map[string]string)
	if m, ok := doc.(map[string]any); ok {
		for k, v := range m {
			switch v.(type) {
			case string, bool, json.Number, float64:
				scalars[k] = analysis.Stringify(v)
			}
		}
	}
	indicators := a.reg.CheckMalwareIndicators(scalars).Indicators
	if len(indicators) == 0 {
		indicators = a.reg.ScanText(string(text))
	}

	if len(found) == 0 && len(indicators) == 0 {
		return res
	}

	reasons := append([]string(nil), indicators...)
	infected := make([]analysis.InfectedPackageInfo, 0, len(found))
	for _, p := range found {
		reasons = append(reasons, "Infected package found in data: "+p.Name)
		infected = append(infected, packageInfo(p))
	}
	// Sort reasons after the indicators for stable output.
	sort.Strings(reasons[len(indicators):])

	res.Modules.NPM = &analysis.NPMModule{
		Suspicious:        analysis.Ptr(true),
		SuspiciousReasons: reasons,
		InfectedPackages:  infected,
		MalwareIndicators: indicators,
	}
	return res
}

func packageInfo(p intelligence.InfectedPackage) analysis.InfectedPackageInfo {
	versions := p.Versions
	if versions == nil {
		versions = []string{}
	}
	return analysis.InfectedPackageInfo{Name: p.Name, Versions: versions, Category: p.Category}
}
