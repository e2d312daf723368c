package intelligence

import (
	"sort"
	"strings"
)

// IsPackageInfected looks name up in the registry. With an empty version the
// package counts as infected whenever it is listed at all. With a version, only
// an exact string match against the known bad versions counts; no semver range
// comparison is done.
func (r *Registry) IsPackageInfected(name, version string) InfectionCheck {
	pkg, ok := r.Lookup(name)
	if !ok {
		return InfectionCheck{}
	}
	if version == "" {
		return InfectionCheck{Infected: true, InfectedVersions: pkg.Versions}
	}
	hit := pkg.HasVersion(version)
	return InfectionCheck{
		Infected:         hit,
		InfectedVersions: pkg.Versions,
		SpecificVersion:  hit,
	}
}

// FindInfectedPackagesInText returns every entry whose name occurs literally
// in text. There is no word-boundary check, so a listed name embedded in a
// longer identifier also matches.
func (r *Registry) FindInfectedPackagesInText(text string) []InfectedPackage {
	var found []InfectedPackage
	for _, p := range r.packages {
		if strings.Contains(text, p.Name) {
			found = append(found, clonePackage(p))
		}
	}
	return found
}

// CheckMalwareIndicators scans an environment snapshot for the worm's
// signatures and for npm_package_* variables naming infected packages. Keys
// are visited in sorted order; repeated hits are reported each time.
func (r *Registry) CheckMalwareIndicators(env map[string]string) MalwareCheck {
	var indicators []string

	if script, ok := env["npm_lifecycle_script"]; ok && r.indicators.LifecycleScript != "" && script == r.indicators.LifecycleScript {
		indicators = append(indicators, "Malicious lifecycle script detected")
	}

	bundleHash := strings.ToLower(r.indicators.BundleHash)
	webhook := strings.ToLower(r.indicators.WebhookEndpoint)

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.ToLower(env[key])

		if bundleHash != "" && strings.Contains(value, bundleHash) {
			indicators = append(indicators, "Malicious bundle.js hash detected")
		}
		if webhook != "" && strings.Contains(value, webhook) {
			indicators = append(indicators, "Data exfiltration endpoint detected")
		}

		isName := strings.Contains(key, "npm_package_name")
		isResolved := strings.Contains(key, "npm_package_resolved")
		if !isName && !isResolved {
			continue
		}
		for _, p := range r.packages {
			lname := strings.ToLower(p.Name)
			if isName && value == lname {
				indicators = append(indicators, "Infected package detected: "+p.Name)
			}
			if isResolved && strings.Contains(value, lname) {
				indicators = append(indicators, "Infected package in resolved URL: "+p.Name)
			}
		}
	}

	return MalwareCheck{
		HasMalware: len(indicators) > 0,
		Indicators: indicators,
	}
}

// ScanText reports which of the three signatures occur in text,
// case-insensitively. It is used on free-form registry metadata.
func (r *Registry) ScanText(text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	if sig := strings.ToLower(r.indicators.BundleHash); sig != "" && strings.Contains(lower, sig) {
		hits = append(hits, "Malicious bundle.js hash referenced: "+r.indicators.BundleHash)
	}
	if sig := strings.ToLower(r.indicators.WebhookEndpoint); sig != "" && strings.Contains(lower, sig) {
		hits = append(hits, "Data exfiltration endpoint referenced: "+r.indicators.WebhookEndpoint)
	}
	if sig := strings.ToLower(r.indicators.LifecycleScript); sig != "" && strings.Contains(lower, sig) {
		hits = append(hits, "Malicious lifecycle script referenced: "+r.indicators.LifecycleScript)
	}
	return hits
}
