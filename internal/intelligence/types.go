package intelligence

// InfectedPackage is a known-compromised npm package and every version of it
// that shipped the worm payload.
type InfectedPackage struct {
	Name     string   `json:"name" yaml:"name"`
	Versions []string `json:"versions" yaml:"versions"`
	Category string   `json:"category" yaml:"category"`
}

// HasVersion reports whether version is one of the known bad versions.
// Versions are compared as exact strings.
func (p InfectedPackage) HasVersion(version string) bool {
	for _, v := range p.Versions {
		if v == version {
			return true
		}
	}
	return false
}

// Indicators are the malware signatures left behind by the worm.
type Indicators struct {
	// BundleHash is the SHA-256 of the bundle.js payload.
	BundleHash string `json:"bundleHash" yaml:"bundle-hash"`
	// WebhookEndpoint is the exfiltration endpoint the payload posts to.
	WebhookEndpoint string `json:"webhookEndpoint" yaml:"webhook-endpoint"`
	// LifecycleScript is the npm lifecycle script that launches the payload.
	LifecycleScript string `json:"lifecycleScript" yaml:"lifecycle-script"`
}

// InfectionCheck is the outcome of a registry lookup for one package.
type InfectionCheck struct {
	Infected         bool     `json:"infected"`
	InfectedVersions []string `json:"infectedVersions,omitempty"`
	SpecificVersion  bool     `json:"specificVersion,omitempty"`
}

// MalwareCheck is the outcome of scanning an environment for indicators.
type MalwareCheck struct {
	HasMalware bool     `json:"hasMalware"`
	Indicators []string `json:"indicators"`
}
