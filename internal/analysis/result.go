package analysis

import "sort"

const (
	// Unknown is the default for every system field.
	Unknown = "unknown"
	// Redacted replaces values too short to mask partially.
	Redacted = "***REDACTED***"
)

// System describes the victim machine of a leak payload, or the platform an
// analysis ran against (for example "npm" / "npm-registry").
type System struct {
	Platform             string `json:"platform"`
	Architecture         string `json:"architecture"`
	PlatformDetailed     string `json:"platformDetailed"`
	ArchitectureDetailed string `json:"architectureDetailed"`
}

// UnknownSystem returns a System with every field set to Unknown.
func UnknownSystem() System {
	return System{
		Platform:             Unknown,
		Architecture:         Unknown,
		PlatformDetailed:     Unknown,
		ArchitectureDetailed: Unknown,
	}
}

// Result is the canonical output of every analysis.
//
// A nil module pointer means the module was not evaluated or produced no
// evidence. A present module with false fields means it was evaluated and
// came back negative.
type Result struct {
	System      System            `json:"system"`
	Environment map[string]string `json:"environment"`
	Modules     Modules           `json:"modules"`
}

// Modules holds per-service evidence.
type Modules struct {
	GitHub     *GitHubModule     `json:"github,omitempty"`
	NPM        *NPMModule        `json:"npm,omitempty"`
	AWS        *SecretsModule    `json:"aws,omitempty"`
	GCP        *SecretsModule    `json:"gcp,omitempty"`
	TruffleHog *TruffleHogModule `json:"truffleHog,omitempty"`
}

// Names returns the keys of the present modules, sorted.
func (m Modules) Names() []string {
	var names []string
	if m.GitHub != nil {
		names = append(names, "github")
	}
	if m.NPM != nil {
		names = append(names, "npm")
	}
	if m.AWS != nil {
		names = append(names, "aws")
	}
	if m.GCP != nil {
		names = append(names, "gcp")
	}
	if m.TruffleHog != nil {
		names = append(names, "truffleHog")
	}
	sort.Strings(names)
	return names
}

// Empty reports whether no module is present.
func (m Modules) Empty() bool {
	return len(m.Names()) == 0
}

type GitHubModule struct {
	Authenticated bool           `json:"authenticated"`
	Token         *string        `json:"token,omitempty"`
	Username      map[string]any `json:"username"`
}

type NPMModule struct {
	Authenticated      bool                  `json:"authenticated"`
	Username           *string               `json:"username"`
	PackageName        string                `json:"packageName,omitempty"`
	DetectedVersion    string                `json:"detectedVersion,omitempty"`
	Suspicious         *bool                 `json:"suspicious,omitempty"`
	SuspiciousReasons  []string              `json:"suspiciousReasons,omitempty"`
	SuspiciousPackages []string              `json:"suspiciousPackages,omitempty"`
	Packages           []string              `json:"packages,omitempty"`
	InfectedPackages   []InfectedPackageInfo `json:"infectedPackages,omitempty"`
	MalwareIndicators  []string              `json:"malwareIndicators,omitempty"`
	HasInfectedHistory *bool                 `json:"hasInfectedHistory,omitempty"`
}

// IsSuspicious reports whether Suspicious is set and true.
func (n *NPMModule) IsSuspicious() bool {
	return n != nil && n.Suspicious != nil && *n.Suspicious
}

// InfectedHistory reports whether HasInfectedHistory is set and true.
func (n *NPMModule) InfectedHistory() bool {
	return n != nil && n.HasInfectedHistory != nil && *n.HasInfectedHistory
}

// InfectedPackageInfo is a registry entry as reported in a result.
// Versions is the full known-bad list; DetectedVersion is what was observed.
type InfectedPackageInfo struct {
	Name            string   `json:"name"`
	Versions        []string `json:"versions"`
	DetectedVersion string   `json:"detectedVersion,omitempty"`
	Category        string   `json:"category"`
}

type SecretsModule struct {
	Secrets []any `json:"secrets"`
}

// TruffleHogModule is the secret-scanner report embedded in leak payloads.
type TruffleHogModule struct {
	Available bool               `json:"available"`
	Installed bool               `json:"installed"`
	Version   *string            `json:"version"`
	Platform  TruffleHogPlatform `json:"platform"`
	Results   TruffleHogResults  `json:"results"`
}

type TruffleHogPlatform struct {
	Platform     string `json:"platform"`
	Architecture string `json:"architecture"`
}

type TruffleHogResults struct {
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	ExecutionTime float64 `json:"executionTime"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// NewClean returns the skeleton every analysis starts from.
func NewClean() *Result {
	return &Result{
		System:      UnknownSystem(),
		Environment: map[string]string{},
	}
}

// NewSuspicious is the placeholder for a GitHub account that hosts the
// exfiltration repository but whose payload could not be decoded.
func NewSuspicious() *Result {
	r := NewClean()
	r.Modules.GitHub = &GitHubModule{
		Authenticated: true,
		Token:         Ptr(Redacted),
		Username:      map[string]any{},
	}
	return r
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		System:      r.System,
		Environment: make(map[string]string, len(r.Environment)),
	}
	for k, v := range r.Environment {
		out.Environment[k] = v
	}

	m := r.Modules
	if m.GitHub != nil {
		gh := *m.GitHub
		if gh.Token != nil {
			gh.Token = Ptr(*gh.Token)
		}
		if gh.Username != nil {
			gh.Username = cloneValue(gh.Username).(map[string]any)
		}
		out.Modules.GitHub = &gh
	}
	if m.NPM != nil {
		out.Modules.NPM = m.NPM.clone()
	}
	if m.AWS != nil {
		out.Modules.AWS = &SecretsModule{Secrets: cloneSlice(m.AWS.Secrets)}
	}
	if m.GCP != nil {
		out.Modules.GCP = &SecretsModule{Secrets: cloneSlice(m.GCP.Secrets)}
	}
	if m.TruffleHog != nil {
		th := *m.TruffleHog
		if th.Version != nil {
			th.Version = Ptr(*th.Version)
		}
		out.Modules.TruffleHog = &th
	}
	return out
}

func (n *NPMModule) clone() *NPMModule {
	c := *n
	if n.Username != nil {
		c.Username = Ptr(*n.Username)
	}
	if n.Suspicious != nil {
		c.Suspicious = Ptr(*n.Suspicious)
	}
	if n.HasInfectedHistory != nil {
		c.HasInfectedHistory = Ptr(*n.HasInfectedHistory)
	}
	c.SuspiciousReasons = cloneStrings(n.SuspiciousReasons)
	c.SuspiciousPackages = cloneStrings(n.SuspiciousPackages)
	c.Packages = cloneStrings(n.Packages)
	c.MalwareIndicators = cloneStrings(n.MalwareIndicators)
	if n.InfectedPackages != nil {
		c.InfectedPackages = make([]InfectedPackageInfo, len(n.InfectedPackages))
		for i, p := range n.InfectedPackages {
			p.Versions = cloneStrings(p.Versions)
			c.InfectedPackages[i] = p
		}
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies the maps and slices produced by encoding/json.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		return cloneSlice(t)
	default:
		return v
	}
}
