package analysis

import (
	"fmt"
	"strings"
)

// Level grades how badly a result indicates compromise.
type Level string

const (
	LevelSafe     Level = "safe"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// IsCompromised reports whether the result shows stolen credentials: an
// authenticated GitHub or npm session, or any cloud secrets.
func IsCompromised(r *Result) bool {
	if r == nil {
		return false
	}
	m := r.Modules
	return (m.GitHub != nil && m.GitHub.Authenticated) ||
		(m.NPM != nil && m.NPM.Authenticated) ||
		(m.AWS != nil && len(m.AWS.Secrets) > 0) ||
		(m.GCP != nil && len(m.GCP.Secrets) > 0)
}

// Flagged reports whether the npm module carries any package-level evidence:
// suspicious packages, known infected packages or versions, or indicators.
func Flagged(r *Result) bool {
	if r == nil || r.Modules.NPM == nil {
		return false
	}
	n := r.Modules.NPM
	return n.IsSuspicious() || n.InfectedHistory() ||
		len(n.InfectedPackages) > 0 || len(n.SuspiciousPackages) > 0 ||
		len(n.MalwareIndicators) > 0
}

// CompromiseLevel is critical when both tokens and cloud secrets leaked,
// warning when either did or when any package evidence was found, and safe
// otherwise.
func CompromiseLevel(r *Result) Level {
	if r == nil {
		return LevelSafe
	}
	m := r.Modules
	hasTokens := (m.GitHub != nil && m.GitHub.Token != nil && *m.GitHub.Token != "") ||
		(m.NPM != nil && m.NPM.Authenticated)
	hasSecrets := (m.AWS != nil && len(m.AWS.Secrets) > 0) ||
		(m.GCP != nil && len(m.GCP.Secrets) > 0)

	switch {
	case hasTokens && hasSecrets:
		return LevelCritical
	case hasTokens || hasSecrets:
		return LevelWarning
	case IsCompromised(r) || Flagged(r):
		return LevelWarning
	}
	return LevelSafe
}

// Recommendations lists remediation steps. It is empty for a clean result.
func Recommendations(r *Result) []string {
	if !IsCompromised(r) && !Flagged(r) {
		return nil
	}
	m := r.Modules
	var recs []string

	if m.GitHub != nil && m.GitHub.Authenticated {
		recs = append(recs, "Revoke all GitHub tokens and change your password immediately")
	}
	if m.NPM != nil && m.NPM.Authenticated {
		recs = append(recs, "Change your NPM password and revoke all access tokens")
	}
	if m.AWS != nil && len(m.AWS.Secrets) > 0 {
		recs = append(recs, "Rotate all AWS credentials and review access logs")
	}
	if m.GCP != nil && len(m.GCP.Secrets) > 0 {
		recs = append(recs, "Rotate all GCP credentials and review access logs")
	}

	if n := m.NPM; n != nil {
		var active, history []string
		for _, p := range n.InfectedPackages {
			if n.InfectedHistory() {
				history = append(history, p.Name)
			} else {
				active = append(active, p.Name)
			}
		}
		if len(active) > 0 {
			recs = append(recs, fmt.Sprintf("Remove infected packages and reinstall from a clean lockfile: %s", strings.Join(active, ", ")))
		}
		if len(history) > 0 {
			recs = append(recs, fmt.Sprintf("Pin %s to a version outside the known compromised releases", strings.Join(history, ", ")))
		}
		if len(n.MalwareIndicators) > 0 {
			recs = append(recs, "Treat the host as compromised: malware indicators were found")
		}
	}

	recs = append(recs,
		"Run a full security scan on your development environment",
		"Check for unauthorized repositories or packages in your accounts",
	)
	return recs
}
