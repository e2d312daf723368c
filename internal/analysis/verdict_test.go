package analysis

import (
	"strings"
	"testing"
)

func TestCompromiseLevel(t *testing.T) {
	tests := []struct {
		name        string
		build       func() *Result
		level       Level
		compromised bool
	}{
		{"nil", func() *Result { return nil }, LevelSafe, false},
		{"clean", NewClean, LevelSafe, false},
		{"suspicious placeholder", NewSuspicious, LevelWarning, true},
		{"tokens and secrets", func() *Result {
			r := NewSuspicious()
			r.Modules.AWS = &SecretsModule{Secrets: []any{"x"}}
			return r
		}, LevelCritical, true},
		{"secrets only", func() *Result {
			r := NewClean()
			r.Modules.GCP = &SecretsModule{Secrets: []any{"x"}}
			return r
		}, LevelWarning, true},
		{"empty secrets", func() *Result {
			r := NewClean()
			r.Modules.GCP = &SecretsModule{Secrets: []any{}}
			return r
		}, LevelSafe, false},
		{"repo without payload", func() *Result {
			r := NewClean()
			r.Modules.GitHub = &GitHubModule{Authenticated: true, Token: Ptr(""), Username: map[string]any{}}
			return r
		}, LevelWarning, true},
		{"infected dependency", func() *Result {
			r := NewClean()
			r.Modules.NPM = &NPMModule{Suspicious: Ptr(true), InfectedPackages: []InfectedPackageInfo{{Name: "a"}}}
			return r
		}, LevelWarning, false},
		{"listed packages none flagged", func() *Result {
			r := NewClean()
			r.Modules.NPM = &NPMModule{Suspicious: Ptr(false), Packages: []string{"a"}}
			return r
		}, LevelSafe, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.build()
			if got := CompromiseLevel(r); got != tt.level {
				t.Errorf("CompromiseLevel() = %q, want %q", got, tt.level)
			}
			if got := IsCompromised(r); got != tt.compromised {
				t.Errorf("IsCompromised() = %v, want %v", got, tt.compromised)
			}
		})
	}
}

func TestRecommendations(t *testing.T) {
	if recs := Recommendations(NewClean()); recs != nil {
		t.Errorf("clean result got %v", recs)
	}

	r := NewSuspicious()
	r.Modules.AWS = &SecretsModule{Secrets: []any{"x"}}
	recs := Recommendations(r)
	if len(recs) != 4 {
		t.Fatalf("got %d recommendations: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "GitHub") || !strings.Contains(recs[1], "AWS") {
		t.Errorf("unexpected order: %v", recs)
	}

	hist := NewClean()
	hist.Modules.NPM = &NPMModule{
		HasInfectedHistory: Ptr(true),
		InfectedPackages:   []InfectedPackageInfo{{Name: "ngx-bootstrap"}},
	}
	recs = Recommendations(hist)
	if !strings.Contains(recs[0], "Pin ngx-bootstrap") {
		t.Errorf("history recommendation missing: %v", recs)
	}
}
