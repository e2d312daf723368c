package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xful-bep/crysknife/internal/analysis"
)

func offlineDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	srv := unreachable(t)
	return newTestDispatcher(t, fixtureRegistry(t), srv.URL, srv.URL)
}

func TestPackageJSON(t *testing.T) {
	tests := []struct {
		name         string
		kind         Kind
		content      string
		wantReasons  []string
		wantPackages []string
	}{
		{
			name:    "range prefixes are stripped",
			kind:    KindPackageJSON,
			content: `{"name":"app","dependencies":{"angulartics2":"^14.1.2","left-pad":"1.3.0"},"devDependencies":{"evil-pkg":"~1.0.1"}}`,
			wantReasons: []string{
				"Infected package in dependencies: angulartics2@14.1.2",
				"Infected package in dependencies: evil-pkg@1.0.1",
			},
			wantPackages: []string{"angulartics2", "evil-pkg", "left-pad"},
		},
		{
			name:    "clean versions",
			kind:    KindPackageJSON,
			content: `{"dependencies":{"angulartics2":"15.0.0"},"peerDependencies":{"evil-pkg":">=2.0.0"}}`,
		},
		{
			name:    "clean manifest",
			kind:    KindPackageJSON,
			content: `{"name":"app","dependencies":{"left-pad":"^1.3.0"}}`,
		},
		{
			name:    "later fields override earlier ones",
			kind:    KindPackageJSON,
			content: `{"dependencies":{"evil-pkg":"1.0.1"},"optionalDependencies":{"evil-pkg":"3.0.0"}}`,
		},
		{
			name:    "clean upload routed by name field",
			kind:    KindFileUpload,
			content: `{"name":"app","dependencies":{"left-pad":"1.3.0"}}`,
		},
		{
			name:         "upload routed by name field",
			kind:         KindFileUpload,
			content:      `{"name":"app","devDependencies":{"@scope/bad":"2.0.0"}}`,
			wantReasons:  []string{"Infected package in dependencies: @scope/bad@2.0.0"},
			wantPackages: []string{"@scope/bad"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := offlineDispatcher(t).Analyze(context.Background(), tt.kind, tt.content)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if res.System.PlatformDetailed != "package-json" {
				t.Errorf("PlatformDetailed = %q", res.System.PlatformDetailed)
			}
			if len(tt.wantReasons) == 0 {
				if !res.Modules.Empty() {
					t.Errorf("expected no modules, got %v", res.Modules.Names())
				}
				if analysis.CompromiseLevel(res) != analysis.LevelSafe {
					t.Errorf("level = %s, want safe", analysis.CompromiseLevel(res))
				}
				return
			}
			npm := res.Modules.NPM
			if npm == nil {
				t.Fatal("expected npm module")
			}
			if !npm.IsSuspicious() {
				t.Error("expected suspicious npm module")
			}
			if !reflect.DeepEqual(npm.SuspiciousReasons, tt.wantReasons) {
				t.Errorf("SuspiciousReasons = %q, want %q", npm.SuspiciousReasons, tt.wantReasons)
			}
			if !reflect.DeepEqual(npm.Packages, tt.wantPackages) {
				t.Errorf("Packages = %v, want %v", npm.Packages, tt.wantPackages)
			}
			if len(npm.InfectedPackages) != len(tt.wantReasons) {
				t.Errorf("InfectedPackages = %+v", npm.InfectedPackages)
			}
		})
	}
}

func TestManifestPackages(t *testing.T) {
	got := ManifestPackages(`{"dependencies":{"left-pad":"1.3.0"},"devDependencies":{"@ctrl/tinycolor":"^4.1.0"},"peerDependencies":{"left-pad":"1"}}`)
	if want := []string{"@ctrl/tinycolor", "left-pad"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ManifestPackages() = %v, want %v", got, want)
	}
	for _, content := range []string{`not json`, `[1]`, `"x"`} {
		if got := ManifestPackages(content); got != nil {
			t.Errorf("ManifestPackages(%q) = %v, want nil", content, got)
		}
	}
}

func TestCleanVersion(t *testing.T) {
	tests := map[string]string{
		"^14.1.2":  "14.1.2",
		"~1.0.1":   "1.0.1",
		">=2.0.0":  "2.0.0",
		"<= 3.0.0": "3.0.0",
		" 1.0.0 ":  "1.0.0",
		"latest":   "latest",
	}
	for in, want := range tests {
		if got := CleanVersion(in); got != want {
			t.Errorf("CleanVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		kind    Kind
		content string
	}{
		{KindFileUpload, `{"name":`},
		{KindPackageJSON, `not json`},
		{KindPackageJSON, `[1,2,3]`},
		{KindFileUpload, `{"a":1} trailing`},
	}

	for _, tt := range tests {
		_, err := offlineDispatcher(t).Analyze(context.Background(), tt.kind, tt.content)
		var mie *MalformedInputError
		if !errors.As(err, &mie) {
			t.Errorf("%s %q: expected *MalformedInputError, got %v", tt.kind, tt.content, err)
			continue
		}
		if !strings.HasPrefix(err.Error(), "invalid JSON format") {
			t.Errorf("error = %q", err)
		}
	}
}

const infectedLeak = `{
  "system": {"platform": "linux", "architecture": "x64"},
  "environment": {
    "USER": "runner",
    "npm_package_name": "evil-pkg",
    "npm_package_version": "1.0.1",
    "npm_lifecycle_script": "node bundle.js"
  },
  "modules": {"github": {"authenticated": true, "token": "ghp_0123456789abcdef", "username": {"login": "runner"}}}
}`

func TestFileUpload_LeakData(t *testing.T) {
	res, err := offlineDispatcher(t).Analyze(context.Background(), KindFileUpload, infectedLeak)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.System.Platform != "linux" || res.System.ArchitectureDetailed != "unknown" {
		t.Errorf("System = %+v", res.System)
	}
	if res.Modules.GitHub == nil || *res.Modules.GitHub.Token != "ghp_0123456789abcdef" {
		t.Errorf("GitHub module not passed through: %+v", res.Modules.GitHub)
	}

	npm := res.Modules.NPM
	if npm == nil || !npm.IsSuspicious() || !npm.Authenticated {
		t.Fatalf("expected suspicious authenticated npm module, got %+v", npm)
	}
	if npm.Username == nil || *npm.Username != "runner" {
		t.Errorf("Username = %v", npm.Username)
	}
	wantIndicators := []string{"Malicious lifecycle script detected", "Infected package detected: evil-pkg"}
	if !reflect.DeepEqual(npm.MalwareIndicators, wantIndicators) {
		t.Errorf("MalwareIndicators = %q, want %q", npm.MalwareIndicators, wantIndicators)
	}
	if !reflect.DeepEqual(npm.SuspiciousReasons, wantIndicators) {
		t.Errorf("SuspiciousReasons = %q, want %q", npm.SuspiciousReasons, wantIndicators)
	}
	want := []analysis.InfectedPackageInfo{{Name: "evil-pkg", Versions: []string{"1.0.1", "1.0.2"}, DetectedVersion: "1.0.1", Category: "misc"}}
	if !reflect.DeepEqual(npm.InfectedPackages, want) {
		t.Errorf("InfectedPackages = %+v, want %+v", npm.InfectedPackages, want)
	}
}

func TestFileUpload_CleanLeakPassesThrough(t *testing.T) {
	content := `{"system":{"platform":"darwin"},"environment":{"HOME":"/Users/x"},"modules":{}}`
	res, err := offlineDispatcher(t).Analyze(context.Background(), KindFileUpload, content)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.System.Platform != "darwin" || res.Environment["HOME"] != "/Users/x" {
		t.Errorf("result = %+v", res)
	}
	if !res.Modules.Empty() {
		t.Errorf("expected no modules, got %v", res.Modules.Names())
	}
}

func TestFileUpload_PartialLeakIsScannedAsText(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no modules", `{"system":{"platform":"linux"},"environment":{"npm_package_name":"evil-pkg","USER":"runner"}}`},
		{"no environment", `{"system":{"platform":"linux"},"modules":{"npm":{"packageName":"evil-pkg"}}}`},
		{"empty system", `{"system":"","environment":{"npm_package_name":"evil-pkg"},"modules":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := offlineDispatcher(t).Analyze(context.Background(), KindFileUpload, tt.content)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if res.System != analysis.UnknownSystem() || len(res.Environment) != 0 {
				t.Errorf("partial leak was passed through: System = %+v, Environment = %v", res.System, res.Environment)
			}
			npm := res.Modules.NPM
			if npm == nil || !npm.IsSuspicious() || npm.Authenticated {
				t.Fatalf("expected an unauthenticated suspicious npm module, got %+v", npm)
			}
			if want := []string{"Infected package found in data: evil-pkg"}; !reflect.DeepEqual(npm.SuspiciousReasons, want) {
				t.Errorf("SuspiciousReasons = %q, want %q", npm.SuspiciousReasons, want)
			}
		})
	}
}

func TestFileUpload_UnstructuredData(t *testing.T) {
	content := `{"note":"lockfile pulls @scope/bad","hook":"https://webhook.site/abc-123"}`
	res, err := offlineDispatcher(t).Analyze(context.Background(), KindFileUpload, content)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.System != analysis.UnknownSystem() {
		t.Errorf("System = %+v", res.System)
	}
	npm := res.Modules.NPM
	if npm == nil || !npm.IsSuspicious() {
		t.Fatalf("expected suspicious npm module, got %+v", npm)
	}
	if npm.Authenticated || npm.Username != nil {
		t.Errorf("unstructured data must not claim an account: %+v", npm)
	}
	want := []string{"Data exfiltration endpoint detected", "Infected package found in data: @scope/bad"}
	if !reflect.DeepEqual(npm.SuspiciousReasons, want) {
		t.Errorf("SuspiciousReasons = %q, want %q", npm.SuspiciousReasons, want)
	}

	res, err = offlineDispatcher(t).Analyze(context.Background(), KindFileUpload, `[1,2,3]`)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !res.Modules.Empty() {
		t.Errorf("expected clean result for unrelated data, got %v", res.Modules.Names())
	}
}

func TestBase64Input(t *testing.T) {
	d := offlineDispatcher(t)
	ctx := context.Background()

	encoded := base64.StdEncoding.EncodeToString([]byte(base64.StdEncoding.EncodeToString([]byte(infectedLeak))))
	res, err := d.Analyze(ctx, KindBase64, encoded)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !res.Modules.NPM.IsSuspicious() || len(res.Modules.NPM.InfectedPackages) != 1 {
		t.Errorf("npm = %+v", res.Modules.NPM)
	}

	for _, input := range []string{
		"%%% not base64 %%%",
		base64.StdEncoding.EncodeToString([]byte(`{"hello":"world"}`)),
	} {
		if _, err := d.Analyze(ctx, KindBase64, input); !errors.Is(err, ErrDecodeFailed) {
			t.Errorf("Analyze(%q) error = %v, want ErrDecodeFailed", input, err)
		}
	}
}
