package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xful-bep/crysknife/internal/analysis"
)

var checkedAt = time.Date(2025, 9, 16, 12, 0, 0, 0, time.UTC)

func infectedResult() *analysis.Result {
	res := analysis.NewClean()
	res.System.Platform = "linux"
	res.Environment["HOME"] = "/home/victim"
	res.Modules.GitHub = &analysis.GitHubModule{
		Authenticated: true,
		Token:         analysis.Ptr("ghp_***wxyz"),
		Username:      map[string]any{"login": "victim"},
	}
	res.Modules.NPM = &analysis.NPMModule{
		Suspicious: analysis.Ptr(true),
		InfectedPackages: []analysis.InfectedPackageInfo{
			{Name: "evil-pkg", Versions: []string{"1.0.1", "1.0.2"}, DetectedVersion: "1.0.1", Category: "misc"},
			{Name: "@scope/old", Versions: []string{"2.0.0"}, DetectedVersion: "3.0.0", Category: "scope"},
		},
		MalwareIndicators: []string{"Malicious lifecycle script detected"},
	}
	res.Modules.AWS = &analysis.SecretsModule{Secrets: []any{"AKIA***MNOP"}}
	return res
}

func TestNewSecurityReport(t *testing.T) {
	report := NewSecurityReport("github-account", "victim", infectedResult(), checkedAt.In(time.FixedZone("CEST", 2*3600)))
	if report.Timestamp != "2025-09-16T12:00:00Z" {
		t.Errorf("Timestamp = %q", report.Timestamp)
	}
	if !report.IsCompromised || report.Level != analysis.LevelCritical {
		t.Errorf("IsCompromised = %v, Level = %s", report.IsCompromised, report.Level)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations")
	}

	clean := NewSecurityReport("npm-package", "left-pad", analysis.NewClean(), checkedAt)
	if clean.IsCompromised || clean.Level != analysis.LevelSafe {
		t.Errorf("clean report = %+v", clean)
	}
	if clean.Recommendations == nil || len(clean.Recommendations) != 0 {
		t.Errorf("Recommendations = %#v, want empty non-nil", clean.Recommendations)
	}
}

func TestFindings(t *testing.T) {
	got := Findings(infectedResult())

	want := []struct {
		rule     string
		severity Severity
	}{
		{RuleCredentialExposure, SeverityCritical},
		{RuleInfectedPackage, SeverityCritical},
		{RuleCloudSecrets, SeverityCritical},
		{RuleMalwareIndicator, SeverityHigh},
		{RuleInfectedHistory, SeverityMedium},
	}
	if len(got) != len(want) {
		t.Fatalf("Findings() returned %d findings: %+v", len(got), got)
	}
	for i, w := range want {
		if got[i].Rule != w.rule || got[i].Severity != w.severity {
			t.Errorf("finding %d = %s/%s, want %s/%s", i, got[i].Rule, got[i].Severity, w.rule, w.severity)
		}
	}
	if got[0].Detail != "token ghp_***wxyz (login victim)" {
		t.Errorf("GitHub detail = %q", got[0].Detail)
	}
	if got[1].PURL != "pkg:npm/evil-pkg@1.0.1" {
		t.Errorf("PURL = %q", got[1].PURL)
	}

	if f := Findings(analysis.NewClean()); len(f) != 0 {
		t.Errorf("clean result has findings: %+v", f)
	}
	if f := Findings(nil); f != nil {
		t.Errorf("nil result has findings: %+v", f)
	}
}

func TestFindings_TruffleHog(t *testing.T) {
	res := analysis.NewClean()
	res.Modules.TruffleHog = &analysis.TruffleHogModule{Available: true, Version: analysis.Ptr("3.63.2")}

	got := Findings(res)
	if len(got) != 1 || got[0].Rule != RuleSecretScanner || got[0].Detail != "trufflehog 3.63.2" {
		t.Errorf("Findings() = %+v", got)
	}

	res.Modules.TruffleHog = &analysis.TruffleHogModule{}
	if f := Findings(res); len(f) != 0 {
		t.Errorf("scanner that never ran has findings: %+v", f)
	}
}

func TestPackageURL(t *testing.T) {
	if got := PackageURL("left-pad", "1.3.0"); got != "pkg:npm/left-pad@1.3.0" {
		t.Errorf("PackageURL() = %q", got)
	}
	if got := PackageURL("left-pad", ""); got != "pkg:npm/left-pad" {
		t.Errorf("PackageURL() without version = %q", got)
	}
	scoped := PackageURL("@ctrl/tinycolor", "4.1.1")
	if !strings.HasPrefix(scoped, "pkg:npm/") || !strings.HasSuffix(scoped, "ctrl/tinycolor@4.1.1") {
		t.Errorf("PackageURL() scoped = %q", scoped)
	}
}

func TestRenderTerminal(t *testing.T) {
	var buf bytes.Buffer
	report := NewSecurityReport("github-account", "victim", infectedResult(), checkedAt)
	report.ID = "3f1c2b9e-0000-4000-8000-000000000000"

	if err := NewWithOptions(&buf, FormatTerminal, true).Render(report); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"CRITICAL",
		"victim",
		"GitHub token exposed",
		"Infected package evil-pkg",
		"Previously compromised package @scope/old",
		"Recommendations",
		report.ID,
		"HOME=/home/victim",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q", want)
		}
	}
}

func TestRenderTerminal_Clean(t *testing.T) {
	var buf bytes.Buffer
	report := NewSecurityReport("npm-account", "someone", analysis.NewClean(), checkedAt)

	if err := New(&buf, FormatTerminal).Render(report); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "No indicators of compromise found") {
		t.Error("output should report no findings")
	}
	if strings.Contains(output, "Recommendations") {
		t.Error("clean report should have no recommendations section")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	report := NewSecurityReport("npm-package", "evil-pkg@1.0.1", infectedResult(), checkedAt)

	if err := New(&buf, FormatJSON).Render(report); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("JSON output is not valid: %v", err)
	}
	for _, key := range []string{"timestamp", "searchType", "searchQuery", "analysis", "isCompromised", "level", "recommendations"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("JSON output is missing %q", key)
		}
	}
	if parsed["level"] != "critical" {
		t.Errorf("level = %v", parsed["level"])
	}
	if _, ok := parsed["id"]; ok {
		t.Error("empty id should be omitted")
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	report := NewSecurityReport("file-upload", "leak.json", infectedResult(), checkedAt)

	if err := New(&buf, FormatMarkdown).Render(report); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	output := buf.String()
	for _, want := range []string{"# Shai-Hulud Exposure Report", "| critical | npm | Infected package evil-pkg |", "`pkg:npm/evil-pkg@1.0.1`", "- [ ] "} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown should contain %q", want)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	report := NewSecurityReport("file-upload", "leak.json", infectedResult(), checkedAt)

	if err := New(&buf, FormatCSV).Render(report); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output is not valid: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("got %d records, want header + 5", len(records))
	}
	if records[0][0] != "severity" || records[2][5] != "pkg:npm/evil-pkg@1.0.1" {
		t.Errorf("records = %v", records)
	}
}

func TestRenderSARIF(t *testing.T) {
	var buf bytes.Buffer
	report := NewSecurityReport("npm-package", "evil-pkg@1.0.1", infectedResult(), checkedAt)

	if err := New(&buf, FormatSARIF).Render(report); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("SARIF output is not valid: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 5 || len(run.Tool.Driver.Rules) != 5 {
		t.Errorf("results = %d, rules = %d", len(run.Results), len(run.Tool.Driver.Rules))
	}
	if run.Results[0].Level != "error" {
		t.Errorf("first result level = %q", run.Results[0].Level)
	}
	if run.Results[1].PartialFingerprints["purl"] != "pkg:npm/evil-pkg@1.0.1" {
		t.Errorf("fingerprints = %v", run.Results[1].PartialFingerprints)
	}
}

func TestRenderPDF(t *testing.T) {
	for _, res := range []*analysis.Result{infectedResult(), analysis.NewClean()} {
		var buf bytes.Buffer
		report := NewSecurityReport("base64-input", "eyJzeXN0ZW0iOnt9fQ==", res, checkedAt)
		if err := New(&buf, FormatPDF).Render(report); err != nil {
			t.Fatalf("PDF Render() error = %v", err)
		}
		if !strings.HasPrefix(buf.String(), "%PDF-") {
			t.Error("expected PDF header %PDF-")
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, "html").Render(NewSecurityReport("npm-package", "x", analysis.NewClean(), checkedAt)); err == nil {
		t.Error("expected error for unknown format")
	}
	if ValidFormat("html") || !ValidFormat(FormatSARIF) {
		t.Error("ValidFormat() disagrees with Formats()")
	}
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four", 9, "  ")
	if got != "one two\n  three\n  four" {
		t.Errorf("wrap() = %q", got)
	}
	if got := truncate("a  b\nc", 10); got != "a b c" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghijkl", 5); got != "abcd…" {
		t.Errorf("truncate() = %q", got)
	}
}
