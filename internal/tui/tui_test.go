package tui

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/audit"
	"github.com/xful-bep/crysknife/internal/reporter"
)

func infectedReport() reporter.SecurityReport {
	res := analysis.NewClean()
	res.Modules.NPM = &analysis.NPMModule{
		Suspicious: analysis.Ptr(true),
		Packages:   []string{"left-pad", "@ctrl/tinycolor"},
		InfectedPackages: []analysis.InfectedPackageInfo{
			{Name: "@ctrl/tinycolor", Versions: []string{"4.1.1", "4.1.2"}, DetectedVersion: "4.1.1", Category: "ctrl"},
		},
	}
	return reporter.NewSecurityReport("package-json", "package.json", res, time.Unix(0, 0))
}

func TestPackageTree(t *testing.T) {
	root := PackageTree(infectedReport())
	if root == nil || root.Name != "package.json" || len(root.Children) != 2 {
		t.Fatalf("root = %+v", root)
	}
	if root.Children[0].Severity != "" {
		t.Errorf("left-pad severity = %q", root.Children[0].Severity)
	}
	bad := root.Children[1]
	if bad.Severity != "critical" || bad.Version != "4.1.1" || len(bad.Children) != 2 {
		t.Errorf("infected node = %+v", bad)
	}

	if PackageTree(reporter.NewSecurityReport("github-account", "x", analysis.NewClean(), time.Now())) != nil {
		t.Error("expected no tree without an npm module")
	}
}

func TestRenderTree(t *testing.T) {
	out := RenderTree(PackageTree(infectedReport()))
	for _, want := range []string{
		"├── ", "left-pad",
		"└── ", "@ctrl/tinycolor@4.1.1", "[CRITICAL]",
		"    └── ", "compromised@4.1.2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
	if RenderTree(nil) != "" {
		t.Error("nil tree should render empty")
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"report.json":  reporter.FormatJSON,
		"out.MD":       reporter.FormatMarkdown,
		"a.csv":        reporter.FormatCSV,
		"a.pdf":        reporter.FormatPDF,
		"scan.sarif":   reporter.FormatSARIF,
		"notes.txt":    reporter.FormatTerminal,
		"no-extension": reporter.FormatJSON,
	}
	for path, want := range tests {
		if got := formatForPath(path); got != want {
			t.Errorf("formatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestRunAnalysis_PackageJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(`{"dependencies":{"@ctrl/tinycolor":"~4.1.2"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	msg := runAnalysis(analyzer.KindPackageJSON, path, audit.Config{}, nil)
	done, ok := msg.(auditCompleteMsg)
	if !ok {
		t.Fatalf("got %T: %+v", msg, msg)
	}
	r := done.result
	if r.Report.SearchQuery != path {
		t.Errorf("SearchQuery = %q, want the file path", r.Report.SearchQuery)
	}
	if r.Report.Level != analysis.LevelWarning || len(r.Findings) == 0 {
		t.Errorf("Level = %s, findings = %d", r.Report.Level, len(r.Findings))
	}

	msg = runAnalysis(analyzer.KindPackageJSON, filepath.Join(t.TempDir(), "missing.json"), audit.Config{}, nil)
	if _, ok := msg.(auditErrorMsg); !ok {
		t.Errorf("missing file: got %T", msg)
	}
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	msg := saveReport(&AuditResult{Report: infectedReport()}, path)
	if saved, ok := msg.(reportSavedMsg); !ok || saved.path != path {
		t.Fatalf("got %T: %+v", msg, msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved report is not JSON: %v", err)
	}
	if decoded["searchType"] != "package-json" {
		t.Errorf("searchType = %v", decoded["searchType"])
	}

	if _, ok := saveReport(&AuditResult{Error: errors.New("boom")}, path).(reportSaveErrorMsg); !ok {
		t.Error("expected an error when the run failed")
	}
}

func TestUpdate_Flow(t *testing.T) {
	var model tea.Model = NewModel(audit.Config{Timeout: 10}, nil)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m := model.(Model)
	if m.activePane != PaneMenu {
		t.Fatalf("activePane = %d", m.activePane)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(Model)
	if m.screen != ScreenInput || m.kind != analyzer.KindGitHubAccount {
		t.Fatalf("screen = %d, kind = %s", m.screen, m.kind)
	}
	if m.textInput.Placeholder != analyzer.KindGitHubAccount.Placeholder() {
		t.Errorf("placeholder = %q", m.textInput.Placeholder)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model, _ = model.Update(auditCompleteMsg{result: &AuditResult{
		Kind:     analyzer.KindPackageJSON,
		Report:   infectedReport(),
		Findings: reporter.Findings(infectedReport().Analysis),
	}})
	m = model.(Model)
	if m.screen != ScreenDashboard || m.activePane != PaneFindings {
		t.Errorf("screen = %d, pane = %d", m.screen, m.activePane)
	}
	if len(m.findingsList.Items()) != len(m.results.Findings) {
		t.Errorf("findings list has %d items", len(m.findingsList.Items()))
	}
	if view := m.View(); !strings.Contains(view, "WARNING") {
		t.Errorf("dashboard does not show the verdict:\n%s", view)
	}

	model, _ = model.Update(auditErrorMsg{err: errors.New("GitHub API error: 502")})
	m = model.(Model)
	if m.results.Error == nil || !strings.Contains(m.View(), "GitHub API error: 502") {
		t.Error("error should be shown on the dashboard")
	}
}

func TestApplySettings(t *testing.T) {
	m := NewModel(audit.Config{Timeout: 10}, nil)
	m.settingsFields[FieldRegistry].SetValue("http://localhost:4873")
	m.settingsFields[FieldTimeout].SetValue("abc")
	m.applySettings()
	if m.cfg.RegistryURL != "http://localhost:4873" || m.cfg.Timeout != 10 {
		t.Errorf("cfg = %+v", m.cfg)
	}
	m.settingsFields[FieldTimeout].SetValue("45")
	m.applySettings()
	if m.cfg.Timeout != 45 {
		t.Errorf("Timeout = %d", m.cfg.Timeout)
	}
}
