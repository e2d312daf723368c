package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/audit"
	"github.com/xful-bep/crysknife/internal/reporter"
)

// readsFile reports whether the input of kind is a path to read.
func readsFile(kind analyzer.Kind) bool {
	return kind == analyzer.KindFileUpload || kind == analyzer.KindPackageJSON
}

func runAnalysis(kind analyzer.Kind, input string, cfg audit.Config, logger *zap.Logger) tea.Msg {
	start := time.Now()

	query := input
	if readsFile(kind) {
		data, err := os.ReadFile(input)
		if err != nil {
			return auditErrorMsg{err: fmt.Errorf("reading %s: %w", input, err)}
		}
		query = string(data)
	}

	runner, err := audit.NewRunner(cfg, logger)
	if err != nil {
		return auditErrorMsg{err: err}
	}

	report, err := runner.Run(context.Background(), kind, query)
	if err != nil {
		return auditErrorMsg{err: err}
	}
	if readsFile(kind) {
		report.SearchQuery = input
	}

	return auditCompleteMsg{result: &AuditResult{
		Kind:     kind,
		Report:   report,
		Findings: reporter.Findings(report.Analysis),
		Duration: time.Since(start),
	}}
}

// formatForPath picks a report format from the file extension.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return reporter.FormatMarkdown
	case ".csv":
		return reporter.FormatCSV
	case ".pdf":
		return reporter.FormatPDF
	case ".sarif":
		return reporter.FormatSARIF
	case ".txt":
		return reporter.FormatTerminal
	default:
		return reporter.FormatJSON
	}
}

func saveReport(result *AuditResult, path string) tea.Msg {
	if result == nil || result.Error != nil {
		return reportSaveErrorMsg{err: fmt.Errorf("no results to save")}
	}

	f, err := os.Create(path)
	if err != nil {
		return reportSaveErrorMsg{err: fmt.Errorf("creating file %s: %w", path, err)}
	}
	defer f.Close()

	r := reporter.NewWithOptions(f, formatForPath(path), true)
	if err := r.Render(result.Report); err != nil {
		return reportSaveErrorMsg{err: fmt.Errorf("rendering report: %w", err)}
	}
	return reportSavedMsg{path: path}
}
