package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-pdf/fpdf"

	"github.com/xful-bep/crysknife/internal/analysis"
)

const reportWidth = 74

// Formats
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatSARIF    = "sarif"
	FormatPDF      = "pdf"
)

// Formats lists every supported output format.
func Formats() []string {
	return []string{FormatTerminal, FormatJSON, FormatMarkdown, FormatCSV, FormatSARIF, FormatPDF}
}

// ValidFormat reports whether f is a supported format.
func ValidFormat(f string) bool {
	for _, v := range Formats() {
		if v == f {
			return true
		}
	}
	return false
}

var (
	colorCritical = lipgloss.Color("#EF4444")
	colorWarning  = lipgloss.Color("#F59E0B")
	colorSafe     = lipgloss.Color("#10B981")
	colorAccent   = lipgloss.Color("#7C3AED")
	colorMuted    = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(16)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Reporter outputs security reports to a writer.
type Reporter struct {
	writer  io.Writer
	format  string
	verbose bool
}

// New creates a new Reporter.
func New(w io.Writer, format string) *Reporter {
	return NewWithOptions(w, format, false)
}

// NewWithOptions creates a Reporter. verbose adds the sanitized environment
// to terminal and Markdown output.
func NewWithOptions(w io.Writer, format string, verbose bool) *Reporter {
	if format == "" {
		format = FormatTerminal
	}
	return &Reporter{writer: w, format: format, verbose: verbose}
}

// Render outputs the report in the configured format.
func (r *Reporter) Render(report SecurityReport) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(report)
	case FormatMarkdown:
		return r.renderMarkdown(report)
	case FormatCSV:
		return r.renderCSV(report)
	case FormatSARIF:
		return r.renderSARIF(report)
	case FormatPDF:
		return r.renderPDF(report)
	case FormatTerminal:
		return r.renderTerminal(report)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", r.format, strings.Join(Formats(), ", "))
	}
}

func (r *Reporter) renderJSON(report SecurityReport) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// LevelColor is the display color of a verdict level.
func LevelColor(level analysis.Level) lipgloss.Color {
	switch level {
	case analysis.LevelCritical:
		return colorCritical
	case analysis.LevelWarning:
		return colorWarning
	default:
		return colorSafe
	}
}

// Verdict is the one-line summary of a level.
func Verdict(level analysis.Level) string {
	switch level {
	case analysis.LevelCritical:
		return "CRITICAL: credentials and cloud secrets were exposed"
	case analysis.LevelWarning:
		return "WARNING: evidence of Shai-Hulud compromise found"
	default:
		return "SAFE: no evidence of compromise"
	}
}

func severityStyle(s Severity) lipgloss.Style {
	switch s {
	case SeverityCritical:
		return lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	case SeverityHigh:
		return lipgloss.NewStyle().Foreground(colorCritical)
	case SeverityMedium:
		return lipgloss.NewStyle().Foreground(colorWarning)
	default:
		return mutedStyle
	}
}

func (r *Reporter) renderTerminal(report SecurityReport) error {
	w := r.writer
	res := report.Analysis
	if res == nil {
		res = analysis.NewClean()
	}

	fmt.Fprintln(w, titleStyle.Render("crysknife · Shai-Hulud exposure report"))
	fmt.Fprintln(w)

	summary := []string{
		field("Search", fmt.Sprintf("%s %s", report.SearchType, truncate(report.SearchQuery, 48))),
		field("Verdict", Verdict(report.Level)),
		field("Compromised", yesNo(report.IsCompromised)),
		field("Checked at", report.Timestamp),
	}
	if report.ID != "" {
		summary = append(summary, field("Report ID", report.ID))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(LevelColor(report.Level)).
		Padding(0, 1).
		Width(reportWidth)
	fmt.Fprintln(w, box.Render(strings.Join(summary, "\n")))
	fmt.Fprintln(w)

	fmt.Fprintln(w, sectionStyle.Render("System"))
	fmt.Fprintln(w, field("Platform", fmt.Sprintf("%s (%s)", res.System.Platform, res.System.PlatformDetailed)))
	fmt.Fprintln(w, field("Architecture", fmt.Sprintf("%s (%s)", res.System.Architecture, res.System.ArchitectureDetailed)))
	fmt.Fprintln(w, field("Environment", fmt.Sprintf("%d variable%s", len(res.Environment), plural(len(res.Environment)))))
	if names := res.Modules.Names(); len(names) > 0 {
		fmt.Fprintln(w, field("Modules", strings.Join(names, ", ")))
	}
	fmt.Fprintln(w)

	findings := Findings(res)
	fmt.Fprintln(w, sectionStyle.Render("Findings"))
	if len(findings) == 0 {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorSafe).Render("  No indicators of compromise found."))
	}
	for _, f := range findings {
		tag := severityStyle(f.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(f.Severity.String())))
		fmt.Fprintf(w, "  %s %s\n", tag, f.Title)
		if f.Detail != "" {
			fmt.Fprintf(w, "      %s\n", mutedStyle.Render(f.Detail))
		}
		if f.PURL != "" {
			fmt.Fprintf(w, "      %s\n", mutedStyle.Render(f.PURL))
		}
	}
	fmt.Fprintln(w)

	if npm := res.Modules.NPM; npm != nil && len(npm.Packages) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Packages"))
		fmt.Fprintf(w, "  %s\n\n", wrap(strings.Join(npm.Packages, ", "), reportWidth-2, "  "))
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Recommendations"))
		for i, rec := range report.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, wrap(rec, reportWidth-5, "     "))
		}
		fmt.Fprintln(w)
	}

	if r.verbose && len(res.Environment) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Environment (sanitized)"))
		for _, k := range sortedKeys(res.Environment) {
			fmt.Fprintf(w, "  %s=%s\n", k, res.Environment[k])
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (r *Reporter) renderMarkdown(report SecurityReport) error {
	w := r.writer
	res := report.Analysis
	if res == nil {
		res = analysis.NewClean()
	}

	fmt.Fprintf(w, "# Shai-Hulud Exposure Report\n\n")
	fmt.Fprintf(w, "- **Search**: %s `%s`\n", report.SearchType, truncate(report.SearchQuery, 80))
	fmt.Fprintf(w, "- **Verdict**: %s\n", Verdict(report.Level))
	fmt.Fprintf(w, "- **Compromised**: %s\n", yesNo(report.IsCompromised))
	if report.ID != "" {
		fmt.Fprintf(w, "- **Report ID**: %s\n", report.ID)
	}
	fmt.Fprintf(w, "\n## System\n\n")
	fmt.Fprintf(w, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(w, "| Platform | %s |\n| Architecture | %s |\n", res.System.Platform, res.System.Architecture)
	fmt.Fprintf(w, "| Platform (detailed) | %s |\n| Architecture (detailed) | %s |\n", res.System.PlatformDetailed, res.System.ArchitectureDetailed)
	fmt.Fprintf(w, "| Environment variables | %d |\n", len(res.Environment))

	findings := Findings(res)
	fmt.Fprintf(w, "\n## Findings\n\n")
	if len(findings) == 0 {
		fmt.Fprintf(w, "> No indicators of compromise found.\n")
	} else {
		fmt.Fprintf(w, "| Severity | Module | Finding | Detail |\n|---|---|---|---|\n")
		for _, f := range findings {
			detail := f.Detail
			if f.PURL != "" {
				detail = strings.TrimSpace(detail + " `" + f.PURL + "`")
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", f.Severity, f.Module, mdEscape(f.Title), mdEscape(detail))
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintf(w, "\n## Recommendations\n\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "- [ ] %s\n", rec)
		}
	}

	if r.verbose && len(res.Environment) > 0 {
		fmt.Fprintf(w, "\n## Environment (sanitized)\n\n```\n")
		for _, k := range sortedKeys(res.Environment) {
			fmt.Fprintf(w, "%s=%s\n", k, res.Environment[k])
		}
		fmt.Fprintf(w, "```\n")
	}

	fmt.Fprintf(w, "\n*Checked at %s*\n", report.Timestamp)
	return nil
}

func (r *Reporter) renderCSV(report SecurityReport) error {
	cw := csv.NewWriter(r.writer)
	if err := cw.Write([]string{"severity", "rule", "module", "title", "detail", "purl"}); err != nil {
		return err
	}
	for _, f := range Findings(report.Analysis) {
		if err := cw.Write([]string{f.Severity.String(), f.Rule, f.Module, f.Title, f.Detail, f.PURL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r *Reporter) renderPDF(report SecurityReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	dark := []int{36, 41, 46}
	gray := []int{106, 115, 125}
	levelRGB := map[analysis.Level][]int{
		analysis.LevelCritical: {215, 58, 73},
		analysis.LevelWarning:  {227, 98, 9},
		analysis.LevelSafe:     {40, 167, 69},
	}[report.Level]
	if levelRGB == nil {
		levelRGB = gray
	}

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(dark[0], dark[1], dark[2])
	pdf.Cell(0, 12, "Shai-Hulud Exposure Report")
	pdf.Ln(14)

	pdf.SetFillColor(246, 248, 250)
	pdf.Rect(10, pdf.GetY(), 190, 22, "F")
	pdf.SetY(pdf.GetY() + 3)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, tr("  "+fmt.Sprintf("Search: %s %s", report.SearchType, truncate(report.SearchQuery, 60))))
	pdf.Ln(7)
	pdf.SetTextColor(levelRGB[0], levelRGB[1], levelRGB[2])
	pdf.Cell(0, 6, tr("  "+Verdict(report.Level)))
	pdf.Ln(14)

	res := report.Analysis
	if res == nil {
		res = analysis.NewClean()
	}
	pdf.SetTextColor(dark[0], dark[1], dark[2])
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "System")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	for _, row := range [][2]string{
		{"Platform", res.System.Platform + " (" + res.System.PlatformDetailed + ")"},
		{"Architecture", res.System.Architecture + " (" + res.System.ArchitectureDetailed + ")"},
		{"Environment", fmt.Sprintf("%d variables", len(res.Environment))},
	} {
		pdf.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(9)
	findings := Findings(res)
	if len(findings) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No indicators of compromise found.")
		pdf.Ln(8)
	}
	for _, f := range findings {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s", strings.ToUpper(f.Severity.String()), f.Title)), "", "L", false)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(gray[0], gray[1], gray[2])
		if f.Detail != "" {
			pdf.MultiCell(0, 5, tr(f.Detail), "", "L", false)
		}
		if f.PURL != "" {
			pdf.MultiCell(0, 5, tr(f.PURL), "", "L", false)
		}
		pdf.SetTextColor(dark[0], dark[1], dark[2])
		pdf.Ln(2)
	}

	if len(report.Recommendations) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Recommendations")
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		for i, rec := range report.Recommendations {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, rec)), "", "L", false)
		}
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, "Checked at "+report.Timestamp, "", 0, "C", false, 0, "")

	return pdf.Output(r.writer)
}

// ── Rendering helpers ──

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// wrap breaks text at spaces so no line exceeds width; continuation lines
// start with indent.
func wrap(text string, width int, indent string) string {
	if width <= 0 {
		width = 60
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		if line != "" && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		if line == "" {
			line = word
		} else {
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"+indent)
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
