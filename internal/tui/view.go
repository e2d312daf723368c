package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/reporter"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case ScreenInput:
		content = m.viewInput()
	case ScreenSettings:
		content = m.viewSettings()
	case ScreenRunning:
		content = m.viewRunning()
	case ScreenSaveReport:
		content = m.viewSaveReport()
	default:
		content = m.viewDashboard()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.viewStatusBar())
}

func (m Model) viewStatusBar() string {
	var keys string
	switch m.screen {
	case ScreenInput:
		keys = "enter analyze • esc back"
	case ScreenSettings:
		keys = "tab/↓ next field • shift+tab/↑ prev • esc save & back"
	case ScreenRunning:
		keys = "please wait..."
	case ScreenSaveReport:
		keys = "enter save • esc cancel"
	default:
		keys = "tab switch pane • ↑/↓ navigate • enter select • s save • q quit"
	}
	if m.reportPath != "" && m.screen == ScreenDashboard {
		keys += " • saved " + m.reportPath
	}
	return StatusBarStyle.Width(m.width).Render(keys)
}

func (m Model) viewDashboard() string {
	menuStyle := PaneStyle
	if m.activePane == PaneMenu {
		menuStyle = FocusedPaneStyle
	}
	sidebarWidth := 30
	sidebar := menuStyle.Width(sidebarWidth).Height(m.height - 4).Render(m.mainMenu.View())

	mainWidth := clamp(m.width-sidebarWidth-4, 20, m.width)
	var rightPane string

	switch {
	case m.results == nil:
		rightPane = lipgloss.Place(mainWidth, m.height-4, lipgloss.Center, lipgloss.Center,
			BoxStyle.Render(SubtitleStyle.Render("No analysis yet. Pick a source from the menu to start.")))
	case m.results.Error != nil:
		msg := ErrorStyle.Render("Analysis failed") + "\n\n" + DetailValueStyle.Render(m.results.Error.Error())
		rightPane = BoxStyle.Width(mainWidth - 4).Render(msg)
	default:
		summaryBox := BoxStyle.Width(mainWidth - 4).Render(m.viewResultsSummary())

		findingsWidth := (mainWidth - 4) / 2
		findingsStyle := PaneStyle
		if m.activePane == PaneFindings {
			findingsStyle = FocusedPaneStyle
		}
		m.findingsList.SetSize(findingsWidth-2, m.height-14)
		findings := findingsStyle.Width(findingsWidth).Height(m.height - 12).Render(m.findingsList.View())

		detailStyle := PaneStyle
		if m.activePane == PaneDetail {
			detailStyle = FocusedPaneStyle
		}
		m.detailView.Width = mainWidth - findingsWidth - 6
		m.detailView.Height = m.height - 14
		detail := detailStyle.Width(mainWidth - findingsWidth - 4).Height(m.height - 12).Render(m.detailView.View())

		rightPane = lipgloss.JoinVertical(lipgloss.Left, summaryBox, lipgloss.JoinHorizontal(lipgloss.Top, findings, detail))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, rightPane)
}

func (m Model) viewInput() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.kind.Label()))
	b.WriteString("\n\n")
	b.WriteString(InputLabelStyle.Render(inputLabel(m.kind)))
	b.WriteString("\n")
	b.WriteString(InputStyle.Width(m.width - 6).Render(m.textInput.View()))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render(inputHelp(m.kind)))
	return lipgloss.Place(m.width, m.height-2, lipgloss.Left, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(b.String()))
}

func inputLabel(k analyzer.Kind) string {
	switch k {
	case analyzer.KindGitHubAccount:
		return "GitHub username:"
	case analyzer.KindNPMAccount:
		return "npm username:"
	case analyzer.KindNPMPackage:
		return "Package name (optionally with @version):"
	case analyzer.KindBase64:
		return "Base64 payload:"
	default:
		return "File path:"
	}
}

func inputHelp(k analyzer.Kind) string {
	switch k {
	case analyzer.KindGitHubAccount:
		return "Checks for a Shai-Hulud repository and decodes its data.json"
	case analyzer.KindNPMPackage:
		return "Examples: @ctrl/tinycolor, ngx-bootstrap@18.1.4, pkg:npm/%40ctrl/tinycolor@4.1.1"
	case analyzer.KindBase64:
		return "Input is hidden while typing. Nothing leaves this machine."
	case analyzer.KindFileUpload:
		return "A data.json taken from an exfiltration repository, or any JSON document"
	case analyzer.KindPackageJSON:
		return "Dependencies are compared to the known infected releases"
	default:
		return ""
	}
}

func (m Model) viewSettings() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	labels := [FieldCount]string{"Registry URL", "GitHub API URL", "GitHub token", "Timeout (seconds)"}
	for i := 0; i < int(FieldCount); i++ {
		style := InactiveFieldStyle
		if SettingsField(i) == m.settingsFocus {
			style = ActiveFieldStyle
		}
		b.WriteString(InputLabelStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(style.Width(m.width - 8).Render(m.settingsFields[i].View()))
		b.WriteString("\n\n")
	}

	return lipgloss.Place(m.width, m.height-2, lipgloss.Left, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(b.String()))
}

func (m Model) viewResultsSummary() string {
	r := m.results
	report := r.Report
	var b strings.Builder

	b.WriteString(DetailLabelStyle.Render("Search: "))
	b.WriteString(DetailValueStyle.Render(fmt.Sprintf("%s (%s)", report.SearchQuery, r.Kind.Label())))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("Duration: "))
	b.WriteString(DetailValueStyle.Render(r.Duration.Round(time.Millisecond).String()))
	b.WriteString("\n")
	b.WriteString(DetailLabelStyle.Render("Verdict: "))
	b.WriteString(LevelStyle(report.Level).Render(reporter.Verdict(report.Level)))
	b.WriteString("\n")

	counts := map[string]int{}
	for _, f := range r.Findings {
		counts[f.Severity.String()]++
	}
	b.WriteString(DetailLabelStyle.Render("Findings: "))
	b.WriteString(fmt.Sprintf("%d total", len(r.Findings)))
	b.WriteString("  ")
	b.WriteString(SevCriticalStyle.Render(fmt.Sprintf(" %d critical ", counts["critical"])))
	b.WriteString(" ")
	b.WriteString(SevHighStyle.Render(fmt.Sprintf("%d high", counts["high"])))
	b.WriteString(" ")
	b.WriteString(SevMediumStyle.Render(fmt.Sprintf("%d medium", counts["medium"])))

	return b.String()
}

// renderFindingDetail shows the selected finding, followed by the package
// tree and recommendations. Without findings only the latter are shown.
func (m Model) renderFindingDetail(idx int) string {
	if m.results == nil {
		return ""
	}
	var b strings.Builder

	if idx < len(m.results.Findings) {
		f := m.results.Findings[idx]
		b.WriteString(DetailLabelStyle.Render("Title:     "))
		b.WriteString(DetailValueStyle.Render(f.Title))
		b.WriteString("\n\n")
		b.WriteString(DetailLabelStyle.Render("Severity:  "))
		b.WriteString(SeverityStyle(f.Severity.String()).Render(f.Severity.String()))
		b.WriteString("\n\n")
		b.WriteString(DetailLabelStyle.Render("Module:    "))
		b.WriteString(DetailValueStyle.Render(f.Module))
		b.WriteString("\n\n")
		if f.PURL != "" {
			b.WriteString(DetailLabelStyle.Render("Package:   "))
			b.WriteString(DetailValueStyle.Render(f.PURL))
			b.WriteString("\n\n")
		}
		if f.Detail != "" {
			b.WriteString(DetailLabelStyle.Render("Details:"))
			b.WriteString("\n")
			b.WriteString(DetailValueStyle.Render(f.Detail))
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString(SuccessStyle.Render("No indicators of compromise found."))
		b.WriteString("\n\n")
	}

	if tree := RenderTree(PackageTree(m.results.Report)); tree != "" {
		b.WriteString(DetailLabelStyle.Render("Packages:"))
		b.WriteString("\n")
		b.WriteString(tree)
		b.WriteString("\n")
	}

	if recs := m.results.Report.Recommendations; len(recs) > 0 {
		b.WriteString(DetailLabelStyle.Render("Recommendations:"))
		b.WriteString("\n")
		for _, rec := range recs {
			b.WriteString(RemediationStyle.Render("• " + rec))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Running"))
	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Width(m.width - 6).Render(fmt.Sprintf("%s %s", m.spinner.View(), m.runMsg)))

	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, b.String())
}

func (m Model) viewSaveReport() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Save Report"))
	b.WriteString("\n\n")
	b.WriteString(InputLabelStyle.Render("Output file path:"))
	b.WriteString("\n")
	b.WriteString(InputStyle.Width(m.width - 6).Render(m.saveInput.View()))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("Default: report.json. The extension picks the format: .json .md .csv .sarif .pdf .txt"))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	}

	return lipgloss.Place(m.width, m.height-2, lipgloss.Left, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(b.String()))
}
