package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/audit"
	"github.com/xful-bep/crysknife/internal/reporter"
)

// Screen represents which screen is currently active.
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenInput
	ScreenSettings
	ScreenRunning
	ScreenSaveReport
)

// Pane identifies which part of the dashboard is focused.
type Pane int

const (
	PaneMenu Pane = iota
	PaneFindings
	PaneDetail
)

// MenuItem is an entry of the sidebar. Items without a kind open settings.
type MenuItem struct {
	kind  analyzer.Kind
	title string
	desc  string
}

func (m MenuItem) Title() string       { return m.title }
func (m MenuItem) Description() string { return m.desc }
func (m MenuItem) FilterValue() string { return m.title }

// FindingItem adapts a report finding to the findings list.
type FindingItem struct {
	reporter.Finding
}

func (f FindingItem) FilterValue() string { return f.Finding.Title }
func (f FindingItem) Title() string {
	return fmt.Sprintf("[%s] %s", f.Severity, f.Finding.Title)
}
func (f FindingItem) Description() string { return f.Module }

// AuditResult holds the outcome of one analysis run.
type AuditResult struct {
	Kind     analyzer.Kind
	Report   reporter.SecurityReport
	Findings []reporter.Finding
	Duration time.Duration
	Error    error
}

// SettingsField identifies which setting is being edited.
type SettingsField int

const (
	FieldRegistry SettingsField = iota
	FieldGitHubAPI
	FieldGitHubToken
	FieldTimeout
	FieldCount
)

// Model is the top-level Bubble Tea model.
type Model struct {
	screen     Screen
	activePane Pane
	width      int
	height     int
	quitting   bool
	err        error

	cfg    audit.Config
	logger *zap.Logger

	mainMenu list.Model

	kind      analyzer.Kind
	textInput textinput.Model

	settingsFields [FieldCount]textinput.Model
	settingsFocus  SettingsField

	spinner spinner.Model
	runMsg  string

	results      *AuditResult
	findingsList list.Model
	selectedIdx  int
	detailView   viewport.Model
	saveInput    textinput.Model

	reportPath string
}

// Messages
type auditCompleteMsg struct{ result *AuditResult }
type auditErrorMsg struct{ err error }
type reportSavedMsg struct{ path string }
type reportSaveErrorMsg struct{ err error }

// NewModel builds the dashboard. cfg seeds the settings screen and is used
// for every analysis; logger may be nil.
func NewModel(cfg audit.Config, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	var items []list.Item
	for _, k := range analyzer.Kinds() {
		items = append(items, MenuItem{kind: k, title: k.Label(), desc: menuDescription(k)})
	}
	items = append(items, MenuItem{title: "Settings", desc: "Registry, GitHub API, token, timeout"})

	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "crysknife"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	mainMenu.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	ti := textinput.New()
	ti.CharLimit = 0
	ti.Width = 50

	var sf [FieldCount]textinput.Model
	labels := [FieldCount]string{"Registry URL", "GitHub API URL", "GitHub token", "Timeout (seconds)"}
	placeholders := [FieldCount]string{"https://registry.npmjs.org", "https://api.github.com", "(optional)", "30"}
	vals := [FieldCount]string{cfg.RegistryURL, cfg.GitHubAPI, cfg.GitHubToken, ""}
	if cfg.Timeout > 0 {
		vals[FieldTimeout] = strconv.Itoa(cfg.Timeout)
	}
	for i := 0; i < int(FieldCount); i++ {
		sf[i] = textinput.New()
		sf[i].Placeholder = placeholders[i]
		sf[i].Prompt = labels[i] + ": "
		sf[i].CharLimit = 256
		sf[i].Width = 50
		sf[i].SetValue(vals[i])
	}
	sf[FieldGitHubToken].EchoMode = textinput.EchoPassword
	sf[0].Focus()

	saveIn := textinput.New()
	saveIn.Placeholder = "report.json"
	saveIn.CharLimit = 256
	saveIn.Width = 50

	fl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	fl.Title = "Findings"
	fl.SetShowStatusBar(true)
	fl.SetFilteringEnabled(true)
	fl.DisableQuitKeybindings()

	return Model{
		screen:         ScreenDashboard,
		cfg:            cfg,
		logger:         logger,
		mainMenu:       mainMenu,
		textInput:      ti,
		settingsFields: sf,
		settingsFocus:  FieldRegistry,
		spinner:        sp,
		findingsList:   fl,
		detailView:     viewport.New(0, 0),
		saveInput:      saveIn,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

func menuDescription(k analyzer.Kind) string {
	switch k {
	case analyzer.KindGitHubAccount:
		return "Look for a Shai-Hulud exfiltration repo"
	case analyzer.KindNPMAccount:
		return "Check an account's packages"
	case analyzer.KindNPMPackage:
		return "Check one package and version"
	case analyzer.KindFileUpload:
		return "Scan a leaked data.json file"
	case analyzer.KindBase64:
		return "Decode a pasted payload"
	case analyzer.KindPackageJSON:
		return "Check a project's dependencies"
	default:
		return ""
	}
}

// applySettings copies the settings fields into the audit configuration.
// An unparsable timeout keeps the previous value.
func (m *Model) applySettings() {
	m.cfg.RegistryURL = m.settingsFields[FieldRegistry].Value()
	m.cfg.GitHubAPI = m.settingsFields[FieldGitHubAPI].Value()
	m.cfg.GitHubToken = m.settingsFields[FieldGitHubToken].Value()
	if t, err := strconv.Atoi(m.settingsFields[FieldTimeout].Value()); err == nil && t > 0 {
		m.cfg.Timeout = t
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
