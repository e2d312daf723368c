package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xful-bep/crysknife/internal/analyzer"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mainMenu.SetSize(30, msg.Height-6)
		m.findingsList.SetSize((msg.Width-34)/2, msg.Height-14)
		m.detailView.Width = (msg.Width - 34) / 2
		m.detailView.Height = msg.Height - 14
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case auditCompleteMsg:
		m.err = nil
		m.results = msg.result
		m.screen = ScreenDashboard
		m.activePane = PaneFindings
		m.populateFindings()
		m.selectedIdx = 0
		m.detailView.SetContent(m.renderFindingDetail(0))
		m.detailView.GotoTop()
		return m, nil

	case auditErrorMsg:
		m.err = msg.err
		m.screen = ScreenDashboard
		m.results = &AuditResult{Kind: m.kind, Error: msg.err}
		m.findingsList.SetItems(nil)
		m.detailView.SetContent("")
		return m, nil

	case reportSavedMsg:
		m.err = nil
		m.reportPath = msg.path
		m.screen = ScreenDashboard
		return m, nil

	case reportSaveErrorMsg:
		m.err = msg.err
		m.screen = ScreenDashboard
		return m, nil
	}

	switch m.screen {
	case ScreenInput:
		return m.updateInput(msg)
	case ScreenSettings:
		return m.updateSettings(msg)
	case ScreenRunning:
		return m.updateRunning(msg)
	case ScreenSaveReport:
		return m.updateSaveReport(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab":
			m.activePane = (m.activePane + 1) % 3
			return m, nil
		case "shift+tab":
			m.activePane = (m.activePane - 1 + 3) % 3
			return m, nil
		case "s":
			if m.results != nil && m.results.Error == nil {
				m.screen = ScreenSaveReport
				m.saveInput.SetValue("")
				m.saveInput.Focus()
				return m, m.saveInput.Cursor.BlinkCmd()
			}
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch m.activePane {
	case PaneMenu:
		m, cmd = m.updateMain(msg)
	case PaneFindings:
		m, cmd = m.updateResults(msg)
	case PaneDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	}
	return m, cmd
}

func (m Model) updateMain(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		item, ok := m.mainMenu.SelectedItem().(MenuItem)
		if !ok {
			return m, nil
		}
		if item.kind == "" {
			m.screen = ScreenSettings
			m.settingsFocus = FieldRegistry
			for i := range m.settingsFields {
				m.settingsFields[i].Blur()
			}
			m.settingsFields[0].Focus()
			return m, m.settingsFields[0].Cursor.BlinkCmd()
		}
		return m.openInput(item.kind)
	}
	var cmd tea.Cmd
	m.mainMenu, cmd = m.mainMenu.Update(msg)
	return m, cmd
}

func (m Model) openInput(kind analyzer.Kind) (Model, tea.Cmd) {
	m.kind = kind
	m.screen = ScreenInput
	m.textInput.SetValue("")
	m.textInput.Placeholder = kind.Placeholder()
	// Pasted payloads can hold tokens.
	if kind == analyzer.KindBase64 {
		m.textInput.EchoMode = textinput.EchoPassword
	} else {
		m.textInput.EchoMode = textinput.EchoNormal
	}
	m.textInput.Focus()
	return m, m.textInput.Cursor.BlinkCmd()
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.screen = ScreenDashboard
			return m, nil
		case "enter":
			val := m.textInput.Value()
			if val == "" {
				return m, nil
			}
			kind, cfg, logger := m.kind, m.cfg, m.logger
			m.runMsg = "Analyzing " + kind.Label()
			if kind.Networked() || readsFile(kind) {
				m.runMsg += ": " + val
			}
			m.screen = ScreenRunning
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				return runAnalysis(kind, val, cfg, logger)
			})
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.applySettings()
			m.screen = ScreenDashboard
			return m, nil
		case "tab", "down":
			m.settingsFields[m.settingsFocus].Blur()
			m.settingsFocus = (m.settingsFocus + 1) % FieldCount
			m.settingsFields[m.settingsFocus].Focus()
			return m, m.settingsFields[m.settingsFocus].Cursor.BlinkCmd()
		case "shift+tab", "up":
			m.settingsFields[m.settingsFocus].Blur()
			m.settingsFocus = (m.settingsFocus - 1 + FieldCount) % FieldCount
			m.settingsFields[m.settingsFocus].Focus()
			return m, m.settingsFields[m.settingsFocus].Cursor.BlinkCmd()
		}
	}
	var cmd tea.Cmd
	m.settingsFields[m.settingsFocus], cmd = m.settingsFields[m.settingsFocus].Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.findingsList, cmd = m.findingsList.Update(msg)
	if m.results == nil || len(m.results.Findings) == 0 {
		return m, cmd
	}
	if idx := m.findingsList.Index(); idx != m.selectedIdx {
		m.selectedIdx = idx
		m.detailView.SetContent(m.renderFindingDetail(idx))
		m.detailView.GotoTop()
	}
	return m, cmd
}

func (m Model) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) updateSaveReport(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.screen = ScreenDashboard
			return m, nil
		case "enter":
			path := m.saveInput.Value()
			if path == "" {
				path = "report.json"
			}
			result := m.results
			return m, func() tea.Msg {
				return saveReport(result, path)
			}
		}
	}
	var cmd tea.Cmd
	m.saveInput, cmd = m.saveInput.Update(msg)
	return m, cmd
}

func (m *Model) populateFindings() {
	if m.results == nil {
		return
	}
	items := make([]list.Item, len(m.results.Findings))
	for i, f := range m.results.Findings {
		items[i] = FindingItem{Finding: f}
	}
	m.findingsList.SetItems(items)
}
