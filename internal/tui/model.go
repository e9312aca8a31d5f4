// Package tui is a terminal picker over the launcher document: categories
// are tabs, items are a filterable list and enter launches the selection.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kali-launcher/internal/launcher"
	"kali-launcher/internal/models"
)

// Service is the part of the launcher service the picker needs.
type Service interface {
	Categories() []string
	Items(category, term string) []models.LauncherItem
	Launch(id string) (*launcher.Launch, error)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#367BF0")).
			Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#367BF0")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B8B8B8")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

type itemEntry struct {
	item models.LauncherItem
}

func (e itemEntry) Title() string { return e.item.Name }

func (e itemEntry) Description() string {
	return fmt.Sprintf("[%s] %s", e.item.Kind, firstLine(e.item.Command))
}

func (e itemEntry) FilterValue() string { return e.item.Name + " " + e.item.Command }

type launchStartedMsg struct {
	item   models.LauncherItem
	launch *launcher.Launch
	err    error
}

type launchFinishedMsg struct {
	result launcher.Result
}

// Model is the bubbletea model of the picker.
type Model struct {
	service    Service
	keys       keyMap
	categories []string
	active     int
	list       list.Model
	running    int
	status     string
	failed     bool
	width      int
	height     int
}

func New(service Service) Model {
	m := Model{
		service:    service,
		keys:       newKeyMap(),
		categories: service.Categories(),
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#FFFDF5")).
		BorderLeftForeground(lipgloss.Color("#367BF0"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#B8B8B8")).
		BorderLeftForeground(lipgloss.Color("#367BF0"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Kali Launcher"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = m.keys.short
	l.AdditionalFullHelpKeys = m.keys.short
	m.list = l

	m.loadItems()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Category is the name of the selected tab.
func (m Model) Category() string {
	if len(m.categories) == 0 {
		return ""
	}
	return m.categories[m.active]
}

// Status is the last launch message shown under the list.
func (m Model) Status() string {
	return m.status
}

func (m *Model) loadItems() {
	items := m.service.Items(m.Category(), "")
	entries := make([]list.Item, 0, len(items))
	for _, it := range items {
		entries = append(entries, itemEntry{item: it})
	}
	m.list.ResetFilter()
	m.list.SetItems(entries)
	m.list.Select(0)
}

func (m *Model) cycle(delta int) {
	if len(m.categories) == 0 {
		return
	}
	m.active = (m.active + delta + len(m.categories)) % len(m.categories)
	m.loadItems()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-3, 1))
		return m, nil

	case launchStartedMsg:
		return m.handleStarted(msg)

	case launchFinishedMsg:
		m.running--
		res := msg.result
		m.failed = !res.Success()
		if m.failed {
			m.status = fmt.Sprintf("%s exited with code %d", res.ItemName, res.ExitCode)
			if res.Stderr != "" {
				m.status += ": " + firstLine(res.Stderr)
			}
		} else {
			m.status = fmt.Sprintf("%s finished", res.ItemName)
		}
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.nextCategory):
			m.cycle(1)
			return m, nil
		case key.Matches(msg, m.keys.prevCategory):
			m.cycle(-1)
			return m, nil
		case key.Matches(msg, m.keys.launch):
			entry, ok := m.list.SelectedItem().(itemEntry)
			if !ok {
				return m, nil
			}
			m.status = "launching " + entry.item.Name
			m.failed = false
			return m, launchCmd(m.service, entry.item)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleStarted(msg launchStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.failed = true
		if errors.Is(msg.err, launcher.ErrNoTerminal) {
			m.status = "no terminal emulator found"
		} else {
			m.status = fmt.Sprintf("%s: %v", msg.item.Name, msg.err)
		}
		return m, nil
	}
	m.running++
	m.status = fmt.Sprintf("started %s via %s", msg.item.Name, msg.launch.Program)
	return m, waitCmd(msg.launch)
}

func launchCmd(service Service, item models.LauncherItem) tea.Cmd {
	return func() tea.Msg {
		l, err := service.Launch(item.ID)
		return launchStartedMsg{item: item, launch: l, err: err}
	}
}

func waitCmd(l *launcher.Launch) tea.Cmd {
	return func() tea.Msg {
		return launchFinishedMsg{result: l.Result()}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")

	status := m.status
	if m.running > 0 {
		status = fmt.Sprintf("%s  (%d running)", status, m.running)
	}
	if m.failed {
		b.WriteString(errorStyle.Render(status))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	return b.String()
}

func (m Model) tabs() string {
	rendered := make([]string, 0, len(m.categories))
	for i, c := range m.categories {
		if i == m.active {
			rendered = append(rendered, activeTabStyle.Render(c))
		} else {
			rendered = append(rendered, tabStyle.Render(c))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Run blocks until the picker is closed.
func Run(service Service) error {
	_, err := tea.NewProgram(New(service), tea.WithAltScreen()).Run()
	return err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
