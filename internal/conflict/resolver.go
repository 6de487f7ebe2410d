package conflict

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Resolution is a caller decision for one conflict.
type Resolution int

const (
	// KeepExisting leaves the manually edited content in place.
	KeepExisting Resolution = iota
	// AcceptProposed replaces the edit with the generated content.
	AcceptProposed
	// ShowDiff displays the divergence and asks again.
	ShowDiff
	// Abort stops resolution for the remaining conflicts.
	Abort
)

// Strategy decides what to do with one conflict.
type Strategy interface {
	Resolve(c Conflict) (Resolution, error)
}

// NewStrategy maps command-line intent to a strategy. acceptAll and
// interactive cannot be combined.
func NewStrategy(acceptAll, interactive bool) (Strategy, error) {
	if acceptAll && interactive {
		return nil, fmt.Errorf("--accept-all cannot be combined with --interactive")
	}
	switch {
	case acceptAll:
		return &AcceptStrategy{}, nil
	case interactive:
		return &InteractiveStrategy{}, nil
	}
	return &KeepStrategy{}, nil
}

// KeepStrategy always keeps the existing content. This is the default:
// the engine never discards a manual edit without being told to.
type KeepStrategy struct{}

func (*KeepStrategy) Resolve(Conflict) (Resolution, error) {
	return KeepExisting, nil
}

// AcceptStrategy always takes the proposed content.
type AcceptStrategy struct{}

func (*AcceptStrategy) Resolve(Conflict) (Resolution, error) {
	return AcceptProposed, nil
}

// InteractiveStrategy shows a menu with keyboard navigation. Choosing
// "show diff" displays the divergence and re-presents the menu, so the
// diff can be reviewed any number of times before deciding.
type InteractiveStrategy struct{}

var (
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
)

func (s *InteractiveStrategy) Resolve(c Conflict) (Resolution, error) {
	for {
		m := newMenuModel(c)
		p := tea.NewProgram(m)
		final, err := p.Run()
		if err != nil {
			return Abort, fmt.Errorf("showing conflict menu: %w", err)
		}

		result := final.(menuModel)
		if result.selected == nil {
			return Abort, nil
		}
		if *result.selected != ShowDiff {
			return *result.selected, nil
		}

		if err := showDiff(c); err != nil {
			return Abort, err
		}
	}
}

func showDiff(c Conflict) error {
	diff := c.Diff()
	if strings.Count(diff, "\n") <= 20 {
		fmt.Println(diff)
		return nil
	}
	m := newDiffModel(c.File+"#"+c.MarkerID, diff)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("showing diff: %w", err)
	}
	return nil
}

type menuModel struct {
	conflict Conflict
	choices  []string
	cursor   int
	selected *Resolution
}

func newMenuModel(c Conflict) menuModel {
	return menuModel{
		conflict: c,
		choices: []string{
			"Show diff and decide",
			"Keep existing (preserve manual edit)",
			"Accept proposed (regenerated content)",
			"Abort",
		},
	}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			resolution := [...]Resolution{ShowDiff, KeepExisting, AcceptProposed, Abort}[m.cursor]
			m.selected = &resolution
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	b.WriteString(warnStyle.Render("⚠ Conflict: ") +
		titleStyle.Render(m.conflict.File+" marker "+m.conflict.MarkerID) + "\n")
	b.WriteString(mutedStyle.Render("    "+m.conflict.Reason) + "\n\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Abort") + "\n\n")

	for i, choice := range m.choices {
		if m.cursor == i {
			b.WriteString("    " + selectedStyle.Render("> "+choice) + "\n")
		} else {
			b.WriteString("      " + choice + "\n")
		}
	}
	return b.String()
}

type diffModel struct {
	title    string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffModel(title, diff string) diffModel {
	return diffModel{title: title, diff: diff}
}

func (m diffModel) Init() tea.Cmd { return nil }

func (m diffModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.viewport.ScrollUp(1)
		case "down", "j":
			m.viewport.ScrollDown(1)
		case "pgup", "b":
			m.viewport.PageUp()
		case "pgdown", "f", "space":
			m.viewport.PageDown()
		}
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-3)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - 3
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Diff: "+m.title) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(mutedStyle.Render(" [↑/↓] Scroll    [q] Back"))
	return b.String()
}
