// Package tui provides the interactive query console shown after a run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"cascade-sim/internal/query"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// maxHistoryLines bounds the scrollback kept in the viewport.
const maxHistoryLines = 2000

// Console is a bubbletea model wrapping a query.Engine: a viewport of past
// answers above a textinput prompt.
type Console struct {
	engine *query.Engine
	input  textinput.Model
	vp     viewport.Model
	lines  []string
	width  int
	height int
	ready  bool
}

// NewConsole creates a Console over the given engine.
func NewConsole(engine *query.Engine) *Console {
	ti := textinput.New()
	ti.Placeholder = "why is billing failing?"
	ti.Prompt = "query> "
	ti.Focus()
	return &Console{
		engine: engine,
		input:  ti,
		lines: []string{
			titleStyle.Render("Cascade query console"),
			query.HelpText,
			"",
		},
	}
}

// Run starts the console and blocks until the user exits.
func Run(engine *query.Engine) error {
	p := tea.NewProgram(NewConsole(engine), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (c *Console) Init() tea.Cmd { return textinput.Blink }

func (c *Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.vp = viewport.New(msg.Width, msg.Height-2)
		c.ready = true
		c.refresh()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return c, tea.Quit
		case tea.KeyEnter:
			q := strings.TrimSpace(c.input.Value())
			c.input.SetValue("")
			if q == "" {
				return c, nil
			}
			if query.IsControl(q) {
				if strings.EqualFold(q, "help") {
					c.append(questionStyle.Render("> "+q), query.HelpText, "")
					return c, nil
				}
				return c, tea.Quit
			}
			answer, err := c.engine.Answer(q)
			if err != nil {
				c.append(questionStyle.Render("> "+q), errorStyle.Render(err.Error()), "")
				return c, nil
			}
			c.append(questionStyle.Render("> "+q), answer, "")
			return c, nil
		case tea.KeyPgUp:
			c.vp.LineUp(10)
			return c, nil
		case tea.KeyPgDown:
			c.vp.LineDown(10)
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *Console) append(blocks ...string) {
	for _, b := range blocks {
		c.lines = append(c.lines, strings.Split(b, "\n")...)
	}
	if len(c.lines) > maxHistoryLines {
		c.lines = c.lines[len(c.lines)-maxHistoryLines:]
	}
	c.refresh()
}

func (c *Console) refresh() {
	if !c.ready {
		return
	}
	wrapped := make([]string, 0, len(c.lines))
	for _, l := range c.lines {
		wrapped = append(wrapped, wordwrap.String(l, c.vp.Width))
	}
	c.vp.SetContent(strings.Join(wrapped, "\n"))
	c.vp.GotoBottom()
}

func (c *Console) View() string {
	if !c.ready {
		return "loading..."
	}
	divider := strings.Repeat("─", c.width)
	return fmt.Sprintf("%s\n%s\n%s", c.vp.View(), divider, promptStyle.Render(c.input.View()))
}
