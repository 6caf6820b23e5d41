package tui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Quit}
}
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Next: key.NewBinding(key.WithKeys("right", "l", "n", " "), key.WithHelp("→/l", "next")),
	Prev: key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/h", "previous")),
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Margin(1, 2, 0, 2)
	bodyStyle   = lipgloss.NewStyle().Margin(1, 2)
	footerStyle = lipgloss.NewStyle().Margin(0, 2)
)

// viewer is the bubbletea model of the interactive step viewer.
type viewer struct {
	painter *Painter
	deck    *slides.Deck
	title   string
	cursor  Cursor
	help    help.Model
}

func newViewer(p *Painter, deck *slides.Deck, title string) viewer {
	return viewer{
		painter: p,
		deck:    deck,
		title:   title,
		cursor:  NewCursor(len(deck.Slides)),
		help:    help.New(),
	}
}

func (m viewer) Init() tea.Cmd { return nil }

func (m viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			m.cursor.Next()
		case key.Matches(msg, keys.Prev):
			m.cursor.Prev()
		}
	}
	return m, nil
}

func (m viewer) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n")
	}
	b.WriteString(bodyStyle.Render(m.painter.Slide(m.deck, m.cursor.Index())))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.help.View(keys)))
	return b.String()
}

// ViewerOption configures the interactive viewer program.
type ViewerOption func(*viewerConfig)

type viewerConfig struct {
	input     io.Reader
	output    io.Writer
	altScreen bool
}

// WithIO overrides the terminal streams.
func WithIO(in io.Reader, out io.Writer) ViewerOption {
	return func(c *viewerConfig) {
		c.input = in
		c.output = out
	}
}

// WithoutAltScreen renders inline instead of switching to the alternate screen.
func WithoutAltScreen() ViewerOption {
	return func(c *viewerConfig) {
		c.altScreen = false
	}
}

// RunViewer shows one slide at a time until the user quits or ctx is done.
// The terminal is restored on every exit path by the bubbletea program,
// including a panic inside the model.
func RunViewer(ctx context.Context, p *Painter, deck *slides.Deck, title string, opts ...ViewerOption) error {
	if len(deck.Slides) == 0 {
		return nil
	}
	cfg := viewerConfig{altScreen: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if cfg.input != nil {
		progOpts = append(progOpts, tea.WithInput(cfg.input))
	}
	if cfg.output != nil {
		progOpts = append(progOpts, tea.WithOutput(cfg.output))
	}

	_, err := tea.NewProgram(newViewer(p, deck, title), progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
