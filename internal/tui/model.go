package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finqa/internal/controller"
	"finqa/internal/domain"
	"finqa/internal/render"
)

// Dispatcher is the TUI-facing subset of the action table.
type Dispatcher interface {
	Dispatch(ctx context.Context, action controller.Action, input string) error
}

type focusField int

const (
	focusFile focusField = iota
	focusQuery
)

const outputHeight = 8

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	dispatch   Dispatcher
	fileInput  textinput.Model
	queryInput textinput.Model
	output     viewport.Model
	answer     viewport.Model
	spinner    spinner.Model
	texts      map[SurfaceID]string
	alert      string
	palette    render.Palette
	focus      focusField
	ready      bool
}

// New creates a new TUI model instance.
func New(dispatch Dispatcher, initial domain.Theme) Model {
	fi := textinput.New()
	fi.Prompt = "file> "
	fi.Placeholder = "path to a .jsonl or .txt corpus, Enter to upload"
	fi.CharLimit = 0
	fi.Focus()

	qi := textinput.New()
	qi.Prompt = "ask> "
	qi.Placeholder = "Type a question and press Enter"
	qi.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		dispatch:   dispatch,
		fileInput:  fi,
		queryInput: qi,
		output:     viewport.New(0, outputHeight),
		answer:     viewport.New(0, 0),
		spinner:    sp,
		texts: map[SurfaceID]string{
			SurfaceUploadStatus: "No file uploaded yet.",
			SurfaceOutput:       "Pipeline output appears here.",
			SurfaceAnswer:       "No answer yet.",
		},
		palette: render.PaletteFor(initial),
	}
}

// Init starts the cursor blink and the busy spinner.
func (m Model) Init() tea.Cmd { return tea.Batch(textinput.Blink, m.spinner.Tick) }

// Update handles key, window and surface events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		bw, bh := boxStyle.GetFrameSize()
		// header + upload box + status + output box + query box + help
		reserved := 1 + (1 + bh) + 1 + (outputHeight + bh) + (1 + bh) + 1
		m.output.Width = max(20, msg.Width-bw)
		m.answer.Width = max(20, msg.Width-bw)
		m.answer.Height = max(3, msg.Height-reserved-bh)
		m.output.SetContent(m.texts[SurfaceOutput])
		m.answer.SetContent(m.texts[SurfaceAnswer])
		return m, nil
	case surfaceMsg:
		m.texts[msg.id] = msg.text
		switch msg.id {
		case SurfaceOutput:
			m.output.SetContent(msg.text)
			m.output.GotoTop()
		case SurfaceAnswer:
			m.answer.SetContent(msg.text)
			m.answer.GotoTop()
		}
		return m, nil
	case alertMsg:
		m.alert = msg.text
		return m, nil
	case themeMsg:
		m.palette = render.PaletteFor(msg.theme)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.alert != "" {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
				m.alert = ""
			}
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.focus == focusFile {
				return m, m.run(controller.ActionUpload, m.fileInput.Value())
			}
			return m, m.run(controller.ActionQuery, m.queryInput.Value())
		case "tab", "shift+tab":
			m.toggleFocus()
			return m, nil
		case "ctrl+p":
			return m, m.run(controller.ActionRunPipeline, "")
		case "ctrl+r":
			return m, m.run(controller.ActionResetIndex, "")
		case "ctrl+t":
			return m, m.run(controller.ActionToggleTheme, "")
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.answer, cmd = m.answer.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	if m.focus == focusFile {
		m.fileInput, cmd = m.fileInput.Update(msg)
	} else {
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

// run dispatches an action off the UI loop. Results come back as surface
// messages through the bridge; errors have already been shown there.
func (m Model) run(action controller.Action, input string) tea.Cmd {
	d := m.dispatch
	return func() tea.Msg {
		_ = d.Dispatch(context.Background(), action, input)
		return nil
	}
}

func (m *Model) toggleFocus() {
	if m.focus == focusFile {
		m.focus = focusQuery
		m.fileInput.Blur()
		m.queryInput.Focus()
		return
	}
	m.focus = focusFile
	m.queryInput.Blur()
	m.fileInput.Focus()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	p := m.palette
	box := boxStyle.BorderForeground(p.Border)

	header := p.Heading.Render("Financial News QA") + "  " + p.Muted.Render("theme: "+string(p.Theme))
	upload := box.Render(m.fileInput.View())
	status := m.surfaceLine(SurfaceUploadStatus)
	output := box.Render(m.withSpinner(SurfaceOutput, m.output.View()))
	query := box.Render(m.queryInput.View())
	answer := box.Render(m.withSpinner(SurfaceAnswer, m.answer.View()))

	footer := p.Muted.Render("enter submit • tab switch field • ctrl+p run pipeline • ctrl+r reset index • ctrl+t theme • pgup/pgdn scroll • ctrl+c quit")
	if m.alert != "" {
		footer = p.Alert.Render(m.alert) + " " + p.Muted.Render("(enter to dismiss)")
	}
	return strings.Join([]string{header, upload, status, output, query, answer, footer}, "\n")
}

func (m Model) surfaceLine(id SurfaceID) string {
	text := m.texts[id]
	if controller.IsPlaceholder(text) {
		return m.spinner.View() + " " + m.palette.Muted.Render(text)
	}
	return m.palette.Text.Render(text)
}

func (m Model) withSpinner(id SurfaceID, body string) string {
	if controller.IsPlaceholder(m.texts[id]) {
		return m.spinner.View() + " " + body
	}
	return body
}

var boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
