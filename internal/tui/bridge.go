package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"finqa/internal/domain"
)

// SurfaceID names an output region of the UI.
type SurfaceID int

const (
	SurfaceUploadStatus SurfaceID = iota
	SurfaceOutput
	SurfaceAnswer
)

type surfaceMsg struct {
	id   SurfaceID
	text string
}

type alertMsg struct {
	text string
}

type themeMsg struct {
	theme domain.Theme
}

// Bridge lets controllers running outside the Bubble Tea loop update the UI.
// Every update becomes a message delivered in send order by a single pump
// goroutine, so the model is only touched from Update and the last message
// sent wins.
type Bridge struct {
	mu       sync.Mutex
	ready    *sync.Cond
	pending  []tea.Msg
	attached bool
}

// NewBridge returns a bridge that buffers messages until Attach.
func NewBridge() *Bridge {
	b := &Bridge{}
	b.ready = sync.NewCond(&b.mu)
	return b
}

// Attach connects the bridge to a program. Messages sent before Attach are
// delivered first, in order, once the program starts reading.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return
	}
	b.attached = true
	go b.pump(p)
}

func (b *Bridge) pump(p *tea.Program) {
	for {
		b.mu.Lock()
		for len(b.pending) == 0 {
			b.ready.Wait()
		}
		msg := b.pending[0]
		b.pending = b.pending[1:]
		b.mu.Unlock()
		p.Send(msg)
	}
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	b.pending = append(b.pending, msg)
	b.mu.Unlock()
	b.ready.Signal()
}

// Surface returns a handle that writes to the given region.
func (b *Bridge) Surface(id SurfaceID) domain.Surface {
	return bridgeSurface{bridge: b, id: id}
}

// Alert shows a modal message that must be dismissed before input resumes.
func (b *Bridge) Alert(message string) {
	b.send(alertMsg{text: message})
}

// ApplyTheme switches the palette of the running UI.
func (b *Bridge) ApplyTheme(t domain.Theme) {
	b.send(themeMsg{theme: t})
}

type bridgeSurface struct {
	bridge *Bridge
	id     SurfaceID
}

func (s bridgeSurface) Set(text string) {
	s.bridge.send(surfaceMsg{id: s.id, text: text})
}
