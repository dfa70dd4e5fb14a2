// Package term renders moodbot state to a terminal with lipgloss.
package term

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
	"github.com/teslashibe/go-moodbot/pkg/ui"
)

// Printer writes a panel every time the visible text changes.
type Printer struct {
	w  io.Writer
	mu sync.Mutex

	title    lipgloss.Style
	panel    lipgloss.Style
	heading  lipgloss.Style
	response lipgloss.Style
	history  lipgloss.Style
	notice   lipgloss.Style
}

// New creates a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{
		w:        w,
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555")).Padding(0, 1),
		heading:  lipgloss.NewStyle().Bold(true),
		response: lipgloss.NewStyle().Italic(true).Width(60),
		history:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		notice:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
	}
}

// Render implements ui.Renderer. Quiet frames print nothing.
func (p *Printer) Render(ev pipeline.UpdateEvent, snap *ui.Snapshot) {
	switch {
	case ev.Notice != "":
		p.PrintNotice(ev.Notice)
	case ev.HasResponse():
		p.PrintSnapshot(snap)
	}
}

// PrintSnapshot writes the panel for snap.
func (p *Printer) PrintSnapshot(snap *ui.Snapshot) {
	if snap == nil {
		return
	}
	p.write(p.Format(snap) + "\n")
}

// PrintNotice writes a one-line warning.
func (p *Printer) PrintNotice(msg string) {
	p.write(p.notice.Render("! "+msg) + "\n")
}

// Format builds the panel text.
func (p *Printer) Format(snap *ui.Snapshot) string {
	color := snap.Indicator.Color
	if color == "" {
		color = emotion.DefaultHex
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")

	var b strings.Builder
	b.WriteString(p.title.Render("Mood Detection & ChatBot"))
	b.WriteString("\n\n")
	b.WriteString(p.heading.Render("Detected Emotion: "))
	b.WriteString(fmt.Sprintf("%s %s\n\n", dot, snap.Indicator.Label))
	b.WriteString(p.heading.Render("ChatBot Response:"))
	b.WriteString("\n")
	b.WriteString(p.response.Render(snap.Response))
	b.WriteString("\n\n")
	b.WriteString(p.heading.Render("Emotion History"))
	for _, line := range snap.History {
		b.WriteString("\n")
		b.WriteString(p.history.Render("  " + line))
	}
	return p.panel.Render(b.String())
}

func (p *Printer) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(p.w, s)
}
