package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/trove/internal/fill"
)

// keyEvent maps a key press to a fill event. Keys without a meaning on the
// fill screen report false.
func keyEvent(msg tea.KeyPressMsg) (fill.Event, bool) {
	switch msg.String() {
	case "esc", "ctrl+c", "ctrl+d", "ctrl+g":
		return fill.Cancel(), true
	case "enter":
		return fill.Submit(), true
	case "backspace":
		return fill.Backspace(), true
	}

	if msg.Text == "" || msg.Mod&(tea.ModCtrl|tea.ModAlt) != 0 {
		return fill.Event{}, false
	}
	r := []rune(msg.Text)
	if len(r) != 1 {
		return fill.Event{}, false
	}
	return fill.Char(r[0]), true
}

// pasteEvents turns pasted text into character events. Line breaks are
// dropped so a paste cannot submit.
func pasteEvents(content string) []fill.Event {
	var events []fill.Event
	for _, r := range content {
		if r == '\n' || r == '\r' {
			continue
		}
		events = append(events, fill.Char(r))
	}
	return events
}

// FillView renders a fill session: the parameter number, the template with
// the active parameter highlighted and the pending input.
type FillView struct {
	session *fill.Session
	theme   Theme
	width   int
}

// NewFillView creates a view over session.
func NewFillView(session *fill.Session, theme Theme) *FillView {
	return &FillView{session: session, theme: theme, width: defaultWidth}
}

// SetWidth sets the wrapping width.
func (f *FillView) SetWidth(width int) {
	f.width = width
}

// Session returns the underlying session.
func (f *FillView) Session() *fill.Session {
	return f.session
}

// Update feeds key presses and pastes to the session and returns its state.
func (f *FillView) Update(msg tea.Msg) fill.State {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if ev, ok := keyEvent(msg); ok {
			return f.session.Handle(ev)
		}
	case tea.PasteMsg:
		for _, ev := range pasteEvents(msg.Content) {
			f.session.Handle(ev)
		}
	}
	return f.session.State()
}

// View renders the fill screen.
func (f *FillView) View() string {
	s := f.session
	var b strings.Builder

	title := "Provide " + fill.Ordinal(s.Provided()+1) + " parameter"
	b.WriteString(f.theme.Title.Render(title))
	b.WriteString("\n\n")

	tpl := s.Template()
	var line string
	if span, ok := s.Span(); ok {
		before, inside, after := span.Cut(tpl)
		line = f.theme.Command.Render(before) + f.theme.Primary.Render(inside) + f.theme.Command.Render(after)
	} else {
		line = f.theme.Command.Render(tpl)
	}
	b.WriteString(lipgloss.NewStyle().Width(f.width).Render(line))
	b.WriteString("\n\n")

	b.WriteString(f.theme.Prompt.Render(f.theme.QueryPrefix))
	b.WriteString(s.Input())
	b.WriteString("\n\n")

	b.WriteString(f.theme.Dim.Render("enter submit · esc cancel"))
	return b.String()
}
