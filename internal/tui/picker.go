package tui

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/trove/internal/trove"
)

// Picker lets the user filter the stored commands and choose one.
type Picker struct {
	all      []*trove.Command
	filtered []*trove.Command
	input    textinput.Model
	selected int
	offset   int
	width    int
	height   int
	theme    Theme
}

// NewPicker creates a picker over cmds. Commands present in rank are listed
// first, lowest rank first; the rest keep namespace/name order.
func NewPicker(cmds []*trove.Command, rank map[string]int, theme Theme) *Picker {
	all := make([]*trove.Command, len(cmds))
	copy(all, cmds)
	sort.SliceStable(all, func(i, j int) bool {
		ri, iok := rank[all[i].Key()]
		rj, jok := rank[all[j].Key()]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		if all[i].Namespace != all[j].Namespace {
			return all[i].Namespace < all[j].Namespace
		}
		return all[i].Name < all[j].Name
	})

	input := textinput.New()
	input.Prompt = theme.QueryPrefix + " "
	input.Placeholder = "filter by name, namespace, tag or text"
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle(),
			Placeholder: theme.Dim,
			Prompt:      theme.Prompt,
		},
		Blurred: textinput.StyleState{
			Text:        theme.Dim,
			Placeholder: theme.Dim,
			Prompt:      theme.Dim,
		},
		Cursor: textinput.CursorStyle{
			Color: theme.Prompt.GetForeground(),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})

	p := &Picker{
		all:    all,
		input:  input,
		width:  defaultWidth,
		height: defaultHeight,
		theme:  theme,
	}
	p.filter()
	return p
}

// Init focuses the filter input.
func (p *Picker) Init() tea.Cmd {
	return p.input.Focus()
}

// SetQuery replaces the filter text.
func (p *Picker) SetQuery(q string) {
	p.input.SetValue(q)
	p.filter()
}

// SetSize updates the dimensions of the picker.
func (p *Picker) SetSize(width, height int) {
	p.width, p.height = width, height
	p.input.SetWidth(width - lipgloss.Width(p.input.Prompt) - 1)
	p.clampOffset()
}

// Selected returns the highlighted command or nil when nothing matches.
func (p *Picker) Selected() *trove.Command {
	if p.selected < 0 || p.selected >= len(p.filtered) {
		return nil
	}
	return p.filtered[p.selected]
}

// Filtered returns the commands matching the current filter.
func (p *Picker) Filtered() []*trove.Command {
	return p.filtered
}

// Update handles navigation keys and forwards the rest to the filter input.
func (p *Picker) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "up", "ctrl+p", "ctrl+k":
			p.move(-1)
			return nil
		case "down", "ctrl+n", "ctrl+j", "tab":
			p.move(1)
			return nil
		case "pgup":
			p.move(-p.listHeight())
			return nil
		case "pgdown":
			p.move(p.listHeight())
			return nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.filter()
	}
	return cmd
}

func (p *Picker) move(delta int) {
	if len(p.filtered) == 0 {
		return
	}
	p.selected += delta
	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	p.clampOffset()
}

func (p *Picker) filter() {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))
	if query == "" {
		p.filtered = p.all
	} else {
		p.filtered = p.filtered[:0:0]
		for _, c := range p.all {
			if trove.Matches(c, query) || strings.Contains(c.Key(), query) {
				p.filtered = append(p.filtered, c)
			}
		}
	}
	p.selected = 0
	p.offset = 0
}

// listHeight is the number of command rows that fit under the input, the
// preview and the hint line.
func (p *Picker) listHeight() int {
	h := p.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (p *Picker) clampOffset() {
	h := p.listHeight()
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+h {
		p.offset = p.selected - h + 1
	}
}

// View renders the filter input, the matching commands and a preview of the
// selected template.
func (p *Picker) View() string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n")

	if len(p.filtered) == 0 {
		b.WriteString(p.theme.Dim.Render("  no matching commands"))
		b.WriteString("\n")
	}

	end := p.offset + p.listHeight()
	if end > len(p.filtered) {
		end = len(p.filtered)
	}
	for i := p.offset; i < end; i++ {
		c := p.filtered[i]
		line := fmt.Sprintf("%s  %s", c.Key(), c.Command)
		line = truncate(line, p.width-2)
		if i == p.selected {
			b.WriteString(p.theme.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if c := p.Selected(); c != nil && c.Description != "" {
		b.WriteString(p.theme.Dim.Render(truncate(firstLine(c.Description), p.width)))
		b.WriteString("\n")
	}
	b.WriteString(p.theme.Dim.Render(fmt.Sprintf("%d/%d · ↑↓ move · enter select · esc quit", len(p.filtered), len(p.all))))
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
