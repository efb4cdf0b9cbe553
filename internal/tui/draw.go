package tui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// DrawText renders styled text into area.
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// screenView draws content onto a width x height canvas and wraps it in an
// alt-screen view.
func screenView(content string, width, height int) tea.View {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	canvas := uv.NewScreenBuffer(width, height)
	DrawText(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: width, Y: height},
	}, content)

	var view tea.View
	view.AltScreen = true
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}
