// Package tui is the terminal front-end: a command picker followed by the
// interactive fill screen.
package tui

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/trove/internal/fill"
	"github.com/mark3labs/trove/internal/logger"
	"github.com/mark3labs/trove/internal/template"
	"github.com/mark3labs/trove/internal/trove"
)

// Options configures an App.
type Options struct {
	Tokens template.Tokens
	Theme  Theme

	// Command skips the picker when set.
	Command *trove.Command

	// Commands, Rank and Query feed the picker.
	Commands []*trove.Command
	Rank     map[string]int
	Query    string
}

// Result is what the user picked and the resolved command text.
type Result struct {
	Command  *trove.Command
	Resolved string
}

type mode int

const (
	modePicker mode = iota
	modeFill
	modeDone
)

// App is the bubbletea model of a picker followed by a fill screen.
type App struct {
	tokens template.Tokens
	theme  Theme
	mode   mode

	picker *Picker
	fill   *FillView

	command   *trove.Command
	result    string
	cancelled bool

	width  int
	height int
}

// NewApp validates opts and builds the model. A preselected command without
// parameters is resolved immediately.
func NewApp(opts Options) (*App, error) {
	if err := opts.Tokens.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		tokens: opts.Tokens,
		theme:  opts.Theme,
		width:  defaultWidth,
		height: defaultHeight,
	}

	if opts.Command != nil {
		if err := a.start(opts.Command); err != nil {
			return nil, err
		}
		return a, nil
	}

	if len(opts.Commands) == 0 {
		return nil, errors.New("no commands stored")
	}
	a.picker = NewPicker(opts.Commands, opts.Rank, opts.Theme)
	if opts.Query != "" {
		a.picker.SetQuery(opts.Query)
	}
	a.mode = modePicker
	return a, nil
}

// start opens a fill session for cmd.
func (a *App) start(cmd *trove.Command) error {
	session, err := fill.NewSession(cmd.Command, a.tokens)
	if err != nil {
		return err
	}
	logger.Debug("Filling %s with %d parameters", cmd.Key(), session.Remaining())

	a.command = cmd
	a.fill = NewFillView(session, a.theme)
	a.fill.SetWidth(a.width)
	a.mode = modeFill
	a.settle()
	return nil
}

// settle moves to modeDone once the session has ended.
func (a *App) settle() {
	switch a.fill.Session().State() {
	case fill.StateDone:
		a.result, _ = a.fill.Session().Result()
		a.mode = modeDone
	case fill.StateCancelled:
		a.cancelled = true
		a.mode = modeDone
	}
}

// Done reports whether the app has finished.
func (a *App) Done() bool {
	return a.mode == modeDone
}

// Result returns the outcome; fill.ErrCancelled if the user cancelled.
func (a *App) Result() (*Result, error) {
	if a.cancelled || a.mode != modeDone {
		return nil, fill.ErrCancelled
	}
	return &Result{Command: a.command, Resolved: a.result}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.mode == modePicker {
		return a.picker.Init()
	}
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = size.Width, size.Height
		if a.picker != nil {
			a.picker.SetSize(size.Width, size.Height)
		}
		if a.fill != nil {
			a.fill.SetWidth(size.Width)
		}
		return a, nil
	}

	switch a.mode {
	case modePicker:
		return a.updatePicker(msg)
	case modeFill:
		a.fill.Update(msg)
		a.settle()
		if a.Done() {
			return a, tea.Quit
		}
	case modeDone:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c", "ctrl+d", "ctrl+g":
			a.cancelled = true
			a.mode = modeDone
			return a, tea.Quit
		case "enter":
			cmd := a.picker.Selected()
			if cmd == nil {
				return a, nil
			}
			if err := a.start(cmd); err != nil {
				logger.Error("Failed to start fill for %s: %v", cmd.Key(), err)
				return a, nil
			}
			if a.Done() {
				return a, tea.Quit
			}
			return a, nil
		}
	}
	return a, a.picker.Update(msg)
}

// render returns the screen content.
func (a *App) render() string {
	switch a.mode {
	case modePicker:
		return a.picker.View()
	case modeFill:
		return a.fill.View()
	}
	return ""
}

// View implements tea.Model.
func (a *App) View() tea.View {
	return screenView(a.render(), a.width, a.height)
}

// Run runs the app as a standalone program and returns its result.
func Run(opts Options) (*Result, error) {
	app, err := NewApp(opts)
	if err != nil {
		return nil, err
	}
	if app.Done() {
		return app.Result()
	}

	final, err := tea.NewProgram(app).Run()
	if err != nil {
		return nil, fmt.Errorf("running terminal UI: %w", err)
	}
	m, ok := final.(*App)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Result()
}
