package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/trove/internal/fill"
	"github.com/mark3labs/trove/internal/template"
	"github.com/mark3labs/trove/internal/trove"
	"github.com/mark3labs/trove/internal/tui/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTokens = template.Tokens{Start: "#", End: "!"}
	testTheme  = NewTheme("#f2e5bc", "#00ffff", "  >")
)

// send feeds msgs to the app and returns the command of the last update.
func send(a *App, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = a.Update(msg)
	}
	return cmd
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func newPickerApp(t *testing.T) *App {
	t.Helper()
	a, err := NewApp(Options{
		Tokens:   testTokens,
		Theme:    testTheme,
		Commands: testfixtures.Commands(),
	})
	require.NoError(t, err)
	a.Init()
	send(a, tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return a
}

func TestNewApp_Errors(t *testing.T) {
	_, err := NewApp(Options{Tokens: template.Tokens{}, Commands: testfixtures.Commands()})
	assert.ErrorIs(t, err, template.ErrEmptyStartToken)

	_, err = NewApp(Options{Tokens: testTokens})
	assert.Error(t, err, "picker without commands")
}

func TestApp_PreselectedWithoutParametersIsDone(t *testing.T) {
	a, err := NewApp(Options{
		Tokens:  testTokens,
		Theme:   testTheme,
		Command: &trove.Command{Name: "lit", Namespace: "default", Command: `echo \#1`},
	})
	require.NoError(t, err)
	require.True(t, a.Done())

	res, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "echo #1", res.Resolved)
}

func TestApp_FillScreen(t *testing.T) {
	cmd := &trove.Command{Name: "copy", Namespace: "default", Command: "cp #src! #dst!"}
	a, err := NewApp(Options{Tokens: testTokens, Theme: testTheme, Command: cmd})
	require.NoError(t, err)

	screen := testfixtures.Plain(a.render())
	assert.Contains(t, screen, "Provide 1st parameter")
	assert.Contains(t, screen, "cp #src! #dst!")
	assert.Contains(t, screen, "  >")

	send(a, testfixtures.Type("a.txt")...)
	assert.Contains(t, testfixtures.Plain(a.render()), "  >a.txt")

	quit := send(a, testfixtures.Key("enter"))
	assert.False(t, isQuit(t, quit))
	screen = testfixtures.Plain(a.render())
	assert.Contains(t, screen, "Provide 2nd parameter")
	assert.Contains(t, screen, "cp a.txt #dst!")

	send(a, testfixtures.Type("b.tx")...)
	send(a, testfixtures.Key("backspace"))
	send(a, testfixtures.Type("xt")...)
	quit = send(a, testfixtures.Key("enter"))
	assert.True(t, isQuit(t, quit))

	res, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "cp a.txt b.txt", res.Resolved)
	assert.Same(t, cmd, res.Command)
}

func TestApp_FillPaste(t *testing.T) {
	a, err := NewApp(Options{
		Tokens:  testTokens,
		Theme:   testTheme,
		Command: &trove.Command{Name: "say", Namespace: "default", Command: "echo #msg!"},
	})
	require.NoError(t, err)

	send(a, tea.PasteMsg{Content: "hello\nworld #!"})
	send(a, testfixtures.Key("enter"))

	res, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "echo helloworld #!", res.Resolved)
}

func TestApp_CancelKeys(t *testing.T) {
	for _, key := range []string{"esc", "ctrl+c", "ctrl+d", "ctrl+g"} {
		t.Run(key, func(t *testing.T) {
			a, err := NewApp(Options{
				Tokens:  testTokens,
				Theme:   testTheme,
				Command: &trove.Command{Name: "x", Namespace: "default", Command: "echo #a!"},
			})
			require.NoError(t, err)

			send(a, testfixtures.Type("partial")...)
			quit := send(a, testfixtures.Key(key))
			assert.True(t, isQuit(t, quit))

			_, err = a.Result()
			assert.ErrorIs(t, err, fill.ErrCancelled)
		})
	}
}

func TestApp_PickerSelectsAndFills(t *testing.T) {
	a := newPickerApp(t)

	screen := testfixtures.Plain(a.render())
	for _, c := range testfixtures.Commands() {
		assert.Contains(t, screen, c.Key())
	}

	send(a, testfixtures.Type("docker")...)
	require.Len(t, a.picker.Filtered(), 1)

	send(a, testfixtures.Key("enter"))
	require.Equal(t, modeFill, a.mode)
	assert.Contains(t, testfixtures.Plain(a.render()), "docker run -it #image! sh")

	send(a, testfixtures.Type("alpine")...)
	quit := send(a, testfixtures.Key("enter"))
	assert.True(t, isQuit(t, quit))

	res, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "docker run -it alpine sh", res.Resolved)
	assert.Equal(t, "docker/run", res.Command.Key())
}

func TestApp_PickerCommandWithoutParameters(t *testing.T) {
	a := newPickerApp(t)
	send(a, testfixtures.Type("git status")...)
	require.NotNil(t, a.picker.Selected())

	quit := send(a, testfixtures.Key("enter"))
	assert.True(t, isQuit(t, quit))

	res, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, "git status", res.Resolved)
}

func TestApp_PickerCancel(t *testing.T) {
	a := newPickerApp(t)
	quit := send(a, testfixtures.Key("esc"))
	assert.True(t, isQuit(t, quit))

	_, err := a.Result()
	assert.ErrorIs(t, err, fill.ErrCancelled)
}

func TestApp_PickerEnterWithoutMatch(t *testing.T) {
	a := newPickerApp(t)
	send(a, testfixtures.Type("zzz-nothing")...)
	assert.Nil(t, a.picker.Selected())
	assert.Contains(t, testfixtures.Plain(a.render()), "no matching commands")

	quit := send(a, testfixtures.Key("enter"))
	assert.Nil(t, quit)
	assert.Equal(t, modePicker, a.mode)
}

func TestPicker_RankAndNavigation(t *testing.T) {
	p := NewPicker(testfixtures.Commands(), map[string]int{"git/status": 0, "docker/run": 1}, testTheme)

	var keys []string
	for _, c := range p.Filtered() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"git/status", "docker/run", "default/copy", "git/commit"}, keys)

	assert.Equal(t, "git/status", p.Selected().Key())
	p.Update(testfixtures.Key("down"))
	assert.Equal(t, "docker/run", p.Selected().Key())
	p.Update(testfixtures.Key("up"))
	p.Update(testfixtures.Key("up"))
	assert.Equal(t, "git/status", p.Selected().Key(), "selection stops at the top")

	p.SetQuery("VCS")
	require.Len(t, p.Filtered(), 1)
	assert.Equal(t, "git/commit", p.Selected().Key())
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyPressMsg
		want fill.Event
		ok   bool
	}{
		{"enter", testfixtures.Key("enter"), fill.Submit(), true},
		{"esc", testfixtures.Key("esc"), fill.Cancel(), true},
		{"ctrl+g", testfixtures.Key("ctrl+g"), fill.Cancel(), true},
		{"backspace", testfixtures.Key("backspace"), fill.Backspace(), true},
		{"letter", testfixtures.Key("x"), fill.Char('x'), true},
		{"space", testfixtures.Key("space"), fill.Char(' '), true},
		{"multibyte", tea.KeyPressMsg{Code: 'é', Text: "é"}, fill.Char('é'), true},
		{"arrow", testfixtures.Key("up"), fill.Event{}, false},
		{"ctrl+a", testfixtures.Key("ctrl+a"), fill.Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keyEvent(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFillView_HighlightsActiveParameter(t *testing.T) {
	s, err := fill.NewSession("scp #file! #host!:#path!", testTokens)
	require.NoError(t, err)

	v := NewFillView(s, testTheme)
	out := v.View()
	plain := testfixtures.Plain(out)
	assert.Contains(t, plain, "scp #file! #host!:#path!")

	// The active parameter is styled separately from the rest of the line.
	assert.True(t, strings.Contains(out, testTheme.Primary.Render("#file!")))
}
