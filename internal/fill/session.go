// Package fill resolves the parameters of a command template one at a time.
//
// A Session is the interactive state machine: it consumes character,
// backspace, submit and cancel events and substitutes the pending input for
// the next parameter on every submit. Run and Resolve drive a Session from an
// Asker or a fixed list of values.
package fill

import (
	"errors"
	"strings"

	"github.com/mark3labs/trove/internal/logger"
	"github.com/mark3labs/trove/internal/template"
)

// ErrCancelled is returned when the user aborts a session.
var ErrCancelled = errors.New("parameter input cancelled")

// Private-use code points standing in for tokens typed by the user until the
// final cleanup has run.
const (
	startPlaceholder = "\uE000"
	endPlaceholder   = "\uE001"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateAwaitingInput State = iota
	StateSubmitted
	StateDone
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateSubmitted:
		return "submitted"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// EventKind identifies an input event.
type EventKind int

const (
	EventChar EventKind = iota
	EventBackspace
	EventSubmit
	EventCancel
)

// Event is one input event. Char is only meaningful for EventChar.
type Event struct {
	Kind EventKind
	Char rune
}

// Char returns a character input event.
func Char(r rune) Event { return Event{Kind: EventChar, Char: r} }

// Backspace returns an event that removes the last pending character.
func Backspace() Event { return Event{Kind: EventBackspace} }

// Submit returns an event that substitutes the pending input.
func Submit() Event { return Event{Kind: EventSubmit} }

// Cancel returns an event that aborts the session.
func Cancel() Event { return Event{Kind: EventCancel} }

// Session holds the state of one fill: the partially resolved template, the
// number of parameters provided so far and the pending input.
type Session struct {
	tokens   template.Tokens
	template string
	provided int
	input    []rune
	state    State
	result   string
}

// NewSession starts a fill of tpl. It fails if the token pair is invalid.
// A template without occurrences is resolved immediately.
func NewSession(tpl string, tokens template.Tokens) (*Session, error) {
	if err := tokens.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		tokens:   tokens,
		template: tpl,
		state:    StateAwaitingInput,
	}
	if template.Count(tpl, tokens.Start) == 0 {
		s.finish(tpl)
	}
	return s, nil
}

// Handle applies ev and returns the resulting state.
// Events after Done or Cancelled are ignored.
func (s *Session) Handle(ev Event) State {
	if s.state == StateDone || s.state == StateCancelled {
		return s.state
	}

	switch ev.Kind {
	case EventCancel:
		logger.Debug("Fill cancelled after %d parameters", s.provided)
		s.input = nil
		s.state = StateCancelled
	case EventBackspace:
		if len(s.input) > 0 {
			s.input = s.input[:len(s.input)-1]
		}
	case EventChar:
		s.input = append(s.input, ev.Char)
	case EventSubmit:
		s.submit()
	}
	return s.state
}

// SetInput replaces the pending input.
func (s *Session) SetInput(value string) {
	s.input = []rune(value)
}

func (s *Session) submit() {
	s.state = StateSubmitted

	value := guard(string(s.input), s.tokens)
	replaced := template.ReplaceFirst(s.template, s.tokens, value)
	s.input = s.input[:0]

	remaining := template.Count(replaced, s.tokens.Start)
	logger.Debug("Parameter %d submitted, %d remaining", s.provided+1, remaining)
	if remaining == 0 {
		s.finish(replaced)
		return
	}

	s.provided++
	s.template = replaced
	s.state = StateAwaitingInput
}

func (s *Session) finish(resolved string) {
	s.template = resolved
	s.result = restore(template.Cleanup(resolved, s.tokens), s.tokens)
	s.state = StateDone
}

// guard hides the tokens inside a user value behind placeholders and escapes
// its backslashes, so that later rounds and the cleanup pass keep it literal.
func guard(value string, tokens template.Tokens) string {
	value = strings.ReplaceAll(value, tokens.Start, startPlaceholder)
	if tokens.End != "" {
		value = strings.ReplaceAll(value, tokens.End, endPlaceholder)
	}
	return template.Escape(value, tokens)
}

// restore turns placeholders back into the literal tokens.
func restore(resolved string, tokens template.Tokens) string {
	resolved = strings.ReplaceAll(resolved, startPlaceholder, tokens.Start)
	if tokens.End != "" {
		resolved = strings.ReplaceAll(resolved, endPlaceholder, tokens.End)
	}
	return resolved
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Template returns the partially resolved template.
func (s *Session) Template() string { return s.template }

// Tokens returns the token pair of the session.
func (s *Session) Tokens() template.Tokens { return s.tokens }

// Provided returns how many parameters have been resolved.
func (s *Session) Provided() int { return s.provided }

// Input returns the pending input.
func (s *Session) Input() string { return string(s.input) }

// Remaining returns the number of unresolved occurrences.
func (s *Session) Remaining() int {
	if s.state == StateDone {
		return 0
	}
	return template.Count(s.template, s.tokens.Start)
}

// Span returns the range of the next occurrence in Template.
func (s *Session) Span() (template.Span, bool) {
	if s.state != StateAwaitingInput {
		return template.Span{}, false
	}
	return template.NextSpan(s.template, s.tokens)
}

// Result returns the resolved command once the session is done.
func (s *Session) Result() (string, bool) {
	if s.state != StateDone {
		return "", false
	}
	return s.result, true
}
