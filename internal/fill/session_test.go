package fill

import (
	"testing"

	"github.com/mark3labs/trove/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hashBang = template.Tokens{Start: "#", End: "!"}

// typeString feeds value into s as character events.
func typeString(s *Session, value string) {
	for _, r := range value {
		s.Handle(Char(r))
	}
}

func TestNewSession_RejectsEmptyStartToken(t *testing.T) {
	s, err := NewSession("echo #", template.Tokens{End: "!"})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, template.ErrEmptyStartToken)
}

func TestNewSession_WithoutParametersIsDone(t *testing.T) {
	s, err := NewSession(`echo \#literal`, hashBang)
	require.NoError(t, err)

	assert.Equal(t, StateDone, s.State())
	result, ok := s.Result()
	assert.True(t, ok)
	assert.Equal(t, "echo #literal", result)
}

func TestSession_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		tpl    string
		tokens template.Tokens
		values []string
		want   string
	}{
		{
			name:   "named parameter with end token",
			tpl:    "echo #param1$",
			tokens: template.Tokens{Start: "#", End: "$"},
			values: []string{"Hello, world!"},
			want:   "echo Hello, world!",
		},
		{
			name:   "bare start token",
			tpl:    "test1 # test3",
			tokens: template.Tokens{Start: "#"},
			values: []string{"replacement"},
			want:   "test1 replacement test3",
		},
		{
			name:   "escaped token survives to the result",
			tpl:    `wewantto\##!escape`,
			tokens: hashBang,
			values: []string{"replacement"},
			want:   "wewantto#replacementescape",
		},
		{
			name:   "value containing tokens stays literal",
			tpl:    "echo #a! #b!",
			tokens: hashBang,
			values: []string{"x#y", "z!"},
			want:   "echo x#y z!",
		},
		{
			name:   "value ending in backslash does not escape the next parameter",
			tpl:    "say #a!#b!",
			tokens: hashBang,
			values: []string{`C:\`, "x"},
			want:   `say C:\x`,
		},
		{
			name:   "multi-byte values",
			tpl:    "grüß #wer! und #was!",
			tokens: hashBang,
			values: []string{"Wörld", "☃"},
			want:   "grüß Wörld und ☃",
		},
		{
			name:   "unterminated occurrence keeps its payload",
			tpl:    "cp #src #dst!",
			tokens: hashBang,
			values: []string{"a", "b"},
			want:   "cp asrc b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession(tt.tpl, tt.tokens)
			require.NoError(t, err)

			for i, v := range tt.values {
				require.Equal(t, StateAwaitingInput, s.State(), "before value %d", i)
				typeString(s, v)
				s.Handle(Submit())
			}

			require.Equal(t, StateDone, s.State())
			result, ok := s.Result()
			require.True(t, ok)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestSession_ResolvesLeftToRight(t *testing.T) {
	s, err := NewSession("cp #src! #dst!", hashBang)
	require.NoError(t, err)

	span, ok := s.Span()
	require.True(t, ok)
	assert.Equal(t, template.Span{Start: 3, End: 8}, span)
	assert.Equal(t, 2, s.Remaining())

	typeString(s, "a.txt")
	assert.Equal(t, StateAwaitingInput, s.Handle(Submit()))
	assert.Equal(t, "cp a.txt #dst!", s.Template())
	assert.Equal(t, 1, s.Provided())
	assert.Equal(t, 1, s.Remaining())
	assert.Empty(t, s.Input())

	span, ok = s.Span()
	require.True(t, ok)
	assert.Equal(t, "#dst!", s.Template()[span.Start:span.End])

	typeString(s, "b.txt")
	assert.Equal(t, StateDone, s.Handle(Submit()))
	assert.Zero(t, s.Remaining())

	_, ok = s.Span()
	assert.False(t, ok)
}

func TestSession_Backspace(t *testing.T) {
	s, err := NewSession("echo #a!", hashBang)
	require.NoError(t, err)

	s.Handle(Backspace())
	assert.Empty(t, s.Input(), "backspace on empty input is a no-op")

	typeString(s, "héé")
	s.Handle(Backspace())
	assert.Equal(t, "hé", s.Input())
	assert.Equal(t, StateAwaitingInput, s.State())

	s.Handle(Submit())
	result, _ := s.Result()
	assert.Equal(t, "echo hé", result)
}

func TestSession_Cancel(t *testing.T) {
	s, err := NewSession("echo #a! #b!", hashBang)
	require.NoError(t, err)

	typeString(s, "x")
	s.Handle(Submit())
	typeString(s, "pending")

	assert.Equal(t, StateCancelled, s.Handle(Cancel()))
	assert.Empty(t, s.Input())

	_, ok := s.Result()
	assert.False(t, ok)

	// Events after a terminal state are ignored.
	assert.Equal(t, StateCancelled, s.Handle(Submit()))
	assert.Equal(t, StateCancelled, s.Handle(Char('z')))
	assert.Empty(t, s.Input())
}

func TestSession_EmptySubmit(t *testing.T) {
	s, err := NewSession("ls #flags! -l", hashBang)
	require.NoError(t, err)

	s.Handle(Submit())
	result, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, "ls  -l", result)
}

func TestSession_BackslashesInValueStayLiteral(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"double backslash", `a\\b`, `echo a\\b next`},
		{"trailing backslash", `dir\`, `echo dir\ next`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession("echo #a! #b!", hashBang)
			require.NoError(t, err)

			typeString(s, tt.value)
			s.Handle(Submit())
			require.Equal(t, StateAwaitingInput, s.State(), "a trailing backslash must not escape the next parameter")
			typeString(s, "next")
			s.Handle(Submit())

			result, ok := s.Result()
			require.True(t, ok)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_input", StateAwaitingInput.String())
	assert.Equal(t, "submitted", StateSubmitted.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "unknown", State(42).String())
}
