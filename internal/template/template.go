// Package template implements the parameter grammar of command templates.
//
// A command template is plain text containing parameter occurrences. An
// occurrence starts with the start token, may carry payload text (usually a
// parameter name) and ends with the end token. A backslash in front of a token
// or another backslash escapes it. All functions are pure: they never mutate
// their input and always return a new string.
package template

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmptyStartToken is returned when a token pair has no start token.
var ErrEmptyStartToken = errors.New("parameter token must not be empty")

// escapeChar marks the next token or backslash as literal text.
const escapeChar = '\\'

// Tokens is the delimiter pair of a parameter occurrence.
// End may be empty, in which case an occurrence is exactly the start token.
type Tokens struct {
	Start string `mapstructure:"start" yaml:"start" json:"start"`
	End   string `mapstructure:"end" yaml:"end" json:"end"`
}

// Validate rejects token pairs that cannot delimit anything.
func (t Tokens) Validate() error {
	if t.Start == "" {
		return ErrEmptyStartToken
	}
	return nil
}

// IsParameterized reports whether the template has at least one unescaped
// occurrence of token.
func IsParameterized(tpl, token string) bool {
	return Count(tpl, token) > 0
}

// hasToken reports whether s contains tok at byte offset i.
// The empty token never matches.
func hasToken(s string, i int, tok string) bool {
	return tok != "" && strings.HasPrefix(s[i:], tok)
}

// runeLen returns the byte length of the rune starting at s[i].
func runeLen(s string, i int) int {
	_, n := utf8.DecodeRuneInString(s[i:])
	return n
}

// skipEscape expects s[i] to be a backslash and returns the offset just past
// the unit it escapes: the first of units found after the backslash, or a
// single rune otherwise.
func skipEscape(s string, i int, units ...string) int {
	i++
	if i >= len(s) {
		return i
	}
	for _, u := range units {
		if hasToken(s, i, u) {
			return i + len(u)
		}
	}
	return i + runeLen(s, i)
}
