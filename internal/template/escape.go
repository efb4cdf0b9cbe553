package template

import "strings"

// Escape prefixes every backslash, start token and end token in input with a
// backslash so that the text is inert payload once embedded in a template.
func Escape(input string, tokens Tokens) string {
	var b strings.Builder
	b.Grow(len(input) * 2)

	for i := 0; i < len(input); {
		switch {
		case input[i] == escapeChar:
			b.WriteString(`\\`)
			i++
		case hasToken(input, i, tokens.Start):
			b.WriteByte(escapeChar)
			b.WriteString(tokens.Start)
			i += len(tokens.Start)
		case hasToken(input, i, tokens.End):
			b.WriteByte(escapeChar)
			b.WriteString(tokens.End)
			i += len(tokens.End)
		default:
			n := runeLen(input, i)
			b.WriteString(input[i : i+n])
			i += n
		}
	}

	return b.String()
}

// Cleanup removes escape markers from a resolved template. An escaped token
// or backslash is emitted literally without its marker. Any other backslash is
// kept together with the character that follows it, and a trailing backslash
// is kept as is.
func Cleanup(tpl string, tokens Tokens) string {
	var b strings.Builder
	b.Grow(len(tpl))

	for i := 0; i < len(tpl); {
		if tpl[i] != escapeChar {
			n := runeLen(tpl, i)
			b.WriteString(tpl[i : i+n])
			i += n
			continue
		}

		i++
		switch {
		case i >= len(tpl):
			b.WriteByte(escapeChar)
		case hasToken(tpl, i, tokens.Start):
			b.WriteString(tokens.Start)
			i += len(tokens.Start)
		case hasToken(tpl, i, tokens.End):
			b.WriteString(tokens.End)
			i += len(tokens.End)
		case tpl[i] == escapeChar:
			b.WriteByte(escapeChar)
			i++
		default:
			n := runeLen(tpl, i)
			b.WriteByte(escapeChar)
			b.WriteString(tpl[i : i+n])
			i += n
		}
	}

	return b.String()
}
