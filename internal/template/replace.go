package template

// ReplaceFirst substitutes value for the first unescaped occurrence in tpl and
// leaves everything else, escape markers included, untouched.
//
// The occurrence extends to the nearest unescaped end token. If another start
// token or the end of the text comes first, or the end token is empty, the
// occurrence is the start token alone and its payload stays in the output.
func ReplaceFirst(tpl string, tokens Tokens, value string) string {
	pos := firstOccurrence(tpl, tokens)
	if pos < 0 {
		return tpl
	}

	end := pos + len(tokens.Start)
	if closing, ok := closingEnd(tpl, end, tokens); ok {
		end = closing
	}
	return tpl[:pos] + value + tpl[end:]
}

// firstOccurrence locates the first unescaped start token. Both tokens are
// escape units here, so an escaped end token is skipped as a whole.
func firstOccurrence(tpl string, tokens Tokens) int {
	if tokens.Start == "" {
		return -1
	}
	for i := 0; i < len(tpl); {
		if tpl[i] == escapeChar {
			i = skipEscape(tpl, i, tokens.Start, tokens.End)
			continue
		}
		if hasToken(tpl, i, tokens.Start) {
			return i
		}
		i += runeLen(tpl, i)
	}
	return -1
}

// closingEnd searches forward from `from` for the end token that closes an
// occurrence and returns the offset just past it. The search gives up at
// another unescaped start token.
func closingEnd(tpl string, from int, tokens Tokens) (int, bool) {
	if tokens.End == "" {
		return 0, false
	}
	for j := from; j < len(tpl); {
		if tpl[j] == escapeChar {
			j = skipEscape(tpl, j)
			continue
		}
		if hasToken(tpl, j, tokens.End) {
			return j + len(tokens.End), true
		}
		if hasToken(tpl, j, tokens.Start) {
			return 0, false
		}
		j += runeLen(tpl, j)
	}
	return 0, false
}
