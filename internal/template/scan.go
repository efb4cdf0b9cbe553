package template

import "strings"

// Count returns the number of unescaped occurrences of token in tpl.
// Occurrences never overlap.
func Count(tpl, token string) int {
	if token == "" {
		return 0
	}

	count := 0
	for i := 0; i < len(tpl); {
		if tpl[i] == escapeChar {
			i = skipEscape(tpl, i, token)
			continue
		}
		if hasToken(tpl, i, token) {
			count++
			i += len(token)
			continue
		}
		i += runeLen(tpl, i)
	}
	return count
}

// Split cuts tpl at every literal occurrence of token, ignoring escapes.
// Empty pieces are kept in place. It is meant for delimiters that never
// appear escaped, such as whitespace.
func Split(tpl, token string) []string {
	if token == "" {
		return []string{tpl}
	}
	return strings.Split(tpl, token)
}

// SplitInclusive works like Split but keeps each delimiter as an element of
// its own. Empty pieces are dropped; a delimiter element is still emitted for
// every boundary, including a leading or trailing one.
//
//	SplitInclusive(" a b", " ") == []string{" ", "a", " ", "b"}
func SplitInclusive(tpl, token string) []string {
	parts := Split(tpl, token)
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if p != "" {
			out = append(out, p)
		}
		if i != len(parts)-1 {
			out = append(out, token)
		}
	}
	return out
}
