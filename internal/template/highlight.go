package template

// Span is a half-open byte range [Start, End) within a template.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Cut splits tpl around the span.
func (s Span) Cut(tpl string) (before, inside, after string) {
	return tpl[:s.Start], tpl[s.Start:s.End], tpl[s.End:]
}

// NextSpan returns the range of the occurrence the next ReplaceFirst call
// would resolve, for display. The range covers the start token through its
// end token. The search for the end token stops at an unescaped space or
// another start token; in that case, or when the end token is empty, only
// the start token is covered.
func NextSpan(tpl string, tokens Tokens) (Span, bool) {
	pos := firstOccurrence(tpl, tokens)
	if pos < 0 {
		return Span{}, false
	}

	span := Span{Start: pos, End: pos + len(tokens.Start)}
	if tokens.End == "" {
		return span, true
	}

	for j := span.End; j < len(tpl); {
		if tpl[j] == escapeChar {
			j = skipEscape(tpl, j)
			continue
		}
		if hasToken(tpl, j, tokens.Start) {
			break
		}
		if hasToken(tpl, j, tokens.End) {
			span.End = j + len(tokens.End)
			break
		}
		if tpl[j] == ' ' {
			break
		}
		j += runeLen(tpl, j)
	}
	return span, true
}
