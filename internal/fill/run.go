package fill

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/trove/internal/template"
)

var (
	// ErrMissingValue is returned by Resolve when the template has more
	// parameters than values were given.
	ErrMissingValue = errors.New("missing parameter value")
	// ErrUnusedValues is returned by Resolve when values are left over.
	ErrUnusedValues = errors.New("more values than parameters")
)

// Prompt describes the parameter an Asker is asked for.
type Prompt struct {
	Template string          // Partially resolved template
	Number   int             // 1-based parameter number
	Span     template.Span   // Range of the parameter in Template
	Tokens   template.Tokens // Token pair of the session
}

// Asker supplies the value of one parameter. It blocks until the value is
// available. Returning ErrCancelled ends the fill without a result.
type Asker interface {
	Ask(ctx context.Context, p Prompt) (string, error)
}

// AskerFunc adapts a function to the Asker interface.
type AskerFunc func(ctx context.Context, p Prompt) (string, error)

// Ask calls f.
func (f AskerFunc) Ask(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// Run resolves every parameter of tpl in order, asking asker for one value
// per parameter.
func Run(ctx context.Context, tpl string, tokens template.Tokens, asker Asker) (string, error) {
	s, err := NewSession(tpl, tokens)
	if err != nil {
		return "", err
	}

	for s.State() == StateAwaitingInput {
		if err := ctx.Err(); err != nil {
			s.Handle(Cancel())
			return "", err
		}

		span, _ := s.Span()
		value, err := asker.Ask(ctx, Prompt{
			Template: s.Template(),
			Number:   s.Provided() + 1,
			Span:     span,
			Tokens:   tokens,
		})
		if err != nil {
			s.Handle(Cancel())
			return "", err
		}

		s.SetInput(value)
		s.Handle(Submit())
	}

	result, ok := s.Result()
	if !ok {
		return "", ErrCancelled
	}
	return result, nil
}

// Resolve fills tpl with values, one per parameter, without interaction.
// The number of values must match the number of parameters.
func Resolve(tpl string, tokens template.Tokens, values []string) (string, error) {
	next := 0
	asker := AskerFunc(func(_ context.Context, p Prompt) (string, error) {
		if next >= len(values) {
			return "", fmt.Errorf("%w for parameter %d", ErrMissingValue, p.Number)
		}
		v := values[next]
		next++
		return v, nil
	})

	result, err := Run(context.Background(), tpl, tokens, asker)
	if err != nil {
		return "", err
	}
	if next < len(values) {
		return "", fmt.Errorf("%w: %d given, %d used", ErrUnusedValues, len(values), next)
	}
	return result, nil
}

// LineAsker reads one line per parameter from a reader. It is used when no
// terminal UI is available. End of input cancels the fill.
type LineAsker struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineAsker creates a LineAsker reading from r and prompting on w.
func NewLineAsker(r io.Reader, w io.Writer) *LineAsker {
	return &LineAsker{in: bufio.NewReader(r), out: w}
}

// Ask prints the template with the pending parameter marked and reads a line.
func (a *LineAsker) Ask(ctx context.Context, p Prompt) (string, error) {
	before, inside, after := p.Span.Cut(p.Template)
	fmt.Fprintf(a.out, "Enter parameter(%s) nr %d\n~> %s[%s]%s\n", p.Tokens.Start, p.Number, before, inside, after)

	line, err := a.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("reading parameter: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ordinal formats n as an English ordinal: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
