// Package runner checks, highlights and executes resolved commands with an
// in-process POSIX shell.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mark3labs/trove/internal/logger"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrParse is returned when a command is not valid Bash.
	ErrParse = errors.New("command does not parse")
	// ErrTimeout is returned when Execute hits Options.Timeout.
	ErrTimeout = errors.New("command timed out")
)

func parse(command string) (*syntax.File, error) {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return file, nil
}

// Check reports whether command parses as Bash.
func Check(command string) error {
	_, err := parse(command)
	return err
}

// Programs lists the names of the simple commands invoked by command, in
// order of appearance. Words that are not plain literals are skipped.
func Programs(command string) ([]string, error) {
	file, err := parse(command)
	if err != nil {
		return nil, err
	}

	var names []string
	syntax.Walk(file, func(node syntax.Node) bool {
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 {
			if lit := call.Args[0].Lit(); lit != "" {
				names = append(names, lit)
			}
		}
		return true
	})
	return names, nil
}

// Highlight renders command with bash syntax colouring for a true-colour
// terminal. It returns the input unchanged when highlighting fails.
func Highlight(command string) string {
	lexer := lexers.Get("bash")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return command
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, command)
	if err != nil {
		return command
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return command
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Options configures Execute. Nil streams default to the process streams.
type Options struct {
	Dir     string
	Env     []string // Defaults to os.Environ()
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration // Zero means no limit
}

// Execute runs command and returns its exit status. A non-zero exit status
// is not an error; errors are reserved for parse failures, timeouts and
// cancellation.
func Execute(ctx context.Context, command string, opts Options) (int, error) {
	file, err := parse(command)
	if err != nil {
		return 0, err
	}

	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}

	r, err := interp.New(
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
		interp.Env(expand.ListEnviron(opts.Env...)),
		interp.Dir(opts.Dir),
	)
	if err != nil {
		return 0, fmt.Errorf("creating shell: %w", err)
	}

	execCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	logger.Debug("Executing command: %s", command)
	err = r.Run(execCtx, file)

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Command timed out after %s: %s", opts.Timeout, command)
		return 0, fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
	}

	var status interp.ExitStatus
	if errors.As(err, &status) {
		logger.Debug("Command exited with status %d", status)
		return int(status), nil
	}
	if err != nil {
		logger.Error("Command failed: %v", err)
		return 0, fmt.Errorf("running command: %w", err)
	}
	return 0, nil
}
