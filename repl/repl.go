// Copyright © 2024 The ELPS authors

// Package repl implements an interactive session that formats ABL snippets
// as they are typed.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/pkg/errors"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
)

const historyName = ".ablfmt_history"

type config struct {
	stdin     io.ReadCloser
	stdout    io.Writer
	formatter *formatter.Formatter
	history   string
}

func newConfig(opts ...Option) *config {
	config := &config{
		stdout:    os.Stdout,
		formatter: formatter.Default(),
		history:   historyPath(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStdout allows overriding the output of the REPL.
func WithStdout(stdout io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
	}
}

// WithFormatter sets the formatter applied to each snippet.
func WithFormatter(f *formatter.Formatter) Option {
	return func(c *config) {
		c.formatter = f
	}
}

// WithHistoryFile sets the history file. An empty path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.history = path
	}
}

// RunRepl reads ABL lines until :quit or end of input. An empty line
// formats the lines typed since the previous one.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	cont := strings.Repeat(".", max(len(strings.TrimRight(prompt, " ")), 1)) + " "

	ensureHistoryFilePermissions(cfg.history)
	rlCfg := &readline.Config{
		Stdout:            cfg.stdout,
		Stderr:            cfg.stdout,
		Prompt:            prompt,
		HistoryFile:       cfg.history,
		HistorySearchFold: true,
		AutoComplete:      newKeywordCompleter(cfg.formatter.Keywords()),
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return errors.Wrap(err, "starting line editor")
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	s := NewSession(cfg.formatter, cfg.stdout)
	for {
		if s.Pending() > 0 {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			s.Reset()
			continue
		}
		if err != nil {
			s.Flush()
			return nil
		}
		if s.Handle(string(line)) {
			return nil
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyName)
}

// ensureHistoryFilePermissions creates the history file if needed and
// makes it readable by its owner only.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) //nolint:gosec // path is the user's own history file
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0o600)
}

// Session accumulates input lines and formats them on demand. It holds no
// terminal state, so it can be driven directly.
type Session struct {
	f   *formatter.Formatter
	out io.Writer
	buf []string
}

// NewSession returns a session that writes to out.
func NewSession(f *formatter.Formatter, out io.Writer) *Session {
	return &Session{f: f, out: out}
}

// Pending returns the number of buffered lines.
func (s *Session) Pending() int {
	return len(s.buf)
}

// Handle processes one input line and reports whether the session should
// end.
func (s *Session) Handle(line string) bool {
	switch strings.TrimSpace(line) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.Reset()
		fmt.Fprintln(s.out, "buffer cleared") //nolint:errcheck // best-effort REPL output
	case ":state":
		s.printState()
	case ":check":
		renderCheck(s.out, s.f, s.text())
	case ":help":
		fmt.Fprint(s.out, helpText) //nolint:errcheck // best-effort REPL output
	case "":
		s.Flush()
	default:
		s.buf = append(s.buf, line)
	}
	return false
}

// Flush formats and prints the buffered lines, then clears the buffer.
func (s *Session) Flush() {
	if len(s.buf) == 0 {
		return
	}
	fmt.Fprintln(s.out, s.f.Format(s.text())) //nolint:errcheck // best-effort REPL output
	s.buf = nil
}

// Reset discards the buffered lines.
func (s *Session) Reset() {
	s.buf = nil
}

func (s *Session) text() string {
	return strings.Join(s.buf, "\n")
}

func (s *Session) printState() {
	_, st := s.f.FormatState(s.text())
	fmt.Fprintf(s.out, "lines %d, level %d, mode %s, open blocks %v\n", //nolint:errcheck // best-effort REPL output
		st.Line(), st.Level(), st.Mode(), st.OpenBlocks())
}

const helpText = `Type ABL lines; an empty line formats them.
  :check   report unbalanced blocks in the buffer
  :state   show the scanner state after the buffer
  :reset   discard the buffer
  :quit    leave
`
