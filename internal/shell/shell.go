// ABOUTME: Command loop: prompt, dispatch, and session event handling
// ABOUTME: Holds only the currently selected view and closes it on switch

package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/gigboard/internal/events"
	"github.com/2389/gigboard/internal/views"
)

// Session is what the shell needs from the session manager.
type Session interface {
	views.Session
	Logout(ctx context.Context)
}

// PasswordReader reads a secret after printing prompt.
type PasswordReader func(prompt string) (string, error)

type closer interface {
	Close()
}

// Shell is the interactive root of the client.
type Shell struct {
	env          views.Env
	session      Session
	bus          *events.Broadcaster
	in           *bufio.Reader
	readPassword PasswordReader
	logger       *slog.Logger

	view  closer
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// Option configures a Shell.
type Option func(*Shell)

// WithPasswordReader replaces the default line-echoing password prompt.
func WithPasswordReader(fn PasswordReader) Option {
	return func(s *Shell) {
		if fn != nil {
			s.readPassword = fn
		}
	}
}

// New creates a shell reading commands from in and rendering to env.Out.
// bus may be nil.
func New(env views.Env, sess Session, bus *events.Broadcaster, in io.Reader, opts ...Option) *Shell {
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	s := &Shell{
		env:     env,
		session: sess,
		bus:     bus,
		in:      bufio.NewReader(in),
		logger:  env.Logger.With("component", "shell"),
	}
	s.readPassword = s.promptLine
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errQuit = errors.New("quit")

// Run reads and executes commands until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	var sessionEvents <-chan events.Event
	if s.bus != nil {
		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		sessionEvents, _ = s.bus.Subscribe(subCtx)
	}
	defer s.closeView()

	s.banner()
	for {
		s.drain(sessionEvents)

		line, err := s.readLine(ctx, s.promptText())
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			fmt.Fprintln(s.env.Out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		err = s.dispatch(ctx, fields[0], fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.logger.Debug("command failed", "command", fields[0], "error", err)
		}
		fmt.Fprintln(s.env.Out)
	}
}

// drain handles queued session events without blocking.
func (s *Shell) drain(ch <-chan events.Event) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.handleEvent(ev)
		default:
			return
		}
	}
}

func (s *Shell) handleEvent(ev events.Event) {
	switch ev.Kind {
	case events.SessionInvalidated:
		s.closeView()
		color.New(color.FgYellow).Fprintln(s.env.Out, "  Your session has expired. Please login again.")
		s.printMenu()
	case events.SessionEnded:
		s.closeView()
	}
}

func (s *Shell) banner() {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(s.env.Out)
	cyan.Fprintln(s.env.Out, "  gigboard")
	fmt.Fprintln(s.env.Out, "  Find and post short gigs. Type help for commands, quit to exit.")
	if u := s.session.User(); u != nil {
		fmt.Fprintf(s.env.Out, "  Signed in as %s (%s)\n", u.FullName, u.UserType)
	}
	fmt.Fprintln(s.env.Out)
}

func (s *Shell) promptText() string {
	if u := s.session.User(); u != nil {
		return fmt.Sprintf("[%s]> ", u.UserType)
	}
	return "> "
}

// readLine prints prompt and waits for one line or ctx.
func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.env.Out, prompt)

	// One reader goroutine at a time; a line read after ctx ends is dropped.
	if s.lines == nil {
		s.lines = make(chan lineResult, 1)
		go func() {
			line, err := s.in.ReadString('\n')
			if err != nil && line != "" && errors.Is(err, io.EOF) {
				err = nil
			}
			s.lines <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-s.lines:
		s.lines = nil
		return r.line, r.err
	}
}

func (s *Shell) promptLine(prompt string) (string, error) {
	return s.readLine(context.Background(), prompt)
}

// show makes v the selected view, closing the previous one.
func (s *Shell) show(v closer) {
	if s.view != nil && s.view != v {
		s.view.Close()
	}
	s.view = v
}

func (s *Shell) closeView() {
	if s.view != nil {
		s.view.Close()
		s.view = nil
	}
}
