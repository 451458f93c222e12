// ABOUTME: Entry point for the gigboard terminal client
// ABOUTME: Loads config, wires storage, API client and session, then runs a command

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/config"
	"github.com/2389/gigboard/internal/events"
	"github.com/2389/gigboard/internal/session"
	"github.com/2389/gigboard/internal/shell"
	"github.com/2389/gigboard/internal/storage"
	"github.com/2389/gigboard/internal/views"
)

// version is set at build time via -ldflags.
var version = "dev"

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gigboard [-config path] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  shell      Interactive job board (default)")
	fmt.Fprintln(w, "  status     Show the signed-in user and token expiry")
	fmt.Fprintln(w, "  logout     Forget stored credentials")
	fmt.Fprintln(w, "  init       Write a default config file")
	fmt.Fprintln(w, "  version    Print the version")
}

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	fs := flag.NewFlagSet("gigboard", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML or TOML config file")
	fs.Usage = func() { usage(os.Stderr) }
	_ = fs.Parse(os.Args[1:])

	command := "shell"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch command {
	case "version":
		fmt.Println(version)
		return
	case "init":
		err = runInit(*configPath)
	case "shell", "status", "logout":
		err = runWithApp(ctx, *configPath, command)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		usage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components for one run.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	client  *api.Client
	bus     *events.Broadcaster
	session *session.Manager
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := storage.Open(cfg.Session.Backend, cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("opening session storage: %w", err)
	}

	client := api.New(cfg.API.BaseURL, store,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
	)
	bus := events.NewBroadcaster(logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		client:  client,
		bus:     bus,
		session: session.New(client, store, bus, logger),
	}, nil
}

func (a *app) Close() {
	a.bus.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing session storage", "error", err)
	}
}

func runWithApp(ctx context.Context, configPath, command string) error {
	cfg, path, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	applyColor(cfg.UI.Color)
	if path != "" {
		logger.Debug("config loaded", "path", path)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Restore(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	switch command {
	case "status":
		return a.status(ctx, os.Stdout)
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	default:
		return a.shell(ctx)
	}
}

func (a *app) shell(ctx context.Context) error {
	env := views.Env{
		API:        a.client,
		Session:    a.session,
		Out:        os.Stdout,
		FlashDelay: a.cfg.UI.FlashDuration,
		Logger:     a.logger,
	}
	pw := shell.TerminalPasswordReader(int(os.Stdin.Fd()), os.Stdout)
	sh := shell.New(env, a.session, a.bus, os.Stdin, shell.WithPasswordReader(pw))
	return sh.Run(ctx)
}

func (a *app) status(ctx context.Context, w io.Writer) error {
	cyan := color.New(color.FgCyan)
	cyan.Fprintln(w, "  gigboard status")
	fmt.Fprintf(w, "  Server:   %s\n", a.client.BaseURL())
	fmt.Fprintf(w, "  Storage:  %s %s\n", a.cfg.Session.Backend, a.cfg.Session.Path)

	u := a.session.User()
	if u == nil {
		fmt.Fprintln(w, "  Signed in: no")
		return nil
	}
	fmt.Fprintf(w, "  Signed in: %s <%s> (%s)\n", u.FullName, u.Email, u.UserType)

	exp, ok, err := a.session.TokenExpiry(ctx)
	switch {
	case err != nil:
		a.logger.Debug("reading token expiry", "error", err)
		fmt.Fprintln(w, "  Token:    opaque")
	case !ok:
		fmt.Fprintln(w, "  Token:    no expiry")
	case time.Now().After(exp):
		color.New(color.FgYellow).Fprintf(w, "  Token:    expired %s\n", exp.Local().Format(time.RFC1123))
	default:
		fmt.Fprintf(w, "  Token:    expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func applyColor(mode string) {
	switch mode {
	case "never":
		color.NoColor = true
	case "always":
		color.NoColor = false
	}
}

// runInit writes the default configuration to path, or to the XDG config
// directory when path is empty. Existing files are left alone.
func runInit(path string) error {
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.New(color.FgGreen).Printf("Config written to %s\n", path)
	return nil
}
