package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Clark-Hu/cineadmin/internal/catalog"
	"github.com/Clark-Hu/cineadmin/internal/client"
	"github.com/Clark-Hu/cineadmin/internal/logging"
)

// Runner holds the dependencies of every command action.
type Runner struct {
	settingsPath string
	settings     Settings
	client       *client.HTTPClient
	catalog      *catalog.Service
	logger       *log.Logger
	output       io.Writer
}

// RunnerOpts configures a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a Runner. The backend is wired in connect, once flags are parsed.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = logging.New(os.Stderr, "warn", "text")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{logger: opts.Logger, output: opts.Output}
}

// connect loads settings, applies flag overrides and builds the client and catalog.
func (r *Runner) connect(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}

	r.settingsPath = cmd.String("config")
	if r.settingsPath == "" {
		r.settingsPath = defaultSettingsPath()
	}
	settings, err := LoadSettings(r.settingsPath)
	if err != nil {
		return ctx, err
	}
	if server := cmd.String("server"); server != "" {
		settings.Server = server
	}
	if secs := cmd.Int("timeout"); secs > 0 {
		settings.TimeoutSecs = secs
	}
	r.settings = settings

	c, err := client.New(client.Options{
		BaseURL: settings.Server,
		Token:   settings.Token,
		Timeout: settings.Timeout(),
		Logger:  r.logger,
	})
	if err != nil {
		return ctx, err
	}
	r.client = c
	r.catalog = catalog.New(c, catalog.Options{
		CallTimeout:   settings.Timeout(),
		StrictCascade: settings.StrictCascade,
		Logger:        r.logger,
	})
	r.logger.Debug("connected", "server", settings.Server, "config", r.settingsPath)
	return ctx, nil
}

// actor resolves who is signed in. A token the server no longer accepts is dropped.
func (r *Runner) actor(ctx context.Context) catalog.Actor {
	actor := r.catalog.ResolveSession(ctx)
	if actor.Authenticated() || r.settings.Token == "" {
		return actor
	}
	if sess, err := r.client.CurrentSession(ctx); err == nil && sess == nil {
		r.logger.Warn("session expired, run `cineadmin login` again")
		r.client.SetToken("")
		if err := r.saveToken(""); err != nil {
			r.logger.Warn("clear token", "err", err)
		}
	}
	return actor
}

func (r *Runner) saveToken(token string) error {
	r.settings.Token = token
	return SaveSettings(r.settingsPath, r.settings)
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
