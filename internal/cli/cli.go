// Package cli implements the formation command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/formation/pkg/buildinfo"
	"github.com/matzehuels/formation/pkg/cache"
	"github.com/matzehuels/formation/pkg/config"
	"github.com/matzehuels/formation/pkg/core/editor"
	"github.com/matzehuels/formation/pkg/prefs"
	"github.com/matzehuels/formation/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "formation"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Formation choreographs dancers on a stage grid",
		Long:         `Formation is an editor for dance formations: place dancers on a grid, build a timeline of scenes, and preview the animated transitions between them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			installHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/formation/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.guiCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a render runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*render.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return render.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// renderOptions returns render options seeded from the configuration.
func (c *CLI) renderOptions() render.Options {
	return render.Options{
		CellWidth: c.Config.Render.CellWidth,
		ShowGrid:  c.Config.Render.ShowGrid,
		Duration:  c.Config.Transition.Duration.Duration,
		FPS:       c.Config.Transition.FPS,
	}
}

// sessionOptions returns editor options seeded from the configuration and
// the remembered preferences.
func (c *CLI) sessionOptions(ctx context.Context, p *prefs.Store) []editor.Option {
	opts := []editor.Option{
		editor.WithContext(ctx),
		editor.WithStage(c.Config.Stage),
		editor.WithPalette(c.Config.Palette.Colors),
		editor.WithDuration(c.Config.Transition.Duration.Duration),
	}
	if p != nil && p.Color() != "" {
		opts = append(opts, editor.WithColor(p.Color()))
	}
	return opts
}

// openPrefs opens the preference store, falling back to memory-only
// preferences when the platform data directory is unavailable.
func (c *CLI) openPrefs() *prefs.Store {
	p, err := prefs.Open(appName)
	if err != nil {
		c.Logger.Debug("Preferences unavailable", "err", err)
	}
	return p
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/formation/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
