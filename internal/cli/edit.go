package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/formation/internal/gui"
	"github.com/matzehuels/formation/pkg/core/editor"
	ferrors "github.com/matzehuels/formation/pkg/errors"
	pio "github.com/matzehuels/formation/pkg/io"
	"github.com/matzehuels/formation/pkg/prefs"
)

// openSession starts an editor session on the project at path. A missing
// file starts an empty project that is created on first save; an empty path
// starts an unsaved session.
func (c *CLI) openSession(ctx context.Context, path string, p *prefs.Store) (*editor.Session, error) {
	opts := c.sessionOptions(ctx, p)
	if path == "" {
		return editor.New(opts...), nil
	}
	if err := ferrors.ValidateProjectPath(path); err != nil {
		return nil, err
	}

	proj, err := pio.ImportJSON(path)
	switch {
	case err == nil:
		opts = append(opts, editor.WithStage(proj.Stage), editor.WithTimeline(proj.Timeline()))
		loggerFromContext(ctx).Debug("Loaded project", "path", path, "scenes", len(proj.Formations))
	case ferrors.Is(err, ferrors.ErrCodeFileNotFound):
		loggerFromContext(ctx).Info("Starting a new project", "path", path)
	default:
		return nil, err
	}
	return editor.New(opts...), nil
}

// saver returns the save function for a session, or nil when there is no
// file to save to.
func saver(path string, p *prefs.Store) func(*editor.Session) error {
	if path == "" {
		return nil
	}
	return func(s *editor.Session) error {
		if err := pio.ExportJSON(pio.FromTimeline(s.Stage(), s.Timeline()), path); err != nil {
			return err
		}
		p.Touch(path)
		p.SetColor(s.Color())
		return p.Save()
	}
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// =============================================================================
// edit
// =============================================================================

func (c *CLI) editCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "edit [file.json]",
		Short: "Edit a project in the terminal",
		Long: `Edit a project in the terminal using the mouse.

Click an empty cell to place a dancer; press m to switch to move mode and
drag dancers around. Press n to add a scene and 1-9 to switch scenes.
A missing file is created on the first save (s).`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeProjects("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), pathArg(args), logFile)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the editor runs")
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path, logFile string) error {
	// The terminal belongs to the editor while it runs.
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := newLogger(w, c.Logger.GetLevel())
	installHooks(logger)
	defer installHooks(c.Logger)
	ctx = withLogger(ctx, logger)

	p := c.openPrefs()
	s, err := c.openSession(ctx, path, p)
	if err != nil {
		return err
	}

	m := NewEditorModel(s, path, saver(path, p))
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	s.Handle(editor.Teardown{})

	if fm, ok := final.(EditorModel); ok && fm.Dirty() {
		printWarning("Unsaved changes were discarded")
	}
	return nil
}

// =============================================================================
// gui
// =============================================================================

func (c *CLI) guiCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "gui [file.json]",
		Short:             "Edit a project in a desktop window",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeProjects("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			p := c.openPrefs()
			s, err := c.openSession(cmd.Context(), path, p)
			if err != nil {
				return err
			}

			title := appName
			if path != "" {
				title += " - " + path
			}
			g := gui.New(s, gui.WithSave(saver(path, p)), gui.WithLogger(c.Logger))
			return gui.Run(g, title)
		},
	}
}
