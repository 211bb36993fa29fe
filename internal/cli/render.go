package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/formation/pkg/errors"
	pio "github.com/matzehuels/formation/pkg/io"
	"github.com/matzehuels/formation/pkg/render"
)

const (
	formatSVG = render.FormatSVG
	formatPNG = render.FormatPNG
	formatPDF = "pdf"
)

// validFormats is the set of supported image formats.
var validFormats = map[string]bool{formatSVG: true, formatPNG: true, formatPDF: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file (scene) or directory (transition)
	format    string  // svg, png, pdf
	scene     int     // 1-based scene to render
	from, to  int     // 1-based transition endpoints
	cellWidth float64 // pixel width of a grid cell
	noGrid    bool
	fps       int
	duration  time.Duration
	noCache   bool
	refresh   bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a scene or a transition",
		Long: `Render a scene of a project as an image, or every frame of the transition
between two scenes.

Scenes are numbered from 1. Without --scene the project's current scene is
rendered. With --from and --to, one image per frame is written into the
output directory.`,
		Example: `  formation render show.json --scene 2 -o chorus.svg
  formation render show.json --from 1 --to 2 --format png`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects("json", "yaml", "yml"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return ferrors.New(ferrors.ErrCodeInvalidFormat, "invalid format: %s (must be 'svg', 'png', or 'pdf')", opts.format)
			}
			transition := cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
			if transition && !(cmd.Flags().Changed("from") && cmd.Flags().Changed("to")) {
				return ferrors.New(ferrors.ErrCodeInvalidInput, "--from and --to must be given together")
			}

			ro := c.renderOptions()
			if cmd.Flags().Changed("cell-width") {
				ro.CellWidth = opts.cellWidth
			}
			if opts.noGrid {
				ro.ShowGrid = false
			}
			if cmd.Flags().Changed("fps") {
				ro.FPS = opts.fps
			}
			if cmd.Flags().Changed("duration") {
				ro.Duration = opts.duration
			}
			ro.Refresh = opts.refresh
			if opts.format == formatPNG {
				ro.Format = render.FormatPNG
			}
			if err := ro.ValidateAndSetDefaults(); err != nil {
				return err
			}

			if transition {
				return c.runRenderTransition(cmd.Context(), args[0], opts, ro)
			}
			if !cmd.Flags().Changed("scene") {
				opts.scene = 0
			}
			return c.runRenderScene(cmd.Context(), args[0], opts, ro)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or frame directory for transitions")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "image format: svg, png, pdf")
	cmd.Flags().IntVar(&opts.scene, "scene", 0, "scene to render (default: the current scene)")
	cmd.Flags().IntVar(&opts.from, "from", 0, "first scene of a transition")
	cmd.Flags().IntVar(&opts.to, "to", 0, "second scene of a transition")
	cmd.Flags().Float64Var(&opts.cellWidth, "cell-width", 0, "cell width in pixels (default from config)")
	cmd.Flags().BoolVar(&opts.noGrid, "no-grid", false, "omit grid lines")
	cmd.Flags().IntVar(&opts.fps, "fps", 0, "transition frames per second (default from config)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "transition duration (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func (c *CLI) runRenderScene(ctx context.Context, input string, opts renderOpts, ro render.Options) error {
	logger := loggerFromContext(ctx)

	p, err := loadProject(input)
	if err != nil {
		return err
	}
	index := p.Current
	if opts.scene != 0 {
		index = opts.scene - 1
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	prog := newProgress(logger)
	img, cached, err := runner.Scene(ctx, p, index, ro)
	if err != nil {
		return err
	}
	data, err := convertImage(img, opts.format)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = fmt.Sprintf("%s-scene-%d.%s", basePath(input), index+1, opts.format)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Rendered %s", p.Formations[index].Name))

	printSuccess("Rendered %s", p.Formations[index].Name)
	printStats(1, len(p.Formations[index].Dancers), cached)
	printFile(output)
	return nil
}

func (c *CLI) runRenderTransition(ctx context.Context, input string, opts renderOpts, ro render.Options) error {
	p, err := loadProject(input)
	if err != nil {
		return err
	}
	from, to := opts.from-1, opts.to-1
	if _, err := p.Scene(from); err != nil {
		return err
	}
	if _, err := p.Scene(to); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	dir := opts.output
	if dir == "" {
		dir = fmt.Sprintf("%s-%d-%d-frames", basePath(input), opts.from, opts.to)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	label := fmt.Sprintf("%s → %s", p.Formations[from].Name, p.Formations[to].Name)
	spinner := newSpinnerWithContext(ctx, "Rendering "+label+"...")
	spinner.Start()

	frames, cached, err := runner.Transition(ctx, p, from, to, ro)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	paths, err := writeFrames(dir, frames, opts.format, func(i int) {
		spinner.Update(fmt.Sprintf("Writing frame %d/%d...", i+1, len(frames)))
	})
	if err != nil {
		spinner.StopWithError("Writing frames failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %s (%d frames)", label, len(frames)))

	printStats(2, len(transitionIDs(p, from, to)), cached)
	printFile(filepath.Dir(paths[0]) + string(filepath.Separator))
	return nil
}

// writeFrames writes frames as frame-000.<format>, frame-001.<format>, ...
func writeFrames(dir string, frames [][]byte, format string, onFrame func(int)) ([]string, error) {
	paths := make([]string, len(frames))
	for i, frame := range frames {
		if onFrame != nil {
			onFrame(i)
		}
		data, err := convertImage(frame, format)
		if err != nil {
			return nil, err
		}
		paths[i] = filepath.Join(dir, fmt.Sprintf("frame-%03d.%s", i, format))
		if err := os.WriteFile(paths[i], data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}

// convertImage turns runner output into the requested file format. The
// runner produces SVG and PNG itself; PDF goes through rsvg-convert.
func convertImage(data []byte, format string) ([]byte, error) {
	if format == formatPDF {
		return render.ToPDF(data)
	}
	return data, nil
}

// transitionIDs returns the distinct dancer IDs taking part in a transition.
func transitionIDs(p *pio.Project, from, to int) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, i := range []int{from, to} {
		for _, d := range p.Formations[i].Dancers {
			ids[d.ID] = struct{}{}
		}
	}
	return ids
}

// basePath strips the extension from a project path.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
