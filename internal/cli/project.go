package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/formation/pkg/errors"
	pio "github.com/matzehuels/formation/pkg/io"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// loadProject reads a project in the format given by its extension.
func loadProject(path string) (*pio.Project, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return pio.ImportYAML(path)
	default:
		return pio.ImportJSON(path)
	}
}

func totalDancers(p *pio.Project) int {
	n := 0
	for _, f := range p.Formations {
		n += len(f.Dancers)
	}
	return n
}

// =============================================================================
// new
// =============================================================================

type newOpts struct {
	rows  int
	cols  int
	ratio float64
	force bool
}

func (c *CLI) newCommand() *cobra.Command {
	var opts newOpts

	cmd := &cobra.Command{
		Use:               "new <file.json>",
		Short:             "Create an empty project",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.rows, "rows", 0, "stage rows (default from config)")
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "stage columns (default from config)")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", 0, "cell width/height ratio (default from config)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func (c *CLI) runNew(cmd *cobra.Command, path string, opts newOpts) error {
	if err := ferrors.ValidateProjectPath(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !opts.force {
		return ferrors.New(ferrors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
	}

	cfg := c.Config.Stage
	if cmd.Flags().Changed("rows") {
		cfg.Rows = opts.rows
	}
	if cmd.Flags().Changed("cols") {
		cfg.Cols = opts.cols
	}
	if cmd.Flags().Changed("ratio") {
		cfg.CellRatio = opts.ratio
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := pio.ExportJSON(pio.New(cfg), path); err != nil {
		return err
	}
	printSuccess("Created %s", path)
	printDetail("%d×%d stage, cell ratio %g", cfg.Rows, cfg.Cols, cfg.CellRatio)
	printNextStep("Edit it", fmt.Sprintf("%s edit %s", appName, path))
	return nil
}

// =============================================================================
// validate
// =============================================================================

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "validate <file>",
		Short:             "Check a project file",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects("json", "yaml", "yml"),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(args[0])
			if err != nil {
				printError("%s", ferrors.UserMessage(err))
				return err
			}
			printSuccess("%s is valid", args[0])
			printKeyValue("Version", p.Meta.AppVersion)
			printKeyValue("Stage", fmt.Sprintf("%d×%d (ratio %g)", p.Stage.Rows, p.Stage.Cols, p.Stage.CellRatio))
			printKeyValue("Scenes", strconv.Itoa(len(p.Formations)))
			printKeyValue("Dancers", strconv.Itoa(totalDancers(p)))
			if offStage := countOffStage(p); offStage > 0 {
				printWarning("%d dancer placement(s) lie outside the stage", offStage)
			}
			return nil
		},
	}
}

func countOffStage(p *pio.Project) int {
	n := 0
	for _, f := range p.Formations {
		for _, d := range f.Dancers {
			if !p.Stage.Contains(d.Row, d.Col) {
				n++
			}
		}
	}
	return n
}

// =============================================================================
// inspect
// =============================================================================

func (c *CLI) inspectCommand() *cobra.Command {
	var scene int

	cmd := &cobra.Command{
		Use:               "inspect <file>",
		Short:             "Show the scenes and dancers of a project",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects("json", "yaml", "yml"),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("scene") {
				out, err := dancerTable(p, scene-1)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}
			fmt.Println(StyleTitle.Render(filepath.Base(args[0])))
			fmt.Println(sceneTable(p))
			return nil
		},
	}

	cmd.Flags().IntVar(&scene, "scene", 1, "list the dancers of scene n (1-based)")
	return cmd
}

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func sceneTable(p *pio.Project) string {
	rows := make([][]string, len(p.Formations))
	for i, f := range p.Formations {
		marker := ""
		if i == p.Current {
			marker = "▸"
		}
		rows[i] = []string{marker, strconv.Itoa(i + 1), f.Name, strconv.Itoa(len(f.Dancers))}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Scene", "Dancers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if row == p.Current {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func dancerTable(p *pio.Project, i int) (string, error) {
	f, err := p.Scene(i)
	if err != nil {
		return "", err
	}

	rows := make([][]string, len(f.Dancers))
	for j, d := range f.Dancers {
		rows[j] = []string{d.ID, d.Label, d.Color, strconv.Itoa(d.Row), strconv.Itoa(d.Col)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Color", "Row", "Col").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if col == 2 && row >= 0 && row < len(f.Dancers) && f.Dancers[row].Color != "" {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(f.Dancers[row].Color))
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return StyleTitle.Render(f.Name) + "\n" + t.Render(), nil
}

// =============================================================================
// convert
// =============================================================================

func (c *CLI) convertCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:               "convert <file>",
		Short:             "Convert a project between JSON and YAML",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects("json", "yaml", "yml"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args[0], format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatYAML, "output format: yaml, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with the new extension)")
	return cmd
}

func runConvert(ctx context.Context, input, format, output string) error {
	logger := loggerFromContext(ctx)

	if format != formatJSON && format != formatYAML {
		return ferrors.New(ferrors.ErrCodeInvalidFormat, "invalid format: %s (must be 'json' or 'yaml')", format)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return ferrors.New(ferrors.ErrCodeInvalidPath, "output would overwrite the input file %s", input)
	}

	p, err := loadProject(input)
	if err != nil {
		return err
	}
	logger.Debug("Loaded project", "path", input, "scenes", len(p.Formations))

	if format == formatYAML {
		err = pio.ExportYAML(p, output)
	} else {
		err = pio.ExportJSON(p, output)
	}
	if err != nil {
		return err
	}
	printSuccess("Converted to %s", strings.ToUpper(format))
	printFile(output)
	return nil
}
