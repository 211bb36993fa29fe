package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/formation/internal/server"
	"github.com/matzehuels/formation/pkg/cache"
	"github.com/matzehuels/formation/pkg/render"
)

type serveOpts struct {
	addr    string
	redis   string
	scope   string
	noCache bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <file.json>",
		Short: "Preview a project over HTTP",
		Long: `Serve scene snapshots and transition frames of a project as SVG or PNG.

Rendered images are cached on disk, or in Redis when --redis (or
serve.redis_addr in the config file) is set, so several servers can share
one cache. POST /api/reload re-reads the project file after it was edited.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Serve.Addr
			}
			if !cmd.Flags().Changed("redis") {
				opts.redis = c.Config.Serve.RedisAddr
			}
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address or URL for a shared render cache")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "cache key prefix when sharing Redis (default: project file name)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	p, err := loadProject(path)
	if err != nil {
		return err
	}

	runner, err := c.serveRunner(ctx, path, opts)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	srv := server.New(p, path, runner, c.renderOptions(), logger)
	printSuccess("Serving %s", path)
	printDetail("%d scenes · listening on %s", len(p.Formations), opts.addr)
	printNextStep("Open", fmt.Sprintf("http://%s/scenes/0.svg", displayAddr(opts.addr)))
	printNewline()

	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) serveRunner(ctx context.Context, path string, opts serveOpts) (*render.Runner, error) {
	if opts.noCache || opts.redis == "" {
		return c.newRunner(opts.noCache)
	}

	rc, err := cache.NewRedisCache(ctx, opts.redis)
	if err != nil {
		return nil, err
	}
	scope := opts.scope
	if scope == "" {
		scope = filepath.Base(path)
	}
	c.Logger.Info("Using Redis cache", "addr", opts.redis, "scope", scope)
	return render.NewRunner(rc, cache.NewScopedKeyer(nil, scope+":"), c.Logger), nil
}

// displayAddr turns a listen address into the host:port part of a URL.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
