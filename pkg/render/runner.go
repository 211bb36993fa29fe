package render

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/formation/pkg/cache"
	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
	ferrors "github.com/matzehuels/formation/pkg/errors"
	pio "github.com/matzehuels/formation/pkg/io"
	"github.com/matzehuels/formation/pkg/observability"
)

// Output formats a Runner can produce.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Options control rendering through a Runner.
type Options struct {
	// Format is FormatSVG (default) or FormatPNG.
	Format string

	CellWidth float64
	ShowGrid  bool
	Duration  time.Duration
	FPS       int

	// Refresh bypasses cached artifacts and overwrites them.
	Refresh bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Format:    FormatSVG,
		CellWidth: 40,
		ShowGrid:  true,
		Duration:  transition.DefaultDuration,
		FPS:       DefaultFPS,
	}
}

// ValidateAndSetDefaults fills zero values and rejects impossible ones.
func (o *Options) ValidateAndSetDefaults() error {
	switch o.Format {
	case "":
		o.Format = FormatSVG
	case FormatSVG, FormatPNG:
	default:
		return ferrors.New(ferrors.ErrCodeInvalidFormat, "unknown render format %q (want svg or png)", o.Format)
	}
	if o.CellWidth == 0 {
		o.CellWidth = 40
	}
	if o.CellWidth < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "cell width must be positive (got %g)", o.CellWidth)
	}
	if o.Duration <= 0 {
		o.Duration = transition.DefaultDuration
	}
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.FPS < 0 || o.FPS > 240 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "fps must be 1-240 (got %d)", o.FPS)
	}
	return nil
}

func (o Options) keyOpts(title string, frames bool) cache.RenderKeyOpts {
	k := cache.RenderKeyOpts{CellWidth: o.CellWidth, ShowGrid: o.ShowGrid, Title: title}
	if o.Format != FormatSVG {
		k.Format = o.Format
	}
	if frames {
		k.FPS = o.FPS
		k.Duration = o.Duration
	}
	return k
}

// draw renders one snapshot in the configured format.
func (o Options) draw(cfg stage.Config, dancers []transition.Placement, title string) ([]byte, error) {
	if o.Format == FormatPNG {
		return RenderPNG(cfg, dancers, o.svgOptions(title)...)
	}
	return RenderSVG(cfg, dancers, o.svgOptions(title)...), nil
}

func (o Options) svgOptions(title string) []SVGOption {
	opts := []SVGOption{WithCellWidth(o.CellWidth), WithGrid(o.ShowGrid)}
	if title != "" {
		opts = append(opts, WithTitle(title))
	}
	return opts
}

// Runner renders project scenes and transitions through the artifact cache.
//
// The Runner is stateless except for the cache and logger, so one Runner can
// serve concurrent requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// ProjectHash returns the content hash used in cache keys for p.
func ProjectHash(p *pio.Project) (string, error) {
	data, err := pio.Marshal(p)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Scene renders scene i of p in opts.Format. The boolean reports a cache hit.
func (r *Runner) Scene(ctx context.Context, p *pio.Project, i int, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	f, err := p.Scene(i)
	if err != nil {
		return nil, false, err
	}
	hash, err := ProjectHash(p)
	if err != nil {
		return nil, false, fmt.Errorf("hash project: %w", err)
	}
	key := r.Keyer.SceneKey(hash, i, opts.keyOpts(f.Name, false))

	if data, ok := r.lookup(ctx, key, "scene", opts.Refresh); ok {
		return data, true, nil
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, "scene", 1)
	data, err := opts.draw(p.Stage, transition.Still(f.Dancers), f.Name)
	observability.Render().OnRenderComplete(ctx, "scene", 1, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered scene", "scene", f.Name, "format", opts.Format, "dancers", len(f.Dancers), "bytes", len(data))

	r.store(ctx, key, "scene", data, cache.SceneTTL)
	return data, false, nil
}

// Transition renders every frame of the change from scene from to scene to.
// The boolean reports whether all frames came from the cache.
func (r *Runner) Transition(ctx context.Context, p *pio.Project, from, to int, opts Options) ([][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	src, err := p.Scene(from)
	if err != nil {
		return nil, false, err
	}
	dst, err := p.Scene(to)
	if err != nil {
		return nil, false, err
	}
	hash, err := ProjectHash(p)
	if err != nil {
		return nil, false, fmt.Errorf("hash project: %w", err)
	}

	times := FrameTimes(opts.Duration, opts.FPS)
	keyOpts := opts.keyOpts("", true)
	frames := make([][]byte, len(times))
	allHit := true
	for i := range times {
		data, ok := r.lookup(ctx, r.Keyer.FrameKey(hash, from, to, i, keyOpts), "frame", opts.Refresh)
		if !ok {
			allHit = false
			break
		}
		frames[i] = data
	}
	if allHit {
		return frames, true, nil
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, "transition", len(times))
	snaps := Snapshots(src.Dancers, dst.Dancers, opts.Duration, opts.FPS)
	frames = make([][]byte, len(snaps))
	for i, snap := range snaps {
		if frames[i], err = opts.draw(p.Stage, snap, ""); err != nil {
			break
		}
	}
	observability.Render().OnRenderComplete(ctx, "transition", len(frames), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered transition", "from", src.Name, "to", dst.Name, "format", opts.Format, "frames", len(frames))

	for i, f := range frames {
		r.store(ctx, r.Keyer.FrameKey(hash, from, to, i, keyOpts), "frame", f, cache.FrameTTL)
	}
	return frames, false, nil
}

// Frame renders a single frame of a transition.
func (r *Runner) Frame(ctx context.Context, p *pio.Project, from, to, frame int, opts Options) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	n := len(FrameTimes(opts.Duration, opts.FPS))
	if frame < 0 || frame >= n {
		return nil, ferrors.New(ferrors.ErrCodeNotFound, "frame %d out of range (transition has %d frames)", frame, n)
	}
	frames, _, err := r.Transition(ctx, p, from, to, opts)
	if err != nil {
		return nil, err
	}
	return frames[frame], nil
}

func (r *Runner) lookup(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
