// Package cli implements the formation command-line interface.
//
// The CLI edits project files interactively (in the terminal or a desktop
// window), renders scenes and transitions to SVG, PNG, or PDF, and serves a
// live preview over HTTP. It is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - new: Create an empty project file
//   - edit: Edit a project in the terminal
//   - gui: Edit a project in a desktop window
//   - render: Render a scene or a transition
//   - inspect, validate, convert: Work with project files
//   - serve: Preview a project over HTTP
//   - config, cache: Manage configuration and rendered artifacts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. Editor, render, cache, and HTTP events are
// logged at debug level through observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/formation/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 7 frames (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetEditorHooks(h)
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnEffect(_ context.Context, kind, detail string) {
	h.logger.Debug("editor", "effect", kind, "detail", detail)
}

func (h logHooks) OnTransitionStart(_ context.Context, from, to, dancers int) {
	h.logger.Debug("transition started", "from", from, "to", to, "dancers", dancers)
}

func (h logHooks) OnTransitionComplete(_ context.Context, to, frames int, elapsed time.Duration, canceled bool) {
	h.logger.Debug("transition finished", "to", to, "frames", frames, "elapsed", elapsed, "canceled", canceled)
}

func (h logHooks) OnRenderStart(_ context.Context, kind string, frames int) {
	h.logger.Debug("render started", "kind", kind, "frames", frames)
}

func (h logHooks) OnRenderComplete(_ context.Context, kind string, frames int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "kind", kind, "err", err)
		return
	}
	h.logger.Debug("render finished", "kind", kind, "frames", frames, "took", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("served", "method", method, "path", path, "status", status, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request error", "method", method, "path", path, "err", err)
}
