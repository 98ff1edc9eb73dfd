package main

import (
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"subgen/internal/logging"
	"subgen/internal/progress"
)

// progressReporter turns advisory download events into either an interactive
// progress bar (TTY) or sampled log lines. Events arrive from the poller
// goroutine, so state is mutex-guarded.
type progressReporter struct {
	mu     sync.Mutex
	logger *slog.Logger
	tty    bool
	bar    *progressbar.ProgressBar
}

func newProgressReporter(logger *slog.Logger) *progressReporter {
	return &progressReporter{
		logger: logging.WithComponent(logger, "download"),
		tty:    isatty.IsTerminal(os.Stdout.Fd()),
	}
}

func (r *progressReporter) observe(event progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tty {
		r.logger.Info("model download",
			logging.Float64("percent", event.Percent),
			logging.Int64("bytes", event.Bytes),
			logging.Int64("total", event.Total),
		)
		return
	}
	if r.bar == nil {
		r.bar = progressbar.DefaultBytes(event.Total, "downloading model")
	}
	_ = r.bar.Set64(event.Bytes)
}

func (r *progressReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}
