package assets

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"subgen/internal/logging"
	"subgen/internal/progress"
)

const (
	transcoderSubdir = "ffmpeg"
	workSubdir       = "work"
	lockFileName     = "cache.lock"
	modelFilePattern = "ggml-%s.bin"
)

// Options configures a Manager.
type Options struct {
	// Root is the working cache directory.
	Root string
	// ModelBaseURL is the URL prefix the ggml model file name is appended to.
	ModelBaseURL string
	// TranscoderBaseURL is the URL prefix for platform transcoder builds.
	TranscoderBaseURL string
	Client            *http.Client
	Logger            *slog.Logger
	// OnProgress receives advisory model-download progress events.
	OnProgress func(progress.Event)
	// PollInterval overrides the 1s download poller cadence (tests).
	PollInterval time.Duration
}

// Manager provisions cached assets.
type Manager struct {
	root          string
	modelBaseURL  string
	transcoderURL string
	client        *http.Client
	logger        *slog.Logger
	onProgress    func(progress.Event)
	pollInterval  time.Duration
}

// NewManager constructs a Manager. Root and the two base URLs are required by
// callers; the logger and progress callback are optional.
func NewManager(opts Options) *Manager {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Manager{
		root:          opts.Root,
		modelBaseURL:  opts.ModelBaseURL,
		transcoderURL: opts.TranscoderBaseURL,
		client:        client,
		logger:        logging.WithComponent(opts.Logger, "assets"),
		onProgress:    opts.OnProgress,
		pollInterval:  interval,
	}
}

// Root returns the working cache directory.
func (m *Manager) Root() string {
	return m.root
}

// WorkDir returns the directory for transient intermediate files.
func (m *Manager) WorkDir() string {
	return filepath.Join(m.root, workSubdir)
}

// ModelPath returns the cache location for a model variant.
func (m *Manager) ModelPath(variant string) string {
	return filepath.Join(m.root, fmt.Sprintf(modelFilePattern, variant))
}

// TranscoderDir returns the transcoder distribution directory.
func (m *Manager) TranscoderDir() string {
	return filepath.Join(m.root, transcoderSubdir)
}

// EnsureCache creates the working cache directory tree, marking the root
// hidden where the platform supports an explicit hidden attribute.
func (m *Manager) EnsureCache() error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := markHidden(m.root); err != nil {
		return fmt.Errorf("mark cache hidden: %w", err)
	}
	if err := os.MkdirAll(m.WorkDir(), 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	return nil
}

// lockCache takes the cross-process cache lock. Concurrent invocations
// against one cache directory serialize on it instead of corrupting each
// other's downloads.
func (m *Manager) lockCache() (*flock.Flock, error) {
	lock := flock.New(filepath.Join(m.root, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock cache: %w", err)
	}
	return lock, nil
}
