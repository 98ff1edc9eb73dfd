package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"subgen/internal/logging"
	"subgen/internal/progress"
)

// EnsureModel guarantees a valid ggml model file for the requested variant
// exists in the cache, downloading it when missing or size-mismatched.
//
// The expected remote byte length is probed once and persisted in a sidecar
// file next to the model; later runs with a matching local file perform no
// network access at all. A local file whose length disagrees with the
// expected length is treated as corrupt, deleted, and re-downloaded.
func (m *Manager) EnsureModel(ctx context.Context, variant string) (*CachedAsset, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return nil, errors.New("model variant required")
	}

	lock, err := m.lockCache()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	asset := &CachedAsset{ID: variant, Path: m.ModelPath(variant)}
	if err := asset.Refresh(); err != nil {
		return nil, fmt.Errorf("stat model: %w", err)
	}

	// Fast path: the sidecar remembers the published length from a previous
	// run, so a correctly sized local file needs no network round trip.
	if expected, ok := m.readSizeHint(asset.Path); ok && asset.Exists && asset.Size == expected {
		asset.ExpectedSize = expected
		asset.State = StateReady
		m.logger.Debug("model already cached", logging.String("variant", variant), logging.Int64("size", asset.Size))
		return asset, nil
	}

	url := m.modelURL(variant)
	expected, err := m.probeSize(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probe model size: %w", err)
	}
	asset.ExpectedSize = expected

	if asset.Exists && !asset.Valid() {
		m.logger.Warn("cached model size mismatch, purging",
			logging.String("variant", variant),
			logging.Int64("have", asset.Size),
			logging.Int64("want", expected),
		)
		if err := os.Remove(asset.Path); err != nil {
			return nil, fmt.Errorf("remove stale model: %w", err)
		}
		asset.Exists = false
		asset.Size = 0
	}

	if asset.Valid() {
		m.writeSizeHint(asset.Path, expected)
		asset.State = StateReady
		return asset, nil
	}

	asset.State = StateDownloading
	m.logger.Info("downloading model",
		logging.String("variant", variant),
		logging.String("url", url),
		logging.Int64("bytes", expected),
	)
	if err := m.download(ctx, url, asset.Path, expected); err != nil {
		// The partial file, if any, stays behind; the next run's size check
		// detects and purges it.
		return nil, fmt.Errorf("download model %s: %w", variant, err)
	}
	if err := asset.Refresh(); err != nil {
		return nil, fmt.Errorf("stat downloaded model: %w", err)
	}
	if !asset.Valid() {
		return nil, fmt.Errorf("downloaded model %s has %d bytes, expected %d", variant, asset.Size, expected)
	}

	m.writeSizeHint(asset.Path, expected)
	asset.State = StateReady
	m.logger.Info("model ready", logging.String("variant", variant), logging.String("path", asset.Path))
	return asset, nil
}

func (m *Manager) modelURL(variant string) string {
	return strings.TrimRight(m.modelBaseURL, "/") + "/" + fmt.Sprintf(modelFilePattern, variant)
}

// probeSize issues a HEAD request and returns the advertised content length.
func (m *Manager) probeSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if resp.ContentLength <= 0 {
		return 0, errors.New("remote did not advertise a content length")
	}
	return resp.ContentLength, nil
}

// download streams url into path while an advisory poller watches the file
// grow. The poller shares no state with the copy beyond read-only stat calls
// and is cancelled as soon as the copy returns.
func (m *Manager) download(ctx context.Context, url, path string, expected int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller := &progress.Poller{
			Interval: m.pollInterval,
			Total:    expected,
			Size: func() (int64, error) {
				info, err := os.Stat(path)
				if err != nil {
					return 0, err
				}
				return info.Size(), nil
			},
		}
		poller.Run(pollCtx, m.onProgress)
	}()

	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	cancelPoll()
	<-pollerDone

	if copyErr != nil {
		return fmt.Errorf("stream model: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close model file: %w", closeErr)
	}
	return nil
}

func sizeHintPath(modelPath string) string {
	return modelPath + ".size"
}

func (m *Manager) readSizeHint(modelPath string) (int64, bool) {
	data, err := os.ReadFile(sizeHintPath(modelPath))
	if err != nil {
		return 0, false
	}
	size, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || size <= 0 {
		return 0, false
	}
	return size, true
}

// writeSizeHint persists the published model length. Failure is tolerable:
// the next run falls back to a network probe.
func (m *Manager) writeSizeHint(modelPath string, size int64) {
	err := os.WriteFile(sizeHintPath(modelPath), []byte(strconv.FormatInt(size, 10)+"\n"), 0o644)
	if err != nil && !errors.Is(err, fs.ErrPermission) {
		m.logger.Debug("write size hint failed", logging.Error(err))
	}
}
