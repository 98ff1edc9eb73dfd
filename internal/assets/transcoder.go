package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"subgen/internal/logging"
)

// EnsureTranscoder guarantees a transcoder binary exists in the cache and
// returns its asset record. A non-empty transcoder directory is assumed valid
// and never re-verified; only existence matters here, not a checksum.
func (m *Manager) EnsureTranscoder(ctx context.Context) (*CachedAsset, error) {
	lock, err := m.lockCache()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	dir := m.TranscoderDir()
	binPath := filepath.Join(dir, transcoderBinaryName())
	asset := &CachedAsset{ID: "transcoder", Path: binPath}

	if populated, err := dirNonEmpty(dir); err != nil {
		return nil, fmt.Errorf("inspect transcoder dir: %w", err)
	} else if populated {
		if err := asset.Refresh(); err != nil {
			return nil, fmt.Errorf("stat transcoder: %w", err)
		}
		asset.State = StateReady
		m.logger.Debug("transcoder already cached", logging.String("path", binPath))
		return asset, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcoder dir: %w", err)
	}

	url, err := m.transcoderDownloadURL()
	if err != nil {
		return nil, err
	}
	asset.State = StateDownloading
	m.logger.Info("downloading transcoder", logging.String("url", url))

	if err := m.fetchBinary(ctx, url, binPath); err != nil {
		return nil, fmt.Errorf("download transcoder: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(binPath, 0o755); err != nil {
			return nil, fmt.Errorf("mark transcoder executable: %w", err)
		}
	}
	if err := asset.Refresh(); err != nil {
		return nil, fmt.Errorf("stat transcoder: %w", err)
	}
	asset.State = StateReady
	m.logger.Info("transcoder ready", logging.String("path", binPath))
	return asset, nil
}

// transcoderDownloadURL maps the running platform onto a static build name.
func (m *Manager) transcoderDownloadURL() (string, error) {
	osName, ok := map[string]string{
		"linux":   "linux",
		"darwin":  "darwin",
		"windows": "win32",
	}[runtime.GOOS]
	if !ok {
		return "", fmt.Errorf("no transcoder build for %s", runtime.GOOS)
	}
	arch, ok := map[string]string{
		"amd64": "x64",
		"arm64": "arm64",
	}[runtime.GOARCH]
	if !ok {
		return "", fmt.Errorf("no transcoder build for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	name := fmt.Sprintf("ffmpeg-%s-%s", osName, arch)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return strings.TrimRight(m.transcoderURL, "/") + "/" + name, nil
}

func transcoderBinaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func (m *Manager) fetchBinary(ctx context.Context, url, path string) error {
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
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func dirNonEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}
