package assets

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
)

// State tracks an asset through provisioning.
type State int

const (
	StateUnchecked State = iota
	StateDownloading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDownloading:
		return "downloading"
	case StateReady:
		return "ready"
	default:
		return "unchecked"
	}
}

// CachedAsset describes one downloadable dependency in the working cache.
type CachedAsset struct {
	// ID is the logical identifier, e.g. the model variant or "transcoder".
	ID   string
	Path string
	// ExpectedSize is the remote byte length when known; 0 means unknown.
	ExpectedSize int64
	Size         int64
	Exists       bool
	Executable   bool
	State        State
}

// Refresh re-reads the asset's on-disk attributes.
func (a *CachedAsset) Refresh() error {
	info, err := os.Stat(a.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.Exists = false
			a.Size = 0
			a.Executable = false
			return nil
		}
		return err
	}
	a.Exists = true
	a.Size = info.Size()
	if runtime.GOOS == "windows" {
		a.Executable = true
	} else {
		a.Executable = info.Mode().Perm()&0o111 != 0
	}
	return nil
}

// Valid reports whether the asset can be used as-is: it exists on disk and
// either the expected length is unknown or the actual length matches it.
func (a *CachedAsset) Valid() bool {
	if !a.Exists {
		return false
	}
	return a.ExpectedSize == 0 || a.Size == a.ExpectedSize
}
