package assets

import "path/filepath"

// InspectModel reports the cached state of a model variant without touching
// the network. The expected size comes from the persisted hint when present.
func (m *Manager) InspectModel(variant string) (*CachedAsset, error) {
	asset := &CachedAsset{ID: variant, Path: m.ModelPath(variant)}
	if err := asset.Refresh(); err != nil {
		return nil, err
	}
	if expected, ok := m.readSizeHint(asset.Path); ok {
		asset.ExpectedSize = expected
	}
	if asset.Valid() {
		asset.State = StateReady
	}
	return asset, nil
}

// InspectTranscoder reports the cached state of the transcoder binary.
func (m *Manager) InspectTranscoder() (*CachedAsset, error) {
	asset := &CachedAsset{ID: "transcoder", Path: filepath.Join(m.TranscoderDir(), transcoderBinaryName())}
	if err := asset.Refresh(); err != nil {
		return nil, err
	}
	if populated, err := dirNonEmpty(m.TranscoderDir()); err == nil && populated {
		asset.State = StateReady
	}
	return asset, nil
}
