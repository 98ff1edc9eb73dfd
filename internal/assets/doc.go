// Package assets provisions the downloadable dependencies subgen needs
// before transcription can run: a static transcoder build and a ggml speech
// model, both held in a hidden working cache.
//
// Provisioning is idempotent. A transcoder directory that is non-empty is
// assumed valid and never re-verified. A model file is valid only when its
// byte length matches the published remote length; any mismatch deletes the
// local copy and forces a fresh download. There is no retry: a failed
// download leaves the asset absent for the next run to acquire from scratch.
package assets
