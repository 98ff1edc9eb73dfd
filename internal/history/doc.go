// Package history persists a record of completed transcription runs in a
// SQLite database inside the working cache.
package history
