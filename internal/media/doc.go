// Package media wraps the external transcoding engine behind a small
// interface so the pipeline can be exercised with fakes.
package media
