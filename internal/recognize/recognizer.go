package recognize

import (
	"context"
	"time"

	"subgen/internal/media"
)

// Segment is one timestamped span of recognized speech. Start and End are
// offsets from the beginning of the audio; text is verbatim engine output.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Recognizer converts a decoded audio buffer into a stream of segments.
// Language may be an ISO code or "auto" for engine-side detection.
type Recognizer interface {
	Transcribe(ctx context.Context, audio *media.Buffer, language string) (*Stream, error)
}

// Stream delivers segments as recognition produces them. The channel closes
// when recognition finishes, fails, or the context is cancelled; Err and
// DetectedLanguage are valid only after the channel has closed.
type Stream struct {
	ch       chan Segment
	err      error
	language string
}

// NewStream constructs an open stream. Producers call Emit then Close;
// fake recognizers in tests drive these directly.
func NewStream() *Stream {
	return &Stream{ch: make(chan Segment)}
}

// Segments returns the receive side of the stream.
func (s *Stream) Segments() <-chan Segment {
	return s.ch
}

// Emit delivers one segment, honoring cancellation. Returns false when ctx
// was cancelled before the segment could be handed off.
func (s *Stream) Emit(ctx context.Context, seg Segment) bool {
	select {
	case <-ctx.Done():
		return false
	case s.ch <- seg:
		return true
	}
}

// Close records the terminal error (nil on success) and closes the channel.
func (s *Stream) Close(err error) {
	s.err = err
	close(s.ch)
}

// SetDetectedLanguage records the engine's detected language. Must be called
// before Close.
func (s *Stream) SetDetectedLanguage(lang string) {
	s.language = lang
}

// Err reports why the stream ended. Valid after Segments has closed.
func (s *Stream) Err() error {
	return s.err
}

// DetectedLanguage reports the language the engine settled on, when known.
// Valid after Segments has closed.
func (s *Stream) DetectedLanguage() string {
	return s.language
}
