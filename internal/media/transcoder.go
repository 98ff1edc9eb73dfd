package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"subgen/internal/logging"
)

// Buffer holds decoded mono PCM audio in memory alongside the intermediate
// file it was read from.
type Buffer struct {
	PCM        []byte
	SampleRate int
	// Path is the intermediate WAV in the working cache, retained until the
	// pipeline decides whether to keep temp files.
	Path string
}

// Cleanup removes the intermediate file. Safe to call twice.
func (b *Buffer) Cleanup() error {
	if b == nil || b.Path == "" {
		return nil
	}
	err := os.Remove(b.Path)
	b.Path = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Transcoder decodes source media into normalized single-channel PCM audio.
type Transcoder interface {
	Decode(ctx context.Context, source string, sampleRate int) (*Buffer, error)
}

// FFmpeg invokes an ffmpeg binary to decode media.
type FFmpeg struct {
	binary        string
	workDir       string
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewFFmpeg constructs a Transcoder around the given ffmpeg binary.
// Intermediate WAV files are written into workDir.
func NewFFmpeg(binary, workDir string, logger *slog.Logger) *FFmpeg {
	return &FFmpeg{
		binary:  binary,
		workDir: workDir,
		logger:  logging.WithComponent(logger, "transcode"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (f *FFmpeg) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	f.commandRunner = runner
}

// Decode converts source into mono PCM WAV at the given sample rate, buffered
// in memory. The sample rate is passed as a post-input argument so it applies
// to the output stream.
func (f *FFmpeg) Decode(ctx context.Context, source string, sampleRate int) (*Buffer, error) {
	if source == "" {
		return nil, fmt.Errorf("decode: source path required")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("decode: sample rate must be positive, got %d", sampleRate)
	}

	dest := filepath.Join(f.workDir, "audio-"+uuid.NewString()+".wav")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}

	start := time.Now()
	if err := f.run(ctx, f.binary, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}
	pcm, err := os.ReadFile(dest)
	if err != nil {
		return nil, fmt.Errorf("read decoded audio: %w", err)
	}
	f.logger.Debug("audio decoded",
		logging.String("source", source),
		logging.Int("sample_rate", sampleRate),
		logging.Float64("size_mb", float64(len(pcm))/1_048_576),
		logging.Duration("elapsed", time.Since(start)),
	)
	return &Buffer{PCM: pcm, SampleRate: sampleRate, Path: dest}, nil
}

func (f *FFmpeg) run(ctx context.Context, name string, args ...string) error {
	if f.commandRunner != nil {
		return f.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
