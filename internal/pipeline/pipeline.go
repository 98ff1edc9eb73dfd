package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"subgen/internal/assets"
	"subgen/internal/config"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/recognize"
	"subgen/internal/srt"
)

// Failure classification markers. Errors from each stage wrap one of these
// so the CLI can report which phase of the run broke.
var (
	ErrProvisioning = errors.New("provisioning failure")
	ErrTranscode    = errors.New("transcode failure")
	ErrRecognize    = errors.New("recognition failure")
	ErrWrite        = errors.New("subtitle write failure")
)

// Provisioner is the asset-provisioning surface the pipeline depends on.
// *assets.Manager satisfies it.
type Provisioner interface {
	EnsureCache() error
	EnsureTranscoder(ctx context.Context) (*assets.CachedAsset, error)
	EnsureModel(ctx context.Context, variant string) (*assets.CachedAsset, error)
	WorkDir() string
}

// Options configures a Runner. NewTranscoder and NewRecognizer are factories
// because the binary and model paths are only known once provisioning has
// run; tests substitute fakes here.
type Options struct {
	Config        *config.Config
	Assets        Provisioner
	NewTranscoder func(binary, workDir string) media.Transcoder
	NewRecognizer func(modelPath, workDir string) recognize.Recognizer
	History       *history.Store
	Logger        *slog.Logger
}

// Result describes a completed run.
type Result struct {
	OutputPath   string
	OutputBytes  int64
	SegmentCount int
	Language     string
	Elapsed      time.Duration
}

// Runner executes transcription runs.
type Runner struct {
	cfg           *config.Config
	assets        Provisioner
	newTranscoder func(binary, workDir string) media.Transcoder
	newRecognizer func(modelPath, workDir string) recognize.Recognizer
	store         *history.Store
	logger        *slog.Logger
}

// NewRunner constructs a Runner. Config and Assets are required.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline requires config")
	}
	if opts.Assets == nil {
		return nil, errors.New("pipeline requires an asset provisioner")
	}
	logger := opts.Logger
	newTranscoder := opts.NewTranscoder
	if newTranscoder == nil {
		newTranscoder = func(binary, workDir string) media.Transcoder {
			return media.NewFFmpeg(binary, workDir, logger)
		}
	}
	cfg := opts.Config
	newRecognizer := opts.NewRecognizer
	if newRecognizer == nil {
		newRecognizer = func(modelPath, workDir string) recognize.Recognizer {
			return recognize.NewWhisperCLI(cfg.Recognizer.Command, modelPath, workDir, logger)
		}
	}
	return &Runner{
		cfg:           cfg,
		assets:        opts.Assets,
		newTranscoder: newTranscoder,
		newRecognizer: newRecognizer,
		store:         opts.History,
		logger:        logging.WithComponent(logger, "pipeline"),
	}, nil
}

// Generate converts input media into an SRT file beside the input and
// returns the resulting file's metadata.
func (r *Runner) Generate(ctx context.Context, inputPath string) (Result, error) {
	var result Result
	start := time.Now()

	if _, err := os.Stat(inputPath); err != nil {
		return result, fmt.Errorf("input media: %w", err)
	}

	if err := r.assets.EnsureCache(); err != nil {
		return result, fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	transcoderBinary := r.cfg.Transcoder.Command
	if transcoderBinary == "" {
		transcoderAsset, err := r.assets.EnsureTranscoder(ctx)
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrProvisioning, err)
		}
		transcoderBinary = transcoderAsset.Path
	}

	modelAsset, err := r.assets.EnsureModel(ctx, r.cfg.Model.Variant)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	r.logger.Info("transcoding input",
		logging.String("source", inputPath),
		logging.Int("sample_rate", r.cfg.Transcoder.SampleRate),
	)
	transcoder := r.newTranscoder(transcoderBinary, r.assets.WorkDir())
	audio, err := transcoder.Decode(ctx, inputPath, r.cfg.Transcoder.SampleRate)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrTranscode, err)
	}

	r.logger.Info("recognizing speech",
		logging.String("model", modelAsset.Path),
		logging.String("language", r.cfg.Recognizer.Language),
	)
	recognizer := r.newRecognizer(modelAsset.Path, r.assets.WorkDir())
	stream, err := recognizer.Transcribe(ctx, audio, r.cfg.Recognizer.Language)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrRecognize, err)
	}

	segments, drainErr := drain(stream)
	result.SegmentCount = len(segments)
	result.Language = stream.DetectedLanguage()
	if drainErr != nil {
		// Cancellation keeps the accumulated segments in memory but never
		// produces a subtitle file.
		if errors.Is(drainErr, context.Canceled) || errors.Is(drainErr, context.DeadlineExceeded) {
			return result, drainErr
		}
		return result, fmt.Errorf("%w: %w", ErrRecognize, drainErr)
	}

	if !r.cfg.Transcoder.KeepTempFiles {
		if err := audio.Cleanup(); err != nil {
			r.logger.Warn("intermediate audio cleanup failed", logging.Error(err))
		}
	}

	outputPath := srt.OutputPath(inputPath)
	document := srt.Render(toSubtitleSegments(segments))
	if err := os.WriteFile(outputPath, []byte(document), 0o644); err != nil {
		return result, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	result.OutputPath = outputPath
	result.OutputBytes = info.Size()
	result.Elapsed = time.Since(start)

	r.recordRun(ctx, inputPath, result)
	r.logger.Info("subtitles written",
		logging.String("output", outputPath),
		logging.Int("segments", result.SegmentCount),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// drain consumes the recognition stream to completion, accumulating segments
// in production order. Segments received before a failure or cancellation are
// returned alongside the terminal error.
func drain(stream *recognize.Stream) ([]recognize.Segment, error) {
	var segments []recognize.Segment
	for seg := range stream.Segments() {
		segments = append(segments, seg)
	}
	return segments, stream.Err()
}

func toSubtitleSegments(in []recognize.Segment) []srt.Segment {
	out := make([]srt.Segment, len(in))
	for i, seg := range in {
		out[i] = srt.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return out
}

// recordRun is best effort; a history failure never fails the run.
func (r *Runner) recordRun(ctx context.Context, inputPath string, result Result) {
	if r.store == nil {
		return
	}
	_, err := r.store.Record(ctx, history.Run{
		SourcePath:   inputPath,
		OutputPath:   result.OutputPath,
		SegmentCount: result.SegmentCount,
		Language:     result.Language,
		Elapsed:      result.Elapsed,
	})
	if err != nil {
		r.logger.Warn("record run history failed", logging.Error(err))
	}
}
