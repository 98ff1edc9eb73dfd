package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"subgen/internal/logging"
	"subgen/internal/media"
)

// WhisperCLI runs the whisper.cpp command line tool over a decoded buffer.
type WhisperCLI struct {
	command       string
	modelPath     string
	workDir       string
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperCLI constructs a Recognizer that invokes command with the given
// ggml model. Scratch files are written to workDir.
func NewWhisperCLI(command, modelPath, workDir string, logger *slog.Logger) *WhisperCLI {
	return &WhisperCLI{
		command:   command,
		modelPath: modelPath,
		workDir:   workDir,
		logger:    logging.WithComponent(logger, "recognize"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (w *WhisperCLI) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.commandRunner = runner
}

// Transcribe starts recognition and returns a stream of segments. The engine
// runs in the background; callers drain the stream and then check its Err.
func (w *WhisperCLI) Transcribe(ctx context.Context, audio *media.Buffer, language string) (*Stream, error) {
	if audio == nil || len(audio.PCM) == 0 {
		return nil, fmt.Errorf("transcribe: empty audio buffer")
	}
	if w.modelPath == "" {
		return nil, fmt.Errorf("transcribe: model path required")
	}
	if language == "" {
		language = "auto"
	}

	stream := NewStream()
	go w.run(ctx, audio, language, stream)
	return stream, nil
}

func (w *WhisperCLI) run(ctx context.Context, audio *media.Buffer, language string, stream *Stream) {
	wavPath := audio.Path
	if wavPath == "" {
		// The buffer was produced without a backing file; materialize one
		// for the CLI.
		wavPath = filepath.Join(w.workDir, "recognize-"+uuid.NewString()+".wav")
		if err := os.WriteFile(wavPath, audio.PCM, 0o644); err != nil {
			stream.Close(fmt.Errorf("write audio for recognizer: %w", err))
			return
		}
		defer os.Remove(wavPath)
	}

	outPrefix := filepath.Join(w.workDir, "whisper-"+uuid.NewString())
	jsonPath := outPrefix + ".json"
	defer os.Remove(jsonPath)

	args := []string{
		"-m", w.modelPath,
		"-f", wavPath,
		"-l", language,
		"-oj",
		"-of", outPrefix,
		"-np",
	}

	start := time.Now()
	if err := w.exec(ctx, w.command, args...); err != nil {
		stream.Close(fmt.Errorf("whisper: %w", err))
		return
	}

	segments, detected, err := loadWhisperOutput(jsonPath)
	if err != nil {
		stream.Close(err)
		return
	}
	w.logger.Debug("recognition complete",
		logging.Int("segments", len(segments)),
		logging.String("language", detected),
		logging.Duration("elapsed", time.Since(start)),
	)

	stream.SetDetectedLanguage(detected)
	for _, seg := range segments {
		if !stream.Emit(ctx, seg) {
			stream.Close(ctx.Err())
			return
		}
	}
	stream.Close(nil)
}

func (w *WhisperCLI) exec(ctx context.Context, name string, args ...string) error {
	if w.commandRunner != nil {
		return w.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// whisperPayload mirrors the whisper.cpp -oj output layout.
type whisperPayload struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func loadWhisperOutput(jsonPath string) ([]Segment, string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, "", fmt.Errorf("read whisper output: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, "", fmt.Errorf("parse whisper json: %w", err)
	}
	segments := make([]Segment, 0, len(payload.Transcription))
	for _, entry := range payload.Transcription {
		segments = append(segments, Segment{
			Start: time.Duration(entry.Offsets.From) * time.Millisecond,
			End:   time.Duration(entry.Offsets.To) * time.Millisecond,
			Text:  entry.Text,
		})
	}
	return segments, payload.Result.Language, nil
}
