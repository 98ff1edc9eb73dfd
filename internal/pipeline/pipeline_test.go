package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subgen/internal/assets"
	"subgen/internal/config"
	"subgen/internal/history"
	"subgen/internal/media"
	"subgen/internal/recognize"
	"subgen/internal/srt"
)

type fakeProvisioner struct {
	workDir    string
	calls      []string
	cacheErr   error
	transErr   error
	modelErr   error
	modelPath  string
	binaryPath string
}

func (f *fakeProvisioner) EnsureCache() error {
	f.calls = append(f.calls, "cache")
	return f.cacheErr
}

func (f *fakeProvisioner) EnsureTranscoder(ctx context.Context) (*assets.CachedAsset, error) {
	f.calls = append(f.calls, "transcoder")
	if f.transErr != nil {
		return nil, f.transErr
	}
	return &assets.CachedAsset{ID: "transcoder", Path: f.binaryPath, State: assets.StateReady}, nil
}

func (f *fakeProvisioner) EnsureModel(ctx context.Context, variant string) (*assets.CachedAsset, error) {
	f.calls = append(f.calls, "model:"+variant)
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	return &assets.CachedAsset{ID: variant, Path: f.modelPath, State: assets.StateReady}, nil
}

func (f *fakeProvisioner) WorkDir() string { return f.workDir }

type fakeTranscoder struct {
	workDir    string
	err        error
	sampleRate int
}

func (f *fakeTranscoder) Decode(ctx context.Context, source string, sampleRate int) (*media.Buffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sampleRate = sampleRate
	path := filepath.Join(f.workDir, "audio-test.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0o644); err != nil {
		return nil, err
	}
	return &media.Buffer{PCM: []byte("RIFFdata"), SampleRate: sampleRate, Path: path}, nil
}

type fakeRecognizer struct {
	segments []recognize.Segment
	language string
	err      error
	// cancelAfter, when set, cancels the run's context after emitting the
	// configured segments and ends the stream with the context error.
	cancelAfter context.CancelFunc
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, audio *media.Buffer, language string) (*recognize.Stream, error) {
	stream := recognize.NewStream()
	go func() {
		stream.SetDetectedLanguage(f.language)
		for _, seg := range f.segments {
			if !stream.Emit(ctx, seg) {
				stream.Close(ctx.Err())
				return
			}
		}
		if f.cancelAfter != nil {
			f.cancelAfter()
			<-ctx.Done()
			stream.Close(ctx.Err())
			return
		}
		stream.Close(f.err)
	}()
	return stream, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(t.TempDir(), ".subgen")
	return &cfg
}

func newTestRunner(t *testing.T, cfg *config.Config, prov *fakeProvisioner, rec recognize.Recognizer, store *history.Store) (*Runner, *fakeTranscoder) {
	t.Helper()
	transcoder := &fakeTranscoder{workDir: prov.workDir}
	runner, err := NewRunner(Options{
		Config: cfg,
		Assets: prov,
		NewTranscoder: func(binary, workDir string) media.Transcoder {
			return transcoder
		},
		NewRecognizer: func(modelPath, workDir string) recognize.Recognizer {
			return rec
		},
		History: store,
	})
	if err != nil {
		t.Fatal(err)
	}
	return runner, transcoder
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, "clip.mp4")
	prov := &fakeProvisioner{workDir: t.TempDir(), modelPath: "/cache/ggml-base.bin", binaryPath: "/cache/ffmpeg/ffmpeg"}
	rec := &fakeRecognizer{
		language: "en",
		segments: []recognize.Segment{
			{Start: 0, End: 1500 * time.Millisecond, Text: "Hello"},
			{Start: 1500 * time.Millisecond, End: 3250 * time.Millisecond, Text: "world"},
		},
	}
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	runner, transcoder := newTestRunner(t, cfg, prov, rec, store)
	result, err := runner.Generate(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	wantPath := srt.OutputPath(input)
	if result.OutputPath != wantPath {
		t.Fatalf("output path = %q, want %q", result.OutputPath, wantPath)
	}
	if result.SegmentCount != 2 || result.Language != "en" {
		t.Fatalf("result = %+v", result)
	}

	got, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "1\n" +
		"00:00:00,000 --> 00:00:01,500\n" +
		"Hello\n" +
		"\n" +
		"2\n" +
		"00:00:01,500 --> 00:00:03,250\n" +
		"world\n" +
		"\n"
	if string(got) != want {
		t.Fatalf("subtitle content mismatch:\ngot %q\nwant %q", got, want)
	}
	if result.OutputBytes != int64(len(want)) {
		t.Fatalf("output bytes = %d, want %d", result.OutputBytes, len(want))
	}

	if transcoder.sampleRate != cfg.Transcoder.SampleRate {
		t.Fatalf("decode sample rate = %d", transcoder.sampleRate)
	}

	// Provisioning order: cache, transcoder, then model.
	wantCalls := []string{"cache", "transcoder", "model:" + cfg.Model.Variant}
	if len(prov.calls) != len(wantCalls) {
		t.Fatalf("provisioner calls = %v", prov.calls)
	}
	for i, call := range wantCalls {
		if prov.calls[i] != call {
			t.Fatalf("provisioner calls = %v, want %v", prov.calls, wantCalls)
		}
	}

	runs, err := store.List(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].SegmentCount != 2 || runs[0].OutputPath != wantPath {
		t.Fatalf("history runs = %+v", runs)
	}

	// The original input is never deleted.
	if _, err := os.Stat(input); err != nil {
		t.Fatalf("input file was removed: %v", err)
	}
}

func TestGenerateRemovesIntermediateAudio(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, "clip.mp4")
	prov := &fakeProvisioner{workDir: t.TempDir(), modelPath: "m", binaryPath: "f"}
	rec := &fakeRecognizer{segments: []recognize.Segment{{End: time.Second, Text: "hi"}}}

	runner, transcoder := newTestRunner(t, cfg, prov, rec, nil)
	if _, err := runner.Generate(context.Background(), input); err != nil {
		t.Fatal(err)
	}
	wav := filepath.Join(transcoder.workDir, "audio-test.wav")
	if _, err := os.Stat(wav); !os.IsNotExist(err) {
		t.Fatal("intermediate audio should be deleted after a successful run")
	}
}

func TestGenerateKeepsIntermediateAudioWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcoder.KeepTempFiles = true
	input := writeInput(t, "clip.mp4")
	prov := &fakeProvisioner{workDir: t.TempDir(), modelPath: "m", binaryPath: "f"}
	rec := &fakeRecognizer{segments: []recognize.Segment{{End: time.Second, Text: "hi"}}}

	runner, transcoder := newTestRunner(t, cfg, prov, rec, nil)
	if _, err := runner.Generate(context.Background(), input); err != nil {
		t.Fatal(err)
	}
	wav := filepath.Join(transcoder.workDir, "audio-test.wav")
	if _, err := os.Stat(wav); err != nil {
		t.Fatalf("intermediate audio should be retained: %v", err)
	}
}

func TestGenerateCancelledMidRecognition(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, "clip.mp4")
	prov := &fakeProvisioner{workDir: t.TempDir(), modelPath: "m", binaryPath: "f"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecognizer{
		segments: []recognize.Segment{
			{End: time.Second, Text: "kept one"},
			{Start: time.Second, End: 2 * time.Second, Text: "kept two"},
		},
		cancelAfter: cancel,
	}

	runner, _ := newTestRunner(t, cfg, prov, rec, nil)
	result, err := runner.Generate(ctx, input)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// Segments accumulated before cancellation are not discarded.
	if result.SegmentCount != 2 {
		t.Fatalf("accumulated segments = %d, want 2", result.SegmentCount)
	}
	// But no subtitle file may exist for a cancelled run.
	if _, err := os.Stat(srt.OutputPath(input)); !os.IsNotExist(err) {
		t.Fatal("cancelled run must not write a subtitle file")
	}
}

func TestGenerateClassifiesFailures(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("boom")

	cases := []struct {
		name string
		prov *fakeProvisioner
		rec  recognize.Recognizer
		tErr error
		want error
	}{
		{
			name: "provisioning transcoder",
			prov: &fakeProvisioner{transErr: boom},
			rec:  &fakeRecognizer{},
			want: ErrProvisioning,
		},
		{
			name: "provisioning model",
			prov: &fakeProvisioner{modelErr: boom},
			rec:  &fakeRecognizer{},
			want: ErrProvisioning,
		},
		{
			name: "transcode",
			prov: &fakeProvisioner{},
			rec:  &fakeRecognizer{},
			tErr: boom,
			want: ErrTranscode,
		},
		{
			name: "recognition",
			prov: &fakeProvisioner{},
			rec:  &fakeRecognizer{err: boom},
			want: ErrRecognize,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := writeInput(t, "clip.mp4")
			tc.prov.workDir = t.TempDir()
			tc.prov.modelPath = "m"
			tc.prov.binaryPath = "f"
			runner, transcoder := newTestRunner(t, cfg, tc.prov, tc.rec, nil)
			transcoder.err = tc.tErr

			_, err := runner.Generate(context.Background(), input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("underlying cause lost: %v", err)
			}
			if _, statErr := os.Stat(srt.OutputPath(input)); !os.IsNotExist(statErr) {
				t.Fatal("failed run must not leave a subtitle file")
			}
		})
	}
}

func TestGenerateMissingInput(t *testing.T) {
	cfg := testConfig(t)
	prov := &fakeProvisioner{workDir: t.TempDir()}
	runner, _ := newTestRunner(t, cfg, prov, &fakeRecognizer{}, nil)
	if _, err := runner.Generate(context.Background(), filepath.Join(t.TempDir(), "absent.mp4")); err == nil {
		t.Fatal("expected error for missing input")
	}
	if len(prov.calls) != 0 {
		t.Fatalf("provisioning should not run for missing input: %v", prov.calls)
	}
}

func TestGenerateTranscoderOverrideSkipsDownload(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcoder.Command = "ffmpeg"
	input := writeInput(t, "clip.mp4")
	prov := &fakeProvisioner{workDir: t.TempDir(), modelPath: "m"}
	rec := &fakeRecognizer{segments: []recognize.Segment{{End: time.Second, Text: "hi"}}}

	runner, _ := newTestRunner(t, cfg, prov, rec, nil)
	if _, err := runner.Generate(context.Background(), input); err != nil {
		t.Fatal(err)
	}
	for _, call := range prov.calls {
		if call == "transcoder" {
			t.Fatal("transcoder provisioning should be skipped with a command override")
		}
	}
}
