package srt

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03,004"},
		{1500 * time.Millisecond, "00:00:01,500"},
		{3250 * time.Millisecond, "00:00:03,250"},
		{99*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond, "99:59:59,999"},
		{-time.Second, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.d); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Fatalf("expected empty string for zero segments, got %q", got)
	}
	if got := Render([]Segment{}); got != "" {
		t.Fatalf("expected empty string for empty slice, got %q", got)
	}
}

func TestRenderTwoSegments(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1500 * time.Millisecond, Text: "Hello"},
		{Start: 1500 * time.Millisecond, End: 3250 * time.Millisecond, Text: "world"},
	}
	want := "1\n" +
		"00:00:00,000 --> 00:00:01,500\n" +
		"Hello\n" +
		"\n" +
		"2\n" +
		"00:00:01,500 --> 00:00:03,250\n" +
		"world\n" +
		"\n"
	if got := Render(segments); got != want {
		t.Fatalf("render mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderIndicesMatchInputOrder(t *testing.T) {
	var segments []Segment
	for i := 0; i < 25; i++ {
		segments = append(segments, Segment{
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  fmt.Sprintf("line %d", i),
		})
	}
	out := Render(segments)
	if got := CountCues(out); got != len(segments) {
		t.Fatalf("expected %d cues, got %d", len(segments), got)
	}
	lines := strings.Split(out, "\n")
	cue := 0
	for i := 0; i < len(lines); i += 4 {
		if lines[i] == "" {
			break
		}
		cue++
		if lines[i] != fmt.Sprint(cue) {
			t.Fatalf("cue %d has index line %q", cue, lines[i])
		}
		if want := fmt.Sprintf("line %d", cue-1); lines[i+2] != want {
			t.Fatalf("cue %d text = %q, want %q", cue, lines[i+2], want)
		}
	}
	if cue != len(segments) {
		t.Fatalf("walked %d cues, want %d", cue, len(segments))
	}
}

func TestRenderTextVerbatim(t *testing.T) {
	segments := []Segment{{Start: 0, End: time.Second, Text: "  spaced  <i>markup</i> "}}
	out := Render(segments)
	if !strings.Contains(out, "  spaced  <i>markup</i> \n") {
		t.Fatalf("text was not preserved verbatim: %q", out)
	}
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"clip.mp4", "clip.srt"},
		{"/media/show/episode.mkv", "/media/show/episode.srt"},
		{"noext", "noext.srt"},
		{"dir.v2/audio.wav", "dir.v2/audio.srt"},
	}
	for _, tc := range cases {
		if got := OutputPath(tc.input); got != tc.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("01:02:03,004")
	if err != nil {
		t.Fatal(err)
	}
	if want := 3723.004; got != want {
		t.Fatalf("ParseTimestamp = %v, want %v", got, want)
	}
	if _, err := ParseTimestamp("garbage"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	seg := Segment{Start: 3723004 * time.Millisecond, End: 3724500 * time.Millisecond, Text: "x"}
	out := Render([]Segment{seg})
	timing := strings.Split(out, "\n")[1]
	parts := strings.Split(timing, " --> ")
	if len(parts) != 2 {
		t.Fatalf("unexpected timing line %q", timing)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		t.Fatal(err)
	}
	if want := seg.Start.Seconds(); start != want {
		t.Fatalf("round trip start = %v, want %v", start, want)
	}
}
