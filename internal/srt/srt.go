package srt

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Segment is one timestamped span of transcribed speech. Start and End are
// offsets from the beginning of the media; Start must not exceed End.
// Segments are rendered in the order they were produced and never re-sorted.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// FormatTimestamp renders a duration in SRT timing notation: HH:MM:SS,mmm
// with fixed-width zero-padded fields.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// Render formats segments as a complete SRT document. Entries are numbered
// from 1 in input order. Each entry is four lines: index, timing, verbatim
// text, blank. Line endings are "\n" throughout. Zero segments render as an
// empty string.
func Render(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(segments) * 48)
	for i, seg := range segments {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(seg.End))
		b.WriteByte('\n')
		b.WriteString(seg.Text)
		b.WriteByte('\n')
		b.WriteByte('\n')
	}
	return b.String()
}

// OutputPath derives the subtitle path for an input media file by replacing
// its extension with .srt. The result sits alongside the input.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".srt"
}

// ParseTimestamp converts an SRT timing value back to seconds. Both comma and
// period millisecond separators are accepted.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// CountCues reports the number of subtitle blocks in rendered SRT content.
func CountCues(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(trimmed, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
