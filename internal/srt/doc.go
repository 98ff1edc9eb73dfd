// Package srt renders timestamped transcription segments as SubRip documents.
//
// The package owns the exact SRT block layout (index line, timing line, text
// line, blank line) so the pipeline and CLI produce byte-identical output for
// the same segment sequence.
package srt
