// Package recognize wraps the external speech recognition engine behind a
// streaming interface.
//
// Implementations emit timestamped segments in non-decreasing start order on
// a channel; consumers drain it and then read the terminal error. The bundled
// implementation shells out to the whisper.cpp CLI and parses its JSON
// output.
package recognize
