// Package pipeline sequences a full transcription run: provision assets,
// decode the input to normalized audio, recognize speech, and write the SRT
// document beside the input file.
//
// Steps are strictly sequential; the only concurrent activity is the advisory
// download-progress poller inside asset provisioning. Cancellation is
// cooperative: once recognition has started, cancelling stops consumption but
// keeps the segments accumulated so far, and no subtitle file is written for
// a cancelled run.
package pipeline
