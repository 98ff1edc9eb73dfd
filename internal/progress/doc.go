// Package progress provides advisory download-progress sampling.
//
// A Poller periodically observes the size of a partially written file and
// reports percentage events through a callback. Reporting is best effort: the
// poller never blocks the download it observes, may miss byte-count
// transitions, and stops with its context.
package progress
