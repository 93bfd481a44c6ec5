// Package poll provides a bounded fixed-interval wait primitive.
//
// The session's only wait is watching the filesystem for the browser's
// in-progress download markers to disappear; nothing is retried on its
// own. That wait is expressed as a condition polled at
// a configurable interval under a configurable timeout, with context
// cancellation.
//
// Usage:
//
//	cfg := poll.Config{Interval: 250 * time.Millisecond, Timeout: 15 * time.Second}
//	err := poll.Until(ctx, cfg, func() bool {
//		return !organizer.DownloadsInProgress()
//	})
//	if errors.Is(err, poll.ErrTimeout) {
//		// soft failure: the download did not finish in time
//	}
package poll
