package blobgate

import (
	"log/slog"
)

// BestEffortOutcome records the result of a best-effort operation. The
// error never propagates to the enclosing operation's caller.
type BestEffortOutcome struct {
	Op  string
	Err error
}

// Failed reports whether the operation failed.
func (o BestEffortOutcome) Failed() bool {
	return o.Err != nil
}

// TryBestEffort runs fn and swallows its error, logging it and counting the
// failure. Best-effort secondary operations (derived-bucket deletes, event
// notifications) go through here so the swallow-but-record contract lives
// in one place.
func TryBestEffort(logger *slog.Logger, op string, fn func() error) BestEffortOutcome {
	err := fn()
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("best-effort operation failed", "op", op, "err", err)
		bestEffortFailuresTotal.WithLabelValues(op).Inc()
	}
	return BestEffortOutcome{Op: op, Err: err}
}
