package ledger

import "time"

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithClock sets the time source used to stamp activities.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}
