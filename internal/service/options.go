package service

import (
	"time"

	"github.com/rs/zerolog"
)

// Option customises a service at construction time.
type Option func(*options)

type options struct {
	now func() time.Time
	log zerolog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
		log: zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the whole days between two calendar days.
func Nights(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)) / (24 * time.Hour))
}
