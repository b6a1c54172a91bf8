package workflow

import (
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
)

// DefaultRescoreDelay is the trailing-edge debounce window between the last
// edit signal and the scoring call it triggers.
const DefaultRescoreDelay = 900 * time.Millisecond

// rescoreScheduler turns bursts of edit signals into single scoring runs.
// Every run carries a monotonically increasing issuance number; a response
// is applied only while its number is still the latest issued, which drops
// out-of-order late responses without any real network cancellation.
type rescoreScheduler struct {
	debounced func(func())
	seq       atomic.Uint64
	run       func(seq uint64)
}

func newRescoreScheduler(delay time.Duration, run func(seq uint64)) *rescoreScheduler {
	if delay <= 0 {
		delay = DefaultRescoreDelay
	}
	return &rescoreScheduler{
		debounced: debounce.New(delay),
		run:       run,
	}
}

// Signal restarts the debounce window. When the window elapses without a
// newer signal, exactly one run fires; the document snapshot is taken inside
// run, at elapse time rather than signal time.
func (s *rescoreScheduler) Signal() {
	s.debounced(func() {
		s.run(s.seq.Add(1))
	})
}

// Next claims the next issuance number without waiting out the debounce
// window. Manual and post-analysis rescores go through here so they
// supersede any in-flight automatic run.
func (s *rescoreScheduler) Next() uint64 {
	return s.seq.Add(1)
}

// Current reports whether seq is still the latest issued run.
func (s *rescoreScheduler) Current(seq uint64) bool {
	return s.seq.Load() == seq
}
