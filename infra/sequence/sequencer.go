package sequence

import "sync/atomic"

// Sequencer hands out the sequence numbers stamped on journal records
// and outbox events. Numbers are strictly increasing and start at 1.
type Sequencer struct {
	last atomic.Uint64
}

// New returns a sequencer whose next number is start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

func (s *Sequencer) Next() uint64 { return s.last.Add(1) }

// Current is the last number handed out, 0 if none.
func (s *Sequencer) Current() uint64 { return s.last.Load() }

// Reset moves the sequencer to v after journal replay.
func (s *Sequencer) Reset(v uint64) { s.last.Store(v) }
