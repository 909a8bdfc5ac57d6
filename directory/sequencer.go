package directory

import "sync/atomic"

// Sequencer numbers recipient queries so only the lookup for the most recent
// keystroke may update visible results. A response is stale as soon as a
// newer query has been issued, whatever order the responses arrive in.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues the sequence number for a new query
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest returns the most recently issued sequence number
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

// IsLatest reports whether seq still belongs to the newest query
func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq != 0 && seq == s.latest.Load()
}
