package assistant

import "sync"

// Sequencer issues increasing tokens per flow. Only the holder of the most
// recent token for a flow may apply its result.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a new token for flow, superseding every earlier one.
func (s *Sequencer) Next(flow string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[flow]++
	return s.latest[flow]
}

func (s *Sequencer) IsLatest(flow string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[flow] == token
}

// Apply runs fn only if token is still the latest for flow. No new token can
// be issued for flow while fn runs.
func (s *Sequencer) Apply(flow string, token uint64, fn func() error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[flow] != token {
		return false, nil
	}
	return true, fn()
}
