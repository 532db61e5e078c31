package transfer

// Sequencer tracks a 16 bit block number. Overflow wraps to 0.
type Sequencer struct {
	current uint16
}

func NewSequencer(start uint16) *Sequencer {
	return &Sequencer{current: start}
}

func (s *Sequencer) Current() uint16 {
	return s.current
}

// Next returns the current block number and advances the counter.
func (s *Sequencer) Next() uint16 {
	n := s.current
	s.current++

	return n
}

// Previous is the block number that preceded the current one.
func (s *Sequencer) Previous() uint16 {
	return s.current - 1
}

func Matches(received, expected uint16) bool {
	return received == expected
}
