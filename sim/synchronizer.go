package sim

// A Synchronizer is a two flip-flop chain that brings a single bit from
// another clock domain into the domain that owns the synchronizer. Sample is
// called once per tick with the foreign value, Latch shifts the chain at the
// edge, and Out returns the second stage.
type Synchronizer struct {
	input  bool
	stages [2]bool
}

// Sample stages the foreign value for the next shift.
func (s *Synchronizer) Sample(v bool) {
	s.input = v
}

// Latch shifts the chain by one stage.
func (s *Synchronizer) Latch() {
	s.stages[1] = s.stages[0]
	s.stages[0] = s.input
}

// Out returns the synchronized value.
func (s *Synchronizer) Out() bool {
	return s.stages[1]
}
