package control

import "sync"

// Script replays a fixed list of inputs, one per poll, then keeps returning the last one.
type Script struct {
	mu     sync.Mutex
	inputs []Input
	index  int
}

// NewScript creates a Script from the given inputs.
func NewScript(inputs ...Input) *Script {
	return &Script{inputs: inputs}
}

// Input ...
func (s *Script) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inputs) == 0 {
		return Input{}
	}
	in := s.inputs[s.index]
	if s.index < len(s.inputs)-1 {
		s.index++
	}
	return in
}
