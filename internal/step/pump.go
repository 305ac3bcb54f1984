// internal/step/pump.go
package step

// Emit hands a step to the consumer of a Pump
type Emit func(Step)

// Pump turns an explicit state machine into a Sequence. Producers keep their
// loop variables (and recursion frames, see Stack) in a closure and do one
// unit of work per advance call, emitting zero or more steps. advance returns
// false once there is no more work; steps emitted on that final call are
// still delivered.
type Pump struct {
	advance func(emit Emit) bool
	buf     []Step
	done    bool
}

// NewPump creates a pump around advance
func NewPump(advance func(emit Emit) bool) *Pump {
	return &Pump{advance: advance}
}

// Next returns the next buffered step, advancing the machine as needed
func (p *Pump) Next() (Step, bool) {
	for len(p.buf) == 0 {
		if p.done {
			return nil, false
		}
		if !p.advance(p.push) {
			p.done = true
		}
	}

	st := p.buf[0]
	p.buf[0] = nil
	p.buf = p.buf[1:]
	return st, true
}

func (p *Pump) push(st Step) {
	p.buf = append(p.buf, st)
}

// Stack is a LIFO of frames for producers that replace recursion with
// explicit state
type Stack[T any] struct {
	items []T
}

// Push adds a frame
func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top frame
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Peek returns a pointer to the top frame, or nil when empty
func (s *Stack[T]) Peek() *T {
	if len(s.items) == 0 {
		return nil
	}
	return &s.items[len(s.items)-1]
}

// Len returns the number of frames
func (s *Stack[T]) Len() int {
	return len(s.items)
}
