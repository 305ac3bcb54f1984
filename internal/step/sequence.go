// internal/step/sequence.go
package step

import (
	"errors"
	"fmt"
)

// ErrTooManySteps is returned by Collect when a sequence exceeds its limit
var ErrTooManySteps = errors.New("sequence exceeded step limit")

// Sequence is a lazily-evaluated, single-pass stream of steps. Next returns
// false once the sequence is exhausted and keeps returning false afterwards.
type Sequence interface {
	Next() (Step, bool)
}

// Func adapts a function to a Sequence
type Func func() (Step, bool)

// Next calls f
func (f Func) Next() (Step, bool) {
	return f()
}

type sliceSeq struct {
	steps []Step
	pos   int
}

func (s *sliceSeq) Next() (Step, bool) {
	if s.pos >= len(s.steps) {
		return nil, false
	}
	st := s.steps[s.pos]
	s.pos++
	return st, true
}

// Slice returns a sequence over a fixed list of steps
func Slice(steps ...Step) Sequence {
	return &sliceSeq{steps: steps}
}

// Empty returns a sequence with no steps
func Empty() Sequence {
	return &sliceSeq{}
}

type concatSeq struct {
	seqs []Sequence
}

func (c *concatSeq) Next() (Step, bool) {
	for len(c.seqs) > 0 {
		if st, ok := c.seqs[0].Next(); ok {
			return st, true
		}
		c.seqs = c.seqs[1:]
	}
	return nil, false
}

// Concat chains sequences one after another
func Concat(seqs ...Sequence) Sequence {
	return &concatSeq{seqs: seqs}
}

// Collect drains seq into a slice. A positive limit bounds the number of steps
// read; exceeding it returns the steps read so far and ErrTooManySteps.
func Collect(seq Sequence, limit int) ([]Step, error) {
	var out []Step
	for {
		st, ok := seq.Next()
		if !ok {
			return out, nil
		}
		if limit > 0 && len(out) >= limit {
			return out, fmt.Errorf("%w: %d", ErrTooManySteps, limit)
		}
		out = append(out, st)
	}
}
