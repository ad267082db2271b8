package anim

import "time"

// A Sequence plays its children back to back. The next child is anchored
// where the previous one ended, so chaining never drops or adds time.
type Sequence struct {
	Repeat   bool
	children []*Value
	index    int
}

// NewSequence anchors the first child at start. Children are not copied.
func NewSequence(start time.Time, repeat bool, children ...*Value) *Sequence {
	s := new(Sequence)
	s.Repeat = repeat
	s.children = children
	if len(children) > 0 {
		children[0].Restart(start)
	}

	return s
}

// Index of the child currently being evaluated.
func (s *Sequence) Index() int {
	return s.index
}

// TotalDuration is the sum of the children's total durations.
func (s *Sequence) TotalDuration() time.Duration {
	var total time.Duration
	for _, c := range s.children {
		total += c.TotalDuration()
	}
	return total
}

// Evaluate evaluates the current child and advances to the next one once it
// completes. The tick on which the advance happens never reports done; only
// the last child of a non-repeating sequence can complete the sequence.
func (s *Sequence) Evaluate(t time.Time) (float64, bool) {
	if len(s.children) == 0 {
		return 0, true
	}

	current := s.children[s.index]
	v, done := current.Evaluate(t)
	if !done {
		return v, false
	}

	if s.index < len(s.children)-1 || s.Repeat {
		anchor := current.StartTime().Add(current.TotalDuration())
		s.index = (s.index + 1) % len(s.children)
		s.children[s.index].Restart(anchor)
		return v, false
	}

	return v, true
}
