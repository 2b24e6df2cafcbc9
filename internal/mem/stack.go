package mem

import "fmt"

// StackError reports a push past a Stack's Limit or a pop from an empty one.
type StackError struct {
	Name     string
	Overflow bool
}

func (err StackError) Error() string {
	if err.Overflow {
		return fmt.Sprintf("%v overflow", err.Name)
	}
	return fmt.Sprintf("%v underflow", err.Name)
}

// Stack is a LIFO of cells with a fixed maximum depth.
type Stack struct {
	// Name is used in StackError messages, e.g. "data stack".
	Name string

	// Limit is the maximum depth; 0 means unbounded.
	Limit int

	vals []int
}

// Len returns the current depth.
func (s *Stack) Len() int { return len(s.vals) }

// Values returns the live contents, bottom first; the slice aliases the stack.
func (s *Stack) Values() []int { return s.vals }

// Push adds a value to the top.
func (s *Stack) Push(val int) error {
	if s.Limit != 0 && len(s.vals) >= s.Limit {
		return StackError{s.Name, true}
	}
	s.vals = append(s.vals, val)
	return nil
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (int, error) {
	i := len(s.vals) - 1
	if i < 0 {
		return 0, StackError{s.Name, false}
	}
	val := s.vals[i]
	s.vals = s.vals[:i]
	return val, nil
}

// At returns the value at depth-index i, counted from the bottom.
func (s *Stack) At(i int) (int, error) {
	if i < 0 || i >= len(s.vals) {
		return 0, StackError{s.Name, false}
	}
	return s.vals[i], nil
}

// SetAt replaces the value at index i, counted from the bottom.
func (s *Stack) SetAt(i, val int) error {
	if i < 0 || i >= len(s.vals) {
		return StackError{s.Name, false}
	}
	s.vals[i] = val
	return nil
}

// Truncate drops everything above depth n.
func (s *Stack) Truncate(n int) {
	if n < len(s.vals) {
		s.vals = s.vals[:n]
	}
}
