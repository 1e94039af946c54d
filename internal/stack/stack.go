// Package stack provides the LIFO worklist used by iterative tree walks.
package stack

// Stack is a last-in first-out list. The zero value is empty and ready to use.
type Stack[T any] struct {
	items []T
}

// New returns a stack holding initial, with the last element on top.
func New[T any](initial ...T) *Stack[T] {
	return &Stack[T]{items: append([]T(nil), initial...)}
}

// Push adds elements in order with the last element at the top.
func (s *Stack[T]) Push(items ...T) {
	s.items = append(s.items, items...)
}

// Pop removes and returns the top element.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	index := len(s.items) - 1
	item := s.items[index]
	s.items[index] = zero
	s.items = s.items[:index]
	return item, true
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}
