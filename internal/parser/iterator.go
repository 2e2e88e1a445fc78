package parser

// iterator walks a slice of tokens with one item of lookahead.
type iterator[T any] struct {
	items []T
	index int
}

func newIterator[T any](items []T) *iterator[T] {
	return &iterator[T]{items: items, index: -1}
}

// Peek returns the next item without advancing.
func (it *iterator[T]) Peek() (T, bool) {
	var zero T

	if !it.HasNext() {
		return zero, false
	}

	return it.items[it.index+1], true
}

// Next advances to the next item and returns it.
func (it *iterator[T]) Next() (T, bool) {
	var zero T

	if !it.HasNext() {
		return zero, false
	}

	it.index++
	return it.items[it.index], true
}

func (it *iterator[T]) HasNext() bool {
	return it.index+1 < len(it.items)
}
