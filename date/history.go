package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a
// specific day. Dates are unique and the series is always sorted.
//
// The zero value is an empty history ready to use.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Latest returns the most recent day and value in the history.
// If the history is empty, it returns zero values and false.
func (h *History[T]) Latest() (day Date, value T, ok bool) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T), false
	}
	return h.days[last], h.values[last], true
}

// Get returns the value recorded exactly at 'day'.
func (h *History[T]) Get(day Date) (T, bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return *new(T), false
}

// ValueAsOf returns the value on a given day, or the most recent value
// before it.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	// i is the insertion index; the last point before 'day' is at i-1.
	if i == 0 {
		return *new(T), false
	}
	return h.values[i-1], true
}

// Append records a value at the given day. An existing value at that day is
// overwritten: the last write wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := h.search(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Merge records a value at the given day, resolving a conflict with an
// existing value through 'prefer', which receives the old and the new value
// and returns the one to keep.
func (h *History[T]) Merge(on Date, v T, prefer func(old, new T) T) *History[T] {
	if old, ok := h.Get(on); ok {
		return h.Append(on, prefer(old, v))
	}
	return h.Append(on, v)
}

// Values returns an iterator over all day/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// search locates 'day' in the sorted days slice.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}
