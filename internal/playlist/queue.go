// Package playlist holds the ordered play queue and its cursor.
package playlist

import "github.com/llehouerou/lumen/internal/media"

// Queue is an ordered list of items with a current position.
//
// The index is always in [0, Len) when the queue is non-empty and -1 when it
// is empty. Moving past either end is reported to the caller and leaves the
// index untouched.
type Queue struct {
	items        []media.Item
	currentIndex int
	enteredIndex int // index last acknowledged by Entered, -1 if none
}

// NewQueue creates a queue positioned on the first item.
func NewQueue(items ...media.Item) *Queue {
	q := &Queue{currentIndex: -1, enteredIndex: -1}
	q.Replace(items...)
	return q
}

// Current returns the item at the cursor, or nil if the queue is empty.
// The pointer aliases the queue's storage.
func (q *Queue) Current() *media.Item {
	return q.at(q.currentIndex)
}

// CurrentIndex returns the cursor position (-1 if empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// HasNext returns true if there's an item after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex >= 0 && q.currentIndex < len(q.items)-1
}

// HasPrev returns true if there's an item before the current one.
func (q *Queue) HasPrev() bool {
	return q.currentIndex > 0
}

// Next advances the cursor and returns the new current item.
// Returns nil at the end of the queue without moving.
func (q *Queue) Next() *media.Item {
	if !q.HasNext() {
		return nil
	}
	q.currentIndex++
	return q.Current()
}

// Prev moves the cursor back and returns the new current item.
// Returns nil at the start of the queue without moving.
func (q *Queue) Prev() *media.Item {
	if !q.HasPrev() {
		return nil
	}
	q.currentIndex--
	return q.Current()
}

// PeekNext returns the item after the current one without moving.
func (q *Queue) PeekNext() *media.Item {
	return q.at(q.currentIndex + 1)
}

// JumpTo sets the cursor to index.
// Returns the item at that position, or nil if invalid.
func (q *Queue) JumpTo(index int) *media.Item {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Replace swaps the queue contents and resets the cursor to the first item.
func (q *Queue) Replace(items ...media.Item) *media.Item {
	q.items = append([]media.Item(nil), items...)
	q.enteredIndex = -1
	if len(q.items) == 0 {
		q.currentIndex = -1
		return nil
	}
	q.currentIndex = 0
	return q.Current()
}

// Entered acknowledges the current index and reports whether it differs from
// the index acknowledged last time. Per-item state keyed to the cursor should
// be reset when it returns true.
func (q *Queue) Entered() bool {
	changed := q.currentIndex != q.enteredIndex
	q.enteredIndex = q.currentIndex
	return changed
}

// Items returns a copy of all items in the queue.
func (q *Queue) Items() []media.Item {
	result := make([]media.Item, len(q.items))
	copy(result, q.items)
	return result
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty returns true if the queue has no items.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

func (q *Queue) at(index int) *media.Item {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	return &q.items[index]
}
