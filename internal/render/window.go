// SPDX-License-Identifier: MIT
package render

// SlidingWindow is a bounded sequence of pixel columns, newest first.
// Pushing a column when the window is at capacity evicts the oldest, so
// it always holds the most recent capacity columns of the image.
type SlidingWindow struct {
	cols     [][]byte
	capacity int
}

// NewSlidingWindow returns a window holding at most capacity columns.
func NewSlidingWindow(capacity int) *SlidingWindow {
	return &SlidingWindow{
		cols:     make([][]byte, 0, capacity),
		capacity: capacity,
	}
}

// Push inserts col as the newest column, evicting the oldest column if
// the window is already at capacity.
func (w *SlidingWindow) Push(col []byte) {
	if w.capacity <= 0 {
		return
	}
	if len(w.cols) >= w.capacity {
		w.cols = w.cols[:w.capacity]
		copy(w.cols[1:], w.cols)
		w.cols[0] = col
		return
	}
	w.cols = append(w.cols, nil)
	copy(w.cols[1:], w.cols)
	w.cols[0] = col
}

// Len returns the number of held columns, never above capacity.
func (w *SlidingWindow) Len() int { return len(w.cols) }

// Cap returns the column capacity.
func (w *SlidingWindow) Cap() int { return w.capacity }

// Col returns the i-th column, 0 being the newest.
func (w *SlidingWindow) Col(i int) []byte { return w.cols[i] }

// Reset drops all columns but keeps the capacity.
func (w *SlidingWindow) Reset() { w.cols = w.cols[:0] }
