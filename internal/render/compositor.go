// SPDX-License-Identifier: MIT
package render

import (
	"errors"
	"fmt"
	"sync"

	applog "spectro/internal/log"
	"spectro/internal/spectral"
)

// ErrNoGeometry is returned by Emit when no output geometry has been
// negotiated yet. The condition is recoverable: call SetGeometry and
// push the next interval.
var ErrNoGeometry = errors.New("render: output geometry not negotiated")

// FrameSink receives composited RGBA frames. frame is width*height*4
// bytes in row-major order and is only valid until the next emission.
type FrameSink interface {
	PushFrame(frame []byte, width, height int) error
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(frame []byte, width, height int) error

func (f FrameSinkFunc) PushFrame(frame []byte, width, height int) error {
	return f(frame, width, height)
}

// Renderer implements spectral.Sink by converting each completed
// interval into one grayscale pixel column, pushing it into a bounded
// sliding window, and compositing the window into a full frame with the
// newest column at the right edge. Row i of a column maps to band
// floor(i/height*bands) of the first tracked channel, so low frequencies
// are at the top of the image.
//
// Geometry changes keep the accumulated columns: the image stays
// visually continuous across reconfiguration.
type Renderer struct {
	mu     sync.Mutex
	curve  Curve
	win    *SlidingWindow
	width  int
	height int
	frame  []byte
	sink   FrameSink
}

var _ spectral.Sink = (*Renderer)(nil)

// NewRenderer returns a renderer shading columns with curve and pushing
// composited frames to sink. Emit fails until SetGeometry is called.
func NewRenderer(curve Curve, sink FrameSink) *Renderer {
	return &Renderer{curve: curve, sink: sink}
}

// SetGeometry establishes the output frame size. It must be called
// before the first interval completes. Shrinking the width evicts the
// oldest surplus columns; held columns otherwise survive.
func (r *Renderer) SetGeometry(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: invalid geometry %dx%d", width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.win
	r.win = NewSlidingWindow(width)
	if old != nil {
		for i := old.Len() - 1; i >= 0; i-- {
			col := old.Col(i)
			if len(col) != height*4 {
				// A height change invalidates held columns.
				r.win.Reset()
				break
			}
			r.win.Push(col)
		}
	}
	r.width = width
	r.height = height
	r.frame = make([]byte, width*height*4)
	applog.Debugf("render: geometry %dx%d", width, height)
	return nil
}

// Emit renders one interval. It builds the pixel column from channel 0
// of the spectrum, slides the window, composites the frame, and hands it
// to the frame sink.
func (r *Renderer) Emit(s *spectral.Spectrum) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.width == 0 || r.height == 0 {
		return ErrNoGeometry
	}
	if len(s.Magnitudes) == 0 {
		return fmt.Errorf("render: spectrum carries no magnitude data")
	}

	mags := s.Magnitudes[0]
	bands := len(mags)
	col := make([]byte, r.height*4)
	for i := 0; i < r.height; i++ {
		band := i * bands / r.height
		v := r.curve.Byte(mags[band])
		px := col[i*4:]
		px[0] = v
		px[1] = v
		px[2] = v
		px[3] = 0xff
	}
	r.win.Push(col)

	r.composite()
	if r.sink == nil {
		return nil
	}
	return r.sink.PushFrame(r.frame, r.width, r.height)
}

// composite lays the held columns into the frame in reverse
// chronological order: column 0 (newest) lands at x = width-1, each
// older column one pixel further left. Pixels with no column stay black.
func (r *Renderer) composite() {
	for i := range r.frame {
		r.frame[i] = 0
	}
	for j := 0; j < r.win.Len(); j++ {
		src := r.win.Col(j)
		x := r.width - 1 - j
		for i := 0; i < r.height; i++ {
			copy(r.frame[(i*r.width+x)*4:], src[i*4:i*4+4])
		}
	}
}

// Frame returns a copy of the last composited frame and its geometry.
func (r *Renderer) Frame() ([]byte, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, len(r.frame))
	copy(out, r.frame)
	return out, r.width, r.height
}
