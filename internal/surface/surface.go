// Package surface tracks the dimensions of the drawing surface in device
// pixels and notifies subscribers when they change.
package surface

import (
	"math"
)

// ResizeEvent carries the device-pixel dimensions before and after a resize.
type ResizeEvent struct {
	OldWidth, OldHeight float64
	NewWidth, NewHeight float64
}

// ResizeListener is called synchronously from Resize.
type ResizeListener func(ResizeEvent)

type listener struct {
	id int
	fn ResizeListener
}

// Surface is the drawing area. Its Width and Height are device pixels, i.e.
// logical size multiplied by the device pixel ratio.
type Surface struct {
	width, height float64
	logicalW      int
	logicalH      int
	scale         float64
	listeners     []listener
	nextID        int
}

// New creates a surface of the given logical size. A non-positive scale is treated as 1.
func New(logicalW, logicalH int, scale float64) *Surface {
	s := &Surface{}
	s.apply(logicalW, logicalH, scale)
	return s
}

// Width returns the surface width in device pixels.
func (s *Surface) Width() float64 { return s.width }

// Height returns the surface height in device pixels.
func (s *Surface) Height() float64 { return s.height }

// Scale returns the device pixel ratio.
func (s *Surface) Scale() float64 { return s.scale }

// LogicalSize returns the size the host reported before scaling.
func (s *Surface) LogicalSize() (int, int) { return s.logicalW, s.logicalH }

// DeviceSize returns the surface size in whole device pixels.
func (s *Surface) DeviceSize() (int, int) { return int(s.width), int(s.height) }

// Resize applies a new logical size and pixel ratio. Listeners are notified
// only when the device-pixel dimensions actually change; it reports whether they did.
func (s *Surface) Resize(logicalW, logicalH int, scale float64) bool {
	oldW, oldH := s.width, s.height
	s.apply(logicalW, logicalH, scale)
	if oldW == s.width && oldH == s.height {
		return false
	}

	ev := ResizeEvent{OldWidth: oldW, OldHeight: oldH, NewWidth: s.width, NewHeight: s.height}
	subs := append([]listener(nil), s.listeners...)
	for _, l := range subs {
		l.fn(ev)
	}
	return true
}

// OnResize registers fn and returns the function that removes it.
func (s *Surface) OnResize(fn ResizeListener) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners reports how many resize listeners are registered.
func (s *Surface) Listeners() int { return len(s.listeners) }

func (s *Surface) apply(logicalW, logicalH int, scale float64) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	logicalW = max(logicalW, 0)
	logicalH = max(logicalH, 0)
	s.logicalW, s.logicalH = logicalW, logicalH
	s.scale = scale
	s.width = math.Ceil(float64(logicalW) * scale)
	s.height = math.Ceil(float64(logicalH) * scale)
}
