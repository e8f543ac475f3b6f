// Package input defines the platform-neutral events a window delivers to the engine.
package input

import "fmt"

// EventType identifies which fields of an Event are meaningful.
type EventType int

const (
	EventPointerButton EventType = iota
	EventPointerMove
	EventScroll
	EventKey
	EventResize
	EventClose
	EventRedrawRequest
)

func (t EventType) String() string {
	switch t {
	case EventPointerButton:
		return "pointer_button"
	case EventPointerMove:
		return "pointer_move"
	case EventScroll:
		return "scroll"
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventClose:
		return "close"
	case EventRedrawRequest:
		return "redraw_request"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is a single input or window event.
//
// Field use by type:
//   - EventPointerButton: Button, Pressed, X, Y
//   - EventPointerMove: X, Y
//   - EventScroll: ScrollDelta (positive scrolls away from the user)
//   - EventKey: Key, Pressed
//   - EventResize: Width, Height in framebuffer pixels
//   - EventClose, EventRedrawRequest: no fields
type Event struct {
	Type        EventType
	Button      Button
	Pressed     bool
	X, Y        float32
	ScrollDelta float32
	Key         uint32
	Width       int
	Height      int
}

// PointerButton returns a button press or release at the given window position.
func PointerButton(button Button, pressed bool, x, y float32) Event {
	return Event{Type: EventPointerButton, Button: button, Pressed: pressed, X: x, Y: y}
}

// PointerMove returns a pointer position sample in window coordinates.
func PointerMove(x, y float32) Event {
	return Event{Type: EventPointerMove, X: x, Y: y}
}

// Scroll returns a vertical scroll event.
func Scroll(delta float32) Event {
	return Event{Type: EventScroll, ScrollDelta: delta}
}

// Key returns a key press or release. Repeats are reported as presses.
func Key(code uint32, pressed bool) Event {
	return Event{Type: EventKey, Key: code, Pressed: pressed}
}

// Resize returns a framebuffer resize. Either dimension may be 0 while minimized.
func Resize(width, height int) Event {
	return Event{Type: EventResize, Width: width, Height: height}
}

// Close returns a close request.
func Close() Event {
	return Event{Type: EventClose}
}

// RedrawRequest returns a request to render one frame.
func RedrawRequest() Event {
	return Event{Type: EventRedrawRequest}
}
