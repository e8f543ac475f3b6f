package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Event
	}{
		{"button", PointerButton(ButtonRight, true, 3, 4), Event{Type: EventPointerButton, Button: ButtonRight, Pressed: true, X: 3, Y: 4}},
		{"move", PointerMove(10, 20), Event{Type: EventPointerMove, X: 10, Y: 20}},
		{"scroll", Scroll(-1), Event{Type: EventScroll, ScrollDelta: -1}},
		{"key", Key(82, false), Event{Type: EventKey, Key: 82}},
		{"resize", Resize(0, 0), Event{Type: EventResize}},
		{"close", Close(), Event{Type: EventClose}},
		{"redraw", RedrawRequest(), Event{Type: EventRedrawRequest}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev)
		})
	}
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "pointer_move", EventPointerMove.String())
	assert.Equal(t, "redraw_request", EventRedrawRequest.String())
	assert.Equal(t, "event(42)", EventType(42).String())
}
