package deferred

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignals_PublishDrain(t *testing.T) {
	s := NewSignals()
	assert.False(t, s.Occurred(SignalToggleFPS))

	s.Publish(SignalToggleFPS)
	s.Publish(SignalToggleFPS)
	assert.True(t, s.Occurred(SignalToggleFPS))
	assert.False(t, s.Occurred(SignalQuit))

	s.Drain()
	assert.False(t, s.Occurred(SignalToggleFPS))
}

func TestSignal_String(t *testing.T) {
	assert.Equal(t, "Quit", SignalQuit.String())
	assert.Equal(t, "ToggleMouseCapture", SignalToggleMouseCapture.String())
	assert.Equal(t, "Unknown", Signal(99).String())
}

func TestInput_PressEdges(t *testing.T) {
	input := &Input{}

	input.Press(KeyF3, true)
	assert.True(t, input.Pressed[KeyF3])
	assert.True(t, input.JustPressed[KeyF3])

	input.Press(KeyF3, true)
	assert.True(t, input.Pressed[KeyF3])
	assert.False(t, input.JustPressed[KeyF3], "held keys do not re-trigger")

	input.Press(KeyF3, false)
	assert.False(t, input.Pressed[KeyF3])
	assert.True(t, input.JustReleased[KeyF3])
}

func TestPublishKeySignals(t *testing.T) {
	input := &Input{}
	signals := NewSignals()

	input.Press(KeyEscape, true)
	input.Press(KeyF4, true)
	input.Press(KeyW, true)
	PublishKeySignals(input, signals)

	assert.True(t, signals.Occurred(SignalQuit))
	assert.True(t, signals.Occurred(SignalTogglePosition))
	assert.False(t, signals.Occurred(SignalToggleFPS))
	assert.False(t, signals.Occurred(SignalToggleMouseCapture))

	signals.Drain()
	input.Press(KeyEscape, true)
	PublishKeySignals(input, signals)
	assert.False(t, signals.Occurred(SignalQuit))
}

func TestInput_MoveMouse(t *testing.T) {
	input := &Input{}
	input.MoveMouse(10, 10)
	input.MoveMouse(15, 7)
	assert.Zero(t, input.MouseDeltaX, "no deltas while released")

	input.MouseCaptured = true
	input.MoveMouse(20, 4)
	assert.Equal(t, 5.0, input.MouseDeltaX)
	assert.Equal(t, -3.0, input.MouseDeltaY)
}
