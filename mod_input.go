package deferred

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyW int = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyShift
	KeyTab
	KeyEscape
	KeyF3
	KeyF4
	MouseButtonRight
	keyCount
)

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool
}

// Press records the new state of key and reports a press edge.
func (input *Input) Press(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// MoveMouse updates the cursor position. Deltas are only kept while the
// cursor is captured.
func (input *Input) MoveMouse(x, y float64) {
	if input.MouseCaptured {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.MouseX = x
	input.MouseY = y
}

// KeySignals maps key presses to the signals they raise.
var KeySignals = map[int]Signal{
	KeyEscape: SignalQuit,
	KeyF3:     SignalToggleFPS,
	KeyF4:     SignalTogglePosition,
	KeyTab:    SignalToggleMouseCapture,
}

// PublishKeySignals raises the signal of every key pressed this tick.
func PublishKeySignals(input *Input, signals *Signals) {
	for key, sig := range KeySignals {
		if input.JustPressed[key] {
			signals.Publish(sig)
		}
	}
}

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
}

func inputSystem(s *WindowState, input *Input, signals *Signals) {
	for key, glfwKey := range keyToGlfw {
		input.Press(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	input.Press(MouseButtonRight, s.windowGlfw.GetMouseButton(glfw.MouseButtonRight) == glfw.Press)

	if s.windowGlfw.ShouldClose() {
		signals.Publish(SignalQuit)
	}
	PublishKeySignals(input, signals)
	if signals.Occurred(SignalToggleMouseCapture) {
		input.MouseCaptured = !input.MouseCaptured
	}

	input.MoveMouse(s.windowGlfw.GetCursorPos())

	if input.MouseCaptured {
		s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

var keyToGlfw = map[int]glfw.Key{
	KeyW:      glfw.KeyW,
	KeyA:      glfw.KeyA,
	KeyS:      glfw.KeyS,
	KeyD:      glfw.KeyD,
	KeySpace:  glfw.KeySpace,
	KeyShift:  glfw.KeyLeftShift,
	KeyTab:    glfw.KeyTab,
	KeyEscape: glfw.KeyEscape,
	KeyF3:     glfw.KeyF3,
	KeyF4:     glfw.KeyF4,
}
