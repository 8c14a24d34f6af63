package deferred

// Signal is an edge-triggered event: it is raised at most once per tick and
// is visible to every system until the SignalDrain stage empties the bus.
type Signal int

const (
	SignalQuit Signal = iota
	SignalToggleFPS
	SignalTogglePosition
	SignalToggleMouseCapture
)

func (s Signal) String() string {
	switch s {
	case SignalQuit:
		return "Quit"
	case SignalToggleFPS:
		return "ToggleFPS"
	case SignalTogglePosition:
		return "TogglePosition"
	case SignalToggleMouseCapture:
		return "ToggleMouseCapture"
	}
	return "Unknown"
}

type Signals struct {
	raised map[Signal]struct{}
}

func NewSignals() *Signals {
	return &Signals{raised: make(map[Signal]struct{})}
}

func (s *Signals) Publish(sig Signal) {
	s.raised[sig] = struct{}{}
}

func (s *Signals) Occurred(sig Signal) bool {
	_, ok := s.raised[sig]
	return ok
}

// Drain clears every raised signal. Only the SignalDrain system calls it.
func (s *Signals) Drain() {
	clear(s.raised)
}

// SignalDrain runs after Finale, so systems in every built-in stage see the
// signals raised during the tick.
var SignalDrain = Stage{Name: "SignalDrain"}

// SignalsModule installs the bus, drains it at the end of every tick and
// stops the app on SignalQuit.
type SignalsModule struct{}

func (SignalsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewSignals())
	app.UseStage(SignalDrain, AfterStage(Finale))
	app.UseSystem(System(quitSystem).InStage(PostUpdate))
	app.UseSystem(System(drainSignalsSystem).InStage(SignalDrain))
}

func quitSystem(signals *Signals, cmd *Commands) {
	if signals.Occurred(SignalQuit) {
		cmd.Quit()
	}
}

func drainSignalsSystem(signals *Signals) {
	signals.Drain()
}
