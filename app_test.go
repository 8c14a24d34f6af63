package deferred

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_Resource(t *testing.T) {
	app := NewAppBuilder().Build()
	app.addResources(NewMockResource1("one"))

	r, ok := Resource[*MockResource1](app)
	require.True(t, ok)
	assert.Equal(t, "one", r.name)

	_, ok = Resource[*MockResource2](app)
	assert.False(t, ok)

	_, ok = Resource[MockResource1](app)
	assert.False(t, ok, "non-pointer lookups never match")
}

func TestApp_TickRunsStagesInOrder(t *testing.T) {
	var calls []string
	record := func(name string) func(*MockResource1) {
		return func(*MockResource1) { calls = append(calls, name) }
	}

	app := NewAppBuilder().Build()
	app.addResources(NewMockResource1("r"))
	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("prelude")).InStage(Prelude))
	app.UseSystem(System(record("update-1")))
	app.UseSystem(System(record("update-2")).InStage(Update))
	app.UseSystem(System(record("finale")).InStage(Finale))

	app.Tick()
	assert.Equal(t, []string{"prelude", "update-1", "update-2", "render", "finale"}, calls)
}

func TestApp_UseStage(t *testing.T) {
	custom := Stage{Name: "Custom"}
	var calls []string

	app := NewAppBuilder().Build()
	app.UseStage(custom, AfterStage(Update))
	app.UseSystem(System(func(*Commands) { calls = append(calls, "custom") }).InStage(custom))
	app.UseSystem(System(func(*Commands) { calls = append(calls, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func(*Commands) { calls = append(calls, "update") }).InStage(Update))

	app.Tick()
	assert.Equal(t, []string{"update", "custom", "post"}, calls)

	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Missing"})) })
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"})) })
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(*MockResource2) {}))

	assert.Panics(t, app.Tick)
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	ticks := 0
	app := NewAppBuilder().UseFrequency(1000).Build()
	app.UseSystem(System(func(cmd *Commands) {
		ticks++
		if ticks == 3 {
			cmd.Quit()
		}
	}))

	app.Run()
	assert.Equal(t, 3, ticks)

	_, ok := Resource[*LoopStats](app)
	assert.True(t, ok)
}

func TestApp_QuitSignal(t *testing.T) {
	app := NewAppBuilder().UseModule(SignalsModule{}).Build()
	signals, ok := Resource[*Signals](app)
	require.True(t, ok)

	app.Tick()
	assert.False(t, app.quit)

	app.UseSystem(System(func(s *Signals) { s.Publish(SignalQuit) }).InStage(PreUpdate))
	app.Tick()
	assert.True(t, app.quit)
	assert.False(t, signals.Occurred(SignalQuit), "the bus is drained at the end of the tick")
}

func TestSignalsModule_DrainAfterFinale(t *testing.T) {
	app := NewAppBuilder().UseModule(SignalsModule{}).Build()
	require.Equal(t, SignalDrain, app.stages[len(app.stages)-1])

	seen := false
	app.UseSystem(System(func(s *Signals) { s.Publish(SignalToggleFPS) }).InStage(Update))
	app.UseSystem(System(func(s *Signals) { seen = s.Occurred(SignalToggleFPS) }).InStage(Finale))
	app.Tick()

	assert.True(t, seen, "Finale systems still see this tick's signals")
	signals, _ := Resource[*Signals](app)
	assert.False(t, signals.Occurred(SignalToggleFPS))
}
