package deferred

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any

	hz   float64
	quit bool
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run ticks every stage at the app frequency until a system asks to quit.
func (app *App) Run() {
	app.Logger().Infof("running at %.0f Hz with %d modules", app.hz, len(app.modules))

	stats := app.loopStats()
	loop := NewFixedFrequencyLoop(app.hz)
	loop.Start(
		func(dt float64) { app.Tick() },
		func() bool { return app.quit },
		func(s IterationStats) { *stats = LoopStats(s) },
	)
	app.Logger().Infof("stopped")
}

// Tick runs every system of every stage once, in stage order.
func (app *App) Tick() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

func (app *App) loopStats() *LoopStats {
	t := reflect.TypeOf(LoopStats{})
	if s, ok := app.resources[t]; ok {
		return s.(*LoopStats)
	}
	s := &LoopStats{}
	app.addResources(s)
	return s
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource looks up a resource by its pointer type, e.g. Resource[*Time](app).
func Resource[T any](app *App) (T, bool) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Pointer {
		return zero, false
	}
	r, ok := app.resources[t.Elem()]
	if !ok {
		return zero, false
	}
	return r.(T), true
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem resolves every pointer argument of system from the resources
// (or the Commands handle) and calls it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
