package deferred

import (
	"fmt"
)

// SurfaceOwner names the module that configured the window surface. The
// surface is configured once, so at most one renderer can be installed.
type SurfaceOwner struct {
	Name string
}

// claimSurface records name as the surface owner. Claiming again under the
// same name is a no-op.
func claimSurface(app *App, name string) error {
	if owner, ok := Resource[*SurfaceOwner](app); ok {
		if owner.Name != name {
			app.Logger().Errorf("surface already owned by %s, %s not installed", owner.Name, name)
			return fmt.Errorf("surface already owned by %s", owner.Name)
		}
		return nil
	}
	app.addResources(&SurfaceOwner{Name: name})
	return nil
}
