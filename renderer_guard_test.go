package deferred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSurface(t *testing.T) {
	app := NewAppBuilder().Build()

	require.NoError(t, claimSurface(app, "deferred"))
	require.NoError(t, claimSurface(app, "deferred"))

	err := claimSurface(app, "forward")
	assert.ErrorContains(t, err, "owned by deferred")

	owner, ok := Resource[*SurfaceOwner](app)
	require.True(t, ok)
	assert.Equal(t, "deferred", owner.Name)
}
