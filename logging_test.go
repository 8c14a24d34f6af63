package deferred

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, "gpu", false)

	l.Debugf("hidden %d", 1)
	l.Infof("frame %d", 2)
	l.Warnf("slow")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[gpu] INFO: frame 2")
	assert.Contains(t, errOut.String(), "[gpu] WARN: slow")

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "[gpu] DEBUG: shown")
}

func TestApp_Logger(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.IsType(t, &nopLogger{}, app.Logger())

	app = NewAppBuilder().UseModule(LoggingModule{Prefix: "app"}).Build()
	assert.IsType(t, &DefaultLogger{}, app.Logger())

	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
}
