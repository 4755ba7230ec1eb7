package overlay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesKeepInsertionOrder(t *testing.T) {
	o := NewOverlay()
	o.SetValue("FPS", "60")
	o.SetValue("Frame", "16.6 ms")
	o.SetValue("FPS", "59")

	assert.Equal(t, []LabelValue{
		{Label: "FPS", Value: "59"},
		{Label: "Frame", Value: "16.6 ms"},
	}, o.Values())
}

func TestInfoLogIsBounded(t *testing.T) {
	o := NewOverlay(WithMaxInfoLines(2))
	o.Info("a %d", 1)
	o.Info("b")
	o.Info("c")
	assert.Equal(t, []string{"b", "c"}, o.InfoLines())
}

func TestRenderPlain(t *testing.T) {
	o := NewOverlay(WithProfile(termenv.Ascii), WithTitle("debug"))
	o.SetValue("FPS", "60")
	o.SetValue("Mode", "mesh")
	o.Info("GL_VERSION: 4.3")

	var buf bytes.Buffer
	require.NoError(t, o.Render(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "debug", lines[0])
	assert.Equal(t, "  FPS   60", lines[1])
	assert.Equal(t, "  Mode  mesh", lines[2])
	assert.Equal(t, "  GL_VERSION: 4.3", lines[3])
}

func TestRenderHidden(t *testing.T) {
	o := NewOverlay(WithVisible(false))
	o.SetValue("FPS", "60")

	var buf bytes.Buffer
	require.NoError(t, o.Render(&buf))
	assert.Empty(t, buf.String())
}

func TestRevisionTracksVisibleChanges(t *testing.T) {
	o := NewOverlay()
	rev := o.Revision()

	o.SetValue("FPS", "60")
	assert.Greater(t, o.Revision(), rev)
	rev = o.Revision()

	o.SetValue("FPS", "60")
	o.SetVisible(true)
	assert.Equal(t, rev, o.Revision())

	o.Info("shader error")
	assert.Greater(t, o.Revision(), rev)
	rev = o.Revision()

	o.SetVisible(false)
	assert.Greater(t, o.Revision(), rev)
}
