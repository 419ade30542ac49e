package ebitenview

import (
	"context"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	scene "github.com/nimsforest/nimsforestscene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Target(t *testing.T) {
	w := New(320, 240, WithTitle("demo"))
	assert.Equal(t, "EbitenWindow(demo)", w.Name())

	frame := &scene.Frame{Seq: 1}
	require.NoError(t, w.Update(context.Background(), frame))
	assert.Same(t, frame, w.frame)
	assert.True(t, w.pending)
}

func TestGame_TerminatesAfterClose(t *testing.T) {
	w := New(320, 240)
	g := &game{w: w}

	assert.NoError(t, g.Update())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, g.Update(), ebiten.Termination)

	sw, sh := g.Layout(1000, 1000)
	assert.Equal(t, 320, sw)
	assert.Equal(t, 240, sh)
}
