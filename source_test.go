package nimsforestscene

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticFrameSource(t *testing.T) {
	frame := &Frame{Seq: 3}
	got, err := NewStaticFrameSource(frame).Render(context.Background())
	require.NoError(t, err)
	assert.Same(t, frame, got)
}

func TestCallbackFrameSource(t *testing.T) {
	boom := errors.New("boom")
	src := NewCallbackFrameSource(func(ctx context.Context) (*Frame, error) {
		return nil, boom
	})
	_, err := src.Render(context.Background())
	assert.ErrorIs(t, err, boom)
}
