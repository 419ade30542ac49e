package nimsforestscene

import "context"

// FrameSource produces frames on demand.
type FrameSource interface {
	// Render returns a freshly rendered frame.
	Render(ctx context.Context) (*Frame, error)
}

// StaticFrameSource wraps a fixed Frame.
type StaticFrameSource struct {
	frame *Frame
}

// NewStaticFrameSource creates a FrameSource from a fixed Frame.
func NewStaticFrameSource(frame *Frame) *StaticFrameSource {
	return &StaticFrameSource{frame: frame}
}

// Render implements FrameSource.
func (s *StaticFrameSource) Render(ctx context.Context) (*Frame, error) {
	return s.frame, nil
}

// CallbackFrameSource calls a function to get a frame.
type CallbackFrameSource struct {
	fn func(ctx context.Context) (*Frame, error)
}

// NewCallbackFrameSource creates a FrameSource from a callback function.
func NewCallbackFrameSource(fn func(ctx context.Context) (*Frame, error)) *CallbackFrameSource {
	return &CallbackFrameSource{fn: fn}
}

// Render implements FrameSource.
func (s *CallbackFrameSource) Render(ctx context.Context) (*Frame, error) {
	return s.fn(ctx)
}
