package nimsforestscene

import "context"

// Target represents a rendering output destination.
type Target interface {
	// Update sends a newly rendered frame to the target.
	Update(ctx context.Context, frame *Frame) error

	// Close cleans up the target.
	Close() error

	// Name returns a descriptive name for logging.
	Name() string
}
