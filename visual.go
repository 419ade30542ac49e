// Package nimsforestscene provides drawable scenegraph visuals and a canvas
// that renders them to windows, browsers and Smart TVs.
package nimsforestscene

import (
	"sync"

	"github.com/google/uuid"
)

// Visual is a drawable scenegraph node.
type Visual interface {
	// Draw renders the visual using the supplied transform context.
	Draw(ts TransformSystem)

	// Bounds returns the (min, max) extent of the visual along axis in its
	// local coordinate system. A false result means the visual should be
	// ignored along that axis for automatic zoom and culling.
	Bounds(mode BoundsMode, axis int) (Range, bool)

	// Update informs listeners that the visual needs to be redrawn.
	Update()

	// Events returns the visual's notification channel.
	Events() *EmitterGroup
}

// Identified is implemented by visuals that carry an ID and a name.
type Identified interface {
	ID() string
	Name() string
}

// Option configures a Base.
type Option func(*Base)

// WithName sets a human readable name.
func WithName(name string) Option {
	return func(b *Base) {
		b.name = name
	}
}

// WithID overrides the generated ID.
func WithID(id string) Option {
	return func(b *Base) {
		b.id = id
	}
}

// WithProperty stores an arbitrary named option on the visual.
func WithProperty(key string, value any) Option {
	return func(b *Base) {
		if b.props == nil {
			b.props = make(map[string]any)
		}
		b.props[key] = value
	}
}

// Base is the default Visual: it draws nothing, has no bounds, and emits
// "update" when asked to. Concrete visuals embed it and call Init. The zero
// value is usable and names itself as the event source.
type Base struct {
	id     string
	name   string
	props  map[string]any
	events *EmitterGroup
	once   sync.Once
}

// NewBase creates a standalone Base whose events name the Base as source.
func NewBase(opts ...Option) *Base {
	b := &Base{}
	return b.Init(b, opts...)
}

// Init wires the notification channel to self and applies opts. Embedding
// types pass themselves so events carry the outer visual as source.
func (b *Base) Init(self Visual, opts ...Option) *Base {
	b.id = uuid.NewString()
	b.events = NewEmitterGroup(self, EventUpdate, EventBoundsChange)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID implements Identified.
func (b *Base) ID() string {
	return b.id
}

// Name implements Identified.
func (b *Base) Name() string {
	return b.name
}

// Property returns a value set with WithProperty.
func (b *Base) Property(key string) (any, bool) {
	v, ok := b.props[key]
	return v, ok
}

// Events implements Visual.
func (b *Base) Events() *EmitterGroup {
	return b.group()
}

func (b *Base) group() *EmitterGroup {
	b.once.Do(func() {
		if b.events == nil {
			b.events = NewEmitterGroup(b, EventUpdate, EventBoundsChange)
		}
	})
	return b.events
}

// Draw implements Visual. The default draws nothing.
func (b *Base) Draw(ts TransformSystem) {}

// Bounds implements Visual. The default has no bound on any axis.
func (b *Base) Bounds(mode BoundsMode, axis int) (Range, bool) {
	return Range{}, false
}

// Update implements Visual.
func (b *Base) Update() {
	b.group().Update().Emit()
}

// BoundsChanged emits "bounds_change".
func (b *Base) BoundsChanged() {
	b.group().BoundsChange().Emit()
}

var _ Visual = (*Base)(nil)
var _ Identified = (*Base)(nil)
