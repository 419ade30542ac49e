package nimsforestscene

import (
	"errors"
	"fmt"
	"sync"
)

// EventType identifies a kind of notification emitted by a visual.
type EventType string

const (
	// EventUpdate is emitted when a visual has changed and needs to be redrawn.
	EventUpdate EventType = "update"

	// EventBoundsChange is emitted when the bounds of a visual have changed.
	// No payload is defined for it.
	EventBoundsChange EventType = "bounds_change"
)

// ErrUnknownEvent is returned when an EmitterGroup has no emitter for a kind.
var ErrUnknownEvent = errors.New("unknown event type")

// Event is delivered to handlers on emission.
type Event struct {
	Type   EventType
	Source any
}

// Handler receives events from an Emitter.
type Handler func(Event)

// Connection identifies a handler registered on an Emitter.
type Connection struct {
	emitter *Emitter
	id      uint64
}

// Connected reports whether the connection is still registered.
func (c Connection) Connected() bool {
	if c.emitter == nil {
		return false
	}
	c.emitter.mu.Lock()
	defer c.emitter.mu.Unlock()
	for _, s := range c.emitter.slots {
		if s.id == c.id {
			return true
		}
	}
	return false
}

// Disconnect removes the handler from its emitter.
func (c Connection) Disconnect() bool {
	if c.emitter == nil {
		return false
	}
	return c.emitter.Disconnect(c)
}

type slot struct {
	id      uint64
	handler Handler
}

// Emitter dispatches one kind of event to its handlers, synchronously and in
// registration order.
type Emitter struct {
	mu      sync.Mutex
	kind    EventType
	source  any
	slots   []slot
	nextID  uint64
	blocked int
}

// NewEmitter creates an emitter for kind whose events carry source.
func NewEmitter(kind EventType, source any) *Emitter {
	return &Emitter{kind: kind, source: source}
}

// Kind returns the event kind this emitter dispatches.
func (e *Emitter) Kind() EventType {
	return e.kind
}

// Connect registers h and returns a handle for disconnecting it.
func (e *Emitter) Connect(h Handler) Connection {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.slots = append(e.slots, slot{id: e.nextID, handler: h})
	return Connection{emitter: e, id: e.nextID}
}

// Disconnect removes the handler behind c. It returns false if c was not
// connected to this emitter.
func (e *Emitter) Disconnect(c Connection) bool {
	if c.emitter != e {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.slots {
		if s.id == c.id {
			e.slots = append(e.slots[:i:i], e.slots[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of connected handlers.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.slots)
}

// Block suppresses emission until a matching Unblock. Blocks nest.
func (e *Emitter) Block() {
	e.mu.Lock()
	e.blocked++
	e.mu.Unlock()
}

// Unblock releases one Block.
func (e *Emitter) Unblock() {
	e.mu.Lock()
	if e.blocked > 0 {
		e.blocked--
	}
	e.mu.Unlock()
}

// Blocked reports whether emission is currently suppressed.
func (e *Emitter) Blocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocked > 0
}

// Emit delivers an event to every handler connected at the time of the call.
// Handlers connected or disconnected during dispatch take effect on the next
// emission. Emissions while blocked are dropped.
func (e *Emitter) Emit() {
	e.mu.Lock()
	if e.blocked > 0 {
		e.mu.Unlock()
		return
	}
	handlers := make([]Handler, len(e.slots))
	for i, s := range e.slots {
		handlers[i] = s.handler
	}
	ev := Event{Type: e.kind, Source: e.source}
	e.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// EmitterGroup holds the emitters of a single source, keyed by kind.
type EmitterGroup struct {
	source   any
	kinds    []EventType
	emitters map[EventType]*Emitter
}

// NewEmitterGroup creates one emitter per kind, all carrying source.
func NewEmitterGroup(source any, kinds ...EventType) *EmitterGroup {
	g := &EmitterGroup{
		source:   source,
		emitters: make(map[EventType]*Emitter, len(kinds)),
	}
	for _, k := range kinds {
		if _, ok := g.emitters[k]; ok {
			continue
		}
		g.kinds = append(g.kinds, k)
		g.emitters[k] = NewEmitter(k, source)
	}
	return g
}

// Source returns the object events from this group are attributed to.
func (g *EmitterGroup) Source() any {
	return g.source
}

// Kinds returns the registered event kinds in creation order.
func (g *EmitterGroup) Kinds() []EventType {
	out := make([]EventType, len(g.kinds))
	copy(out, g.kinds)
	return out
}

// Get returns the emitter for kind, or nil.
func (g *EmitterGroup) Get(kind EventType) *Emitter {
	return g.emitters[kind]
}

// Connect registers h on the emitter for kind.
func (g *EmitterGroup) Connect(kind EventType, h Handler) (Connection, error) {
	e := g.emitters[kind]
	if e == nil {
		return Connection{}, fmt.Errorf("connect %q: %w", kind, ErrUnknownEvent)
	}
	return e.Connect(h), nil
}

// Emit fires the emitter for kind.
func (g *EmitterGroup) Emit(kind EventType) error {
	e := g.emitters[kind]
	if e == nil {
		return fmt.Errorf("emit %q: %w", kind, ErrUnknownEvent)
	}
	e.Emit()
	return nil
}

// Update returns the "update" emitter.
func (g *EmitterGroup) Update() *Emitter {
	return g.emitters[EventUpdate]
}

// BoundsChange returns the "bounds_change" emitter.
func (g *EmitterGroup) BoundsChange() *Emitter {
	return g.emitters[EventBoundsChange]
}
