package models

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/zeusync/composer/internal/core/events/bus"
	"github.com/zeusync/composer/internal/core/fields"
	"github.com/zeusync/composer/internal/core/observability/log"
	"github.com/zeusync/composer/pkg/sequence"
)

// Events emitted by an entity on its own topic.
const (
	EventAdd    = "add"
	EventRemove = "remove"
	EventUse    = "use"
	EventApply  = "apply"
)

// Member is anything an entity can hold: a *Component, a Composite, or any
// other comparable value. Members are compared by identity.
type Member = any

// Composite is an entity-like value exposing its own members. Using a
// Composite flattens it one level.
type Composite interface {
	Components() []Member
}

var _ Composite = (*Entity)(nil)

// Entity is a uniquely identified holder of components and, once
// ApplyComponents ran, of the attributes they describe.
//
// Entity is not safe for concurrent use; callers serialize access to it.
type Entity struct {
	id         string
	components *sequence.OrderedSet[Member]
	defaults   map[string]Spec
	attrs      *fields.Accessors
	bus        bus.EventBus
	logger     log.Log
}

type Option func(*Entity)

// WithID overrides the generated id.
func WithID(id string) Option {
	return func(e *Entity) { e.id = id }
}

// WithBus makes the entity emit on a shared bus. Events go to the topic named
// after the entity id; drop it with bus.DropTopic(e.ID()) when the entity is
// discarded.
func WithBus(b bus.EventBus) Option {
	return func(e *Entity) { e.bus = b }
}

// WithLogger sets the sink for diagnostics such as duplicate adds.
func WithLogger(l log.Log) Option {
	return func(e *Entity) { e.logger = l }
}

func NewEntity(opts ...Option) *Entity {
	e := &Entity{
		id:         uuid.NewString(),
		components: sequence.NewOrderedSet[Member](),
		defaults:   make(map[string]Spec),
		attrs:      fields.NewAccessors(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = bus.New()
	}
	if e.logger == nil {
		e.logger = log.Provide()
	}
	e.logger = e.logger.With(log.String("entity", e.id))
	return e
}

func (e *Entity) ID() string { return e.id }

func (e *Entity) String() string { return "entity(" + e.id + ")" }

// Components returns the held members in insertion order.
func (e *Entity) Components() []Member {
	return e.components.Values()
}

// Use composes values into the entity and returns it for chaining.
//
//   - nil is ignored;
//   - a Composite has each of its members used first, depth-first, and is then
//     added itself;
//   - a slice has each element used in order;
//   - anything else is added.
//
// Duplicates are reported through the logger and skipped; composition
// continues with the remaining values.
func (e *Entity) Use(values ...any) *Entity {
	for _, v := range values {
		if v == nil {
			continue
		}
		// The receiver counts as expanding so it never becomes its own member.
		e.use(v, map[Composite]struct{}{e: {}})
		if err := e.Emit(EventUse, v); err != nil {
			e.logger.Warn("use handler failed", log.Error(err))
		}
	}
	return e
}

func (e *Entity) use(v any, expanding map[Composite]struct{}) {
	if isNil(v) {
		return
	}
	switch val := v.(type) {
	case Composite:
		if isComparable(val) {
			if _, busy := expanding[val]; busy {
				e.logger.Debug("skipping cyclic composite", log.Any("component", describeMember(val)))
				return
			}
			expanding[val] = struct{}{}
			defer delete(expanding, val)
		}
		for _, m := range val.Components() {
			e.use(m, expanding)
		}
		e.addSoft(val)
	case []Member:
		for _, m := range val {
			e.use(m, expanding)
		}
	case []*Component:
		for _, c := range val {
			if c != nil {
				e.use(c, expanding)
			}
		}
	case []*Entity:
		for _, c := range val {
			if c != nil {
				e.use(c, expanding)
			}
		}
	default:
		e.addSoft(val)
	}
}

func (e *Entity) addSoft(m Member) {
	// Add already reported rejected members; anything else is a handler failure.
	if err := e.Add(m); err != nil && !isSoft(err) {
		e.logger.Warn("add handler failed", log.Error(err))
	}
}

// Add appends m and emits EventAdd with m as payload. Adding a member that is
// already held logs a warning and returns ErrDuplicateComponent without
// changing anything. Add returns an error, not the entity; use Use to chain.
func (e *Entity) Add(m Member) error {
	if isNil(m) {
		return ErrNilComponent
	}
	if !isComparable(m) {
		e.logger.Warn("component cannot be held", log.Any("component", describeMember(m)))
		return fmt.Errorf("%w: %T", ErrUnhashableMember, m)
	}
	if !e.components.Add(m) {
		e.logger.Warn("entity already has component", log.Any("component", describeMember(m)))
		return ErrDuplicateComponent
	}
	return e.Emit(EventAdd, m)
}

// Has reports whether m itself (not an equal copy) is held.
func (e *Entity) Has(m Member) bool {
	if isNil(m) || !isComparable(m) {
		return false
	}
	return e.components.Has(m)
}

// Remove drops m from the members and emits EventRemove. Attributes already
// materialized from m stay in place until the next ApplyComponents rebuilds
// over them.
func (e *Entity) Remove(m Member) error {
	if !e.Has(m) {
		e.logger.Debug("remove of missing component", log.Any("component", describeMember(m)))
		return ErrMissingComponent
	}
	e.components.Remove(m)
	return e.Emit(EventRemove, m)
}

// On subscribes handler to event on this entity.
func (e *Entity) On(event string, handler bus.EventHandler) (bus.Subscription, error) {
	return e.bus.SubscribeTopic(e.id, event, handler)
}

// Once subscribes handler for the next occurrence of event only.
func (e *Entity) Once(event string, handler bus.EventHandler) (bus.Subscription, error) {
	return e.bus.SubscribeTopicOnce(e.id, event, handler)
}

// Emit publishes event with data as the sole payload.
func (e *Entity) Emit(event string, data any) error {
	return e.bus.PublishToTopic(e.id, bus.NewEvent(event, e.id, data, nil))
}

func isSoft(err error) bool {
	return errors.Is(err, ErrDuplicateComponent) || errors.Is(err, ErrUnhashableMember)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isComparable checks the dynamic value: a struct with an interface field
// holding a slice has a comparable type but cannot be hashed.
func isComparable(v any) bool {
	return reflect.ValueOf(v).Comparable()
}

func describeMember(m Member) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
