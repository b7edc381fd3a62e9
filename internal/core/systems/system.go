package systems

import (
	"github.com/zeusync/composer/internal/core/models"
	"github.com/zeusync/composer/internal/core/observability/log"
	"github.com/zeusync/composer/pkg/sequence"
)

// Priority orders systems inside a Group; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 100
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

var (
	_ models.System = (*Base)(nil)
	_ models.Named  = (*Base)(nil)
)

// Base is a named system that owns entities by identity and holds at most
// one hook per lifecycle phase. It is not safe for concurrent use.
type Base struct {
	name     string
	priority Priority
	owned    *sequence.OrderedSet[*models.Entity]
	hooks    map[models.Phase]models.Hook
	logger   log.Log
}

type Option func(*Base)

func WithPriority(p Priority) Option {
	return func(b *Base) { b.priority = p }
}

func WithLogger(l log.Log) Option {
	return func(b *Base) { b.logger = l }
}

func New(name string, opts ...Option) *Base {
	b := &Base{
		name:     name,
		priority: PriorityNormal,
		owned:    sequence.NewOrderedSet[*models.Entity](),
		hooks:    make(map[models.Phase]models.Hook),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.Provide()
	}
	b.logger = b.logger.With(log.String("system", name))
	return b
}

func (b *Base) Name() string       { return b.name }
func (b *Base) Priority() Priority { return b.priority }

// On sets the hook for phase; a nil hook removes it.
func (b *Base) On(phase models.Phase, hook models.Hook) *Base {
	if hook == nil {
		delete(b.hooks, phase)
		return b
	}
	b.hooks[phase] = hook
	return b
}

func (b *Base) Hook(phase models.Phase) (models.Hook, bool) {
	h, ok := b.hooks[phase]
	return h, ok
}

// Own takes ownership of entities; owning twice is a no-op.
func (b *Base) Own(entities ...*models.Entity) *Base {
	for _, e := range entities {
		if e == nil {
			continue
		}
		if b.owned.Add(e) {
			b.logger.Debug("entity owned", log.String("entity", e.ID()))
		}
	}
	return b
}

func (b *Base) Disown(e *models.Entity) bool {
	if b.owned.Remove(e) {
		b.logger.Debug("entity released", log.String("entity", e.ID()))
		return true
	}
	return false
}

func (b *Base) Owns(e *models.Entity) bool { return b.owned.Has(e) }
func (b *Base) Len() int                   { return b.owned.Len() }

// Each visits owned entities in ownership order. Hooks may change ownership
// while Each runs; the visit covers the entities owned when it started.
func (b *Base) Each(visit func(*models.Entity) bool) {
	for e := range b.owned.All() {
		if !visit(e) {
			return
		}
	}
}
