package systems

import (
	"errors"
	"slices"

	"github.com/zeusync/composer/internal/core/models"
	"github.com/zeusync/composer/internal/core/observability/log"
	"github.com/zeusync/composer/pkg/sequence"
)

// Prioritized systems are ordered by Priority inside a Group.
type Prioritized interface {
	Priority() Priority
}

// Group drives lifecycle phases across a set of systems for every entity any
// of them owns.
type Group struct {
	systems []models.System
	logger  log.Log
}

func NewGroup(logger log.Log, systems ...models.System) *Group {
	if logger == nil {
		logger = log.Provide()
	}
	g := &Group{logger: logger}
	g.Add(systems...)
	return g
}

// Add appends systems, keeping the group sorted by descending priority.
// Systems without a priority count as PriorityNormal; ties keep insertion order.
func (g *Group) Add(systems ...models.System) {
	for _, s := range systems {
		if s != nil {
			g.systems = append(g.systems, s)
		}
	}
	slices.SortStableFunc(g.systems, func(a, b models.System) int {
		return int(priorityOf(b)) - int(priorityOf(a))
	})
}

func (g *Group) Systems() []models.System {
	return slices.Clone(g.systems)
}

// Entities lists every entity owned by a system of the group, once each, in
// first-seen order.
func (g *Group) Entities() []*models.Entity {
	seen := sequence.NewOrderedSet[*models.Entity]()
	for _, s := range g.systems {
		s.Each(func(e *models.Entity) bool {
			seen.Add(e)
			return true
		})
	}
	return seen.Values()
}

// Run dispatches phase to every owned entity. Errors are joined; every entity
// is visited regardless.
func (g *Group) Run(phase models.Phase) error {
	entities := g.Entities()
	g.logger.Debug("running phase",
		log.String("phase", string(phase)),
		log.Int("entities", len(entities)),
		log.Int("systems", len(g.systems)),
	)

	var all error
	for _, e := range entities {
		if err := e.RunSystems(phase, g.systems...); err != nil {
			all = errors.Join(all, err)
		}
	}
	if all != nil {
		g.logger.Warn("phase finished with errors", log.String("phase", string(phase)), log.Error(all))
	}
	return all
}

func priorityOf(s models.System) Priority {
	if p, ok := s.(Prioritized); ok {
		return p.Priority()
	}
	return PriorityNormal
}
