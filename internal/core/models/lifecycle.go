package models

import (
	"errors"
	"fmt"

	"github.com/zeusync/composer/internal/core/observability/log"
)

// Phase names a lifecycle transition a system may react to.
type Phase string

const (
	PhaseInit  Phase = "init"
	PhaseStart Phase = "start"
	PhasePause Phase = "pause"
	PhaseStop  Phase = "stop"
	PhaseTear  Phase = "tear"
)

// Phases lists the lifecycle phases in their natural order.
func Phases() []Phase {
	return []Phase{PhaseInit, PhaseStart, PhasePause, PhaseStop, PhaseTear}
}

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown lifecycle phase %q", s)
}

// Hook reacts to a lifecycle phase of one entity.
type Hook func(e *Entity) error

// System owns entities and optionally reacts to lifecycle phases.
type System interface {
	// Each calls visit for every owned entity until visit returns false.
	Each(visit func(e *Entity) bool)
	// Hook returns the hook for phase, if the system declares one.
	Hook(phase Phase) (Hook, bool)
}

// Named systems are identified by name in errors and logs.
type Named interface {
	Name() string
}

// RunSystems invokes the phase hook of every system that owns e. Systems that
// do not own e are left alone, and owners without a hook for phase are
// skipped. Every matching hook runs; their errors are joined.
func (e *Entity) RunSystems(phase Phase, systems ...System) error {
	var all error
	for _, s := range systems {
		if s == nil {
			continue
		}
		s.Each(func(owned *Entity) bool {
			if owned != e {
				return true
			}
			hook, ok := s.Hook(phase)
			if !ok || hook == nil {
				return true
			}
			e.logger.Debug("lifecycle hook", log.String("phase", string(phase)), log.String("system", systemName(s)))
			if err := hook(e); err != nil {
				all = errors.Join(all, fmt.Errorf("%s %s: %w", systemName(s), phase, err))
			}
			return true
		})
	}
	return all
}

// Init runs PhaseInit. The phase drivers return the joined hook errors, not
// the entity, so unlike Use and ApplyComponents they do not chain.
func (e *Entity) Init(systems ...System) error { return e.RunSystems(PhaseInit, systems...) }

// Start runs PhaseStart and returns the joined hook errors; it does not chain.
func (e *Entity) Start(systems ...System) error { return e.RunSystems(PhaseStart, systems...) }

// Pause runs PhasePause and returns the joined hook errors; it does not chain.
func (e *Entity) Pause(systems ...System) error { return e.RunSystems(PhasePause, systems...) }

// Stop runs PhaseStop and returns the joined hook errors; it does not chain.
func (e *Entity) Stop(systems ...System) error { return e.RunSystems(PhaseStop, systems...) }

// Tear runs PhaseTear and returns the joined hook errors; it does not chain.
func (e *Entity) Tear(systems ...System) error { return e.RunSystems(PhaseTear, systems...) }

func systemName(s System) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
