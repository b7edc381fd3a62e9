package models

import (
	"fmt"
	"strings"

	"github.com/zeusync/composer/internal/core/fields"
	"github.com/zeusync/composer/internal/core/observability/log"
)

// ApplyComponents materializes every held component, in insertion order, as
// attributes on the entity. Later components overwrite earlier ones of the
// same name. Re-applying rebuilds the same accessors and resets every value to
// its declared default.
//
// Composite members are skipped: their own components were flattened into
// the entity when they were used.
func (e *Entity) ApplyComponents() *Entity {
	applied := 0
	for m := range e.components.All() {
		c, ok := m.(*Component)
		if !ok {
			continue
		}
		applyComponent(e.attrs, e.defaults, c.body, e.logger)
		applied++
	}
	e.logger.Debug("components applied", log.Int("components", applied), log.Int("attributes", e.attrs.Len()))
	if err := e.Emit(EventApply, e); err != nil {
		e.logger.Warn("apply handler failed", log.Error(err))
	}
	return e
}

// applyComponent walks one descriptor level against target. defaults may be
// nil for nested targets; nested specs are recorded whole at their root name.
func applyComponent(target *fields.Accessors, defaults map[string]Spec, n *Nested, logger log.Log) {
	for _, entry := range n.entries {
		if entry.Name == ReservedKey {
			continue
		}
		switch spec := entry.Spec.(type) {
		case Leaf:
			if spec.Kind == nil {
				logger.Warn("leaf without kind skipped", log.String("attribute", entry.Name))
				continue
			}
			fields.Install(target, entry.Name, spec.Kind, spec.Args...)
		case *Nested:
			if spec == nil {
				continue
			}
			sub := fields.NewAccessors()
			target.SetSub(entry.Name, sub)
			applyComponent(sub, nil, spec, logger)
		default:
			continue
		}
		if defaults != nil {
			defaults[entry.Name] = entry.Spec
		}
	}
}

// GetDefault recomputes the declared default of a materialized attribute.
// name may be a dotted path into a nested namespace, in which case the nested
// spec is resolved inside the recorded root spec. A namespace yields a
// map[string]any of fresh defaults.
func (e *Entity) GetDefault(name string) (any, bool) {
	spec, ok := e.defaultSpec(name)
	if !ok {
		return nil, false
	}
	return evaluate(spec)
}

func (e *Entity) defaultSpec(name string) (Spec, bool) {
	parts := strings.Split(name, fields.PathSeparator)
	spec, ok := e.defaults[parts[0]]
	if !ok {
		return nil, false
	}
	for _, p := range parts[1:] {
		nested, isNested := spec.(*Nested)
		if !isNested || nested == nil {
			return nil, false
		}
		if spec, ok = nested.Lookup(p); !ok {
			return nil, false
		}
	}
	return spec, true
}

func evaluate(spec Spec) (any, bool) {
	switch s := spec.(type) {
	case Leaf:
		if s.Kind == nil {
			return nil, false
		}
		return s.Kind.Make(s.Args...), true
	case *Nested:
		out := make(map[string]any, s.Len())
		for _, entry := range s.entries {
			if entry.Name == ReservedKey {
				continue
			}
			if v, ok := evaluate(entry.Spec); ok {
				out[entry.Name] = v
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Defaults returns the names with a recorded default spec.
func (e *Entity) Defaults() map[string]Spec {
	out := make(map[string]Spec, len(e.defaults))
	for k, v := range e.defaults {
		out[k] = v
	}
	return out
}

// Attrs exposes the materialized accessors.
func (e *Entity) Attrs() *fields.Accessors {
	return e.attrs
}

// Attr returns the attribute at a dotted path.
func (e *Entity) Attr(path string) (*fields.Attr, bool) {
	return e.attrs.Lookup(path)
}

// Get reads the attribute at a dotted path.
func (e *Entity) Get(path string) (any, bool) {
	return e.attrs.Get(path)
}

// Set writes the attribute at a dotted path.
func (e *Entity) Set(path string, value any) error {
	if err := e.attrs.Set(path, value); err != nil {
		return fmt.Errorf("entity %s: %w", e.id, err)
	}
	return nil
}

// Reset puts the attribute (or every attribute of the namespace) at path back
// to its declared default; the default is recomputed on the next read.
func (e *Entity) Reset(path string) error {
	if attr, ok := e.attrs.Lookup(path); ok {
		attr.Reset()
		return nil
	}
	if sub, ok := e.attrs.LookupSub(path); ok {
		resetAll(sub)
		return nil
	}
	return fmt.Errorf("entity %s: %w: %s", e.id, fields.ErrNoAttribute, path)
}

func resetAll(a *fields.Accessors) {
	for _, name := range a.Names() {
		if attr, ok := a.Attr(name); ok {
			attr.Reset()
		} else if sub, ok := a.Sub(name); ok {
			resetAll(sub)
		}
	}
}

// Snapshot returns the current attribute values as nested maps.
func (e *Entity) Snapshot() map[string]any {
	return e.attrs.Snapshot()
}
