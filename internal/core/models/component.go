package models

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/composer/internal/core/fields"
)

// ReservedKey marks a container ("this value is itself an entity") and is
// never materialized as an attribute.
const ReservedKey = "components"

// Spec is the value of a descriptor entry: a Leaf, a *Nested namespace, or
// Ignored.
type Spec interface {
	spec()
}

// Leaf produces an attribute whose default is Kind.Make(Args...).
type Leaf struct {
	Kind fields.Kind
	Args []any
}

// Ignored carries a value of a shape the applier does not understand. It is
// kept so descriptors round-trip, and skipped on materialization.
type Ignored struct {
	Value any
}

func (Leaf) spec()    {}
func (Ignored) spec() {}
func (*Nested) spec() {}

// Entry is one named spec of a descriptor, in declaration order.
type Entry struct {
	Name string
	Spec Spec
}

// Nested is an ordered namespace of entries.
type Nested struct {
	entries []Entry
}

func NewNested() *Nested {
	return &Nested{}
}

// Set assigns spec to name. Reassigning an existing name keeps its position.
func (n *Nested) Set(name string, spec Spec) *Nested {
	for i := range n.entries {
		if n.entries[i].Name == name {
			n.entries[i].Spec = spec
			return n
		}
	}
	n.entries = append(n.entries, Entry{Name: name, Spec: spec})
	return n
}

func (n *Nested) Leaf(name string, kind fields.Kind, args ...any) *Nested {
	return n.Set(name, Leaf{Kind: kind, Args: slices.Clone(args)})
}

// Nest declares a sub-namespace filled in by build.
func (n *Nested) Nest(name string, build func(*Nested)) *Nested {
	sub := NewNested()
	if build != nil {
		build(sub)
	}
	return n.Set(name, sub)
}

func (n *Nested) Lookup(name string) (Spec, bool) {
	for _, e := range n.entries {
		if e.Name == name {
			return e.Spec, true
		}
	}
	return nil, false
}

// Entries returns the entries in declaration order.
func (n *Nested) Entries() []Entry {
	return slices.Clone(n.entries)
}

func (n *Nested) Len() int { return len(n.entries) }

func (n *Nested) validate(prefix string) error {
	var all error
	for _, e := range n.entries {
		switch s := e.Spec.(type) {
		case Leaf:
			if s.Kind == nil {
				all = errors.Join(all, fmt.Errorf("%s%s: %w", prefix, e.Name, ErrNilKind))
			}
		case *Nested:
			if s == nil {
				all = errors.Join(all, fmt.Errorf("%s%s: %w", prefix, e.Name, ErrNilComponent))
				continue
			}
			all = errors.Join(all, s.validate(prefix+e.Name+fields.PathSeparator))
		}
	}
	return all
}

// Component is a named, reusable descriptor. Entities hold components by
// pointer identity, so one *Component can be shared by many entities while
// each of them materializes its own values.
type Component struct {
	name string
	body *Nested
}

func NewComponent(name string) *Component {
	return &Component{name: name, body: NewNested()}
}

func (c *Component) Name() string { return c.name }

func (c *Component) String() string { return "component(" + c.name + ")" }

func (c *Component) Set(name string, spec Spec) *Component {
	c.body.Set(name, spec)
	return c
}

func (c *Component) Leaf(name string, kind fields.Kind, args ...any) *Component {
	c.body.Leaf(name, kind, args...)
	return c
}

func (c *Component) Nest(name string, build func(*Nested)) *Component {
	c.body.Nest(name, build)
	return c
}

func (c *Component) Lookup(name string) (Spec, bool) {
	return c.body.Lookup(name)
}

func (c *Component) Entries() []Entry {
	return c.body.Entries()
}

// Validate reports leaves without a kind and nil namespaces, with their
// dotted paths.
func (c *Component) Validate() error {
	if err := c.body.validate(""); err != nil {
		return fmt.Errorf("component %q: %w", c.name, err)
	}
	return nil
}

// Describe converts a loose mapping into a Component. Go maps are unordered,
// so entries are declared in sorted key order; use the builder or the schema
// loader when declaration order matters.
//
// A []any whose first element is a fields.Kind becomes a Leaf, a
// map[string]any becomes a *Nested, the reserved key is dropped and any other
// value becomes Ignored.
func Describe(name string, m map[string]any) *Component {
	c := NewComponent(name)
	c.body = describe(m)
	return c
}

func describe(m map[string]any) *Nested {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	n := NewNested()
	for _, k := range keys {
		if k == ReservedKey {
			continue
		}
		n.Set(k, describeValue(m[k]))
	}
	return n
}

func describeValue(v any) Spec {
	switch val := v.(type) {
	case Spec:
		return val
	case []any:
		if len(val) > 0 {
			if kind, ok := val[0].(fields.Kind); ok {
				return Leaf{Kind: kind, Args: slices.Clone(val[1:])}
			}
		}
	case map[string]any:
		return describe(val)
	}
	return Ignored{Value: v}
}
