package fields

import (
	"fmt"
	"slices"
	"strings"
)

// PathSeparator splits nested names in Lookup, Get and Set paths.
const PathSeparator = "."

// Accessors is an accessor-capable object: an ordered namespace of attributes
// and nested accessor objects. A name holds either an attribute or a nested
// object, never both.
type Accessors struct {
	order []string
	attrs map[string]*Attr
	subs  map[string]*Accessors
}

func NewAccessors() *Accessors {
	return &Accessors{
		attrs: make(map[string]*Attr),
		subs:  make(map[string]*Accessors),
	}
}

func (a *Accessors) put(name string, attr *Attr, sub *Accessors) {
	_, hadAttr := a.attrs[name]
	_, hadSub := a.subs[name]
	if !hadAttr && !hadSub {
		a.order = append(a.order, name)
	}
	delete(a.attrs, name)
	delete(a.subs, name)
	if attr != nil {
		a.attrs[name] = attr
	} else {
		a.subs[name] = sub
	}
}

// SetSub assigns a nested accessor object under name, replacing an
// attribute or object of the same name.
func (a *Accessors) SetSub(name string, sub *Accessors) *Accessors {
	if sub == nil {
		sub = NewAccessors()
	}
	a.put(name, nil, sub)
	return a
}

func (a *Accessors) Attr(name string) (*Attr, bool) {
	attr, ok := a.attrs[name]
	return attr, ok
}

func (a *Accessors) Sub(name string) (*Accessors, bool) {
	sub, ok := a.subs[name]
	return sub, ok
}

// Names lists installed names in first-installation order.
func (a *Accessors) Names() []string {
	return slices.Clone(a.order)
}

func (a *Accessors) Len() int { return len(a.order) }

// Lookup resolves a dotted path such as "pos.x" to an attribute.
func (a *Accessors) Lookup(path string) (*Attr, bool) {
	target, leaf, ok := a.walk(path)
	if !ok {
		return nil, false
	}
	return target.Attr(leaf)
}

// LookupSub resolves a dotted path to a nested accessor object.
func (a *Accessors) LookupSub(path string) (*Accessors, bool) {
	target, leaf, ok := a.walk(path)
	if !ok {
		return nil, false
	}
	return target.Sub(leaf)
}

func (a *Accessors) walk(path string) (*Accessors, string, bool) {
	parts := strings.Split(path, PathSeparator)
	cur := a
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur.subs[p]
		if !ok {
			return nil, "", false
		}
		cur = next
	}
	return cur, parts[len(parts)-1], true
}

// Get reads the attribute at path.
func (a *Accessors) Get(path string) (any, bool) {
	attr, ok := a.Lookup(path)
	if !ok {
		return nil, false
	}
	return attr.Get(), true
}

// Set writes the attribute at path. Only installed attributes can be written.
func (a *Accessors) Set(path string, value any) error {
	attr, ok := a.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAttribute, path)
	}
	attr.Set(value)
	return nil
}

// Snapshot returns the current values as nested maps. Reading unset
// attributes materializes their defaults.
func (a *Accessors) Snapshot() map[string]any {
	out := make(map[string]any, len(a.order))
	for _, name := range a.order {
		if attr, ok := a.attrs[name]; ok {
			out[name] = attr.Get()
		} else if sub, ok := a.subs[name]; ok {
			out[name] = sub.Snapshot()
		}
	}
	return out
}
