package fields

import "slices"

// Attr is a single materialized attribute: a lazily defaulted value plus the
// kind and arguments that produce its default.
//
// Attr does no locking; it belongs to exactly one Accessors owner.
type Attr struct {
	name        string
	owner       *Accessors
	kind        Kind
	args        []any
	value       any
	set         bool
	version     uint64
	subscribers []*subscriber
}

type subscriber struct {
	fn func(newValue any)
}

// Install defines attribute name on target, replacing whatever was installed
// under that name before. The default is computed from kind and args on the
// first read, not here.
func Install(target *Accessors, name string, kind Kind, args ...any) *Attr {
	a := &Attr{
		name:  name,
		owner: target,
		kind:  kind,
		args:  slices.Clone(args),
	}
	target.put(name, a, nil)
	return a
}

func (a *Attr) Name() string { return a.name }
func (a *Attr) Kind() Kind   { return a.kind }

// Args returns a copy of the default constructor arguments.
func (a *Attr) Args() []any { return slices.Clone(a.args) }

// Get returns the current value, computing and caching the default first if
// the attribute was never written.
func (a *Attr) Get() any {
	if !a.set {
		a.value = a.Default()
		a.set = true
	}
	return a.value
}

// Set writes value, notifies subscribers and returns the owner for chaining.
func (a *Attr) Set(value any) *Accessors {
	a.value = value
	a.set = true
	a.version++
	for _, s := range slices.Clone(a.subscribers) {
		s.fn(value)
	}
	return a.owner
}

// Call is the combined accessor: with no arguments it reads, with one it
// writes and returns the owner. Extra arguments are ignored.
func (a *Attr) Call(value ...any) any {
	if len(value) == 0 {
		return a.Get()
	}
	return a.Set(value[0])
}

// Default computes a fresh default without touching the current value.
func (a *Attr) Default() any {
	return a.kind.Make(a.args...)
}

// Reset forgets the current value so the next Get recomputes the default.
func (a *Attr) Reset() {
	a.value = nil
	a.set = false
	a.version++
}

// IsSet reports whether a value (written or defaulted) is cached.
func (a *Attr) IsSet() bool { return a.set }

// Version increases on every Set and Reset.
func (a *Attr) Version() uint64 { return a.version }

// ChangedSince reports whether the attribute was modified after version.
func (a *Attr) ChangedSince(version uint64) bool { return a.version != version }

// Subscribe registers a callback invoked synchronously on every Set.
func (a *Attr) Subscribe(onUpdate func(newValue any)) (unsubscribe func()) {
	s := &subscriber{fn: onUpdate}
	a.subscribers = append(a.subscribers, s)
	return func() {
		if i := slices.Index(a.subscribers, s); i >= 0 {
			a.subscribers = slices.Delete(a.subscribers, i, i+1)
		}
	}
}

// Value reads the attribute as T. The boolean is false when the stored value
// is not a T.
func Value[T any](a *Attr) (T, bool) {
	v, ok := a.Get().(T)
	return v, ok
}
