package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/composer/internal/core/events/bus"
	"github.com/zeusync/composer/internal/core/fields"
)

func TestApply_CreatesAccessors(t *testing.T) {
	e := NewEntity().Use(fooComponent())

	_, ok := e.Attr("foo")
	require.False(t, ok, "nothing is materialized before ApplyComponents")

	e.ApplyComponents()
	foo, ok := e.Attr("foo")
	require.True(t, ok)
	assert.Equal(t, "bar", foo.Get())

	assert.Same(t, e.Attrs(), foo.Set("baz"))
	assert.Equal(t, "baz", foo.Get())
}

func TestApply_Nested(t *testing.T) {
	c := NewComponent("nested").Nest("foo", func(n *Nested) {
		n.Leaf("bar", fields.Number, 101)
	})
	e := NewEntity().Use(c).ApplyComponents()

	foo, ok := e.Attrs().Sub("foo")
	require.True(t, ok)
	bar, ok := foo.Get("bar")
	require.True(t, ok)
	assert.Equal(t, 101.0, bar)
}

func TestApply_ComplexNestings(t *testing.T) {
	c := NewComponent("complex").
		Nest("foo", func(n *Nested) {
			n.Nest("bar", func(n *Nested) { n.Leaf("lol", fields.Number, 101) })
		}).
		Nest("bar", func(n *Nested) { n.Leaf("foo", fields.String, "foobar") }).
		Leaf("lol", fields.Number, 202)

	e := NewEntity().Use(c).ApplyComponents()

	v, _ := e.Get("foo.bar.lol")
	assert.Equal(t, 101.0, v)
	v, _ = e.Get("bar.foo")
	assert.Equal(t, "foobar", v)
	v, _ = e.Get("lol")
	assert.Equal(t, 202.0, v)
	assert.Equal(t, []string{"foo", "bar", "lol"}, e.Attrs().Names())
}

func TestApply_LastWins(t *testing.T) {
	e := NewEntity().Use(
		NewComponent("one").Leaf("x", fields.Number, 1),
		NewComponent("two").Leaf("x", fields.Number, 2),
	).ApplyComponents()

	v, ok := e.Get("x")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	def, ok := e.GetDefault("x")
	require.True(t, ok)
	assert.Equal(t, 2.0, def)
}

func TestApply_NestedLastWinsReplacesNamespace(t *testing.T) {
	e := NewEntity().Use(
		NewComponent("a").Nest("pos", func(n *Nested) { n.Leaf("x", fields.Int, 1) }),
		NewComponent("b").Nest("pos", func(n *Nested) { n.Leaf("y", fields.Int, 2) }),
	).ApplyComponents()

	_, ok := e.Get("pos.x")
	assert.False(t, ok)
	v, ok := e.Get("pos.y")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestApply_TwiceSameShapeAndDefaults(t *testing.T) {
	c := NewComponent("c").
		Leaf("name", fields.String, "orc").
		Nest("stats", func(n *Nested) { n.Leaf("hp", fields.Int, 10) })
	e := NewEntity().Use(c).ApplyComponents()
	first := e.Snapshot()
	names := e.Attrs().Names()

	e.ApplyComponents()
	assert.Equal(t, first, e.Snapshot())
	assert.Equal(t, names, e.Attrs().Names())
}

func TestApply_ReapplyResetsValues(t *testing.T) {
	e := NewEntity().Use(NewComponent("c").Leaf("hp", fields.Int, 10)).ApplyComponents()
	require.NoError(t, e.Set("hp", 3))

	e.ApplyComponents()
	v, _ := e.Get("hp")
	assert.Equal(t, 10, v)
}

func TestApply_DefaultsDeferredUntilApply(t *testing.T) {
	calls := 0
	counting := fields.KindFunc("counting", func(args ...any) any {
		calls++
		return calls
	})
	c := NewComponent("c").Leaf("n", counting)
	e := NewEntity().Use(c)
	assert.Zero(t, calls)

	e.ApplyComponents()
	v, _ := e.Get("n")
	assert.Equal(t, 1, v)
}

func TestApply_SharedDescriptorIndependentValues(t *testing.T) {
	c := NewComponent("c").Leaf("tags", fields.List, "a")
	e1 := NewEntity().Use(c).ApplyComponents()
	e2 := NewEntity().Use(c).ApplyComponents()

	require.NoError(t, e1.Set("tags", []any{"b"}))
	v2, _ := e2.Get("tags")
	assert.Equal(t, []any{"a"}, v2)
}

func TestApply_SkipsReservedIgnoredAndComposites(t *testing.T) {
	c := NewComponent("c").
		Leaf("kept", fields.Bool, true).
		Set(ReservedKey, Leaf{Kind: fields.String, Args: []any{"no"}}).
		Set("odd", Ignored{Value: 42}).
		Set("broken", Leaf{})
	mixin := NewEntity().Use(NewComponent("m").Leaf("m", fields.Int, 7))

	e := NewEntity().Use(c, mixin).ApplyComponents()

	assert.Equal(t, []string{"kept", "m"}, e.Attrs().Names())
	_, ok := e.GetDefault(ReservedKey)
	assert.False(t, ok)
	_, ok = e.GetDefault("odd")
	assert.False(t, ok)
}

func TestGetDefault(t *testing.T) {
	c := NewComponent("c").
		Leaf("name", fields.String, "orc").
		Nest("pos", func(n *Nested) {
			n.Leaf("x", fields.Float, 1.5)
			n.Nest("z", func(n *Nested) { n.Leaf("layer", fields.Int, 3) })
		})
	e := NewEntity().Use(c).ApplyComponents()
	require.NoError(t, e.Set("name", "elf"))

	v, ok := e.GetDefault("name")
	require.True(t, ok)
	assert.Equal(t, "orc", v)

	v, ok = e.GetDefault("pos")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"x": 1.5, "z": map[string]any{"layer": 3}}, v)

	v, ok = e.GetDefault("pos.z.layer")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = e.GetDefault("missing")
	assert.False(t, ok)
	_, ok = e.GetDefault("name.deeper")
	assert.False(t, ok)
}

func TestGetDefault_FreshValueEachCall(t *testing.T) {
	e := NewEntity().Use(NewComponent("c").Leaf("items", fields.List, 1)).ApplyComponents()
	a, _ := e.GetDefault("items")
	b, _ := e.GetDefault("items")
	a.([]any)[0] = 9
	assert.Equal(t, []any{1}, b)
}

func TestReset(t *testing.T) {
	c := NewComponent("c").
		Leaf("hp", fields.Int, 10).
		Nest("pos", func(n *Nested) {
			n.Leaf("x", fields.Int, 0)
			n.Leaf("y", fields.Int, 0)
		})
	e := NewEntity().Use(c).ApplyComponents()
	require.NoError(t, e.Set("hp", 1))
	require.NoError(t, e.Set("pos.x", 4))
	require.NoError(t, e.Set("pos.y", 5))

	require.NoError(t, e.Reset("hp"))
	require.NoError(t, e.Reset("pos"))
	assert.Equal(t, map[string]any{"hp": 10, "pos": map[string]any{"x": 0, "y": 0}}, e.Snapshot())

	assert.ErrorIs(t, e.Reset("nope"), fields.ErrNoAttribute)
	assert.ErrorIs(t, e.Set("nope", 1), fields.ErrNoAttribute)
}

func TestApply_EmitsApply(t *testing.T) {
	e := NewEntity().Use(fooComponent())
	var got any
	_, err := e.On(EventApply, func(ev bus.Event) error {
		got = ev.Data()
		return nil
	})
	require.NoError(t, err)

	e.ApplyComponents()
	assert.Same(t, e, got)
}

func TestDescribe(t *testing.T) {
	c := Describe("loose", map[string]any{
		"foo":       []any{fields.String, "bar"},
		"pos":       map[string]any{"x": []any{fields.Int, 1}},
		"raw":       "not a spec",
		ReservedKey: []any{fields.String, "skip"},
		"list":      []any{"no", "kind"},
	})

	names := make([]string, 0)
	for _, entry := range c.Entries() {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"foo", "list", "pos", "raw"}, names)

	e := NewEntity().Use(c).ApplyComponents()
	assert.Equal(t, map[string]any{"foo": "bar", "pos": map[string]any{"x": 1}}, e.Snapshot())
}

func TestComponent_Validate(t *testing.T) {
	ok := NewComponent("ok").Leaf("a", fields.Int).Nest("n", func(n *Nested) { n.Leaf("b", fields.Bool) })
	require.NoError(t, ok.Validate())

	bad := NewComponent("bad").
		Set("a", Leaf{}).
		Nest("n", func(n *Nested) { n.Set("b", Leaf{}) })
	err := bad.Validate()
	require.ErrorIs(t, err, ErrNilKind)
	assert.Contains(t, err.Error(), "n.b")
}

func TestNested_SetKeepsPosition(t *testing.T) {
	c := NewComponent("c").Leaf("a", fields.Int, 1).Leaf("b", fields.Int, 2).Leaf("a", fields.Int, 3)
	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, []any{3}, entries[0].Spec.(Leaf).Args)
}
