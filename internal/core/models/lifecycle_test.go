package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSystem owns a fixed list of entities and records hook calls.
type fakeSystem struct {
	name   string
	owned  []*Entity
	hooks  map[Phase]Hook
	calls  map[Phase][]*Entity
	visits int
}

func newFakeSystem(name string, owned ...*Entity) *fakeSystem {
	return &fakeSystem{
		name:  name,
		owned: owned,
		hooks: make(map[Phase]Hook),
		calls: make(map[Phase][]*Entity),
	}
}

func (s *fakeSystem) Name() string { return s.name }

func (s *fakeSystem) Each(visit func(*Entity) bool) {
	s.visits++
	for _, e := range s.owned {
		if !visit(e) {
			return
		}
	}
}

func (s *fakeSystem) Hook(phase Phase) (Hook, bool) {
	h, ok := s.hooks[phase]
	return h, ok
}

func (s *fakeSystem) on(phase Phase, err error) *fakeSystem {
	s.hooks[phase] = func(e *Entity) error {
		s.calls[phase] = append(s.calls[phase], e)
		return err
	}
	return s
}

func TestRunSystems_OnlyOwners(t *testing.T) {
	e := NewEntity()
	other := NewEntity()
	s1 := newFakeSystem("s1", other, e).on(PhaseStart, nil)
	s2 := newFakeSystem("s2", other).on(PhaseStart, nil)

	require.NoError(t, e.Start(s1, s2))

	assert.Equal(t, []*Entity{e}, s1.calls[PhaseStart])
	assert.Empty(t, s2.calls[PhaseStart])
}

func TestRunSystems_MissingHookSkipped(t *testing.T) {
	e := NewEntity()
	s := newFakeSystem("s", e).on(PhaseInit, nil)

	require.NoError(t, e.Pause(s))
	assert.Empty(t, s.calls)
	assert.Equal(t, 1, s.visits)
}

func TestRunSystems_AllDrivers(t *testing.T) {
	e := NewEntity()
	s := newFakeSystem("s", e)
	for _, p := range Phases() {
		s.on(p, nil)
	}

	require.NoError(t, e.Init(s))
	require.NoError(t, e.Start(s))
	require.NoError(t, e.Pause(s))
	require.NoError(t, e.Stop(s))
	require.NoError(t, e.Tear(s))

	for _, p := range Phases() {
		assert.Equal(t, []*Entity{e}, s.calls[p], p)
	}
}

func TestRunSystems_OrderAndErrors(t *testing.T) {
	e := NewEntity()
	boom := errors.New("boom")
	var order []string
	s1 := newFakeSystem("first", e)
	s1.hooks[PhaseStop] = func(*Entity) error { order = append(order, "first"); return boom }
	s2 := newFakeSystem("second", e)
	s2.hooks[PhaseStop] = func(*Entity) error { order = append(order, "second"); return nil }

	err := e.Stop(s1, nil, s2)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first stop")
	assert.Equal(t, []string{"first", "second"}, order, "a failing hook does not stop the others")
}

func TestRunSystems_NoSystems(t *testing.T) {
	assert.NoError(t, NewEntity().Tear())
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("pause")
	require.NoError(t, err)
	assert.Equal(t, PhasePause, p)

	_, err = ParsePhase("explode")
	assert.Error(t, err)
}
