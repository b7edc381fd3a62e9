package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_, _ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_, _ string, handlers int, err error, _ int64) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got any
	_, err := b.Subscribe("test.event", func(e Event) error {
		got = e.Data()
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("test.event", "tester", 123, nil)))
	assert.Equal(t, 123, got)
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 5 {
		_, err := b.Subscribe("ev", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("ev", "src", nil, nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSubscribeOnceFiresOnce(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.SubscribeOnce("ev", func(Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("ev", "src", nil, nil)))
	require.NoError(t, b.Publish(NewEvent("ev", "src", nil, nil)))
	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("ev", func(Event) error { calls++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Unsubscribe(nil))
	require.NoError(t, b.Publish(NewEvent("ev", "src", nil, nil)))
	assert.Zero(t, calls)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "src", nil, nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestTopicsIsolation(t *testing.T) {
	b := New()
	count1 := 0
	count2 := 0
	_, _ = b.SubscribeTopic("t1", "ev", func(e Event) error { count1++; return nil })
	_, _ = b.SubscribeTopic("t2", "ev", func(e Event) error { count2++; return nil })
	_ = b.PublishToTopic("t1", NewEvent("ev", "src", nil, nil))
	if count1 != 1 || count2 != 0 {
		t.Fatalf("topic isolation failed: %d %d", count1, count2)
	}
}

func TestDropTopic(t *testing.T) {
	b := New()
	calls := 0
	sub, _ := b.SubscribeTopic("e1", "add", func(Event) error { calls++; return nil })

	b.DropTopic("e1")
	_ = b.PublishToTopic("e1", NewEvent("add", "src", nil, nil))
	assert.Zero(t, calls)
	assert.False(t, sub.IsActive())
	assert.Empty(t, b.GetTopics())
}

func TestNilHandlerRejected(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestPublishWithFilters(t *testing.T) {
	b := New()
	calls := 0
	_, _ = b.Subscribe("x", func(Event) error { calls++; return nil })

	require.NoError(t, b.PublishWithFilters(NewEvent("x", "s", 1, nil), func(e Event) bool { return e.Data() == 2 }))
	assert.Zero(t, calls)
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "s", 2, nil), func(e Event) bool { return e.Data() == 2 }))
	assert.Equal(t, 1, calls)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	// without observer, metrics should remain zero despite activity
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	m := b.GetMetrics()
	if m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}
	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	m2 := b.GetMetrics()
	if m2.Published == 0 || m2.DeliveredHandlers == 0 {
		t.Fatalf("metrics should update with observer: %+v", m2)
	}
	if obs.publishCount == 0 || obs.deliveredCount == 0 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil, nil))
	assert.Equal(t, 1, obs.publishCount)
}
