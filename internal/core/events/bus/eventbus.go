package bus

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// simpleEvent is a basic implementation of Event.
type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, meta: metadata}
}

type subscription struct {
	id        string
	topic     string
	eventType string
	handler   EventHandler
	once      bool
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) Topic() string     { return s.topic }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.active.Swap(false) && s.cancel != nil {
		s.cancel()
	}
	return nil
}

// claim marks a once-subscription as consumed; only the first caller wins.
func (s *subscription) claim() bool {
	if !s.once {
		return s.active.Load()
	}
	if !s.active.CompareAndSwap(true, false) {
		return false
	}
	s.cancel()
	return true
}

// inMemoryBus is a thread-safe implementation of EventBus.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: topic -> eventType -> subscriptions in subscription order
	handlers  map[string]map[string][]*subscription
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string]map[string][]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver("", event)
}

func (b *inMemoryBus) PublishToTopic(topic string, event Event) error {
	return b.deliver(topic, event)
}

func (b *inMemoryBus) PublishWithFilters(event Event, filters ...EventFilter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	return b.subscribe("", eventType, handler, false)
}

func (b *inMemoryBus) SubscribeOnce(eventType string, handler EventHandler) (Subscription, error) {
	return b.subscribe("", eventType, handler, true)
}

func (b *inMemoryBus) SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error) {
	return b.subscribe(topic, eventType, handler, false)
}

func (b *inMemoryBus) SubscribeTopicOnce(topic, eventType string, handler EventHandler) (Subscription, error) {
	return b.subscribe(topic, eventType, handler, true)
}

func (b *inMemoryBus) subscribe(topic, eventType string, handler EventHandler, once bool) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	s := &subscription{
		id:        uuid.NewString(),
		topic:     topic,
		eventType: eventType,
		handler:   handler,
		once:      once,
	}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.removeLocked(s)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string][]*subscription)
	}
	b.handlers[topic][eventType] = append(b.handlers[topic][eventType], s)
	return s, nil
}

func (b *inMemoryBus) removeLocked(s *subscription) {
	byType, ok := b.handlers[s.topic]
	if !ok {
		return
	}
	subs := byType[s.eventType]
	if i := slices.Index(subs, s); i >= 0 {
		byType[s.eventType] = slices.Delete(subs, i, i+1)
	}
	if len(byType[s.eventType]) == 0 {
		delete(byType, s.eventType)
	}
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) DropTopic(topic string) {
	b.mu.Lock()
	byType := b.handlers[topic]
	delete(b.handlers, topic)
	b.mu.Unlock()

	for _, subs := range byType {
		for _, s := range subs {
			s.active.Store(false)
		}
	}
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) GetTopics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, byType := range b.handlers {
		info := TopicInfo{Name: name, EventTypes: len(byType)}
		for _, subs := range byType {
			info.Subs += len(subs)
		}
		out = append(out, info)
	}
	return out
}

func (b *inMemoryBus) deliver(topic string, event Event) error {
	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	subs := slices.Clone(b.handlers[topic][etype])
	observers := make([]EventBusObserver, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(topic, etype, event)
	}

	var (
		all       error
		delivered int
	)
	for _, s := range subs {
		if !s.claim() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		dur := time.Since(start).Microseconds()
		for _, obs := range observers {
			obs.OnDelivered(topic, etype, delivered, all, dur)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors++
		}
		b.metrics.Topics = uint64(len(b.handlers))
		var subsCount uint64
		for _, byType := range b.handlers {
			for _, m := range byType {
				subsCount += uint64(len(m))
			}
		}
		b.metrics.SubscribersActive = subsCount
		b.mu.Unlock()
	}
	return all
}
