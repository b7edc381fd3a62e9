package bus

import "time"

// EventBus defines a thread-safe, in-process pub/sub event bus.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string.
// - Topics: handlers can subscribe within a topic for isolation and scoping.
//   Entities use their id as topic so one bus can serve many of them.
// - Synchronous, ordered delivery: Publish calls handlers in the caller
//   goroutine in subscription order.
// - Error aggregation: multiple handler errors are joined and returned.
// - Optional observability: metrics are produced only when observers are registered.
//
// The default topic is "" (empty string); Subscribe/Publish operate on it.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type()
	// in the default topic.
	Publish(event Event) error
	// Subscribe registers a handler for a specific event type in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeOnce registers a handler that is cancelled before its first delivery.
	SubscribeOnce(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	// PublishWithFilters drops the event silently if any filter returns false.
	PublishWithFilters(event Event, filters ...EventFilter) error

	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	SubscribeTopicOnce(topic, eventType string, handler EventHandler) (Subscription, error)
	PublishToTopic(topic string, event Event) error
	// DropTopic cancels every subscription of the topic and forgets it.
	DropTopic(topic string)

	// AddObserver registers an observer to receive metrics callbacks.
	AddObserver(obs EventBusObserver)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of accumulated metrics. Metrics are only
	// collected when at least one observer is registered.
	GetMetrics() EventBusMetrics
	// GetTopics returns a snapshot list of known topics.
	GetTopics() []TopicInfo
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type (
	// EventHandler is invoked per delivered event. Returned errors are
	// aggregated by Publish.
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64)
}

// EventBusMetrics is updated only while at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
	Topics            uint64
}

// TopicInfo provides a minimal snapshot about a topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
