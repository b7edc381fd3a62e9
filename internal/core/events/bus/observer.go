package bus

import (
	"github.com/zeusync/composer/internal/core/observability/log"
)

// LogObserver reports deliveries to a logger. Failed deliveries are logged at
// warn level, everything else at debug.
type LogObserver struct {
	logger log.Log
}

var _ EventBusObserver = (*LogObserver)(nil)

func NewLogObserver(logger log.Log) *LogObserver {
	if logger == nil {
		logger = log.Provide()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnPublish(topic, eventType string, _ Event) {
	o.logger.Debug("event published", log.String("topic", topic), log.String("event", eventType))
}

func (o *LogObserver) OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64) {
	fields := []log.Field{
		log.String("topic", topic),
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Int("micros", int(durationMicros)),
	}
	if err != nil {
		o.logger.Warn("event delivery failed", append(fields, log.Error(err))...)
		return
	}
	o.logger.Debug("event delivered", fields...)
}
