package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/composer/internal/config"
	"github.com/zeusync/composer/internal/core/events/bus"
	"github.com/zeusync/composer/internal/core/fields"
	"github.com/zeusync/composer/internal/core/observability/log"
	"github.com/zeusync/composer/internal/core/schema"
)

// ConfigPath is the config file to load; empty means defaults and env only.
type ConfigPath string

// App bundles the wired collaborators of a composer process.
type App struct {
	Config  config.Config
	Logger  log.Log
	Bus     bus.EventBus
	Kinds   fields.Registry
	Library *schema.Library
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideBus,
	ProvideKinds,
	ProvideLibrary,
	wire.Struct(new(App), "*"),
)

func ProvideConfig(path ConfigPath) (config.Config, error) {
	return config.Load(string(path))
}

func ProvideLogger(cfg config.Config) log.Log {
	return log.NewWithConfig(cfg.LoggerConfig())
}

func ProvideBus(cfg config.Config, logger log.Log) bus.EventBus {
	b := bus.New()
	if cfg.Bus.Observed {
		b.AddObserver(bus.NewLogObserver(logger.With(log.String("component", "bus"))))
	}
	return b
}

func ProvideKinds() fields.Registry {
	return fields.DefaultRegistry()
}

func ProvideLibrary(cfg config.Config, kinds fields.Registry, b bus.EventBus, logger log.Log) *schema.Library {
	return schema.NewLibrary(kinds,
		schema.WithBus(b),
		schema.WithLogger(logger.With(log.String("component", "library"))),
		schema.WithWorkers(cfg.Workers()),
	)
}
