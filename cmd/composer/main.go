package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/zeusync/composer/internal/core/models"
	"github.com/zeusync/composer/internal/core/observability/log"
	"github.com/zeusync/composer/internal/core/systems"
	"github.com/zeusync/composer/internal/injector"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "composer:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("composer", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "config file (YAML)")
		entity     = fs.String("entity", "", "entity template to build")
		id         = fs.String("id", "", "entity id (random when empty)")
		phases     = fs.String("phase", "", "comma separated lifecycle phases to run, e.g. init,start")
		list       = fs.Bool("list", false, "list loaded components and entity templates")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: composer [flags] templates...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	lifecycle, err := parsePhases(*phases)
	if err != nil {
		return err
	}

	app, err := injector.Initialize(injector.ConfigPath(*configPath))
	if err != nil {
		return err
	}
	logger := app.Logger

	paths := slices.Concat(app.Config.Templates.Paths, fs.Args())
	if err = app.Library.LoadFiles(ctx, paths...); err != nil {
		return err
	}

	if *list {
		return renderCatalog(out, app.Library.Components(), app.Library.Templates())
	}
	if *entity == "" {
		return errors.New("-entity is required")
	}

	var opts []models.Option
	if *id != "" {
		opts = append(opts, models.WithID(*id))
	}
	e, err := app.Library.Build(*entity, opts...)
	if err != nil {
		return err
	}
	e.ApplyComponents()

	group := systems.NewGroup(logger, lifecycleLogger(logger).Own(e))
	for _, phase := range lifecycle {
		if err = group.Run(phase); err != nil {
			return err
		}
	}

	return renderEntity(out, e)
}

// lifecycleLogger reports every phase of the entities it owns.
func lifecycleLogger(logger log.Log) *systems.Base {
	s := systems.New("lifecycle", systems.WithLogger(logger), systems.WithPriority(systems.PriorityLowest))
	for _, phase := range models.Phases() {
		s.On(phase, func(e *models.Entity) error {
			logger.Info("entity lifecycle",
				log.String("entity", e.ID()),
				log.String("phase", string(phase)),
				log.Int("components", len(e.Components())),
			)
			return nil
		})
	}
	return s
}

func parsePhases(s string) ([]models.Phase, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []models.Phase
	for _, name := range strings.Split(s, ",") {
		p, err := models.ParsePhase(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
