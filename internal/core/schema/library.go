package schema

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/zeusync/composer/internal/core/events/bus"
	"github.com/zeusync/composer/internal/core/fields"
	"github.com/zeusync/composer/internal/core/models"
	"github.com/zeusync/composer/internal/core/observability/log"
	"github.com/zeusync/composer/pkg/concurrent"
	"github.com/zeusync/composer/pkg/sequence"
)

// Library holds named components and entity templates loaded from YAML.
// Component returns the same pointer for a name for the library's lifetime,
// so entities built from different templates share descriptors by identity.
type Library struct {
	mu      sync.Mutex
	kinds   fields.Registry
	bus     bus.EventBus
	logger  log.Log
	workers int

	components map[string]*models.Component
	templates  map[string]*Template
	prototypes map[string]*models.Entity
	loaded     map[uint64]string
}

type LibraryOption func(*Library)

// WithWorkers bounds how many files LoadFiles parses at once; n <= 0 means
// no bound.
func WithWorkers(n int) LibraryOption {
	return func(l *Library) { l.workers = n }
}

func WithBus(b bus.EventBus) LibraryOption {
	return func(l *Library) { l.bus = b }
}

func WithLogger(logger log.Log) LibraryOption {
	return func(l *Library) { l.logger = logger }
}

func NewLibrary(kinds fields.Registry, opts ...LibraryOption) *Library {
	l := &Library{
		kinds:      kinds,
		components: make(map[string]*models.Component),
		templates:  make(map[string]*Template),
		prototypes: make(map[string]*models.Entity),
		loaded:     make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.kinds == nil {
		l.kinds = fields.DefaultRegistry()
	}
	if l.logger == nil {
		l.logger = log.Provide()
	}
	if l.bus == nil {
		l.bus = bus.New()
	}
	return l
}

func (l *Library) parser(source string) *parser {
	return &parser{source: source, kinds: l.kinds, logger: l.logger}
}

// Load parses data and registers what it declares. Loading the same bytes
// again is a no-op.
func (l *Library) Load(source string, data []byte) error {
	doc, err := l.parser(source).parse(data)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.register(doc)
}

func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template file: %w", err)
	}
	return l.Load(path, data)
}

// LoadFiles reads and parses paths concurrently, then registers the results
// in path order. Nothing is registered if any file fails to parse.
func (l *Library) LoadFiles(ctx context.Context, paths ...string) error {
	docs, err := concurrent.Map(ctx, sequence.From(paths), l.workers, func(ctx context.Context, path string) (*document, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read template file: %w", err)
		}
		return l.parser(path).parse(data)
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, doc := range docs {
		if err := l.register(doc); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) register(doc *document) error {
	if prev, ok := l.loaded[doc.hash]; ok {
		l.logger.Debug("template document already loaded",
			log.String("source", doc.source),
			log.String("first", prev),
		)
		return nil
	}

	for _, c := range doc.components {
		if _, exists := l.components[c.Name()]; exists {
			return fmt.Errorf("%s: component %q: %w", doc.source, c.Name(), ErrDuplicateName)
		}
	}
	for _, t := range doc.templates {
		if _, exists := l.templates[t.Name]; exists {
			return fmt.Errorf("%s: entity %q: %w", doc.source, t.Name, ErrDuplicateName)
		}
	}

	for _, c := range doc.components {
		l.components[c.Name()] = c
	}
	for _, t := range doc.templates {
		l.templates[t.Name] = t
	}
	l.loaded[doc.hash] = doc.source
	l.logger.Info("template document loaded",
		log.String("source", doc.source),
		log.Int("components", len(doc.components)),
		log.Int("entities", len(doc.templates)),
	)
	return nil
}

// Register adds a component built in code.
func (l *Library) Register(c *models.Component) error {
	if c == nil {
		return models.ErrNilComponent
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.components[c.Name()]; exists {
		return fmt.Errorf("component %q: %w", c.Name(), ErrDuplicateName)
	}
	l.components[c.Name()] = c
	return nil
}

func (l *Library) Component(name string) (*models.Component, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.components[name]
	return c, ok
}

func (l *Library) Template(name string) (*Template, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.templates[name]
	return t, ok
}

func (l *Library) Components() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.components)
}

func (l *Library) Templates() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.templates)
}

// Build creates an entity from the named template: mixins first, then the
// used components, then the template's inline fields. Components are not
// applied. opts are applied after the library's bus and logger.
func (l *Library) Build(name string, opts ...models.Option) (*models.Entity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	members, err := l.members(t, map[string]bool{name: true})
	if err != nil {
		return nil, err
	}

	opts = append([]models.Option{models.WithBus(l.bus), models.WithLogger(l.logger)}, opts...)
	e := models.NewEntity(opts...).Use(members...)
	l.logger.Debug("entity built", log.String("template", name), log.String("entity", e.ID()))
	return e, nil
}

// Prototype returns the shared entity standing for template name when it is
// mixed into others. It is built once.
func (l *Library) Prototype(name string) (*models.Entity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prototype(name, map[string]bool{})
}

func (l *Library) prototype(name string, visiting map[string]bool) (*models.Entity, error) {
	if p, ok := l.prototypes[name]; ok {
		return p, nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrTemplateCycle, name)
	}
	t, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	visiting[name] = true
	members, err := l.members(t, visiting)
	delete(visiting, name)
	if err != nil {
		return nil, err
	}

	p := models.NewEntity(models.WithID("template:"+name), models.WithBus(l.bus), models.WithLogger(l.logger)).Use(members...)
	l.prototypes[name] = p
	return p, nil
}

func (l *Library) members(t *Template, visiting map[string]bool) ([]any, error) {
	out := make([]any, 0, len(t.Mixins)+len(t.Use)+1)
	for _, mixin := range t.Mixins {
		p, err := l.prototype(mixin, visiting)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", t.Name, err)
		}
		out = append(out, p)
	}
	for _, use := range t.Use {
		c, ok := l.components[use]
		if !ok {
			return nil, fmt.Errorf("entity %q: %w: %s", t.Name, ErrUnknownComponent, use)
		}
		out = append(out, c)
	}
	if t.Inline != nil {
		out = append(out, t.Inline)
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
