package schema

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/composer/internal/core/fields"
	"github.com/zeusync/composer/internal/core/models"
	"github.com/zeusync/composer/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

const (
	keyComponents = "components"
	keyEntities   = "entities"
)

// Template declares an entity: the templates it mixes in, the library
// components it uses and optional inline fields.
type Template struct {
	Name   string
	Mixins []string
	Use    []string
	// Inline holds the template's own fields as a component named after the
	// template. Nil when the template declares none.
	Inline *models.Component
}

type templateDecl struct {
	Use    []string  `yaml:"use"`
	Mixins []string  `yaml:"mixins"`
	Fields yaml.Node `yaml:"fields"`
}

type document struct {
	source     string
	hash       uint64
	components []*models.Component
	templates  []*Template
}

// parser turns YAML into descriptors. Mapping order is kept as written.
type parser struct {
	source string
	kinds  fields.Registry
	logger log.Log
}

func (p *parser) parse(data []byte) (*document, error) {
	doc := &document{source: p.source, hash: xxhash.Sum64(data)}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", p.source, ErrInvalidDocument, err)
	}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, p.fail(top, "top level must be a mapping")
	}

	for key, value := range pairs(top) {
		switch key.Value {
		case keyComponents:
			if err := p.components(value, doc); err != nil {
				return nil, err
			}
		case keyEntities:
			if err := p.templates(value, doc); err != nil {
				return nil, err
			}
		default:
			return nil, p.fail(key, "unexpected key %q", key.Value)
		}
	}
	return doc, nil
}

func (p *parser) components(node *yaml.Node, doc *document) error {
	if node.Kind != yaml.MappingNode {
		return p.fail(node, "components must be a mapping")
	}
	for key, value := range pairs(node) {
		if value.Kind != yaml.MappingNode {
			return p.fail(value, "component %q must be a mapping", key.Value)
		}
		c := models.NewComponent(key.Value)
		p.fill(key.Value, value, func(name string, spec models.Spec) { c.Set(name, spec) })
		doc.components = append(doc.components, c)
	}
	return nil
}

func (p *parser) templates(node *yaml.Node, doc *document) error {
	if node.Kind != yaml.MappingNode {
		return p.fail(node, "entities must be a mapping")
	}
	for key, value := range pairs(node) {
		var decl templateDecl
		if err := value.Decode(&decl); err != nil {
			return p.fail(value, "entity %q: %v", key.Value, err)
		}
		t := &Template{Name: key.Value, Mixins: decl.Mixins, Use: decl.Use}
		switch {
		case decl.Fields.Kind == 0 || decl.Fields.Tag == "!!null":
		case decl.Fields.Kind == yaml.MappingNode:
			t.Inline = models.NewComponent(key.Value)
			p.fill(key.Value, &decl.Fields, func(name string, spec models.Spec) { t.Inline.Set(name, spec) })
		default:
			return p.fail(&decl.Fields, "entity %q: fields must be a mapping", key.Value)
		}
		doc.templates = append(doc.templates, t)
	}
	return nil
}

func (p *parser) fill(path string, node *yaml.Node, set func(string, models.Spec)) {
	for key, value := range pairs(node) {
		set(key.Value, p.spec(path+fields.PathSeparator+key.Value, value))
	}
}

// spec classifies one value: [kind, args...] is a Leaf, a mapping is Nested,
// anything else is kept as Ignored.
func (p *parser) spec(path string, node *yaml.Node) models.Spec {
	switch node.Kind {
	case yaml.MappingNode:
		nested := models.NewNested()
		p.fill(path, node, func(name string, spec models.Spec) { nested.Set(name, spec) })
		return nested
	case yaml.SequenceNode:
		if leaf, ok := p.leaf(path, node); ok {
			return leaf
		}
	}
	var raw any
	_ = node.Decode(&raw)
	return models.Ignored{Value: raw}
}

func (p *parser) leaf(path string, node *yaml.Node) (models.Leaf, bool) {
	if len(node.Content) == 0 {
		return models.Leaf{}, false
	}
	head := node.Content[0]
	if head.Kind != yaml.ScalarNode || head.Tag != "!!str" {
		return models.Leaf{}, false
	}
	kind, ok := p.kinds.Lookup(head.Value)
	if !ok {
		p.logger.Warn("unknown kind, value ignored",
			log.String("source", p.source),
			log.String("path", path),
			log.String("kind", head.Value),
			log.Int("line", head.Line),
		)
		return models.Leaf{}, false
	}

	args := make([]any, 0, len(node.Content)-1)
	for _, arg := range node.Content[1:] {
		var v any
		if err := arg.Decode(&v); err != nil {
			v = arg.Value
		}
		args = append(args, v)
	}
	return models.Leaf{Kind: kind, Args: args}, true
}

func (p *parser) fail(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %w: %s", p.source, node.Line, ErrInvalidDocument, fmt.Sprintf(format, args...))
}

// pairs walks a mapping node in document order.
func pairs(node *yaml.Node) func(yield func(key, value *yaml.Node) bool) {
	return func(yield func(key, value *yaml.Node) bool) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i], node.Content[i+1]) {
				return
			}
		}
	}
}
