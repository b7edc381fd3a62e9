package main

import (
	"fmt"
	"io"

	"github.com/zeusync/composer/internal/core/fields"
	"github.com/zeusync/composer/internal/core/models"
	"gopkg.in/yaml.v3"
)

type catalog struct {
	Components []string `yaml:"components"`
	Entities   []string `yaml:"entities"`
}

func renderCatalog(w io.Writer, components, entities []string) error {
	return encode(w, catalog{Components: components, Entities: entities})
}

// renderEntity writes the entity id, its members and its attributes. Attribute
// order follows materialization order.
func renderEntity(w io.Writer, e *models.Entity) error {
	members := make([]string, 0, len(e.Components()))
	for _, m := range e.Components() {
		members = append(members, fmt.Sprint(m))
	}

	attrs, err := accessorsNode(e.Attrs())
	if err != nil {
		return err
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	idNode, membersNode := &yaml.Node{}, &yaml.Node{}
	if err = idNode.Encode(e.ID()); err != nil {
		return err
	}
	if err = membersNode.Encode(members); err != nil {
		return err
	}
	doc.Content = append(doc.Content,
		scalar("id"), idNode,
		scalar("components"), membersNode,
		scalar("attributes"), attrs,
	)
	return encode(w, doc)
}

func accessorsNode(a *fields.Accessors) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range a.Names() {
		var value *yaml.Node
		if attr, ok := a.Attr(name); ok {
			value = &yaml.Node{}
			if err := value.Encode(attr.Get()); err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
		} else if sub, ok := a.Sub(name); ok {
			var err error
			if value, err = accessorsNode(sub); err != nil {
				return nil, err
			}
		}
		node.Content = append(node.Content, scalar(name), value)
	}
	return node, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
