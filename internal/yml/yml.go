// Package yml provides node-level helpers over gopkg.in/yaml.v3 for editing
// configuration documents without disturbing entries the caller does not own.
package yml

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Parse decodes data and returns the document's top mapping node.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("yml: empty document")
		}
		return (*Node)(doc.Content[0]), nil
	}
	return (*Node)(&doc), nil
}

// Lookup returns the value node stored under name, or nil.
func (n *Node) Lookup(name string) *Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// Pairs iterates the mapping's key/value pairs.
func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		value := (*Node)(n.Content[i+1])
		if err := callback(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Put sets key to value, replacing an existing entry or appending a new one.
func (n *Node) Put(key string, value *Node) {
	if n.Kind != yaml.MappingNode { //sanity check
		panic("not a map node")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = (*yaml.Node)(value)
			return
		}
	}
	n.Content = append(n.Content, newScalar(key), (*yaml.Node)(value))
}

// DeepCopy clones the node and all of its content.
func (n *Node) DeepCopy() *Node {
	if n == nil {
		return nil
	}
	clone := *(*yaml.Node)(n)
	clone.Anchor = ""
	clone.Alias = nil
	if len(n.Content) > 0 {
		clone.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			clone.Content[i] = (*yaml.Node)((*Node)(child).DeepCopy())
		}
	}
	return (*Node)(&clone)
}

// Marshal serialises the node, stripping the leading document separator some
// emitters produce so the file round-trips cleanly.
func (n *Node) Marshal() ([]byte, error) {
	data, err := yaml.Marshal((*yaml.Node)(n))
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), "---\n")
	return []byte(text), nil
}

// Interface converts the node to plain go values for deep comparisons.
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			return strings.ToLower(n.Value) == "true"
		case "!!null":
			return nil
		case "!!float":
			value, _ := strconv.ParseFloat(n.Value, 64)
			return value
		case "!!int":
			value, _ := strconv.Atoi(n.Value)
			return value
		default:
			return n.Value
		}
	case yaml.MappingNode:
		aMap := make(map[string]interface{})
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			value := (*Node)(n.Content[i+1])
			aMap[key] = value.Interface()
		}
		return aMap
	case yaml.SequenceNode:
		aSlice := make([]interface{}, 0, len(n.Content))
		for i := 0; i < len(n.Content); i++ {
			value := (*Node)(n.Content[i])
			aSlice = append(aSlice, value.Interface())
		}
		return aSlice
	}
	return nil
}

func newScalar(value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: value,
	}
}
