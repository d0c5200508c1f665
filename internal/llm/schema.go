package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Schema declares the expected shape of a structured response. It is a small
// provider-neutral subset of JSON schema; each client translates it into
// whatever its API supports.
type Schema struct {
	Type        string // "object", "array" or "string"
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
)

// Object builds an object schema with the given required properties.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// Array builds an array schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// String builds a string schema with an optional description.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Skeleton renders the schema as a JSON-shaped example for providers without
// native schema support. Property order is sorted for deterministic prompts.
func (s *Schema) Skeleton() string {
	var b strings.Builder
	s.writeSkeleton(&b, 0)
	return b.String()
}

func (s *Schema) writeSkeleton(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	switch s.Type {
	case TypeObject:
		b.WriteString("{\n")
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			fmt.Fprintf(b, "%s  %q: ", indent, k)
			s.Properties[k].writeSkeleton(b, depth+1)
			if i < len(keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent + "}")
	case TypeArray:
		b.WriteString("[")
		s.Items.writeSkeleton(b, depth)
		b.WriteString(", ...]")
	default:
		if s.Description != "" {
			fmt.Fprintf(b, "%q", "string: "+s.Description)
		} else {
			b.WriteString(`"string"`)
		}
	}
}
