package ai

import (
	"strings"

	"google.golang.org/genai"
)

type Type string

const (
	TypeObject Type = "object"
	TypeArray  Type = "array"
	TypeString Type = "string"
)

// Schema is the subset of JSON Schema both providers accept.
type Schema struct {
	Type       Type
	Properties map[string]*Schema
	Order      []string // property order; also the required list
	Items      *Schema
	Enum       []string
}

// SuggestionSchema is {suggestions: [{text, priority, category}]}.
var SuggestionSchema = &Schema{
	Type:  TypeObject,
	Order: []string{"suggestions"},
	Properties: map[string]*Schema{
		"suggestions": {
			Type: TypeArray,
			Items: &Schema{
				Type:  TypeObject,
				Order: []string{"text", "priority", "category"},
				Properties: map[string]*Schema{
					"text":     {Type: TypeString},
					"priority": {Type: TypeString, Enum: []string{"low", "medium", "high"}},
					"category": {Type: TypeString},
				},
			},
		},
	},
}

// geminiSchema renders the OpenAPI flavour Gemini expects (upper-case types).
func geminiSchema(s *Schema) *genai.Schema {
	out := &genai.Schema{
		Type: genai.Type(strings.ToUpper(string(s.Type))),
		Enum: s.Enum,
	}
	if s.Items != nil {
		out.Items = geminiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = geminiSchema(p)
		}
		out.Required = s.Order
		out.PropertyOrdering = s.Order
	}
	return out
}

// openAISchema renders strict JSON Schema: every property required,
// no extras allowed.
func openAISchema(s *Schema) map[string]any {
	m := map[string]any{"type": string(s.Type)}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if s.Items != nil {
		m["items"] = openAISchema(s.Items)
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = openAISchema(p)
		}
		m["properties"] = props
		m["required"] = s.Order
		m["additionalProperties"] = false
	}
	return m
}
