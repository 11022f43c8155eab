package domain

// ToolCall represents a decision source's request to invoke a named tool.
// Ideally compatible with OpenAI/MCP tool call schemas.
type ToolCall struct {
	// ID is unique for this call (from the model or generated).
	ID string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`

	// Name is the tool to dispatch.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Args holds the keyword arguments.
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

// ToolResult represents the outcome of a dispatched ToolCall.
// Failed calls are reported with IsError so they can be fed back to the decision source.
type ToolResult struct {
	ID      string `json:"id"` // Must match the ToolCall.ID
	Name    string `json:"name"`
	Result  any    `json:"result,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Parameter types understood by manifests.
const (
	ParamString  = "string"
	ParamInteger = "integer"
	ParamNumber  = "number"
	ParamBoolean = "boolean"
	ParamObject  = "object"
	ParamArray   = "array"
)

// ParamSpec declares one keyword argument of a tool.
type ParamSpec struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Type        string `json:"type" yaml:"type" mapstructure:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
}

// ToolSpec defines metadata about a registered tool.
// This is used for generating guides, manifests and MCP schemas.
type ToolSpec struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description" yaml:"description" mapstructure:"description"`
	Parameters  []ParamSpec `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// JSONSchema renders the parameters as a JSON Schema object, the shape most
// model SDKs accept for function declarations.
func (s ToolSpec) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Parameters))
	required := make([]string, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       ParamObject,
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
