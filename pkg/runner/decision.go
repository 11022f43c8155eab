package runner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
)

// ErrMalformedDecision is returned when a textual tool call cannot be decoded.
var ErrMalformedDecision = errors.New("malformed decision")

type wireCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Tool      string         `json:"tool"`
	Args      map[string]any `json:"args"`
	Arguments map[string]any `json:"arguments"`
}

// ParseToolCall decodes a tool call emitted as JSON text by a decision source,
// for example a model that answers with {"name": "...", "arguments": {...}}.
// Markdown code fences are stripped and malformed JSON is repaired before giving up.
// Numbers are kept as json.Number so integer arguments survive exactly.
func ParseToolCall(raw string) (domain.ToolCall, error) {
	content := stripFences(raw)
	if content == "" {
		return domain.ToolCall{}, fmt.Errorf("%w: empty input", ErrMalformedDecision)
	}

	var wc wireCall
	if err := decode(content, &wc); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return domain.ToolCall{}, fmt.Errorf("%w: %v (repair failed: %v)", ErrMalformedDecision, err, repairErr)
		}
		wc = wireCall{}
		if err := decode(repaired, &wc); err != nil {
			return domain.ToolCall{}, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
		}
	}

	call := domain.ToolCall{ID: wc.ID, Name: wc.Name, Args: wc.Args}
	if call.Name == "" {
		call.Name = wc.Tool
	}
	if call.Args == nil {
		call.Args = wc.Arguments
	}
	if call.Name == "" {
		return domain.ToolCall{}, fmt.Errorf("%w: no tool name", ErrMalformedDecision)
	}
	if call.Args == nil {
		call.Args = map[string]any{}
	}
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	return call, nil
}

func decode(content string, into *wireCall) error {
	dec := json.NewDecoder(bytes.NewBufferString(content))
	dec.UseNumber()
	return dec.Decode(into)
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
