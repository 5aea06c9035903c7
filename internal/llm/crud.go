package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const crudSystemPrompt = `You are a database operation parser for a campus
asset inventory system. Translate the instruction into ONE JSON object with
this exact shape and nothing else:
{"operation": "CREATE|READ|UPDATE|DELETE", "fields": {}, "filters": {}}

Rules:
- CREATE puts all values for the new resource in "fields".
- READ uses "filters" to search; empty filters list everything.
- UPDATE uses "filters" to pick resources and "fields" for the new values.
- DELETE uses "filters" to pick resources to remove.
- Field and filter keys come from: sl_no, description, service_tag,
  identification_number, procurement_date, cost, location, section_location,
  product_category, department, parent_department.
- When the instruction refers to the last or most recently added resource,
  use {"created_at": "latest"} as the filter.
- Costs are plain numbers in Indian rupees.`

// Command operations as the model emits them.
const (
	OpCreate = "CREATE"
	OpRead   = "READ"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Command is one parsed inventory instruction. Fields carry new values for
// CREATE and UPDATE; Filters select the affected resources for READ, UPDATE
// and DELETE.
type Command struct {
	Operation string                 `json:"operation"`
	Fields    map[string]interface{} `json:"fields"`
	Filters   map[string]interface{} `json:"filters"`
}

// ParseCommand turns a natural-language instruction into a Command. The
// inventory context gives the model the real department and location names
// to resolve shorthand against.
func (c *Client) ParseCommand(ctx context.Context, instruction, contextJSON string) (Command, error) {
	if c == nil {
		return Command{}, errors.New("assistant is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return Command{}, fmt.Errorf("create genai client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: crudSystemPrompt},
			},
		},
	}

	prompt := fmt.Sprintf("Inventory context:\n%s\n\nInstruction: %s", contextJSON, instruction)
	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return Command{}, fmt.Errorf("gemini generation failed: %w", err)
	}

	return DecodeCommand(result.Text())
}

// DecodeCommand extracts the Command JSON from a model reply. Models wrap
// JSON in markdown fences or prose often enough that the object is cut out
// of the surrounding text before unmarshalling.
func DecodeCommand(reply string) (Command, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return Command{}, errors.New("no JSON object in model reply")
	}

	var cmd Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}

	cmd.Operation = strings.ToUpper(strings.TrimSpace(cmd.Operation))
	if cmd.Fields == nil {
		cmd.Fields = map[string]interface{}{}
	}
	if cmd.Filters == nil {
		cmd.Filters = map[string]interface{}{}
	}

	switch cmd.Operation {
	case OpCreate, OpRead, OpUpdate, OpDelete:
	default:
		return Command{}, fmt.Errorf("unsupported operation %q", cmd.Operation)
	}
	if cmd.Operation == OpUpdate && len(cmd.Fields) == 0 {
		return Command{}, errors.New("update command carries no fields")
	}
	if (cmd.Operation == OpUpdate || cmd.Operation == OpDelete) && len(cmd.Filters) == 0 {
		return Command{}, errors.New("update and delete commands need filters")
	}
	return cmd, nil
}

// extractJSON returns the first balanced {...} object in s, or "".
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// FieldString reads a string-valued field, rendering numbers when the model
// sent one where text was expected.
func (c Command) FieldString(key string) string {
	v, ok := c.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// FieldFloat reads a numeric field, accepting the string form models emit
// for amounts like "45000".
func (c Command) FieldFloat(key string) (float64, bool) {
	v, ok := c.Fields[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
