package flashcard

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// contentSchemas defines the JSON schema for each card type's content
// payload. Validation happens at the add/edit boundary; stored content is
// trusted.
var contentSchemas = map[CardType]map[string]any{
	TypeTwoSided: {
		"type": "object",
		"properties": map[string]any{
			"front": map[string]any{"type": "string", "minLength": 1},
			"back":  map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []any{"front", "back"},
		"additionalProperties": false,
	},
	TypeFillInBlank: {
		"type": "object",
		"properties": map[string]any{
			"text_with_blanks": map[string]any{"type": "string", "minLength": 1},
			"answers": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 1,
			},
			"case_sensitive": map[string]any{"type": "boolean"},
		},
		"required":             []any{"text_with_blanks", "answers"},
		"additionalProperties": false,
	},
	TypeMultipleChoice: {
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 2,
			},
			"correct_indices": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer", "minimum": 0},
				"minItems": 1,
			},
			"allow_multiple": map[string]any{"type": "boolean"},
		},
		"required":             []any{"question", "options", "correct_indices"},
		"additionalProperties": false,
	},
}

// schemaCache caches compiled content schemas by card type.
var schemaCache sync.Map // map[CardType]*jsonschema.Schema

// ValidateContent validates a raw content payload against the schema for
// the given card type, then decodes it. Structural rules the schema cannot
// express (correct_indices in range, answers matching blank count) are
// checked after decoding.
func ValidateContent(t CardType, raw []byte) (Content, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCardType, string(t))
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: invalid JSON: %v", ErrInvalidContent, t, err)
	}

	compiled, err := compiledSchema(t)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", t, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidContent, t, err)
	}

	content, err := UnmarshalContent(t, raw)
	if err != nil {
		return nil, err
	}
	if err := checkContent(content); err != nil {
		return nil, err
	}
	return content, nil
}

// checkContent enforces cross-field rules after schema validation.
func checkContent(c Content) error {
	switch v := c.(type) {
	case FillInBlank:
		if n := v.BlankCount(); n != len(v.Answers) {
			return fmt.Errorf("%w: fill_in_blank: %d blanks but %d answers",
				ErrInvalidContent, n, len(v.Answers))
		}
	case MultipleChoice:
		for _, i := range v.CorrectIndices {
			if i < 0 || i >= len(v.Options) {
				return fmt.Errorf("%w: multiple_choice: correct index %d out of range [0,%d)",
					ErrInvalidContent, i, len(v.Options))
			}
		}
		if !v.AllowMultiple && len(v.CorrectIndices) > 1 {
			return fmt.Errorf("%w: multiple_choice: %d correct indices without allow_multiple",
				ErrInvalidContent, len(v.CorrectIndices))
		}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(t CardType) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value (any), not raw
	// bytes. Marshal then unmarshal to get a clean any representation.
	defBytes, err := json.Marshal(contentSchemas[t])
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", t)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(t, compiled)
	return compiled, nil
}
