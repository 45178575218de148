package content

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// packSchema validates content packs before any pair reaches a session.
var packSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1},
		"gept_level": map[string]any{
			"type": "string",
			"enum": []any{"elementary", "intermediate", "high-intermediate"},
		},
		"pairs": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":    map[string]any{"type": "string", "minLength": 1},
					"left":  itemSchema,
					"right": itemSchema,
				},
				"required":             []any{"id", "left", "right"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"name", "pairs"},
	"additionalProperties": false,
}

var itemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":      map[string]any{"type": "string", "minLength": 1},
		"kind":    map[string]any{"type": "string", "enum": []any{"text", "image", "audio"}},
		"content": map[string]any{"type": "string", "minLength": 1},
		"display_text": map[string]any{"type": "string"},
		"gept_level": map[string]any{
			"type": "string",
			"enum": []any{"elementary", "intermediate", "high-intermediate"},
		},
	},
	"required":             []any{"id", "kind", "content"},
	"additionalProperties": false,
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validatePack checks raw pack JSON against the embedded schema.
func validatePack(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledPackSchema()
	if err != nil {
		return fmt.Errorf("compile pack schema: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledPackSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value (any), not
		// raw bytes. Marshal then unmarshal to get a clean representation.
		defBytes, err := json.Marshal(packSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://content-pack.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}
