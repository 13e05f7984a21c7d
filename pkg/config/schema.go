package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// experimentSchema is the structural contract for experiment files. Domain
// parameters stay an open object; each game decodes its own.
const experimentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "game", "instances"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "game": {"type": "string", "minLength": 1},
    "instances": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["prompt"],
        "properties": {
          "id": {"type": "integer", "minimum": 0},
          "prompt": {"type": "string", "minLength": 1},
          "params": {"type": "object"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("experiment.schema.json", strings.NewReader(experimentSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("experiment.schema.json")
	})
	return schema, schemaErr
}

func validateExperiment(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	// yaml.v3 decodes mappings as map[string]any, which is what the
	// validator expects.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
