package intent

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// tableSchema is the JSON Schema every intent table document must satisfy
// before semantic validation runs. Keeping the structural rules in a schema
// gives operators a precise error location when a hand-edited YAML file is
// malformed.
const tableSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["intents"],
  "additionalProperties": false,
  "properties": {
    "intents": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "keywords", "reply"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1, "pattern": "^[a-z0-9_]+$"},
          "keywords": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "reply": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var compiledTableSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("intents.schema.json", strings.NewReader(tableSchema)); err != nil {
		panic(fmt.Sprintf("intent: add schema resource: %v", err))
	}
	return c.MustCompile("intents.schema.json")
}

// validateSchema decodes data into a generic document and validates it
// against the intent table schema. YAML decoding into interface{} yields
// string-keyed maps, which the validator accepts directly.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("intent schema: decode: %w", err)
	}
	if err := compiledTableSchema.Validate(doc); err != nil {
		return fmt.Errorf("intent schema: %w", err)
	}
	return nil
}
