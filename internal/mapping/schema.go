package mapping

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema validates the on-disk mapping shape. Hand-edited
// documents are the expected case, so errors carry the offending field.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["old_path", "new_path", "old_relative", "new_relative", "category", "new_name"],
    "properties": {
      "old_path": {"type": "string", "pattern": "^/"},
      "new_path": {"type": "string", "pattern": "^/"},
      "old_relative": {"type": "string", "minLength": 1},
      "new_relative": {"type": "string", "minLength": 1},
      "category": {
        "enum": ["favicon", "logo", "icon", "screenshot", "graphic", "photo", "stylesheet", "script", "other"]
      },
      "new_name": {"type": "string", "minLength": 1}
    },
    "additionalProperties": false
  }
}`

var compiledSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		panic(fmt.Sprintf("mapping schema does not compile: %v", err))
	}
	compiledSchema = schema
}

// validateSchema checks the entry map against the document schema.
func validateSchema(entries map[string]Entry) error {
	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(entries))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("invalid mapping document: %s: %s", first.Field(), first.Description())
	}
	return nil
}
