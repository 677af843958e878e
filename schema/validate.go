package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const jsonSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "resourceTypes": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "key"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "table": { "type": "string" },
          "key": { "type": "string", "minLength": 1 },
          "discriminator": { "type": "string" },
          "defaultEagerLoad": { "type": "array", "items": { "type": "string", "minLength": 1 } },
          "properties": {
            "type": "array",
            "items": {
              "type": "object",
              "additionalProperties": false,
              "required": ["name"],
              "properties": {
                "name": { "type": "string", "minLength": 1 },
                "column": { "type": "string" }
              }
            }
          },
          "navigations": {
            "type": "array",
            "items": {
              "type": "object",
              "additionalProperties": false,
              "required": ["name", "target", "foreignKey"],
              "properties": {
                "name": { "type": "string", "minLength": 1 },
                "relation": { "type": "string" },
                "target": { "type": "string", "minLength": 1 },
                "foreignKey": { "type": "string", "minLength": 1 },
                "many": { "type": "boolean" }
              }
            }
          }
        }
      }
    },
    "resourceSets": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "type"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "type": { "type": "string", "minLength": 1 }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(jsonSchema)

// validate checks a decoded schema document before it is mapped onto types.
func validate(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		messages = append(messages, e.String())
	}
	return fmt.Errorf("invalid schema: %s", strings.Join(messages, "; "))
}
