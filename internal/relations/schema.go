package relations

import (
    "encoding/json"
    "fmt"

    "github.com/google/jsonschema-go/jsonschema"
)

// exportSchemaJSON is the JSON Schema for the persisted export artifact.
// Exporters validate serialized documents against it before trusting them on
// the read side.
const exportSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["metadata", "entities", "relationships"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["generatedAt", "totalEntities", "totalRelationships", "exportVersion"],
      "properties": {
        "specTitle": { "type": "string" },
        "specVersion": { "type": "string" },
        "generatedAt": { "type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}(\\.\\d+)?(Z|[+-]\\d{2}:\\d{2})$" },
        "totalEntities": { "type": "integer", "minimum": 0 },
        "totalRelationships": { "type": "integer", "minimum": 0 },
        "exportVersion": { "type": "string", "pattern": "^\\d+\\.\\d+\\.\\d+$" }
      }
    },
    "entities": {
      "type": "object",
      "propertyNames": { "minLength": 1 },
      "additionalProperties": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "endpoints": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["method", "path", "name"],
              "properties": {
                "method": { "type": "string" },
                "path": { "type": "string" },
                "name": { "type": "string" }
              }
            }
          },
          "relationships": { "type": "array", "items": { "$ref": "#/$defs/relationship" } }
        }
      }
    },
    "relationships": { "type": "array", "items": { "$ref": "#/$defs/relationship" } }
  },
  "$defs": {
    "relationship": {
      "type": "object",
      "required": ["sourceEntity", "targetEntity", "type", "confidence", "detectedBy", "evidence"],
      "properties": {
        "sourceEntity": { "type": "string", "minLength": 1 },
        "targetEntity": { "type": "string", "minLength": 1 },
        "type": { "enum": ["hasMany", "hasOne", "belongsTo"] },
        "confidence": { "enum": ["high", "medium", "low"] },
        "detectedBy": {
          "type": "array",
          "minItems": 1,
          "items": { "enum": ["schema_ref", "naming_pattern", "path_pattern"] }
        },
        "evidence": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["source", "location", "details"],
            "properties": {
              "source": { "enum": ["schema_ref", "naming_pattern", "path_pattern"] },
              "location": { "type": "string", "minLength": 1 },
              "details": { "type": "string", "minLength": 1 }
            }
          }
        }
      }
    }
  }
}`

// ValidateExportJSON checks a serialized export document against the embedded
// JSON Schema.
func ValidateExportJSON(data []byte) error {
    var schema jsonschema.Schema
    if err := json.Unmarshal([]byte(exportSchemaJSON), &schema); err != nil {
        return fmt.Errorf("parse export schema: %w", err)
    }
    resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
    if err != nil {
        return fmt.Errorf("resolve export schema: %w", err)
    }
    var doc any
    if err := json.Unmarshal(data, &doc); err != nil {
        return fmt.Errorf("parse export document: %w", err)
    }
    if err := resolved.Validate(doc); err != nil {
        return fmt.Errorf("export document does not match schema: %w", err)
    }
    return nil
}

// MarshalExport serializes an export document with stable formatting. Callers
// must sort entities and relationships before serialization; encoding/json
// already emits map keys in sorted order.
func MarshalExport(exp *Export) ([]byte, error) {
    if exp == nil {
        return nil, fmt.Errorf("nil export")
    }
    return json.MarshalIndent(exp, "", "  ")
}
