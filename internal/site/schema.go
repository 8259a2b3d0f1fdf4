package site

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-blog/pkg/storage"
)

// ConfigJSONSchema documents the configuration surface accepted by site
// config files. The engine sections are intentionally permissive; display
// metadata carries the strict shape.
const ConfigJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "SiteConfig",
  "type": "object",
  "required": ["title", "author"],
  "properties": {
    "title": { "type": "string", "minLength": 1 },
    "author": { "type": "string", "minLength": 1 },
    "description": { "type": "string" },
    "avatar": { "type": "string" },
    "avatar_mode": { "type": "string", "enum": ["rounded", "square", "hidden"] },
    "links": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "url"],
        "properties": {
          "title": { "type": "string", "minLength": 1 },
          "url": { "type": "string", "minLength": 1 }
        },
        "additionalProperties": false
      }
    },
    "lang": { "type": "string" },
    "base_url": { "type": "string" },
    "middlewares": {
      "type": "array",
      "items": { "type": "string", "enum": ["request_log", "analytics"] }
    },
    "analytics": {
      "type": "object",
      "properties": {
        "tracking_id": { "type": "string" },
        "provider": { "type": "string" }
      },
      "additionalProperties": false
    },
    "content": { "type": "object" },
    "markdown": { "type": "object" },
    "generator": { "type": "object" },
    "server": { "type": "object" },
    "storage": { "$ref": "blog://storage/config.schema.json" },
    "logging": { "type": "object" },
    "theme": { "type": "object" }
  },
  "additionalProperties": false
}
`

const (
	schemaResource        = "blog://site/config.schema.json"
	storageSchemaResource = "blog://storage/config.schema.json"
)

// ValidateRaw checks a raw JSON config document against ConfigJSONSchema
// before it is unmarshalled, so authors get schema-level diagnostics instead
// of zero-valued structs.
func ValidateRaw(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader([]byte(ConfigJSONSchema))); err != nil {
		return fmt.Errorf("site config schema: %w", err)
	}
	if err := compiler.AddResource(storageSchemaResource, bytes.NewReader([]byte(storage.ConfigJSONSchema))); err != nil {
		return fmt.Errorf("storage config schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return fmt.Errorf("site config schema compile: %w", err)
	}

	var payload any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return fmt.Errorf("site config decode: %w", err)
	}

	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("site config invalid: %w", err)
	}
	return nil
}
