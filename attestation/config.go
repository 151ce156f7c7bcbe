package attestation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// AttestationConfig drives the verifier. URL is overwritten per subsystem by
// the caller before every verification.
type AttestationConfig struct {
	URL           []string `json:"url"`
	AttestorAddrs []string `json:"attestor_addr,omitempty"`
}

// Clone returns a deep copy so one subsystem's URL override never leaks into another.
func (c AttestationConfig) Clone() AttestationConfig {
	return AttestationConfig{
		URL:           slices.Clone(c.URL),
		AttestorAddrs: slices.Clone(c.AttestorAddrs),
	}
}

var configSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"url": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"attestor_addr": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":    "string",
				"pattern": "^0x[0-9a-fA-F]{40}$",
			},
		},
	},
}

var payloadSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"public_data"},
	"properties": map[string]interface{}{
		"public_data": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"attestor", "attestation", "signature"},
				"properties": map[string]interface{}{
					"attestor":  map[string]interface{}{"type": "string"},
					"signature": map[string]interface{}{"type": "string"},
					"attestation": map[string]interface{}{
						"type":     "object",
						"required": []interface{}{"request"},
						"properties": map[string]interface{}{
							"request": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type":     "object",
									"required": []interface{}{"url"},
									"properties": map[string]interface{}{
										"url": map[string]interface{}{"type": "string"},
									},
								},
							},
							"responseHashes": map[string]interface{}{
								"type":  "array",
								"items": map[string]interface{}{"type": "string"},
							},
						},
					},
				},
			},
		},
		"private_data": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"messages": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}

// Compiled schemas, built on first use
var (
	schemaOnce      sync.Once
	compiledConfig  *gojsonschema.Schema
	compiledPayload *gojsonschema.Schema
	schemaErr       error
)

func schemas() (*gojsonschema.Schema, *gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledConfig, schemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(configSchema))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile config schema: %w", schemaErr)
			return
		}
		compiledPayload, schemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(payloadSchema))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile payload schema: %w", schemaErr)
		}
	})
	return compiledConfig, compiledPayload, schemaErr
}

func validateAgainst(schema *gojsonschema.Schema, doc []byte, what string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%s validation failed: %w", what, err)
	}
	if !result.Valid() {
		var b strings.Builder
		for _, e := range result.Errors() {
			if b.Len() > 0 {
				b.WriteString("; ")
			}
			b.WriteString(e.String())
		}
		return fmt.Errorf("%s validation failed: %s", what, b.String())
	}
	return nil
}

// ParseConfig validates data against the config schema and decodes it.
func ParseConfig(data []byte) (AttestationConfig, error) {
	var cfg AttestationConfig
	configSch, _, err := schemas()
	if err != nil {
		return cfg, err
	}
	if err := validateAgainst(configSch, data, "config"); err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
