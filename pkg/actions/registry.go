// Package actions declares the static registry of action kinds: which config
// fields each kind accepts, which are required, and how a raw config map
// decodes into its typed form.
package actions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Registry maps action kinds to their configuration schemas. Validation
// happens before dispatch; a missing required field is a configuration
// failure for that action only.
type Registry struct {
	schemas map[models.ActionType]*models.JSONSchema
}

func NewRegistry() *Registry {
	return &Registry{schemas: defaultSchemas()}
}

// Schema returns the configuration schema for an action kind.
func (r *Registry) Schema(actionType models.ActionType) (*models.JSONSchema, bool) {
	schema, ok := r.schemas[actionType]

	return schema, ok
}

// Known reports whether the action kind is registered at all.
func (r *Registry) Known(actionType models.ActionType) bool {
	_, ok := r.schemas[actionType]

	return ok
}

// ValidateConfig checks an action's raw config map against its schema.
func (r *Registry) ValidateConfig(spec models.ActionSpec) error {
	schema, ok := r.schemas[spec.Type]
	if !ok {
		return fmt.Errorf("action type %q not registered", spec.Type)
	}

	config := spec.Config
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config for %s: %w", spec.Type, err)
	}

	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid config for %s: %s", spec.Type, strings.Join(details, "; "))
	}

	return nil
}

// decode round-trips a raw config map into a typed config struct.
func decode(config map[string]any, out any) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode action config: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode action config: %w", err)
	}

	return nil
}
