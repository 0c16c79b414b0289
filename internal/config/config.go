// Package config loads and validates deployops.yaml.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/netra/deployops/internal/errors"
	"github.com/netra/deployops/internal/logging"
)

// Config holds the runtime configuration.
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the deployops.yaml structure.
type Definition struct {
	Version        int                    `yaml:"version" json:"version"`
	Project        string                 `yaml:"project" json:"project"`
	Region         string                 `yaml:"region" json:"region"`
	Environment    string                 `yaml:"environment" json:"environment"`
	ServiceAccount string                 `yaml:"serviceAccount" json:"serviceAccount"`
	ImageRepo      string                 `yaml:"imageRepo" json:"imageRepo"`
	Services       map[string]ServiceSpec `yaml:"services" json:"services"`
}

// ServiceSpec holds per-service deployment settings.
type ServiceSpec struct {
	Port                 int    `yaml:"port,omitempty" json:"port,omitempty"`
	Memory               string `yaml:"memory,omitempty" json:"memory,omitempty"`
	Source               string `yaml:"source,omitempty" json:"source,omitempty"`
	Dockerfile           string `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty"`
	AlpineDockerfile     string `yaml:"alpineDockerfile,omitempty" json:"alpineDockerfile,omitempty"`
	AllowUnauthenticated bool   `yaml:"allowUnauthenticated,omitempty" json:"allowUnauthenticated,omitempty"`
}

// definitionSchema is the JSON schema deployops.yaml must satisfy. Kept
// embedded so a stale schema file can never drift from the loader.
const definitionSchema = `{
	"type": "object",
	"required": ["version", "environment", "services"],
	"properties": {
		"version": {"type": "integer", "enum": [1]},
		"project": {"type": "string", "minLength": 1},
		"region": {"type": "string", "minLength": 1},
		"environment": {"type": "string", "minLength": 1},
		"serviceAccount": {"type": "string"},
		"imageRepo": {"type": "string"},
		"services": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"port": {"type": "integer", "minimum": 1, "maximum": 65535},
					"memory": {"type": "string"},
					"source": {"type": "string"},
					"dockerfile": {"type": "string"},
					"alpineDockerfile": {"type": "string"},
					"allowUnauthenticated": {"type": "boolean"}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

// Load reads and parses the deployops.yaml file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create a deployops.yaml next to your services, or pass --config",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	// Schema-validate the raw document, not the parsed struct, so
	// misspelled keys are rejected instead of silently dropped.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if err := validateSchema(raw); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	c.Definition = &def
	return nil
}

// validateSchema checks the raw document against the embedded schema.
func validateSchema(raw map[string]any) error {
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(definitionSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return dserrors.ConfigError{
			Message:    "deployops.yaml failed schema validation:\n  - " + strings.Join(messages, "\n  - "),
			Suggestion: "Compare your file against the documented deployops.yaml format",
		}
	}

	return nil
}

// Service returns the spec for a named service.
func (c *Config) Service(name string) (ServiceSpec, error) {
	if c.Definition == nil {
		return ServiceSpec{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	spec, ok := c.Definition.Services[name]
	if !ok {
		return ServiceSpec{}, dserrors.ConfigError{
			Field:      "services",
			Value:      name,
			Message:    "service is not defined",
			Suggestion: fmt.Sprintf("Known services: %s", strings.Join(c.ServiceNames(), ", ")),
		}
	}
	return spec, nil
}

// ServiceNames returns the configured service names, sorted.
func (c *Config) ServiceNames() []string {
	if c.Definition == nil {
		return nil
	}
	names := make([]string, 0, len(c.Definition.Services))
	for name := range c.Definition.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImageTag builds the image reference for a service.
func (c *Config) ImageTag(service string) string {
	repo := c.Definition.ImageRepo
	if repo == "" {
		repo = "gcr.io/" + c.Definition.Project
	}
	return fmt.Sprintf("%s/%s:latest", repo, service)
}
