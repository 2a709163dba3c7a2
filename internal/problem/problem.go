package problem

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
)

const schemaURL = "https://knapsack-trace.local/schema/problem.schema.json"

//go:embed schema/problem.schema.json
var schemaDocument []byte

var (
	// ErrInvalidProblem wraps schema violations and undecodable documents.
	ErrInvalidProblem = errors.New("invalid problem")
	// ErrUnsupportedFormat is returned for problem files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported problem file format")
)

// Format identifies the encoding of a problem document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Problem is a capacity and an ordered item list as supplied by a user.
type Problem struct {
	Name     string          `json:"name,omitempty" yaml:"name" toml:"name"`
	Capacity int             `json:"capacity" yaml:"capacity" toml:"capacity"`
	Items    []knapsack.Item `json:"items" yaml:"items" toml:"items"`
}

// Validator checks problems against the embedded JSON schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the problem schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaDocument)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// DecodeJSON validates a raw JSON document and decodes it.
func (v *Validator) DecodeJSON(data []byte) (Problem, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return Problem{}, fmt.Errorf("%w: parse JSON: %v", ErrInvalidProblem, err)
	}
	if err := v.validateInstance(instance); err != nil {
		return Problem{}, err
	}

	var p Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return Problem{}, fmt.Errorf("%w: decode JSON: %v", ErrInvalidProblem, err)
	}
	return p, nil
}

// Validate checks a problem decoded from any format.
func (v *Validator) Validate(p Problem) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrInvalidProblem, err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: encode: %v", ErrInvalidProblem, err)
	}
	return v.validateInstance(instance)
}

func (v *Validator) validateInstance(instance any) error {
	if err := v.schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidProblem, describe(verr))
		}
		return fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	return nil
}

// describe flattens the deepest schema failures into one line.
func describe(verr *jsonschema.ValidationError) string {
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return strings.Join(msgs, "; ")
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses data in the given format and validates the document as
// written, so keys the Problem type does not know are still rejected.
func (v *Validator) Decode(data []byte, format Format) (Problem, error) {
	var (
		raw   map[string]any
		p     Problem
		parse func(out any) error
	)
	switch format {
	case FormatJSON:
		return v.DecodeJSON(data)
	case FormatYAML:
		parse = func(out any) error { return yaml.Unmarshal(data, out) }
	case FormatTOML:
		parse = func(out any) error {
			_, err := toml.Decode(string(data), out)
			return err
		}
	default:
		return Problem{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := parse(&raw); err != nil {
		return Problem{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidProblem, strings.ToUpper(string(format)), err)
	}
	instance, err := toInstance(raw)
	if err != nil {
		return Problem{}, err
	}
	if err := v.validateInstance(instance); err != nil {
		return Problem{}, err
	}
	if err := parse(&p); err != nil {
		return Problem{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidProblem, strings.ToUpper(string(format)), err)
	}
	return p, nil
}

// toInstance converts a decoded YAML or TOML document into the JSON value
// model the schema validator works on.
func toInstance(raw map[string]any) (any, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrInvalidProblem, err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrInvalidProblem, err)
	}
	return instance, nil
}

// Load reads and validates a problem file.
func (v *Validator) Load(path string) (Problem, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Problem{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, fmt.Errorf("read file: %w", err)
	}
	return v.Decode(data, format)
}
