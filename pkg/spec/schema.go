package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	reflector "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "threadweaver://config.schema.json"

// Schema returns the JSON Schema document describing Config, reflected from
// the struct tags.
func Schema() ([]byte, error) {
	r := &reflector.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&Config{})
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding config schema: %w", err)
	}
	return b, nil
}

// CompileSchema compiles the reflected schema for validation.
func CompileSchema() (*jsonschema.Schema, error) {
	doc, err := Schema()
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("adding config schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}
	return sch, nil
}

// ValidateDocument checks a raw YAML (or JSON) config document against the
// schema. Unknown keys, wrong types, and out-of-range sliders are rejected.
func ValidateDocument(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing config document: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// Round-trip through JSON so numbers and maps have the shapes the
	// validator expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalizing config document: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(b, &normalized); err != nil {
		return fmt.Errorf("normalizing config document: %w", err)
	}

	sch, err := CompileSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(normalized); err != nil {
		return fmt.Errorf("config document: %w", err)
	}
	return nil
}
