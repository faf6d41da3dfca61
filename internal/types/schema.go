package types

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaDefinition is the top-level structure of a LinkML-style schema
// document.  Only the parts needed for structural queries are modelled;
// unknown keys are ignored by the decoder.
//
// Multiple documents can be merged through Imports: the importing
// document wins on a per-name basis.
type SchemaDefinition struct {
	// ID is the schema URI, e.g. "https://w3id.org/nmdc/nmdc".
	ID string `yaml:"id" json:"id,omitempty"`

	// Name is the short schema name used in reports.
	Name string `yaml:"name" json:"name,omitempty"`

	Version       string `yaml:"version,omitempty" json:"version,omitempty"`
	DefaultPrefix string `yaml:"default_prefix,omitempty" json:"default_prefix,omitempty"`

	// Imports lists other schema documents.  Entries with a "linkml:"
	// prefix refer to the metamodel and are never fetched.
	Imports []string `yaml:"imports,omitempty" json:"imports,omitempty"`

	// Settings maps a setting name (typically a short typecode) to its
	// record.  A nil map means the document carries no settings block.
	Settings map[string]Setting `yaml:"settings,omitempty" json:"settings,omitempty"`

	Slots   map[string]SlotDefinition  `yaml:"slots,omitempty" json:"slots,omitempty"`
	Classes map[string]ClassDefinition `yaml:"classes,omitempty" json:"classes,omitempty"`
}

// ClassDefinition describes one class of the schema.
type ClassDefinition struct {
	Name        string `yaml:"name,omitempty" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	ClassURI    string `yaml:"class_uri,omitempty" json:"class_uri,omitempty"`

	// IsA names the single parent class.
	IsA string `yaml:"is_a,omitempty" json:"is_a,omitempty"`

	// Mixins are additional parents; they are visited before IsA when
	// computing ancestors.
	Mixins   []string `yaml:"mixins,omitempty" json:"mixins,omitempty"`
	Abstract bool     `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Mixin    bool     `yaml:"mixin,omitempty" json:"mixin,omitempty"`

	// Slots references globally defined slots by name.
	Slots []string `yaml:"slots,omitempty" json:"slots,omitempty"`

	// Attributes are slots defined inline on the class.
	Attributes map[string]SlotDefinition `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	// SlotUsage refines inherited slots in the context of this class.
	SlotUsage map[string]SlotDefinition `yaml:"slot_usage,omitempty" json:"slot_usage,omitempty"`
}

// SlotDefinition describes a slot globally, as a class attribute, or as a
// slot_usage refinement.  Optional scalars are pointers so a refinement
// can tell "unset" apart from "false".
type SlotDefinition struct {
	Name        string        `yaml:"name,omitempty" json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	IsA         string        `yaml:"is_a,omitempty" json:"is_a,omitempty"`
	Mixins      []string      `yaml:"mixins,omitempty" json:"mixins,omitempty"`
	Domain      string        `yaml:"domain,omitempty" json:"domain,omitempty"`
	Range       string        `yaml:"range,omitempty" json:"range,omitempty"`
	SlotURI     string        `yaml:"slot_uri,omitempty" json:"slot_uri,omitempty"`
	Pattern     string        `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Required    *bool         `yaml:"required,omitempty" json:"required,omitempty"`
	Recommended *bool         `yaml:"recommended,omitempty" json:"recommended,omitempty"`
	Multivalued *bool         `yaml:"multivalued,omitempty" json:"multivalued,omitempty"`
	Identifier  *bool         `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	Examples    []SlotExample `yaml:"examples,omitempty" json:"examples,omitempty"`

	// StructuredPattern carries the identifier template, if any.
	StructuredPattern *StructuredPattern `yaml:"structured_pattern,omitempty" json:"structured_pattern,omitempty"`
}

// SlotExample is one example value attached to a slot.
type SlotExample struct {
	Value       string `yaml:"value,omitempty" json:"value,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// StructuredPattern is a slot annotation holding a syntax template such as
// "nmdc:{sty}-{id_shoulder}-{id_blade}$".
type StructuredPattern struct {
	Syntax       string `yaml:"syntax,omitempty" json:"syntax,omitempty"`
	Interpolated *bool  `yaml:"interpolated,omitempty" json:"interpolated,omitempty"`
	PartialMatch *bool  `yaml:"partial_match,omitempty" json:"partial_match,omitempty"`
}

// Setting is one entry of a schema settings block.  The YAML form may be
// either a full record or a bare scalar, in which case the scalar is the
// setting value.
type Setting struct {
	SettingKey   string `yaml:"setting_key,omitempty" json:"setting_key,omitempty"`
	SettingValue string `yaml:"setting_value" json:"setting_value"`
}

// UnmarshalYAML accepts both "sty: sty" and "sty: {setting_value: sty}".
func (s *Setting) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.SettingValue = strings.TrimSpace(node.Value)
		return nil
	}
	type plain Setting
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*s = Setting(decoded)
	return nil
}
