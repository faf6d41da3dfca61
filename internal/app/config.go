package app

import (
	"time"

	"schemalens/internal/adapters"
	"schemalens/internal/core"
	"schemalens/internal/types"
)

const DefaultSchemaURL = "https://raw.githubusercontent.com/microbiomedata/nmdc-schema/main/src/schema/nmdc.yaml"

const DefaultKeySlot = "id"

const (
	PresetTerms    = "terms"
	PresetPackages = "packages"
)

const mixsSheets = "https://raw.githubusercontent.com/GenomicsStandardsConsortium/mixs/issue-511-tested-schemasheets/schemasheets/tsv_in/"

// Config carries everything NewService needs.  Zero values fall back to
// the defaults of the underlying components.
type Config struct {
	SchemaURL     string
	KeySlot       string
	CacheCapacity int
	LoadTimeout   time.Duration
	Fetch         adapters.FetchConfig
	SkipRows      int
	Presets       map[string]types.TermPreset
}

func DefaultConfig() Config {
	return Config{
		SchemaURL: DefaultSchemaURL,
		KeySlot:   DefaultKeySlot,
		SkipRows:  core.DefaultSkipRows,
		Presets:   DefaultPresets(),
	}
}

// DefaultPresets mirrors the MIxS schemasheets layout: global slot and
// class definitions checked against slot assignments.
func DefaultPresets() map[string]types.TermPreset {
	return map[string]types.TermPreset{
		PresetTerms: {
			Name:             PresetTerms,
			DefinitionURL:    mixsSheets + "MIxS_6_term_updates_global_partial_slotdefs.tsv",
			DefinitionColumn: "SAFE Structured comment name",
			AssignmentURL:    mixsSheets + "MIxS_6_term_updates_slot_assignments_and_usages.tsv",
			AssignmentColumn: "Structured comment name",
		},
		PresetPackages: {
			Name:             PresetPackages,
			DefinitionURL:    mixsSheets + "MIxS_6_term_updates_classdefs.tsv",
			DefinitionColumn: "SAFE checklist",
			AssignmentURL:    mixsSheets + "MIxS_6_term_updates_slot_assignments_and_usages.tsv",
			AssignmentColumn: "class",
		},
	}
}
