package app

import "schemalens/internal/types"

type TypecodeRequest struct {
	SchemaURL string
	ClassName string
	SlotName  string
}

type TypecodeTableRequest struct {
	SchemaURL string
	SlotName  string
}

type SlotRequest struct {
	SchemaURL string
	SlotName  string
}

type SlotUsageRequest struct {
	SchemaURL string
	SlotName  string
	ClassName string
}

type SlotDriftResult struct {
	Schema      string            `json:"schema"`
	SlotName    string            `json:"slot"`
	ClassName   string            `json:"class"`
	Differences []types.DiffEntry `json:"differences"`
}

type CompareClassesRequest struct {
	LeftSchemaURL  string
	LeftClass      string
	RightSchemaURL string
	RightClass     string
}

type TermDiffRequest struct {
	// Preset names a default set of sources and columns; fields set on
	// the request take precedence.
	Preset           string
	Direction        types.TermDirection
	DefinitionURL    string
	DefinitionColumn string
	AssignmentURL    string
	AssignmentColumn string

	// SkipRows overrides the configured number of metadata rows when
	// non-nil.
	SkipRows *int
}

type TermDiffResult struct {
	Direction  types.TermDirection `json:"direction"`
	Definition types.TermSource    `json:"definition"`
	Assignment types.TermSource    `json:"assignment"`
	Terms      []string            `json:"terms"`
}
