package types

// TermSource points at one column of a tab-separated file.
type TermSource struct {
	URL    string `json:"url"`
	Column string `json:"column"`
}

// TermDirection selects which operand of a reconciliation is subtracted.
type TermDirection string

const (
	// TermDirectionUnassigned yields defined terms that no assignment uses.
	TermDirectionUnassigned TermDirection = "unassigned"

	// TermDirectionUndefined yields assigned terms that have no definition.
	TermDirectionUndefined TermDirection = "undefined"
)

// TermPreset bundles default sources and columns for a recurring
// reconciliation, such as MIxS term or package sheets.
type TermPreset struct {
	Name             string `mapstructure:"name" json:"name"`
	DefinitionURL    string `mapstructure:"definition_url" json:"definition_url"`
	DefinitionColumn string `mapstructure:"definition_column" json:"definition_column"`
	AssignmentURL    string `mapstructure:"assignment_url" json:"assignment_url"`
	AssignmentColumn string `mapstructure:"assignment_column" json:"assignment_column"`
}

// TabularTable is a decoded delimited file: one header row plus data rows.
type TabularTable struct {
	Header []string
	Rows   [][]string
}
