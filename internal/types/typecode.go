package types

// ResolvedCode is the outcome of a successful typecode resolution.
type ResolvedCode struct {
	Class string `json:"class"`
	Slot  string `json:"slot"`

	// Ancestor is the class (possibly Class itself) whose induced slot
	// supplied the structured pattern.
	Ancestor string `json:"from_ancestor"`

	// Name is the short code extracted from the pattern syntax, i.e. the
	// settings key.
	Name string `json:"typecode_name"`

	// Value is the settings entry's setting_value.
	Value string `json:"typecode"`
}

// CodeTableRow is one line of a schema-wide typecode table.  Ancestor and
// Typecode are nil when resolution did not succeed.
type CodeTableRow struct {
	Class       string  `json:"class"`
	DefinesSlot bool    `json:"uses_slot"`
	Ancestor    *string `json:"from_ancestor"`
	Typecode    *string `json:"typecode"`
}

// CodeTable is the ordered result of a table build.
type CodeTable struct {
	Schema string         `json:"schema"`
	Slot   string         `json:"slot"`
	Rows   []CodeTableRow `json:"rows"`
}
