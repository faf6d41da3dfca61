package types

import "strings"

// DiffKind tags a single structural difference.
type DiffKind string

const (
	DiffKindAdded   DiffKind = "added"
	DiffKindRemoved DiffKind = "removed"
	DiffKindChanged DiffKind = "changed"
)

// DiffEntry is one difference between two JSON-like values.  Path is the
// sequence of object keys and array indices leading to the difference.
type DiffEntry struct {
	Kind DiffKind `json:"kind"`
	Path []string `json:"path"`
	Old  any      `json:"old,omitempty"`
	New  any      `json:"new,omitempty"`
}

// PathString renders Path as "a.b[2].c".
func (e DiffEntry) PathString() string {
	var b strings.Builder
	for _, step := range e.Path {
		if strings.HasPrefix(step, "[") {
			b.WriteString(step)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step)
	}
	return b.String()
}

// ClassSlotComparison lists slots present in only one of two classes.
type ClassSlotComparison struct {
	LeftSchema  string   `json:"left_schema"`
	LeftClass   string   `json:"left_class"`
	RightSchema string   `json:"right_schema"`
	RightClass  string   `json:"right_class"`
	OnlyLeft    []string `json:"only_left"`
	OnlyRight   []string `json:"only_right"`
}
