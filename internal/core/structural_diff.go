package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// StructuralDiff compares two JSON-like values (maps, slices, scalars,
// nil) and lists additions, removals and changes.  Arrays are compared
// as multisets: elements present on both sides match regardless of
// position, and the rest are reported as removed or added at their own
// side's index.
func StructuralDiff(left any, right any) []types.DiffEntry {
	switch {
	case left == nil && right == nil:
		return nil
	case left == nil:
		return []types.DiffEntry{{Kind: types.DiffKindAdded, Path: []string{}, New: right}}
	case right == nil:
		return []types.DiffEntry{{Kind: types.DiffKindRemoved, Path: []string{}, Old: left}}
	}
	if cmp.Equal(left, right, cmpopts.SortSlices(canonicalLess), cmpopts.EquateEmpty()) {
		return nil
	}
	d := &differ{}
	d.compare([]string{}, left, right)
	return d.entries
}

type differ struct {
	entries []types.DiffEntry
}

func (d *differ) compare(path []string, left any, right any) {
	leftMap, leftIsMap := left.(map[string]any)
	rightMap, rightIsMap := right.(map[string]any)
	if leftIsMap && rightIsMap {
		d.compareMaps(path, leftMap, rightMap)
		return
	}
	leftList, leftIsList := left.([]any)
	rightList, rightIsList := right.([]any)
	if leftIsList && rightIsList {
		d.compareMultisets(path, leftList, rightList)
		return
	}
	if !cmp.Equal(left, right) {
		d.entries = append(d.entries, types.DiffEntry{Kind: types.DiffKindChanged, Path: path, Old: left, New: right})
	}
}

func (d *differ) compareMaps(path []string, left map[string]any, right map[string]any) {
	keys := make(map[string]struct{}, len(left)+len(right))
	for key := range left {
		keys[key] = struct{}{}
	}
	for key := range right {
		keys[key] = struct{}{}
	}
	for _, key := range shared.SortedSet(keys) {
		lv, inLeft := left[key]
		rv, inRight := right[key]
		child := childPath(path, key)
		switch {
		case !inRight:
			d.entries = append(d.entries, types.DiffEntry{Kind: types.DiffKindRemoved, Path: child, Old: lv})
		case !inLeft:
			d.entries = append(d.entries, types.DiffEntry{Kind: types.DiffKindAdded, Path: child, New: rv})
		default:
			d.compare(child, lv, rv)
		}
	}
}

// compareMultisets pairs equal elements by canonical encoding.  Unmatched
// left elements are removals and unmatched right elements are additions.
func (d *differ) compareMultisets(path []string, left []any, right []any) {
	available := map[string]int{}
	for _, value := range right {
		available[canonicalString(value)]++
	}
	leftCounts := map[string]int{}
	for i, value := range left {
		key := canonicalString(value)
		if available[key] > 0 {
			available[key]--
			leftCounts[key]++
			continue
		}
		d.entries = append(d.entries, types.DiffEntry{Kind: types.DiffKindRemoved, Path: childPath(path, indexStep(i)), Old: value})
	}
	for j, value := range right {
		key := canonicalString(value)
		if leftCounts[key] > 0 {
			leftCounts[key]--
			continue
		}
		d.entries = append(d.entries, types.DiffEntry{Kind: types.DiffKindAdded, Path: childPath(path, indexStep(j)), New: value})
	}
}

func childPath(path []string, step string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, step)
}

func indexStep(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// ToValue converts v into its JSON-like form.
func ToValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize value").
			WithCause(err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode serialized value").
			WithCause(err)
	}
	return out, nil
}

// canonicalLess orders arbitrary JSON values by their canonical encoding.
func canonicalLess(x any, y any) bool {
	return canonicalString(x) < canonicalString(y)
}

// canonicalString encodes v so that equal values encode identically:
// object keys are sorted and array elements are sorted by their own
// encoding, making nested arrays compare as multisets too.
func canonicalString(v any) string {
	switch value := v.(type) {
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, canonicalString(item))
		}
		sort.Strings(parts)
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, strconv.Quote(key)+":"+canonicalString(value[key]))
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}
