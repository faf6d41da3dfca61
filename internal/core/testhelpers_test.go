package core

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schemalens/internal/adapters"
	"schemalens/internal/ports"
	"schemalens/internal/types"
)

func boolPtr(value bool) *bool {
	return &value
}

func pattern(syntax string) *types.StructuredPattern {
	return &types.StructuredPattern{Syntax: syntax}
}

// nmdcLikeSchema mirrors the shape of the NMDC identifier hierarchy.
func nmdcLikeSchema() types.SchemaDefinition {
	return types.SchemaDefinition{
		Name: "nmdc_like",
		Settings: map[string]types.Setting{
			"sty":  {SettingKey: "sty", SettingValue: "sty"},
			"acty": {SettingKey: "acty", SettingValue: "acty"},
			"bsm":  {SettingValue: "bsm"},
		},
		Slots: map[string]types.SlotDefinition{
			"id":   {Identifier: boolPtr(true), Range: "uriorcurie"},
			"name": {Range: "string"},
		},
		Classes: map[string]types.ClassDefinition{
			"NamedThing": {Slots: []string{"id", "name"}},
			"Study": {
				IsA: "NamedThing",
				SlotUsage: map[string]types.SlotDefinition{
					"id": {StructuredPattern: pattern("nmdc:{sty}-{id_shoulder}-{id_blade}$")},
				},
			},
			"Biosample": {
				IsA: "NamedThing",
				SlotUsage: map[string]types.SlotDefinition{
					"id": {StructuredPattern: pattern("nmdc:bsm{id_shoulder}")},
				},
			},
			"QuantityValue": {
				Attributes: map[string]types.SlotDefinition{
					"has_unit": {Range: "string"},
				},
			},
		},
	}
}

func newView(schema types.SchemaDefinition) ports.SchemaAccessorPort {
	return adapters.NewSchemaViewAdapter(schema)
}

// stubSchema serves fixed ancestor chains and induced attributes.
type stubSchema struct {
	name       string
	ancestors  map[string][]string
	attributes map[string]map[string]types.SlotDefinition
	settings   map[string]types.Setting
}

func (s stubSchema) SchemaName() string {
	return s.name
}

func (s stubSchema) AllClassNames() []string {
	names := make([]string, 0, len(s.ancestors))
	for name := range s.ancestors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s stubSchema) ClassAncestors(className string) ([]string, error) {
	ancestors, ok := s.ancestors[className]
	if !ok {
		return nil, types.NewFailure(types.ErrorKindClassNotFound, errbuilder.CodeNotFound, "class not defined in schema: "+className, nil)
	}
	return ancestors, nil
}

func (s stubSchema) ClassInducedSlotNames(className string) ([]string, error) {
	var names []string
	for name := range s.attributes[className] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s stubSchema) InducedAttributes(className string) (map[string]types.SlotDefinition, error) {
	return s.attributes[className], nil
}

func (s stubSchema) InducedSlot(slotName string, className string) (types.SlotDefinition, error) {
	slot, ok := s.attributes[className][slotName]
	if !ok {
		return types.SlotDefinition{}, types.NewFailure(types.ErrorKindSlotNotFound, errbuilder.CodeNotFound, slotName, nil)
	}
	return slot, nil
}

func (s stubSchema) GlobalSlot(slotName string) (types.SlotDefinition, error) {
	return types.SlotDefinition{}, types.NewFailure(types.ErrorKindSlotNotFound, errbuilder.CodeNotFound, slotName, nil)
}

func (s stubSchema) Settings() (map[string]types.Setting, bool) {
	return s.settings, s.settings != nil
}

// countingLoader hands out a fresh view per call and counts calls.
type countingLoader struct {
	calls   atomic.Int32
	release chan struct{}
	err     error

	mu      sync.Mutex
	sources []string
}

func (l *countingLoader) LoadSchema(ctx context.Context, sourceID string) (ports.SchemaAccessorPort, error) {
	l.calls.Add(1)
	l.mu.Lock()
	l.sources = append(l.sources, sourceID)
	l.mu.Unlock()
	if l.release != nil {
		select {
		case <-l.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return newView(types.SchemaDefinition{Name: sourceID}), nil
}

// fakeTables serves in-memory tables by source URL.
type fakeTables map[string]types.TabularTable

func (f fakeTables) FetchTable(_ context.Context, sourceID string) (types.TabularTable, error) {
	table, ok := f[sourceID]
	if !ok {
		return types.TabularTable{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeNotFound, "source not found: "+sourceID, nil)
	}
	return table, nil
}
