package adapters

import (
	"maps"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schemalens/internal/ports"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// SchemaViewAdapter implements SchemaAccessorPort over a merged schema
// document.  Induced attribute sets are computed on first use and kept
// for the lifetime of the view.
type SchemaViewAdapter struct {
	schema types.SchemaDefinition

	// classNames is the sorted class list.
	classNames []string

	mu      sync.RWMutex
	induced map[string]map[string]types.SlotDefinition
}

// NewSchemaViewAdapter wraps a schema.  Map keys fill in missing names of
// classes, slots, attributes, and slot_usage entries.
func NewSchemaViewAdapter(schema types.SchemaDefinition) *SchemaViewAdapter {
	normalizeSchemaNames(&schema)
	names := make([]string, 0, len(schema.Classes))
	for name := range schema.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return &SchemaViewAdapter{
		schema:     schema,
		classNames: names,
		induced:    make(map[string]map[string]types.SlotDefinition),
	}
}

// Schema returns the underlying document.
func (a *SchemaViewAdapter) Schema() types.SchemaDefinition {
	return a.schema
}

func (a *SchemaViewAdapter) SchemaName() string {
	return shared.FirstNonEmpty(a.schema.Name, a.schema.ID)
}

func (a *SchemaViewAdapter) AllClassNames() []string {
	return append([]string(nil), a.classNames...)
}

// ClassAncestors walks mixins before is_a, breadth first, so the nearest
// parents come first.  Parents missing from the schema are skipped.
func (a *SchemaViewAdapter) ClassAncestors(className string) ([]string, error) {
	if _, ok := a.schema.Classes[className]; !ok {
		return nil, classNotFound(className)
	}
	var ordered []string
	seen := map[string]struct{}{}
	queue := []string{className}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		class, ok := a.schema.Classes[current]
		if !ok {
			log.Warn().
				Str("class", className).
				Str("parent", current).
				Msg("ancestor not defined in schema")
			continue
		}
		ordered = append(ordered, current)
		queue = append(queue, class.Mixins...)
		if class.IsA != "" {
			queue = append(queue, class.IsA)
		}
	}
	return ordered, nil
}

func (a *SchemaViewAdapter) ClassInducedSlotNames(className string) ([]string, error) {
	ancestors, err := a.ClassAncestors(className)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ancestor := range ancestors {
		class := a.schema.Classes[ancestor]
		names = append(names, class.Slots...)
		names = append(names, sortedSlotKeys(class.Attributes)...)
	}
	return shared.UniqueStrings(names), nil
}

func (a *SchemaViewAdapter) InducedAttributes(className string) (map[string]types.SlotDefinition, error) {
	a.mu.RLock()
	cached, ok := a.induced[className]
	a.mu.RUnlock()
	if ok {
		return maps.Clone(cached), nil
	}

	ancestors, err := a.ClassAncestors(className)
	if err != nil {
		return nil, err
	}
	names, err := a.ClassInducedSlotNames(className)
	if err != nil {
		return nil, err
	}
	attributes := make(map[string]types.SlotDefinition, len(names))
	for _, name := range names {
		slot, err := a.induceSlot(name, ancestors)
		if err != nil {
			return nil, err
		}
		attributes[name] = slot
	}

	a.mu.Lock()
	a.induced[className] = attributes
	a.mu.Unlock()
	return maps.Clone(attributes), nil
}

func (a *SchemaViewAdapter) InducedSlot(slotName string, className string) (types.SlotDefinition, error) {
	names, err := a.ClassInducedSlotNames(className)
	if err != nil {
		return types.SlotDefinition{}, err
	}
	found := false
	for _, name := range names {
		if name == slotName {
			found = true
			break
		}
	}
	if !found {
		return types.SlotDefinition{}, types.NewFailure(types.ErrorKindSlotNotFound, errbuilder.CodeNotFound,
			"class "+className+" does not use slot "+slotName, nil)
	}
	ancestors, err := a.ClassAncestors(className)
	if err != nil {
		return types.SlotDefinition{}, err
	}
	return a.induceSlot(slotName, ancestors)
}

// GlobalSlot prefers the schema-level slots block and falls back to the
// first class attribute of that name, classes taken in name order.
func (a *SchemaViewAdapter) GlobalSlot(slotName string) (types.SlotDefinition, error) {
	if _, ok := a.schema.Slots[slotName]; ok {
		return a.inheritSlot(slotName, map[string]struct{}{}), nil
	}
	for _, className := range a.classNames {
		if attribute, ok := a.schema.Classes[className].Attributes[slotName]; ok {
			return attribute, nil
		}
	}
	return types.SlotDefinition{}, types.NewFailure(types.ErrorKindSlotNotFound, errbuilder.CodeNotFound,
		"slot not defined in schema: "+slotName, nil)
}

func (a *SchemaViewAdapter) Settings() (map[string]types.Setting, bool) {
	if a.schema.Settings == nil {
		return nil, false
	}
	return a.schema.Settings, true
}

// induceSlot builds the slot as seen from ancestors[0].  The base is the
// nearest attribute definition or the global slot; slot_usage entries are
// then layered from the most distant ancestor inwards.
func (a *SchemaViewAdapter) induceSlot(slotName string, ancestors []string) (types.SlotDefinition, error) {
	var base types.SlotDefinition
	found := false
	for _, ancestor := range ancestors {
		if attribute, ok := a.schema.Classes[ancestor].Attributes[slotName]; ok {
			base = attribute
			found = true
			break
		}
	}
	if !found {
		if _, ok := a.schema.Slots[slotName]; !ok {
			return types.SlotDefinition{}, types.NewFailure(types.ErrorKindSlotNotFound, errbuilder.CodeNotFound,
				"slot not defined in schema: "+slotName, nil)
		}
		base = a.inheritSlot(slotName, map[string]struct{}{})
	} else {
		base = a.fillFromParents(base, map[string]struct{}{slotName: {}})
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		usage, ok := a.schema.Classes[ancestors[i]].SlotUsage[slotName]
		if !ok {
			continue
		}
		base = overlaySlot(base, usage)
	}
	base.Name = slotName
	return base, nil
}

// inheritSlot returns the global slot with unset fields filled from its
// mixins and is_a parent.
func (a *SchemaViewAdapter) inheritSlot(slotName string, visiting map[string]struct{}) types.SlotDefinition {
	slot := a.schema.Slots[slotName]
	if _, ok := visiting[slotName]; ok {
		return slot
	}
	visiting[slotName] = struct{}{}
	return a.fillFromParents(slot, visiting)
}

func (a *SchemaViewAdapter) fillFromParents(slot types.SlotDefinition, visiting map[string]struct{}) types.SlotDefinition {
	parents := append([]string(nil), slot.Mixins...)
	if slot.IsA != "" {
		parents = append(parents, slot.IsA)
	}
	for _, parent := range parents {
		if _, ok := a.schema.Slots[parent]; !ok {
			continue
		}
		if _, ok := visiting[parent]; ok {
			continue
		}
		slot = fillUnset(slot, a.inheritSlot(parent, visiting))
	}
	return slot
}

// overlaySlot applies every set field of over onto base.
func overlaySlot(base types.SlotDefinition, over types.SlotDefinition) types.SlotDefinition {
	if over.Description != "" {
		base.Description = over.Description
	}
	if over.IsA != "" {
		base.IsA = over.IsA
	}
	if len(over.Mixins) > 0 {
		base.Mixins = over.Mixins
	}
	if over.Domain != "" {
		base.Domain = over.Domain
	}
	if over.Range != "" {
		base.Range = over.Range
	}
	if over.SlotURI != "" {
		base.SlotURI = over.SlotURI
	}
	if over.Pattern != "" {
		base.Pattern = over.Pattern
	}
	if over.Required != nil {
		base.Required = over.Required
	}
	if over.Recommended != nil {
		base.Recommended = over.Recommended
	}
	if over.Multivalued != nil {
		base.Multivalued = over.Multivalued
	}
	if over.Identifier != nil {
		base.Identifier = over.Identifier
	}
	if len(over.Examples) > 0 {
		base.Examples = over.Examples
	}
	if over.StructuredPattern != nil {
		base.StructuredPattern = over.StructuredPattern
	}
	return base
}

// fillUnset copies inheritable fields of parent into slot where slot
// leaves them unset.  Name, description, slot_uri and lineage stay local.
func fillUnset(slot types.SlotDefinition, parent types.SlotDefinition) types.SlotDefinition {
	if slot.Domain == "" {
		slot.Domain = parent.Domain
	}
	if slot.Range == "" {
		slot.Range = parent.Range
	}
	if slot.Pattern == "" {
		slot.Pattern = parent.Pattern
	}
	if slot.Required == nil {
		slot.Required = parent.Required
	}
	if slot.Recommended == nil {
		slot.Recommended = parent.Recommended
	}
	if slot.Multivalued == nil {
		slot.Multivalued = parent.Multivalued
	}
	if slot.Identifier == nil {
		slot.Identifier = parent.Identifier
	}
	if slot.StructuredPattern == nil {
		slot.StructuredPattern = parent.StructuredPattern
	}
	return slot
}

func normalizeSchemaNames(schema *types.SchemaDefinition) {
	for name, slot := range schema.Slots {
		if slot.Name == "" {
			slot.Name = name
			schema.Slots[name] = slot
		}
	}
	for name, class := range schema.Classes {
		if class.Name == "" {
			class.Name = name
		}
		for slotName, attribute := range class.Attributes {
			if attribute.Name == "" {
				attribute.Name = slotName
				class.Attributes[slotName] = attribute
			}
		}
		for slotName, usage := range class.SlotUsage {
			if usage.Name == "" {
				usage.Name = slotName
				class.SlotUsage[slotName] = usage
			}
		}
		schema.Classes[name] = class
	}
}

func sortedSlotKeys(values map[string]types.SlotDefinition) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func classNotFound(className string) error {
	return types.NewFailure(types.ErrorKindClassNotFound, errbuilder.CodeNotFound,
		"class not defined in schema: "+className, nil)
}

var _ ports.SchemaAccessorPort = (*SchemaViewAdapter)(nil)
