package ports

import (
	"context"

	"schemalens/internal/types"
)

// SchemaAccessorPort answers structural queries over one loaded schema.
//
// Implementations are read-only after construction and safe for
// concurrent use; the same accessor is shared by every request that
// names the same schema source.
type SchemaAccessorPort interface {
	// SchemaName returns the schema's name, falling back to its id.
	SchemaName() string

	// AllClassNames lists every class, sorted ascending.
	AllClassNames() []string

	// ClassAncestors returns the class and its transitive parents,
	// nearest-first with the class itself at position 0.
	ClassAncestors(className string) ([]string, error)

	// ClassInducedSlotNames lists the slots a class uses, including
	// inherited ones, in declaration order.
	ClassInducedSlotNames(className string) ([]string, error)

	// InducedAttributes maps every slot of the class to its definition
	// resolved in the class's context (slot_usage overrides applied).
	InducedAttributes(className string) (map[string]types.SlotDefinition, error)

	// InducedSlot resolves a single slot in the class's context.
	InducedSlot(slotName string, className string) (types.SlotDefinition, error)

	// GlobalSlot returns the schema-level definition of a slot.
	GlobalSlot(slotName string) (types.SlotDefinition, error)

	// Settings returns the settings table and whether the schema has one.
	Settings() (map[string]types.Setting, bool)
}

// SchemaLoaderPort turns a source identifier (URL or path) into a
// queryable schema.  It is called once per cache miss.
type SchemaLoaderPort interface {
	LoadSchema(ctx context.Context, sourceID string) (SchemaAccessorPort, error)
}

// SchemaCachePort hands out shared schema accessors by source identifier.
type SchemaCachePort interface {
	// GetOrLoad returns the cached accessor, loading it on a miss.
	GetOrLoad(ctx context.Context, sourceID string) (SchemaAccessorPort, error)

	// GetIfPresent never loads.
	GetIfPresent(sourceID string) (SchemaAccessorPort, bool)

	// Keys lists the cached source identifiers, sorted.
	Keys() []string
}
