package core

import (
	"context"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schemalens/internal/ports"
	"schemalens/internal/types"
)

// CodeTableBuilder runs the typecode resolver over every class of a
// schema.
type CodeTableBuilder struct {
	Resolver TypecodeResolver
}

func NewCodeTableBuilder() CodeTableBuilder {
	return CodeTableBuilder{Resolver: NewTypecodeResolver()}
}

// Build returns one row per class, sorted by class name.  A class whose
// resolution fails gets a row without ancestor and typecode; the build
// itself only fails on bad input or cancellation.
func (b CodeTableBuilder) Build(ctx context.Context, schema ports.SchemaAccessorPort, slotName string) (types.CodeTable, error) {
	if schema == nil {
		return types.CodeTable{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"schema is required", nil)
	}
	slotName = strings.TrimSpace(slotName)
	if slotName == "" {
		return types.CodeTable{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"slot name is required", nil)
	}

	classNames := schema.AllClassNames()
	table := types.CodeTable{
		Schema: schema.SchemaName(),
		Slot:   slotName,
		Rows:   make([]types.CodeTableRow, 0, len(classNames)),
	}
	assert.NotEmpty(ctx, table.Slot, "code table slot must be set")
	failed := 0
	for _, className := range classNames {
		if err := ctx.Err(); err != nil {
			return types.CodeTable{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("typecode table build canceled").
				WithCause(err)
		}
		row := types.CodeTableRow{
			Class:       className,
			DefinesSlot: definesSlot(schema, className, slotName),
		}
		resolved, err := b.Resolver.Resolve(schema, className, slotName)
		switch {
		case err == nil:
			ancestor := resolved.Ancestor
			value := resolved.Value
			row.DefinesSlot = true
			row.Ancestor = &ancestor
			row.Typecode = &value
		case types.IsKind(err, types.ErrorKindSlotNotDefinedByHierarchy):
			row.DefinesSlot = false
		default:
			failed++
			log.Debug().
				Str("class", className).
				Str("slot", slotName).
				Str("kind", string(types.KindOf(err))).
				Err(err).
				Msg("typecode resolution failed")
		}
		table.Rows = append(table.Rows, row)
	}
	log.Debug().
		Str("schema", table.Schema).
		Str("slot", slotName).
		Int("rows", len(table.Rows)).
		Int("failed", failed).
		Msg("typecode table built")
	return table, nil
}

func definesSlot(schema ports.SchemaAccessorPort, className string, slotName string) bool {
	attributes, err := schema.InducedAttributes(className)
	if err != nil {
		return false
	}
	_, ok := attributes[slotName]
	return ok
}
