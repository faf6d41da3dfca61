package app

import (
	"context"

	"schemalens/internal/core"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// GlobalSlot returns the schema-level slot definition in JSON-like form.
func (s Service) GlobalSlot(ctx context.Context, req SlotRequest) (any, error) {
	if err := requireValue(req.SlotName, "slot name"); err != nil {
		return nil, err
	}
	schema, err := s.schema(ctx, req.SchemaURL)
	if err != nil {
		return nil, err
	}
	slot, err := schema.GlobalSlot(req.SlotName)
	if err != nil {
		return nil, err
	}
	return core.ToValue(slot)
}

// SlotUsage returns the slot as induced in the class, in JSON-like form.
func (s Service) SlotUsage(ctx context.Context, req SlotUsageRequest) (any, error) {
	if err := requireValue(req.SlotName, "slot name"); err != nil {
		return nil, err
	}
	if err := requireValue(req.ClassName, "class name"); err != nil {
		return nil, err
	}
	schema, err := s.schema(ctx, req.SchemaURL)
	if err != nil {
		return nil, err
	}
	slot, err := schema.InducedSlot(req.SlotName, req.ClassName)
	if err != nil {
		return nil, err
	}
	return core.ToValue(slot)
}

// SlotDrift diffs a slot's global definition against its use in a class.
func (s Service) SlotDrift(ctx context.Context, req SlotUsageRequest) (SlotDriftResult, error) {
	global, err := s.GlobalSlot(ctx, SlotRequest{SchemaURL: req.SchemaURL, SlotName: req.SlotName})
	if err != nil {
		return SlotDriftResult{}, err
	}
	usage, err := s.SlotUsage(ctx, req)
	if err != nil {
		return SlotDriftResult{}, err
	}
	schema, err := s.schema(ctx, req.SchemaURL)
	if err != nil {
		return SlotDriftResult{}, err
	}
	differences := core.StructuralDiff(global, usage)
	if differences == nil {
		differences = []types.DiffEntry{}
	}
	return SlotDriftResult{
		Schema:      schema.SchemaName(),
		SlotName:    req.SlotName,
		ClassName:   req.ClassName,
		Differences: differences,
	}, nil
}

// CompareClassSlots lists the induced slots found in only one of two
// classes, possibly from different schemas.
func (s Service) CompareClassSlots(ctx context.Context, req CompareClassesRequest) (types.ClassSlotComparison, error) {
	if err := requireValue(req.LeftClass, "first class name"); err != nil {
		return types.ClassSlotComparison{}, err
	}
	if err := requireValue(req.RightClass, "second class name"); err != nil {
		return types.ClassSlotComparison{}, err
	}
	left, err := s.schema(ctx, req.LeftSchemaURL)
	if err != nil {
		return types.ClassSlotComparison{}, err
	}
	right, err := s.schema(ctx, req.RightSchemaURL)
	if err != nil {
		return types.ClassSlotComparison{}, err
	}
	leftSlots, err := left.ClassInducedSlotNames(req.LeftClass)
	if err != nil {
		return types.ClassSlotComparison{}, err
	}
	rightSlots, err := right.ClassInducedSlotNames(req.RightClass)
	if err != nil {
		return types.ClassSlotComparison{}, err
	}
	return types.ClassSlotComparison{
		LeftSchema:  left.SchemaName(),
		LeftClass:   req.LeftClass,
		RightSchema: right.SchemaName(),
		RightClass:  req.RightClass,
		OnlyLeft:    shared.Subtract(leftSlots, rightSlots),
		OnlyRight:   shared.Subtract(rightSlots, leftSlots),
	}, nil
}
