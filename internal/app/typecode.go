package app

import (
	"context"
	"io"

	"schemalens/internal/shared"
	"schemalens/internal/types"
)

func (s Service) ResolveTypecode(ctx context.Context, req TypecodeRequest) (types.ResolvedCode, error) {
	if err := requireValue(req.ClassName, "class name"); err != nil {
		return types.ResolvedCode{}, err
	}
	schema, err := s.schema(ctx, req.SchemaURL)
	if err != nil {
		return types.ResolvedCode{}, err
	}
	return s.Resolver.Resolve(schema, req.ClassName, s.keySlot(req.SlotName))
}

func (s Service) TypecodeTable(ctx context.Context, req TypecodeTableRequest) (types.CodeTable, error) {
	schema, err := s.schema(ctx, req.SchemaURL)
	if err != nil {
		return types.CodeTable{}, err
	}
	return s.TableBuilder.Build(ctx, schema, s.keySlot(req.SlotName))
}

// ExportTypecodeTable builds the table and writes it as TSV to w.
func (s Service) ExportTypecodeTable(ctx context.Context, req TypecodeTableRequest, w io.Writer) (types.CodeTable, error) {
	table, err := s.TypecodeTable(ctx, req)
	if err != nil {
		return types.CodeTable{}, err
	}
	if err := s.TableWriter.WriteCodeTable(w, table); err != nil {
		return types.CodeTable{}, err
	}
	return table, nil
}

// ExportTypecodeTableFile builds the table and writes it as TSV to path.
func (s Service) ExportTypecodeTableFile(ctx context.Context, req TypecodeTableRequest, path string) (types.CodeTable, error) {
	if err := requireValue(path, "output path"); err != nil {
		return types.CodeTable{}, err
	}
	table, err := s.TypecodeTable(ctx, req)
	if err != nil {
		return types.CodeTable{}, err
	}
	if err := s.TableWriter.WriteCodeTableFile(path, table); err != nil {
		return types.CodeTable{}, err
	}
	return table, nil
}

func (s Service) keySlot(slot string) string {
	return shared.FirstNonEmpty(slot, s.Defaults.KeySlot, DefaultKeySlot)
}
