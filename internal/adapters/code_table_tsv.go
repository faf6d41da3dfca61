package adapters

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schemalens/internal/ports"
	"schemalens/internal/types"
)

// CodeTableTSVAdapter writes typecode tables as tab-separated text with
// the columns class, uses_<slot>, from_ancestor, typecode.
type CodeTableTSVAdapter struct{}

func NewCodeTableTSVAdapter() CodeTableTSVAdapter {
	return CodeTableTSVAdapter{}
}

func (a CodeTableTSVAdapter) WriteCodeTable(w io.Writer, table types.CodeTable) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write(CodeTableHeader(table.Slot)); err != nil {
		return writeFailure(err)
	}
	for _, row := range table.Rows {
		record := []string{
			row.Class,
			strconv.FormatBool(row.DefinesSlot),
			optional(row.Ancestor),
			optional(row.Typecode),
		}
		if err := writer.Write(record); err != nil {
			return writeFailure(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return writeFailure(err)
	}
	return nil
}

func (a CodeTableTSVAdapter) WriteCodeTableFile(path string, table types.CodeTable) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	file, err := os.Create(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create typecode table file").
			WithCause(err)
	}
	if err := a.WriteCodeTable(file, table); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return writeFailure(err)
	}
	return nil
}

// CodeTableHeader returns the header row for a table keyed on slot.
func CodeTableHeader(slot string) []string {
	return []string{"class", "uses_" + slot, "from_ancestor", "typecode"}
}

func optional(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func writeFailure(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to write typecode table").
		WithCause(err)
}

var _ ports.CodeTableWriterPort = CodeTableTSVAdapter{}
