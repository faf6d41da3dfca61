package ports

import (
	"io"

	"schemalens/internal/types"
)

// CodeTableWriterPort serializes a typecode table as delimited text.
type CodeTableWriterPort interface {
	WriteCodeTable(w io.Writer, table types.CodeTable) error
	WriteCodeTableFile(path string, table types.CodeTable) error
}
