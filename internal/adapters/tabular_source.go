package adapters

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schemalens/internal/ports"
	"schemalens/internal/types"
)

// TabularSourceAdapter decodes tab-separated sources with a single
// header row.
type TabularSourceAdapter struct {
	Fetcher ports.FetcherPort
}

func NewTabularSourceAdapter(fetcher ports.FetcherPort) TabularSourceAdapter {
	return TabularSourceAdapter{Fetcher: fetcher}
}

func (a TabularSourceAdapter) FetchTable(ctx context.Context, sourceID string) (types.TabularTable, error) {
	if a.Fetcher == nil {
		return types.TabularTable{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
			"tabular source requires a fetcher", nil)
	}
	data, err := a.Fetcher.Fetch(ctx, sourceID)
	if err != nil {
		return types.TabularTable{}, err
	}
	table, err := ParseTSV(bytes.NewReader(data))
	if err != nil {
		return types.TabularTable{}, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInvalidArgument,
			"failed to parse tabular source: "+sourceID, err)
	}
	return table, nil
}

// ParseTSV reads a header row followed by data rows.  Ragged rows are
// accepted and quotes are treated leniently.
func ParseTSV(r io.Reader) (types.TabularTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return types.TabularTable{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("tabular source is empty")
	}
	if err != nil {
		return types.TabularTable{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	table := types.TabularTable{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.TabularTable{}, err
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

var _ ports.TabularSourcePort = TabularSourceAdapter{}
