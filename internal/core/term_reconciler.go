package core

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schemalens/internal/ports"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// DefaultSkipRows is the number of data rows after the header that hold
// sheet metadata rather than terms.
const DefaultSkipRows = 2

// TermReconciler compares the distinct values of one column across two
// tab-separated sources.
type TermReconciler struct {
	Source ports.TabularSourcePort

	// SkipRows data rows following the header are discarded.
	SkipRows int
}

func NewTermReconciler(source ports.TabularSourcePort, skipRows int) TermReconciler {
	if skipRows < 0 {
		skipRows = 0
	}
	return TermReconciler{Source: source, SkipRows: skipRows}
}

// Diff reconciles definitions against assignments.  TermDirectionUnassigned
// returns defined terms missing from the assignments; TermDirectionUndefined
// returns assigned terms missing from the definitions.
func (r TermReconciler) Diff(ctx context.Context, definitions types.TermSource, assignments types.TermSource, direction types.TermDirection) ([]string, error) {
	switch direction {
	case types.TermDirectionUnassigned:
		return r.Difference(ctx, definitions, assignments)
	case types.TermDirectionUndefined:
		return r.Difference(ctx, assignments, definitions)
	default:
		return nil, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"unknown term direction: "+string(direction), nil)
	}
}

// Difference returns the distinct terms of left that right lacks, sorted.
func (r TermReconciler) Difference(ctx context.Context, left types.TermSource, right types.TermSource) ([]string, error) {
	leftTerms, err := r.Terms(ctx, left)
	if err != nil {
		return nil, err
	}
	rightTerms, err := r.Terms(ctx, right)
	if err != nil {
		return nil, err
	}
	diff := shared.Subtract(leftTerms, rightTerms)
	log.Debug().
		Str("left", left.URL).
		Str("right", right.URL).
		Int("left_terms", len(leftTerms)).
		Int("right_terms", len(rightTerms)).
		Int("difference", len(diff)).
		Msg("term sets reconciled")
	return diff, nil
}

// Terms returns the distinct non-empty values of the source's column,
// sorted, after discarding SkipRows leading data rows.
func (r TermReconciler) Terms(ctx context.Context, source types.TermSource) ([]string, error) {
	if r.Source == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("term reconciler requires a tabular source")
	}
	if strings.TrimSpace(source.URL) == "" || source.Column == "" {
		return nil, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"term source url and column are required", nil)
	}
	table, err := r.Source.FetchTable(ctx, source.URL)
	if err != nil {
		if types.KindOf(err) == types.ErrorKindNone {
			return nil, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
				"failed to fetch term source: "+source.URL, err)
		}
		return nil, err
	}
	return ColumnValues(table, source.Column, r.SkipRows)
}

// ColumnValues extracts the distinct values of column from table.
func ColumnValues(table types.TabularTable, column string, skipRows int) ([]string, error) {
	index := -1
	for i, name := range table.Header {
		if name == column {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, types.NewFailure(types.ErrorKindColumnNotFound, errbuilder.CodeNotFound,
			"column not found: "+column, nil)
	}
	rows := table.Rows
	if skipRows > 0 {
		if skipRows >= len(rows) {
			rows = nil
		} else {
			rows = rows[skipRows:]
		}
	}
	values := map[string]struct{}{}
	for _, row := range rows {
		if index >= len(row) || row[index] == "" {
			continue
		}
		values[row[index]] = struct{}{}
	}
	return shared.SortedSet(values), nil
}
