package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schemalens/internal/core"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// TermDiff reconciles a definitions sheet against an assignments sheet.
func (s Service) TermDiff(ctx context.Context, req TermDiffRequest) (TermDiffResult, error) {
	preset := types.TermPreset{}
	if name := strings.TrimSpace(req.Preset); name != "" {
		found, ok := s.Presets[name]
		if !ok {
			return TermDiffResult{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
				"unknown term preset: "+name, nil)
		}
		preset = found
	}
	definition := types.TermSource{
		URL:    shared.FirstNonEmpty(req.DefinitionURL, preset.DefinitionURL),
		Column: shared.FirstNonEmpty(req.DefinitionColumn, preset.DefinitionColumn),
	}
	assignment := types.TermSource{
		URL:    shared.FirstNonEmpty(req.AssignmentURL, preset.AssignmentURL),
		Column: shared.FirstNonEmpty(req.AssignmentColumn, preset.AssignmentColumn),
	}
	if definition.URL == "" || definition.Column == "" {
		return TermDiffResult{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"definition file url and term column are required", nil)
	}
	if assignment.URL == "" || assignment.Column == "" {
		return TermDiffResult{}, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"assignment file url and term column are required", nil)
	}
	if s.Tables == nil {
		return TermDiffResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("service has no tabular source")
	}

	skip := s.Defaults.SkipRows
	if req.SkipRows != nil {
		skip = *req.SkipRows
	}
	direction := req.Direction
	if direction == "" {
		direction = types.TermDirectionUnassigned
	}
	reconciler := core.NewTermReconciler(s.Tables, skip)
	terms, err := reconciler.Diff(ctx, definition, assignment, direction)
	if err != nil {
		return TermDiffResult{}, err
	}
	return TermDiffResult{
		Direction:  direction,
		Definition: definition,
		Assignment: assignment,
		Terms:      terms,
	}, nil
}
