package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"schemalens/internal/app"
	"schemalens/internal/types"
)

type termsOptions struct {
	Preset           string
	DefinitionURL    string
	DefinitionColumn string
	AssignmentURL    string
	AssignmentColumn string
	JSON             bool
}

func newTermsCommand() *cobra.Command {
	opts := termsOptions{}
	cmd := &cobra.Command{
		Use:   "terms unassigned|undefined",
		Short: "Reconcile defined terms against assigned terms",
		Long: "unassigned lists defined terms that no assignment uses; " +
			"undefined lists assigned terms without a definition.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.TermDirectionUnassigned), string(types.TermDirectionUndefined)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerms(cmd.Context(), cmd, types.TermDirection(args[0]), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "Preset supplying default sources (terms, packages)")
	cmd.Flags().StringVar(&opts.DefinitionURL, "def-url", "", "Definitions TSV URL or path")
	cmd.Flags().StringVar(&opts.DefinitionColumn, "def-col", "", "Definitions term column")
	cmd.Flags().StringVar(&opts.AssignmentURL, "assign-url", "", "Assignments TSV URL or path")
	cmd.Flags().StringVar(&opts.AssignmentColumn, "assign-col", "", "Assignments term column")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON")
	return cmd
}

func runTerms(ctx context.Context, cmd *cobra.Command, direction types.TermDirection, opts termsOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req := app.TermDiffRequest{
		Preset:           opts.Preset,
		Direction:        direction,
		DefinitionURL:    opts.DefinitionURL,
		DefinitionColumn: opts.DefinitionColumn,
		AssignmentURL:    opts.AssignmentURL,
		AssignmentColumn: opts.AssignmentColumn,
	}
	result, err := service.TermDiff(ctx, req)
	if err != nil {
		return err
	}
	if resolveBool(cmd, opts.JSON, "json", "json") {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	for _, term := range result.Terms {
		fmt.Fprintln(cmd.OutOrStdout(), term)
	}
	return nil
}
