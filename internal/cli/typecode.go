package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"schemalens/internal/app"
	"schemalens/internal/types"
)

type typecodeOptions struct {
	Slot string
	JSON bool
}

func newTypecodeCommand() *cobra.Command {
	opts := typecodeOptions{}
	cmd := &cobra.Command{
		Use:   "typecode CLASS",
		Short: "Resolve the identifier typecode of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypecode(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.Slot, "slot", "", "Slot to resolve (defaults to --key-slot)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON")
	return cmd
}

func runTypecode(ctx context.Context, cmd *cobra.Command, className string, opts typecodeOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	resolved, err := service.ResolveTypecode(ctx, app.TypecodeRequest{
		ClassName: className,
		SlotName:  opts.Slot,
	})
	if err != nil {
		return err
	}
	if resolveBool(cmd, opts.JSON, "json", "json") {
		return writeJSON(cmd.OutOrStdout(), resolved)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", resolved.Class, resolved.Ancestor, resolved.Value)
	return nil
}

type typecodeTableOptions struct {
	Slot   string
	Output string
	Format string
}

func newTypecodeTableCommand() *cobra.Command {
	opts := typecodeTableOptions{}
	cmd := &cobra.Command{
		Use:   "typecode-table",
		Short: "Resolve typecodes for every class of a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTypecodeTable(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Slot, "slot", "", "Slot to resolve (defaults to --key-slot)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the table to this path instead of stdout")
	cmd.Flags().StringVar(&opts.Format, "format", "tsv", "Output format (tsv or json)")
	return cmd
}

func runTypecodeTable(ctx context.Context, cmd *cobra.Command, opts typecodeTableOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req := app.TypecodeTableRequest{SlotName: opts.Slot}
	var table types.CodeTable
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); {
	case format == "json":
		table, err = service.TypecodeTable(ctx, req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if opts.Output != "" {
			file, err := os.Create(opts.Output)
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to create output file").
					WithCause(err)
			}
			defer file.Close()
			out = file
		}
		if err := writeJSON(out, table); err != nil {
			return err
		}
	case format == "tsv" && opts.Output != "":
		table, err = service.ExportTypecodeTableFile(ctx, req, opts.Output)
		if err != nil {
			return err
		}
	case format == "tsv":
		table, err = service.ExportTypecodeTable(ctx, req, cmd.OutOrStdout())
		if err != nil {
			return err
		}
	default:
		return types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"unsupported format: "+opts.Format, nil)
	}

	resolved := 0
	for _, row := range table.Rows {
		if row.Typecode != nil {
			resolved++
		}
	}
	event := log.Info().
		Str("schema", table.Schema).
		Str("slot", table.Slot).
		Int("classes", len(table.Rows)).
		Int("resolved", resolved)
	if opts.Output != "" {
		event = event.Str("output", opts.Output)
	}
	event.Msg("typecode table built")
	return nil
}
