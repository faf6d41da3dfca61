package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"schemalens/internal/app"
)

type slotOptions struct {
	Class string
}

func newSlotCommand() *cobra.Command {
	opts := slotOptions{}
	cmd := &cobra.Command{
		Use:   "slot SLOT",
		Short: "Print a slot's global definition, or its use in --class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlot(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.Class, "class", "", "Resolve the slot in this class's context")
	return cmd
}

func runSlot(ctx context.Context, cmd *cobra.Command, slotName string, opts slotOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	var slot any
	if opts.Class == "" {
		slot, err = service.GlobalSlot(ctx, app.SlotRequest{SlotName: slotName})
	} else {
		slot, err = service.SlotUsage(ctx, app.SlotUsageRequest{SlotName: slotName, ClassName: opts.Class})
	}
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), slot)
}

type slotDriftOptions struct {
	JSON bool
}

func newSlotDriftCommand() *cobra.Command {
	opts := slotDriftOptions{}
	cmd := &cobra.Command{
		Use:   "slot-drift SLOT CLASS",
		Short: "Diff a slot's global definition against its use in a class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlotDrift(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON")
	return cmd
}

func runSlotDrift(ctx context.Context, cmd *cobra.Command, slotName string, className string, opts slotDriftOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	drift, err := service.SlotDrift(ctx, app.SlotUsageRequest{SlotName: slotName, ClassName: className})
	if err != nil {
		return err
	}
	if resolveBool(cmd, opts.JSON, "json", "json") {
		return writeJSON(cmd.OutOrStdout(), drift)
	}
	out := cmd.OutOrStdout()
	if len(drift.Differences) == 0 {
		fmt.Fprintf(out, "%s: %s matches its global definition\n", className, slotName)
		return nil
	}
	for _, entry := range drift.Differences {
		fmt.Fprintf(out, "%s\t%s\t%v\t%v\n", entry.Kind, entry.PathString(), entry.Old, entry.New)
	}
	return nil
}

type compareClassesOptions struct {
	OtherSchema string
	JSON        bool
}

func newCompareClassesCommand() *cobra.Command {
	opts := compareClassesOptions{}
	cmd := &cobra.Command{
		Use:   "compare-classes CLASS OTHER_CLASS",
		Short: "List the slots used by only one of two classes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompareClasses(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.OtherSchema, "other-schema", "", "Schema of OTHER_CLASS (defaults to --schema)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print JSON")
	return cmd
}

func runCompareClasses(ctx context.Context, cmd *cobra.Command, left string, right string, opts compareClassesOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	comparison, err := service.CompareClassSlots(ctx, app.CompareClassesRequest{
		LeftClass:      left,
		RightSchemaURL: opts.OtherSchema,
		RightClass:     right,
	})
	if err != nil {
		return err
	}
	if resolveBool(cmd, opts.JSON, "json", "json") {
		return writeJSON(cmd.OutOrStdout(), comparison)
	}
	out := cmd.OutOrStdout()
	for _, slot := range comparison.OnlyLeft {
		fmt.Fprintf(out, "<\t%s\n", slot)
	}
	for _, slot := range comparison.OnlyRight {
		fmt.Fprintf(out, ">\t%s\n", slot)
	}
	return nil
}
