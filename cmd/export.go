package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// newExportCmd creates a new command for exporting the scanned gallery tree
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export gallery data",
		Long:  `Export the navigation tree and every gallery item. Currently supported formats: json.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			return exportData(cmd.Context(), cmd.OutOrStdout(), format)
		},
	}
}

func exportData(ctx context.Context, out io.Writer, format string) error {
	if format != "json" {
		return fmt.Errorf("unsupported export format %q (supported: json)", format)
	}

	logger, err := NewLogger()
	if err != nil {
		return err
	}
	svc, _, err := newCatalog(logger)
	if err != nil {
		return err
	}
	catalog, err := svc.Catalog(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
