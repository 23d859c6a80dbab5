package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"expose/pkg/models"
)

// newListGalleriesCmd creates a new command for listing the navigation tree
func newListGalleriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-galleries",
		Short: "List the navigation tree",
		Long:  `List every directory that becomes part of the site with its depth, kind, url and item count.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listGalleries(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func listGalleries(ctx context.Context, out io.Writer) error {
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

	fmt.Fprintln(out, renderTable(
		[]string{"Depth", "Kind", "Name", "URL", "Items"},
		navigationRows(catalog.Nodes),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))

	galleries := 0
	for _, n := range catalog.Nodes {
		if n.IsGallery() {
			galleries++
		}
	}
	fmt.Fprintf(out, "Total: %d galleries in %d directories\n", galleries, len(catalog.Nodes))
	return nil
}

func navigationRows(nodes []*models.NavNode) [][]string {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		items := "-"
		if n.ItemCount != models.NoItems {
			items = strconv.Itoa(n.ItemCount)
		}
		name := strings.Repeat("  ", n.Depth) + n.Name
		rows = append(rows, []string{strconv.Itoa(n.Depth), n.Kind.String(), name, n.URL, items})
	}
	return rows
}
