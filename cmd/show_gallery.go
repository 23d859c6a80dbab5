package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"expose/pkg/models"
)

// newShowGalleryCmd creates a new command for showing the items of one gallery
func newShowGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-gallery [url]",
		Short: "Show the items of a gallery",
		Long:  `Show every item of the gallery with the given url, with its display size and palette.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showGallery(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func showGallery(ctx context.Context, out io.Writer, url string) error {
	logger, err := NewLogger()
	if err != nil {
		return err
	}
	svc, _, err := newCatalog(logger)
	if err != nil {
		return err
	}
	gallery, err := svc.Gallery(ctx, strings.Trim(url, "/"))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Gallery: %s\n", gallery.Name)
	fmt.Fprintf(out, "URL: %s\n", gallery.URL)
	fmt.Fprintf(out, "Items: %d\n", gallery.ItemCount)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Slug", "Kind", "Display", "Palette", "Source"},
		itemRows(gallery.Items),
		[]columnAlignment{alignRight},
	))
	return nil
}

func itemRows(items []*models.GalleryItem) [][]string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.Slug,
			item.Kind.String(),
			fmt.Sprintf("%dx%d", item.DisplayWidth, item.DisplayHeight),
			strings.Join(item.Palette, " "),
			filepath.Base(item.SourceFile),
		})
	}
	return rows
}
