package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"expose/pkg/config"
)

// newInitConfigCmd creates the command that writes a commented sample configuration
func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a sample _config.toml into the gallery root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := GalleryRoot()
			if err != nil {
				return err
			}
			path := filepath.Join(root, config.TOMLFileName)
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
