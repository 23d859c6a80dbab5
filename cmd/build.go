package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"expose/pkg/media"
	"expose/pkg/progress"
	"expose/pkg/services"
)

// newBuildCmd creates the command that generates the site
func newBuildCmd() *cobra.Command {
	var draft bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the gallery site",
		Long: `Generate the gallery site into the output directory below the gallery root.
Artifacts that already exist are kept, so an interrupted build resumes where
it stopped. Draft mode encodes a single 1024px rung and h264 only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), draft)
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "fast preview build: one resolution, h264 only, no downloads")
	return cmd
}

func runBuild(ctx context.Context, draft bool) error {
	logger, err := NewLogger()
	if err != nil {
		return err
	}
	cfg, root, err := LoadConfig(logger)
	if err != nil {
		return err
	}
	report, err := checkTools(logger)
	if err != nil {
		return err
	}
	if draft {
		cfg.ApplyDraft()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := &services.Generator{
		Root:         root,
		Config:       cfg,
		Runner:       media.ExecRunner{},
		VideoEnabled: report.VideoEnabled,
		Logger:       logger,
		Progress:     progress.New(os.Stderr, logger),
	}
	result, err := gen.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d galleries with %d items into %s in %s\n",
		len(result.Galleries()), len(result.Items), result.SiteDir, result.Duration.Round(time.Millisecond))
	return nil
}
