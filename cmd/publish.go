package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"expose/pkg/config"
	"expose/pkg/publish"
)

// newPublishCmd creates the command that uploads the site to Cloud Storage
func newPublishCmd() *cobra.Command {
	var bucket, prefix string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the generated site to Google Cloud Storage",
		Long: `Upload every file of the generated site to a Cloud Storage bucket. Objects
that already exist with the same size are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := config.BucketName(bucket)
			if err != nil {
				return err
			}
			return publishSite(cmd.Context(), name, prefix)
		},
	}
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket name (overrides BUCKET_NAME)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "object name prefix inside the bucket")
	return cmd
}

func publishSite(ctx context.Context, bucketName, prefix string) error {
	logger, err := NewLogger()
	if err != nil {
		return err
	}
	cfg, root, err := LoadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bucket, err := publish.NewGCSBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	defer bucket.Close()

	summary, err := publish.New(bucket, prefix, logger).Publish(ctx, cfg.SiteDir(root))
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %d files (%s), skipped %d, failed %d\n",
		summary.Uploaded, humanize.Bytes(uint64(summary.Bytes)), summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d uploads failed", summary.Failed)
	}
	return nil
}
