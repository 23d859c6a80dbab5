package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"expose/pkg/config"
	"expose/pkg/deps"
	"expose/pkg/logging"
	"expose/pkg/media"
	"expose/pkg/services"
)

// Global flags
var (
	galleryDir string
	logLevel   string
	logFormat  string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "expose",
		Short: "expose turns a folder of photos and videos into a static gallery site",
		Long: `expose walks a directory tree of images, videos and image sequences and
generates a static website with a resolution ladder of every item, one page
per gallery and a shared navigation menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&galleryDir, "dir", "d", "", "gallery root (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newListGalleriesCmd())
	rootCmd.AddCommand(newShowGalleryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newInitConfigCmd())

	return rootCmd
}

// GalleryRoot resolves the --dir flag to an absolute directory
func GalleryRoot() (string, error) {
	dir := galleryDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("gallery root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("gallery root %s is not a directory", abs)
	}
	return abs, nil
}

// LoadConfig loads the gallery configuration from the root given on the command line
func LoadConfig(logger *slog.Logger) (*config.Config, string, error) {
	root, err := GalleryRoot()
	if err != nil {
		return nil, "", err
	}
	cfg, source, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	if source != "" {
		logger.Debug("configuration loaded", "file", source)
	} else {
		logger.Debug("no configuration file, using defaults", "root", root)
	}
	return cfg, root, nil
}

// NewLogger builds the logger selected by the global flags
func NewLogger() (*slog.Logger, error) {
	return logging.New(logging.Options{Level: logLevel, Format: logFormat, Output: os.Stderr})
}

// checkTools runs the dependency check and reports disabled video support
// once for the whole run
func checkTools(logger *slog.Logger) (deps.Report, error) {
	report, err := deps.Check()
	for _, status := range report.Statuses {
		if !status.Available {
			logger.Debug("tool unavailable", "tool", status.Name, "detail", status.Detail, "optional", status.Optional)
		}
	}
	if err != nil {
		return report, err
	}
	warnVideoDisabled(logger, report)
	return report, nil
}

// warnVideoDisabled reports once that video support is off. Sequences are
// still listed as items but nothing can encode them.
func warnVideoDisabled(logger *slog.Logger, report deps.Report) {
	if report.VideoEnabled {
		return
	}
	logger.Warn("ffmpeg or ffprobe not found, video files will be skipped and image sequences will not be encoded")
}

// newCatalog wires the read-only catalog service used by the listing commands
func newCatalog(logger *slog.Logger) (*services.Service, *config.Config, error) {
	cfg, root, err := LoadConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	report, err := checkTools(logger)
	if err != nil {
		return nil, nil, err
	}
	return services.NewService(root, cfg, media.ExecRunner{}, report.VideoEnabled, logger), cfg, nil
}
