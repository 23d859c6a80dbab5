package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"expose/pkg/config"
	"expose/pkg/handlers"
)

// newServeCmd creates a new command for previewing the generated site
func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the generated site",
		Long: `Serve the generated site over HTTP. /_galleries lists every gallery page,
/_galleries.json returns the same list as JSON and /metrics exposes the
build counters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveWebsite(cmd.Context(), config.Port(port))
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT, default 8080)")
	return cmd
}

// serveWebsite runs the preview server until interrupted
func serveWebsite(ctx context.Context, port string) error {
	logger, err := NewLogger()
	if err != nil {
		return err
	}
	svc, cfg, err := newCatalog(logger)
	if err != nil {
		return err
	}
	root, err := GalleryRoot()
	if err != nil {
		return err
	}

	siteDir := cfg.SiteDir(root)
	if _, err := os.Stat(siteDir); err != nil {
		logger.Warn("site directory missing, run build first", "dir", siteDir)
	}

	h, err := handlers.New(siteDir, cfg.SiteTitle, svc, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              config.ServerAddress(port),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", "error", err)
		}
	}()

	fmt.Printf("Starting server at port %s\n", port)
	fmt.Printf("Site URL: http://localhost:%s/\n", port)
	fmt.Printf("Gallery index: http://localhost:%s/_galleries\n", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
