package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/linkpage/internal/config"
	"github.com/conneroisu/linkpage/internal/profile"
	"github.com/conneroisu/linkpage/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the link page",
	Long: `Serve the link page described by the profile file.

The profile is read once at startup; a missing or malformed file stops the
server. While running, edits to the file are picked up automatically and
the cached pages are refreshed.

Examples:
  linkpage serve                          # config.json on localhost:3000
  linkpage serve --dev                    # live reload and settings panel
  linkpage serve --profile site.json -p 8080
  CONFIG_PATH=/srv/site.json PORT=80 linkpage serve --host 0.0.0.0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("profile", profile.DefaultFileName, "Profile configuration file")
	serveCmd.Flags().String("images", "public/images", "Directory served under /images")
	serveCmd.Flags().Bool("dev", false, "Run in development mode")
	serveCmd.Flags().Bool("no-watch", false, "Don't reload the profile when it changes")

	AddFlagValidation(serveCmd, "port", ValidatePort)

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("profile.path", serveCmd.Flags().Lookup("profile"))
	_ = viper.BindPFlag("images.dir", serveCmd.Flags().Lookup("images"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	if dev, _ := cmd.Flags().GetBool("dev"); dev {
		viper.Set("server.environment", config.EnvironmentDevelopment)
	}
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		viper.Set("profile.watch", false)
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	store, err := profile.NewStore(profile.Options{
		Path:     cfg.Profile.Path,
		Watch:    cfg.Profile.Watch,
		Debounce: cfg.Profile.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Config: cfg,
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting LinkPage at http://%s\n", cfg.Address())
	if cfg.Development() {
		fmt.Fprintln(cmd.OutOrStdout(), "Development mode: live reload and settings panel enabled")
	}

	select {
	case err := <-errCh:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
