package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clef-app/clef/internal/catalogue"
	"github.com/clef-app/clef/internal/config"
	"github.com/clef-app/clef/internal/logger"
	"github.com/clef-app/clef/internal/playlist"
	"github.com/clef-app/clef/internal/server"
	"github.com/clef-app/clef/internal/store"
)

var (
	// Version is set at build time
	Version = "dev"

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:     "clef",
		Short:   "Classical music catalogue",
		Long:    `clef keeps a catalogue of composers, works, recordings and tracks, builds part-aware playlists from it, and syncs the catalogue with a remote instance over a small REST API.`,
		Version: Version,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the catalogue sync server",
		RunE:  runServe,
	}

	playlistCmd = &cobra.Command{
		Use:   "playlist <recording-id>...",
		Short: "Print the playlist for one or more recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlaylist,
	}
)

func init() {
	rootCmd.PersistentFlags().String("db", config.DefaultDBPath, "catalogue database file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	serveCmd.Flags().String("port", config.DefaultPort, "listen port")
	serveCmd.Flags().String("sync-token", "", "bearer token required for writes (empty disables writes)")

	config.SetDefaults(v)
	v.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	v.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	v.BindPFlag("sync-token", serveCmd.Flags().Lookup("sync-token"))

	rootCmd.AddCommand(serveCmd, playlistCmd)
}

// openCatalogue builds the shared stack every subcommand needs.
func openCatalogue() (*config.Config, *logger.Logger, *catalogue.Catalogue, func(), error) {
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	cat := catalogue.New(db, log)
	cleanup := func() {
		cat.Close()
		db.Close()
	}
	return cfg, log, cat, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, cat, cleanup, err := openCatalogue()
	if err != nil {
		return err
	}
	defer cleanup()

	h := server.NewHandler(cat, log, cfg.SyncToken)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", h.Router())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	_, log, cat, cleanup, err := openCatalogue()
	if err != nil {
		return err
	}
	defer cleanup()

	selections := make([]playlist.Selection, 0, len(args))
	for _, recordingID := range args {
		selections = append(selections, playlist.Selection{RecordingID: recordingID})
	}

	b := playlist.NewBuilder(cat, log)
	items, err := b.Build(cmd.Context(), selections)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.IsTitle {
			fmt.Printf("%s: %s [%s]\n", item.Composers, item.WorkTitle, item.Performers)
		}
		fmt.Printf("  %s\t%s\n", item.PartTitle, item.Path)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
