package main

import (
	"context"
	"errors"
	"excaliapp/config"
	"excaliapp/handlers/auth"
	"excaliapp/metrics"
	"excaliapp/realtime"
	"excaliapp/stores"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

func setupLogging(cfg config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if cfg.LogFile != "" {
		logrus.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}))
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := setupLogging(cfg); err != nil {
		return err
	}

	introspector, err := auth.NewIntrospector(ctx, cfg.OIDCUserInfoURL, nil)
	if err != nil {
		return err
	}

	repo, closeStore, err := stores.GetStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := realtime.NewHub(introspector, repo)
	defer hub.Close()

	r := setupRouter(routerDeps{
		repo:         repo,
		introspector: introspector,
		metrics:      metrics.New(),
		hub:          hub,
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.Listen).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "excaliapp",
		Short:         "Drawing storage API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")

	var listen, logLevel string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the drawings API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("loglevel") {
				cfg.LogLevel = logLevel
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	serveCmd.Flags().StringVar(&listen, "listen", ":3002", "The address to listen on.")
	serveCmd.Flags().StringVar(&logLevel, "loglevel", "info", "The log level (debug, info, warn, error).")

	root.AddCommand(serveCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
