// Command synthdbd is SynthDB's server entry point: a cobra CLI wiring
// config.Config, document.Store, catalog.Catalog, query.Engine, and
// transport.Server into a running process.
//
// Grounded on straga-Mimir_lite/nornicdb/cmd/nornicdb/main.go's
// rootCmd/serveCmd shape (flags bound with cmd.Flags().GetX, a single
// RunE that opens the store, builds the server, and blocks on a signal
// channel until shutdown).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/config"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/query"
	"github.com/psymphonic/synthdb/transport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "synthdbd",
		Short: "SynthDB server",
		Long:  "SynthDB is a JSON-native graph database queried over a single PreQL endpoint.",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SynthDB server",
		RunE:  runServe,
	}
	serveCmd.Flags().String("config", "config/server.conf", "path to the server configuration file")
	serveCmd.Flags().Bool("secure", false, "require a matching Api-Key header on every request")
	serveCmd.Flags().Bool("free", false, "enforce per-graph node/link quotas")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	secureFlag, _ := cmd.Flags().GetBool("secure")
	freeFlag, _ := cmd.Flags().GetBool("free")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if secureFlag {
		cfg.Secure = true
	}
	if freeFlag {
		cfg.Free = true
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("opening document store", "data_dir", cfg.DataDir)
	store, err := document.Open(document.Options{DataDir: cfg.DataDir})
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer store.Close()

	sugar.Info("reloading graph catalog")
	cat, err := catalog.Bootstrap(store, logger, cfg.Free)
	if err != nil {
		return fmt.Errorf("bootstrapping catalog: %w", err)
	}
	engine := query.NewEngine(cat, store)

	transportCfg := transport.DefaultConfig()
	transportCfg.ListenAddr = cfg.ListenAddr
	transportCfg.Secure = cfg.Secure
	if cfg.Secure {
		hash, hashErr := transport.LoadAPIKeyHash(cfg.APIKeyFile)
		if hashErr != nil {
			return fmt.Errorf("loading api key: %w", hashErr)
		}
		transportCfg.APIKeyHash = hash
	}

	srv, err := transport.New(engine, transportCfg)
	if err != nil {
		return fmt.Errorf("constructing server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	sugar.Infow("synthdbd listening", "addr", srv.Addr(), "secure", cfg.Secure, "free", cfg.Free)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	sugar.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	sugar.Info("synthdbd stopped")
	return nil
}
