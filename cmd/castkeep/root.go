// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads config and wires the store, fetcher, and reconciler for subcommands

package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"castkeep/internal/auth"
	"castkeep/internal/config"
	"castkeep/internal/fetch"
	"castkeep/internal/parse"
	"castkeep/internal/storage"
	"castkeep/internal/sync"
)

var (
	dataDir    string
	adminToken string
	verbose    bool

	cfg        *config.Config
	store      storage.Store
	fetcher    *fetch.Client
	reconciler *sync.Reconciler
	adminCtx   auth.Context
)

var rootCmd = &cobra.Command{
	Use:   "castkeep",
	Short: "Podcast directory with RSS feed syncing",
	Long: `
 ██████╗ █████╗ ███████╗████████╗██╗  ██╗███████╗███████╗██████╗
██╔════╝██╔══██╗██╔════╝╚══██╔══╝██║ ██╔╝██╔════╝██╔════╝██╔══██╗
██║     ███████║███████╗   ██║   █████╔╝ █████╗  █████╗  ██████╔╝
██║     ██╔══██║╚════██║   ██║   ██╔═██╗ ██╔══╝  ██╔══╝  ██╔═══╝
╚██████╗██║  ██║███████║   ██║   ██║  ██╗███████╗███████╗██║
 ╚═════╝╚═╝  ╚═╝╚══════╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝

Track podcast RSS feeds, sync episodes, curate featured picks.

Feeds are fetched directly with a CORS-proxy fallback chain, parsed
across RSS/Atom/iTunes dialects, and reconciled into a local SQLite
directory with deterministic IDs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		store, err = cfg.OpenStore()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		fetcher = fetch.NewClient(cfg.Proxies)
		reconciler = sync.NewReconciler(fetcher, parse.Parse, store)
		reconciler.SetFeedDelay(cfg.GetFeedDelay())

		adminCtx = auth.NewStaticToken(cfg.GetAdminToken(), adminToken)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close store: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.local/share/castkeep)")
	rootCmd.PersistentFlags().StringVar(&adminToken, "token", "", "admin token for destructive operations")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// requireAdmin guards destructive operations behind the admin token.
func requireAdmin() error {
	if !adminCtx.IsAuthorized() {
		return fmt.Errorf("admin token required: set %s or pass --token", config.AdminTokenEnv)
	}
	return nil
}
