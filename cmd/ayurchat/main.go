// Command ayurchat is a terminal client for the AyurWell chat proxy. It signs
// the user in, keeps the conversation on disk and streams replies as they
// arrive.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ayurwell-backend/internal/auth"
	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/storage"
	"ayurwell-backend/pkg/logger"
)

// app holds what every subcommand shares. It is filled in by setup.
type app struct {
	cfg      *config.Config
	store    storage.Store
	identity *auth.GoTrue
	sessions *auth.SessionStore
}

var (
	configPath string
	current    app

	rootCmd = &cobra.Command{
		Use:               "ayurchat",
		Short:             "Chat with the Ayurvedic wellness advisor from your terminal",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if current.store != nil {
				current.store.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "config file path")

	rootCmd.AddCommand(loginCmd, signupCmd, resetCmd, magicLinkCmd, oauthCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(chatCmd, historyCmd, clearCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	// stdout belongs to the conversation
	logger.SetOutput(os.Stderr)

	current.cfg = cfg
	current.store = storage.New(cfg.Client.StorageType, cfg.Client.DataDir)
	current.identity = auth.NewGoTrue(cfg.Auth.URL, cfg.Auth.AnonKey, cfg.Auth.Timeout)
	current.sessions = auth.NewSessionStore(current.store, cfg.Client.SessionKey, current.identity)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
