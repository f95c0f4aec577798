package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lebrely-io/backend/internal/auth"
	"github.com/lebrely-io/backend/internal/config"
	"github.com/lebrely-io/backend/internal/daemon"
	"github.com/lebrely-io/backend/internal/store"
	"github.com/lebrely-io/backend/internal/supabase"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Lebrely backend web service",
	Long: `Start the Lebrely backend web service.

If no config file is specified, the server will look for config files in
the following locations:
  - ./config.yaml
  - ./config/config.yaml

Settings can also be supplied through LEBRELY_ environment variables, e.g.
LEBRELY_SUPABASE_URL and LEBRELY_SUPABASE_KEY.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configFile)
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := store.Open(cfg.Database)
		if err != nil {
			logrus.Fatalf("Failed to open database: %v", err)
		}
		defer store.Close(db)

		users := store.NewUsers(db)
		provider := supabase.NewClient(cfg.Supabase)
		authService := auth.NewService(users, provider)

		server := daemon.NewServer(cfg, authService, users, db)
		if err := server.Start(); err != nil {
			logrus.Fatalf("Failed to start web service: %v", err)
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		server.Stop()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("Failed to execute command: %v", err)
	}
}
