// Package cli implements the selftrack command-line interface.
package cli

import (
	"fmt"

	"github.com/selftrack/internal/config"
	"github.com/selftrack/internal/logger"
	"github.com/spf13/cobra"
)

var jsonOut bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "selftrack",
	Short: "Local-first habit tracker",
	Long: `selftrack keeps habits, daily check-ins, journal notes and mood in a local
SQLite file, and moves the whole state between devices with save files or save keys.

Quick start:
  selftrack serve                 Start the HTTP API
  selftrack export --key          Print a save key
  selftrack import <file|key>     Replace all data from a save file or key
  selftrack stats                 Show streaks and totals`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStatsCmd())
}

// bootstrap 读取配置并构造 App，调用方负责 Sync 日志。
func bootstrap() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	app, err := NewApp(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return app, nil
}
