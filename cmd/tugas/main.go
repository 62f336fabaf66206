// Package main provides the tugas service: it logs into the STIKI
// e-learning portal on behalf of a user and returns their pending tasks,
// either over HTTP or as a one-shot CLI run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/tugas/pkg/browser"
	"github.com/entrhq/tugas/pkg/config"
	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/scraper"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "tugas",
	Short:         "Fetch pending e-learning tasks",
	Long:          `Tugas signs into the e-learning portal with a headless browser and reports the upcoming tasks grouped by due date.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log verbosity: quiet, normal, verbose, debug")

	rootCmd.AddCommand(serveCmd, fetchCmd, installCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Verbosity = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.File != "" {
		return logging.NewFile(cfg.Logging.File, "tugas", cfg.LogLevel())
	}
	return logging.New(os.Stderr, "tugas", cfg.LogLevel()), nil
}

// service bundles the long-lived components shared by serve and fetch.
type service struct {
	manager *browser.SessionManager
	fetcher *scraper.Fetcher
	logger  *logging.Logger
}

// newService starts the browser driver and wires the fetch pipeline.
// Callers must call close.
func newService(cfg *config.Config) (*service, error) {
	// A log file that cannot be opened falls back to stderr with a warning
	logger, _ := newLogger(cfg)

	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.NetworkPolicy()
	if err != nil {
		return nil, err
	}

	manager := browser.NewSessionManager(cfg.BrowserOptions(), policy, logger.With("browser"))
	if err := manager.Initialize(); err != nil {
		logger.Close()
		return nil, err
	}

	return &service{
		manager: manager,
		fetcher: scraper.NewFetcher(manager, target, cfg.SettleDelays(), logger.With("scraper")),
		logger:  logger,
	}, nil
}

func (s *service) close() {
	if err := s.manager.Shutdown(); err != nil {
		s.logger.Warnf("browser shutdown: %v", err)
	}
	stats := s.manager.Stats()
	s.logger.Verbosef("sessions acquired=%d released=%d", stats.Acquired, stats.Released)
	s.logger.Close()
}
