// Package main provides the taberu CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/config"
	"github.com/hyperjump/taberu/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/taberu/config.yaml"

var (
	// configFile is set by the --config flag.
	configFile string
	// debugFlag is set by the --debug flag.
	debugFlag bool
	// outputFlag is set by the --output flag.
	outputFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taberu",
	Short: "Taberu is a food logging tool",
	Long: `Taberu logs what you eat. Products are looked up by barcode or name in
Open Food Facts, entered by hand, or imported in bulk, and every logged,
favorited or added food is kept in a local catalog for offline search.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "text", "output format: text, compact or json")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(forgetCmd)
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config is not an error: the defaults apply. A .env file next
// to the loaded config, or in the current directory, and TABERU_* variables
// override the result. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := readConfig(path)
	if err != nil {
		return nil, "", err
	}
	envFile := ".env"
	if resolved != "" {
		if candidate := filepath.Join(filepath.Dir(resolved), ".env"); fileExists(candidate) {
			envFile = candidate
		}
	}
	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func readConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if fileExists(fallback) {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if !fileExists(path) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setup loads the config and logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	debug := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))
	return cfg, logger, nil
}

// withComponents runs fn with initialized components and closes them after.
func withComponents(fn func(c *Components) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func outputFormat() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(outputFlag)
}

var errCancelled = errors.New("cancelled")
