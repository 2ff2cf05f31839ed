// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command repomap prints a ranked map of the most relevant definitions in a
// repository, sized to a token budget.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var envKeyReplacer = strings.NewReplacer("-", "_")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "repomap",
		Short: "Ranked, token-budgeted repository map",
		Long: "repomap extracts definitions and references with tree-sitter, ranks files with " +
			"personalized PageRank and prints the most relevant code that fits the token budget.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	// Global flags.
	rootCmd.PersistentFlags().String("root", ".", "Repository root directory")
	rootCmd.PersistentFlags().String("cache-dir", "", "Tags cache directory (default <root>/.repomap.tags.cache.v1)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Keep tags in memory only")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output and debug logging")

	// Bind flags to viper.
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("cache-dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	viper.BindPFlag("no-cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(newMapCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// initConfig loads .env, REPOMAP_* environment variables and the optional
// .repomap.yaml config file.
func initConfig() error {
	_ = godotenv.Load() // .env is optional

	// Env vars: REPOMAP_MAP_TOKENS, REPOMAP_ROOT, etc.
	viper.SetEnvPrefix("REPOMAP")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	viper.SetConfigName(".repomap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// newLogger returns a console logger at debug level when verbose, otherwise
// a logger that discards everything.
func newLogger(verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print repomap version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "repomap %s\n", version)
		},
	}
}
