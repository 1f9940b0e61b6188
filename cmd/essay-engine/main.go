// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the essay-engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/essay-engine/internal/logging"
	"github.com/pdiddy/essay-engine/internal/secrets"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Store

	// appConfig is the merged configuration: defaults, config file, then
	// ESSAY_ENGINE_* environment variables.
	appConfig types.AppConfig

	logger *slog.Logger
)

// rootCmd is the base command for the essay-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "essay-engine",
	Short: "Generate structured academic essays with an AI writing service",
	Long: `essay-engine turns a task description (and optionally an attached
assignment document) into a structured academic essay with a reference list,
then exports it as a Word-compatible document, an RIS bibliography, BibTeX,
or plain text.

Subcommands: generate runs one generation attempt, export re-renders a saved
essay, serve exposes the same operations over HTTP, and history reads the
attempt journal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&appConfig); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		l, err := logging.New(appConfig.Log, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)

		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./essay-engine.yaml or ~/.config/essay-engine/essay-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("essay-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "essay-engine"))
		}
	}

	viper.SetEnvPrefix("ESSAY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so AutomaticEnv can override keys that the
// config file does not mention.
func setDefaults() {
	viper.SetDefault("ai.provider", string(types.ProviderGemini))
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.max_tokens", 16384)
	viper.SetDefault("ai.thinking_budget", 2048)
	viper.SetDefault("ai.timeout", "5m")

	writing := types.DefaultWritingConfig()
	viper.SetDefault("writing.discipline", writing.Discipline)
	viper.SetDefault("writing.language", writing.Language)

	viper.SetDefault("export.dir", "output")
	viper.SetDefault("export.formats", []string{"doc", "ris"})
	viper.SetDefault("export.labels", "en")

	viper.SetDefault("converter.image", "markitdown:latest")
	viper.SetDefault("journal.path", filepath.Join("output", "journal.db"))

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed_origins", []string{})
	viper.SetDefault("server.max_concurrent", 1)
	viper.SetDefault("server.max_body_bytes", 32<<20)

	viper.SetDefault("metrics_file", "")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
