// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hermannm.dev/devlog"

	"github.com/dsfproto/dsf-core/cmd/dsfctl/internal/config"
)

var (
	cfgFile  string
	logLevel slog.LevelVar
	cfg      *config.Config
)

// rootCmd is dsfctl: a demonstration harness over the dsf-core codec
// library. It mints services, publishes signed pages/data blocks,
// parses and verifies containers, and resolves registry entries —
// none of which is where the codec's own semantics live; this is a
// CLI front-end, not the library.
var rootCmd = &cobra.Command{
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Use:   "dsfctl",
	Short: "Exercise the DSF object codec from the command line",
	Long: `dsfctl mints keyed services, publishes signed primary/secondary
pages and data blocks, parses and verifies received containers, and
resolves registry (name-service) entries against the dsf-core codec.
`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
			return err
		}
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		switch cfg.Log.Level {
		case "debug":
			logLevel.Set(slog.LevelDebug)
		case "warn":
			logLevel.Set(slog.LevelWarn)
		case "error":
			logLevel.Set(slog.LevelError)
		}
		return nil
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a dsfctl config file")
	rootCmd.PersistentFlags().String("log.level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db.dsn", "dsfctl.db", "sqlite DSN backing the durable key store")
}
