// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package config loads dsfctl's configuration via viper, following the
// teacher's FDOServerConfig / DatabaseConfig pattern (cmd/config.go):
// a struct tagged with mapstructure tags, unmarshalled from whatever
// viper has bound (flags, env, and an optional config file).
package config

import (
	"errors"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// LogConfig controls the slog/devlog handler level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig configures the gorm-backed key store dsfctl uses to
// durably remember peers' public keys between invocations.
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // "sqlite" is the only backend wired
	DSN  string `mapstructure:"dsn"`
}

// Config is the top-level dsfctl configuration document.
type Config struct {
	Log LogConfig      `mapstructure:"log"`
	DB  DatabaseConfig `mapstructure:"db"`
}

// Load unmarshals v's bound configuration into a Config, applying the
// same defaults a fresh install needs to do anything useful.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("log.level", "info")
	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.dsn", "dsfctl.db")

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) { dc.ErrorUnused = false }); err != nil {
		return nil, err
	}
	if cfg.DB.Type != "sqlite" {
		return nil, errors.New("config: unsupported db.type (only \"sqlite\" is wired)")
	}
	return &cfg, nil
}
