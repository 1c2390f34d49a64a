// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/keystore"
)

// openKeySource opens the sqlite-backed key store at cfg.DB.DSN,
// mirroring the teacher's DatabaseConfig.getState() (cmd/config.go).
func openKeySource() (*keystore.GormKeySource, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		return nil, dsferr.Wrap(dsferr.CodeIO, "dsfctl.open_key_source", err)
	}
	return keystore.NewGormKeySource(db)
}
