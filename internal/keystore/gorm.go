// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package keystore

import (
	"encoding/hex"

	"gorm.io/gorm"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/types"
)

// KeyRecord is the gorm model backing a durable KeySource: the demo
// CLI's key store, mirroring the teacher's use of gorm-backed tables
// for vouchers and devices (cmd/manufacturing.go, cmd/owner.go).
type KeyRecord struct {
	ID        string `gorm:"primaryKey;column:id"`
	PublicKey string
	SecretKey string
}

// TableName overrides gorm's default pluralization.
func (KeyRecord) TableName() string { return "dsf_keys" }

// GormKeySource is a parser.KeySource backed by a gorm database,
// giving the demo CLI durable key storage across runs rather than the
// in-memory parser.MappingKeySource.
type GormKeySource struct {
	db *gorm.DB
}

// NewGormKeySource migrates KeyRecord into db and returns a
// GormKeySource over it.
func NewGormKeySource(db *gorm.DB) (*GormKeySource, error) {
	if err := db.AutoMigrate(&KeyRecord{}); err != nil {
		return nil, dsferr.Wrap(dsferr.CodeIO, "keystore.gorm.migrate", err)
	}
	return &GormKeySource{db: db}, nil
}

// Put upserts the key material known for id.
func (g *GormKeySource) Put(id types.Id, keys types.Keys) error {
	rec := KeyRecord{ID: hex.EncodeToString(id[:])}
	if keys.PublicKey != nil {
		rec.PublicKey = hex.EncodeToString(keys.PublicKey[:])
	}
	if keys.SecretKey != nil {
		rec.SecretKey = hex.EncodeToString(keys.SecretKey[:])
	}
	if err := g.db.Save(&rec).Error; err != nil {
		return dsferr.Wrap(dsferr.CodeIO, "keystore.gorm.put", err)
	}
	return nil
}

// Lookup implements parser.KeySource.
func (g *GormKeySource) Lookup(id types.Id) (types.Keys, bool) {
	var rec KeyRecord
	if err := g.db.First(&rec, "id = ?", hex.EncodeToString(id[:])).Error; err != nil {
		return types.Keys{}, false
	}

	var keys types.Keys
	if rec.PublicKey != "" {
		if raw, err := hex.DecodeString(rec.PublicKey); err == nil && len(raw) == types.PublicKeyLen {
			var pk types.PublicKey
			copy(pk[:], raw)
			keys.PublicKey = &pk
		}
	}
	if rec.SecretKey != "" {
		if raw, err := hex.DecodeString(rec.SecretKey); err == nil && len(raw) == types.SecretKeyLen {
			var sk types.SecretKey
			copy(sk[:], raw)
			keys.SecretKey = &sk
		}
	}
	return keys, keys.PublicKey != nil || keys.SecretKey != nil
}
