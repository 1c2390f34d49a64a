// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package keystore

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db
}

func TestGormKeySourcePutLookup(t *testing.T) {
	db := openTestDB(t)
	ks, err := NewGormKeySource(db)
	if err != nil {
		t.Fatalf("new_gorm_key_source: %v", err)
	}

	provider := crypto.Native{}
	id, pub, priv, err := provider.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}
	sk, err := provider.NewSk()
	if err != nil {
		t.Fatalf("new_sk: %v", err)
	}

	if err := ks.Put(id, types.Keys{PublicKey: &pub, PrivateKey: &priv, SecretKey: &sk}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := ks.Lookup(id)
	if !ok {
		t.Fatalf("expected lookup to find the persisted key material")
	}
	if got.PublicKey == nil || *got.PublicKey != pub {
		t.Fatalf("public key mismatch")
	}
}

func TestGormKeySourceLookupMiss(t *testing.T) {
	db := openTestDB(t)
	ks, err := NewGormKeySource(db)
	if err != nil {
		t.Fatalf("new_gorm_key_source: %v", err)
	}

	var unknown types.Id
	if _, ok := ks.Lookup(unknown); ok {
		t.Fatalf("expected lookup miss for an id never stored")
	}
}
