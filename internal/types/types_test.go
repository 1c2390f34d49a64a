// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package types

import (
	"bytes"
	"testing"
	"time"
)

func TestSecretMetaRoundTrip(t *testing.T) {
	tag := bytes.Repeat([]byte{0xAB}, 16)
	nonce := bytes.Repeat([]byte{0xCD}, 24)

	m := NewSecretMeta(tag, nonce)
	if !bytes.Equal(m.Tag(), tag) {
		t.Fatalf("tag mismatch: got %x", m.Tag())
	}
	if !bytes.Equal(m.Nonce(), nonce) {
		t.Fatalf("nonce mismatch: got %x", m.Nonce())
	}
	for _, b := range m[40:] {
		if b != 0 {
			t.Fatalf("expected reserved tail to be zero, got %x", m[40:])
		}
	}
}

func TestDateTimeTruncatesToSeconds(t *testing.T) {
	now := time.Now()
	d := FromTime(now)
	if d.Time().Unix() != now.Unix() {
		t.Fatalf("round trip through DateTime changed seconds: %d vs %d", d.Time().Unix(), now.Unix())
	}
}
