// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package options

import (
	"testing"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/types"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	id := types.Id{1, 2, 3}
	opts := []Option{
		PeerIdOpt(id),
		NameOpt("front-door-sensor"),
		IssuedOpt(types.Now()),
		MetaOpt("room", "kitchen"),
		CoordOpt(51.5, -0.12, 35.0),
	}

	buf, err := EncodeAll(nil, opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := All(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(opts) {
		t.Fatalf("expected %d options, got %d", len(opts), len(decoded))
	}

	f := Filters(decoded)
	if peer, ok := f.PeerId(); !ok || peer != id {
		t.Fatalf("peer id mismatch: %v %v", peer, ok)
	}
	if name, ok := f.Name(); !ok || name != "front-door-sensor" {
		t.Fatalf("name mismatch: %q %v", name, ok)
	}
}

func TestMetaRequiresPipeSeparator(t *testing.T) {
	var buf []byte
	hdr := make([]byte, HeaderLen+3)
	hdr[1] = byte(KindMeta)
	hdr[3] = 3
	copy(hdr[4:], []byte("abc"))
	buf = append(buf, hdr...)

	_, err := All(buf)
	if err == nil {
		t.Fatalf("expected error for meta option without separator")
	}
	var derr *dsferr.Error
	if !asDsferr(err, &derr) || derr.Code != dsferr.CodeInvalidOption {
		t.Fatalf("expected InvalidOption code, got %v", err)
	}
}

func TestUnknownKindIsSkippedAsOpaque(t *testing.T) {
	opts := []Option{
		{Kind: 9999, Raw: []byte("future extension")},
		NameOpt("after-unknown"),
	}
	buf, err := EncodeAll(nil, opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := All(buf)
	if err != nil {
		t.Fatalf("decode unknown-kind option should not fail: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected both options to survive, got %d", len(decoded))
	}
	if name, ok := Filters(decoded).Name(); !ok || name != "after-unknown" {
		t.Fatalf("expected to still parse option following an unknown kind")
	}
}

func TestIterStopsCleanlyOnShortTail(t *testing.T) {
	it := NewIter([]byte{0x00})
	_, ok, err := it.Next()
	if err != nil || ok {
		t.Fatalf("expected clean stop on short tail, got ok=%v err=%v", ok, err)
	}
}

func asDsferr(err error, target **dsferr.Error) bool {
	de, ok := err.(*dsferr.Error)
	if ok {
		*target = de
	}
	return ok
}
