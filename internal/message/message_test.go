// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package message

import (
	"testing"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/parser"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

func TestBuildSignedRoundTrip(t *testing.T) {
	provider := crypto.Native{}
	senderId, pub, priv, err := provider.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}

	c, err := BuildSigned(provider, priv, Envelope{
		Kind:     wire.RequestPing,
		SenderId: senderId,
		Body:     []byte("ping"),
	})
	if err != nil {
		t.Fatalf("build_signed: %v", err)
	}

	p := parser.New(provider, nil)
	parsed, err := p.VerifyEarly(c.Raw(), pub)
	if err != nil {
		t.Fatalf("verify_early: %v", err)
	}
	if string(parsed.Container.Body()) != "ping" {
		t.Fatalf("unexpected body: %q", parsed.Container.Body())
	}
}

func TestBuildSignedRejectsNonMessageKind(t *testing.T) {
	provider := crypto.Native{}
	senderId, _, priv, _ := provider.NewPk()
	if _, err := BuildSigned(provider, priv, Envelope{Kind: wire.PageGeneric, SenderId: senderId}); err == nil {
		t.Fatalf("expected error building a message envelope around a page kind")
	}
}

func TestBuildSignedEncryptedBodyRoundTrip(t *testing.T) {
	provider := crypto.Native{}
	senderId, pub, priv, _ := provider.NewPk()
	sk, err := provider.NewSk()
	if err != nil {
		t.Fatalf("new_sk: %v", err)
	}

	c, err := BuildSigned(provider, priv, Envelope{
		Kind:      wire.RequestStore,
		SenderId:  senderId,
		Body:      []byte("secret payload"),
		SecretKey: &sk,
	})
	if err != nil {
		t.Fatalf("build_signed: %v", err)
	}

	p := parser.New(provider, nil)
	parsed, err := p.VerifyEarly(c.Raw(), pub)
	if err != nil {
		t.Fatalf("verify_early: %v", err)
	}
	body, err := OpenBody(provider, parsed.Container, sk)
	if err != nil {
		t.Fatalf("open_body: %v", err)
	}
	if string(body) != "secret payload" {
		t.Fatalf("unexpected decrypted body: %q", body)
	}
}

func TestBuildSymmetricRoundTrip(t *testing.T) {
	provider := crypto.Native{}
	senderId, pub, _, err := provider.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}
	sk, err := provider.NewSk()
	if err != nil {
		t.Fatalf("new_sk: %v", err)
	}

	c, err := BuildSymmetric(provider, sk, Envelope{
		Kind:     wire.ResponseStatus,
		SenderId: senderId,
		Body:     []byte("ok"),
	})
	if err != nil {
		t.Fatalf("build_symmetric: %v", err)
	}
	if !c.Header().Flags().Has(wire.FlagSymmetricMode) {
		t.Fatalf("expected SYMMETRIC_MODE flag")
	}

	// The receiver must already know both the sender's identity
	// (public key, to validate the id binding) and the matching rx
	// half of the directional symmetric pair (to validate the MAC).
	ks := parser.NewMappingKeySource()
	ks.Set(senderId, types.Keys{PublicKey: &pub, RxKey: &sk})
	p := parser.New(provider, ks)
	parsed, err := p.Parse(c.Raw())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(parsed.Container.Body()) != "ok" {
		t.Fatalf("unexpected body: %q", parsed.Container.Body())
	}
}

func TestParseRejectsSymmetricModeOnPageKind(t *testing.T) {
	provider := crypto.Native{}
	id, pub, _, err := provider.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}
	sk, err := provider.NewSk()
	if err != nil {
		t.Fatalf("new_sk: %v", err)
	}

	buf := make([]byte, 4096)
	body, err := wire.NewBuilder(buf).Header(wire.Descriptor{
		Kind:  wire.PageGeneric,
		Flags: wire.FlagSymmetricMode,
		Index: 1,
	}).Id(id).Body([]byte("payload"))
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	priv1, err := body.PrivateOptions(nil)
	if err != nil {
		t.Fatalf("private_options: %v", err)
	}
	pub1 := priv1.Public()
	pub2, err := pub1.PublicOptions([]options.Option{options.PubKeyOpt(pub)})
	if err != nil {
		t.Fatalf("public_options: %v", err)
	}
	c, err := pub2.SignSk(provider, sk)
	if err != nil {
		t.Fatalf("sign_sk: %v", err)
	}

	p := parser.New(provider, nil)
	if _, err := p.Parse(c.Raw()); err == nil {
		t.Fatalf("expected error parsing a SYMMETRIC_MODE page container")
	}
}
