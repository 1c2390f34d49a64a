// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

import (
	"bytes"
	"testing"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
)

func TestBuildCleartextPrimaryAndVerify(t *testing.T) {
	provider := crypto.Native{}
	id, pub, priv, err := provider.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}

	buf := make([]byte, 4096)
	body, err := NewBuilder(buf).Header(Descriptor{Kind: PageGeneric, Index: 1}).Id(id).Body([]byte("hello dsf"))
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
	container, err := pub2.SignPk(provider, priv)
	if err != nil {
		t.Fatalf("sign_pk: %v", err)
	}

	ok, err := container.Verify(func(cid types.Id, sig types.Signature, signed []byte) (bool, error) {
		return provider.PkVerify(pub, sig, signed)
	})
	if err != nil || !ok {
		t.Fatalf("verify failed: ok=%v err=%v", ok, err)
	}
	if container.Id() != id {
		t.Fatalf("id mismatch")
	}
	if !bytes.Equal(container.Body(), []byte("hello dsf")) {
		t.Fatalf("body mismatch: %q", container.Body())
	}
}

func TestBuildEncryptedObjectRoundTrip(t *testing.T) {
	provider := crypto.Native{}
	id, pub, priv, err := provider.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}
	sk, err := provider.NewSk()
	if err != nil {
		t.Fatalf("new_sk: %v", err)
	}

	buf := make([]byte, 4096)
	bodySet, err := NewBuilder(buf).
		Header(Descriptor{Kind: PageGeneric, Flags: FlagEncrypted, Index: 1}).
		Id(id).
		Body([]byte("secret body"))
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	encReady, err := bodySet.PrivateOptions([]options.Option{options.NameOpt("n")})
	if err != nil {
		t.Fatalf("private_options: %v", err)
	}
	pubReady, err := encReady.Encrypt(provider, sk)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	pubReady2, err := pubReady.PublicOptions([]options.Option{options.PubKeyOpt(pub)})
	if err != nil {
		t.Fatalf("public_options: %v", err)
	}
	container, err := pubReady2.SignPk(provider, priv)
	if err != nil {
		t.Fatalf("sign_pk: %v", err)
	}

	if !container.Header().Flags().Has(FlagEncrypted) {
		t.Fatalf("expected encrypted flag")
	}

	cyphertext := append([]byte{}, container.Cyphertext()...)
	meta := container.Tag()
	var secretMeta types.SecretMeta
	copy(secretMeta[:], meta)
	if err := provider.SkDecrypt(sk, secretMeta, nil, cyphertext); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(cyphertext[:11], []byte("secret body")) {
		t.Fatalf("decrypted body mismatch: %q", cyphertext[:11])
	}
}
