// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package crypto

import "testing"

func TestPkSignVerifyRoundTrip(t *testing.T) {
	n := Native{}
	id, pub, priv, err := n.NewPk()
	if err != nil {
		t.Fatalf("new_pk: %v", err)
	}
	if id != n.Hash(pub) {
		t.Fatalf("id should be hash of public key")
	}

	msg := []byte("dsf wire body")
	sig, err := n.PkSign(priv, msg)
	if err != nil {
		t.Fatalf("pk_sign: %v", err)
	}
	ok, err := n.PkVerify(pub, sig, msg)
	if err != nil || !ok {
		t.Fatalf("pk_verify failed: ok=%v err=%v", ok, err)
	}

	ok, err = n.PkVerify(pub, sig, []byte("tampered"))
	if err != nil {
		t.Fatalf("pk_verify: %v", err)
	}
	if ok {
		t.Fatalf("expected verification failure on tampered data")
	}
}

func TestSkEncryptDecryptRoundTrip(t *testing.T) {
	n := Native{}
	sk, err := n.NewSk()
	if err != nil {
		t.Fatalf("new_sk: %v", err)
	}

	plain := []byte("primary page body")
	msg := append([]byte{}, plain...)
	meta, err := n.SkEncrypt(sk, nil, msg)
	if err != nil {
		t.Fatalf("sk_encrypt: %v", err)
	}
	if string(msg) == string(plain) {
		t.Fatalf("expected ciphertext to differ from plaintext")
	}

	if err := n.SkDecrypt(sk, meta, nil, msg); err != nil {
		t.Fatalf("sk_decrypt: %v", err)
	}
	if string(msg) != string(plain) {
		t.Fatalf("decrypted mismatch: got %q want %q", msg, plain)
	}
}

func TestSkReencryptReusesNonce(t *testing.T) {
	n := Native{}
	sk, _ := n.NewSk()
	plain := []byte("data object body")

	msg1 := append([]byte{}, plain...)
	meta1, err := n.SkEncrypt(sk, nil, msg1)
	if err != nil {
		t.Fatalf("sk_encrypt: %v", err)
	}

	msg2 := append([]byte{}, plain...)
	meta2, err := n.SkReencrypt(sk, meta1, nil, msg2)
	if err != nil {
		t.Fatalf("sk_reencrypt: %v", err)
	}
	if meta1.Nonce() == nil || string(meta1.Nonce()) != string(meta2.Nonce()) {
		t.Fatalf("expected re-encrypt to reuse the original nonce")
	}

	if err := n.SkDecrypt(sk, meta2, nil, msg2); err != nil {
		t.Fatalf("sk_decrypt after reencrypt: %v", err)
	}
	if string(msg2) != string(plain) {
		t.Fatalf("decrypted mismatch after reencrypt")
	}
}

func TestKxProducesSharedDirectionalKeys(t *testing.T) {
	n := Native{}
	_, aPub, aPriv, err := n.NewPk()
	if err != nil {
		t.Fatalf("new_pk a: %v", err)
	}
	_, bPub, bPriv, err := n.NewPk()
	if err != nil {
		t.Fatalf("new_pk b: %v", err)
	}

	aRx, aTx, err := n.Kx(aPub, aPriv, bPub)
	if err != nil {
		t.Fatalf("kx a: %v", err)
	}
	bRx, bTx, err := n.Kx(bPub, bPriv, aPub)
	if err != nil {
		t.Fatalf("kx b: %v", err)
	}

	if aTx != bRx {
		t.Fatalf("a's tx key should equal b's rx key")
	}
	if bTx != aRx {
		t.Fatalf("b's tx key should equal a's rx key")
	}
}

func TestKdfIsDeterministicAndKeyed(t *testing.T) {
	n := Native{}
	key1 := []byte("registry-one-key-----------32by")
	key2 := []byte("registry-two-key-----------32by")
	data := []byte("example-service-name")

	h1a := n.Kdf(key1, data)
	h1b := n.Kdf(key1, data)
	if h1a != h1b {
		t.Fatalf("kdf should be deterministic")
	}

	h2 := n.Kdf(key2, data)
	if h1a == h2 {
		t.Fatalf("kdf should be keyed: different registries must resolve differently")
	}
}
