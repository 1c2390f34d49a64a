// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package crypto isolates every cryptographic primitive the codec
// depends on behind a small Provider interface, so the wire and
// service layers never call an algorithm package directly. The
// production Provider uses Ed25519 for signing, XChaCha20-Poly1305 for
// AEAD, Blake2b for hashing/KDF, and X25519 (derived from Ed25519 keys)
// for key exchange.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/types"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// Provider is the cryptographic surface the rest of dsf-core depends
// on. Swapping the production implementation for a test double lets
// wire/service tests run deterministic vectors without touching real
// key material.
type Provider interface {
	// NewPk generates a fresh asymmetric keypair and the service id
	// derived from the public key.
	NewPk() (types.Id, types.PublicKey, types.PrivateKey, error)

	// PkSign signs data with an asymmetric private key.
	PkSign(priv types.PrivateKey, data []byte) (types.Signature, error)
	// PkVerify verifies an asymmetric signature over data.
	PkVerify(pub types.PublicKey, sig types.Signature, data []byte) (bool, error)

	// NewSk generates a fresh symmetric secret key.
	NewSk() (types.SecretKey, error)
	// SkEncrypt seals message in place against secret key sk with
	// optional associated data, returning the tag+nonce metadata block.
	SkEncrypt(sk types.SecretKey, assoc, message []byte) (types.SecretMeta, error)
	// SkReencrypt re-seals message reusing the nonce carried in meta,
	// used when republishing an object without rotating the nonce.
	SkReencrypt(sk types.SecretKey, meta types.SecretMeta, assoc, message []byte) (types.SecretMeta, error)
	// SkDecrypt opens message in place, verifying the tag in meta.
	SkDecrypt(sk types.SecretKey, meta types.SecretMeta, assoc, message []byte) error
	// SkSign computes a symmetric MAC over data, used when a container
	// is authenticated with a shared secret rather than a signature.
	SkSign(sk types.SecretKey, data []byte) (types.Signature, error)
	// SkValidate verifies a symmetric MAC produced by SkSign.
	SkValidate(sk types.SecretKey, sig types.Signature, data []byte) (bool, error)

	// Hash returns the service id derived from a public key.
	Hash(pub types.PublicKey) types.Id
	// Kdf derives a target hash for a registry query under a keyed,
	// domain-separated construction, so the same query against
	// different registries resolves to different ids.
	Kdf(key []byte, data []byte) types.CryptoHash

	// Kx derives a directional (rx, tx) secret key pair between a
	// local Ed25519 keypair and a remote public key.
	Kx(pub types.PublicKey, priv types.PrivateKey, remote types.PublicKey) (rx, tx types.SecretKey, err error)
}

// registryKDFContext domain-separates the registry name-resolution KDF
// from any other keyed hash in the system. golang.org/x/crypto/blake2b's
// keyed-hash constructor doesn't expose a separate salt/personalization
// parameter the way the underlying Blake2b algorithm supports, so the
// context is folded into the hashed input instead of a dedicated field.
var registryKDFContext = []byte("dsf-core/registry/v1")

// Native is the production Provider: Ed25519 signatures, XChaCha20-
// Poly1305 AEAD, Blake2b-256 hashing/KDF, X25519 key exchange over
// Ed25519-derived Montgomery points.
type Native struct{}

var _ Provider = Native{}

func (Native) NewPk() (types.Id, types.PublicKey, types.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return types.Id{}, types.PublicKey{}, types.PrivateKey{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.new_pk", err)
	}
	var pk types.PublicKey
	var sk types.PrivateKey
	copy(pk[:], pub)
	copy(sk[:], priv)
	return Native{}.Hash(pk), pk, sk, nil
}

func (Native) PkSign(priv types.PrivateKey, data []byte) (types.Signature, error) {
	sig := ed25519.Sign(ed25519.PrivateKey(priv[:]), data)
	var out types.Signature
	copy(out[:], sig)
	return out, nil
}

func (Native) PkVerify(pub types.PublicKey, sig types.Signature, data []byte) (bool, error) {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), data, sig[:]), nil
}

func (Native) NewSk() (types.SecretKey, error) {
	var sk types.SecretKey
	if _, err := rand.Read(sk[:]); err != nil {
		return types.SecretKey{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.new_sk", err)
	}
	return sk, nil
}

func (Native) aead(sk types.SecretKey) (interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	Overhead() int
	NonceSize() int
}, error) {
	aead, err := chacha20poly1305.NewX(sk[:])
	if err != nil {
		return nil, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.aead_init", err)
	}
	return aead, nil
}

// SkEncrypt seals message in place: sealed bytes are written back into
// the same slice (length unchanged, AEAD overhead carried separately in
// the returned SecretMeta) by encrypting detached from the tag.
func (n Native) SkEncrypt(sk types.SecretKey, assoc, message []byte) (types.SecretMeta, error) {
	aead, err := n.aead(sk)
	if err != nil {
		return types.SecretMeta{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return types.SecretMeta{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.sk_encrypt", err)
	}
	sealed := aead.Seal(nil, nonce, message, assoc)
	ct, tag := sealed[:len(message)], sealed[len(message):]
	copy(message, ct)
	return types.NewSecretMeta(tag, nonce), nil
}

// SkReencrypt reuses the nonce carried in meta: the same (key, nonce)
// pair must never be reused over different plaintexts for a live
// secret key, so this is only safe for idempotent republication of
// content that has not actually changed.
func (n Native) SkReencrypt(sk types.SecretKey, meta types.SecretMeta, assoc, message []byte) (types.SecretMeta, error) {
	aead, err := n.aead(sk)
	if err != nil {
		return types.SecretMeta{}, err
	}
	nonce := meta.Nonce()
	sealed := aead.Seal(nil, nonce, message, assoc)
	ct, tag := sealed[:len(message)], sealed[len(message):]
	copy(message, ct)
	return types.NewSecretMeta(tag, nonce), nil
}

func (n Native) SkDecrypt(sk types.SecretKey, meta types.SecretMeta, assoc, message []byte) error {
	aead, err := n.aead(sk)
	if err != nil {
		return err
	}
	sealed := append(append([]byte{}, message...), meta.Tag()...)
	opened, err := aead.Open(nil, meta.Nonce(), sealed, assoc)
	if err != nil {
		return dsferr.Wrap(dsferr.CodeCryptoError, "crypto.sk_decrypt", err)
	}
	copy(message, opened)
	return nil
}

func (Native) SkSign(sk types.SecretKey, data []byte) (types.Signature, error) {
	mac, err := blake2b.New256(sk[:])
	if err != nil {
		return types.Signature{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.sk_sign", err)
	}
	mac.Write(data)
	sum := mac.Sum(nil)
	var sig types.Signature
	copy(sig[:], sum)
	copy(sig[32:], sum) // pad 32-byte MAC out to the fixed Signature width
	return sig, nil
}

func (n Native) SkValidate(sk types.SecretKey, sig types.Signature, data []byte) (bool, error) {
	want, err := n.SkSign(sk, data)
	if err != nil {
		return false, err
	}
	return want == sig, nil
}

func (Native) Hash(pub types.PublicKey) types.Id {
	sum := blake2b.Sum256(pub[:])
	return types.Id(sum)
}

func (Native) Kdf(key []byte, data []byte) types.CryptoHash {
	mac, err := blake2b.New256(key)
	if err != nil {
		// An over-length key is a programming error: blake2b.New256 only
		// rejects keys longer than 64 bytes, which callers control.
		panic(fmt.Sprintf("dsf: invalid KDF key: %v", err))
	}
	mac.Write(registryKDFContext)
	mac.Write(data)
	var out types.CryptoHash
	copy(out[:], mac.Sum(nil))
	return out
}

// Kx derives a directional secret key pair by converting both Ed25519
// keys to their Montgomery (X25519) form and running a Diffie-Hellman
// exchange, then hashing the shared secret together with both public
// keys (Blake2b-256): rx hashes local||remote and tx hashes
// remote||local, so each peer's tx key equals the other peer's rx key.
func (n Native) Kx(pub types.PublicKey, priv types.PrivateKey, remote types.PublicKey) (rx, tx types.SecretKey, err error) {
	localX, err := edPrivateToX25519(priv)
	if err != nil {
		return types.SecretKey{}, types.SecretKey{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.kx", err)
	}
	remoteX, err := edPublicToX25519(remote)
	if err != nil {
		return types.SecretKey{}, types.SecretKey{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.kx", err)
	}
	shared, err := curve25519.X25519(localX, remoteX)
	if err != nil {
		return types.SecretKey{}, types.SecretKey{}, dsferr.Wrap(dsferr.CodeCryptoError, "crypto.kx", err)
	}

	rxSum := blake2b.Sum256(append(append([]byte{}, shared...), append(pub[:], remote[:]...)...))
	txSum := blake2b.Sum256(append(append([]byte{}, shared...), append(remote[:], pub[:]...)...))
	copy(rx[:], rxSum[:])
	copy(tx[:], txSum[:])
	return rx, tx, nil
}
