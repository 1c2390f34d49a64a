// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package types defines the fixed-size primitives used throughout the
// dsf-core wire format: identifiers, key material, signatures and the
// AEAD metadata block attached to encrypted objects.
package types

import "time"

const (
	// IDLen is the length in bytes of a service identifier.
	IDLen = 32
	// PublicKeyLen is the length in bytes of an Ed25519 public key.
	PublicKeyLen = 32
	// PrivateKeyLen is the length in bytes of an Ed25519 private key in
	// its Go stdlib seed||public concatenated form.
	PrivateKeyLen = 64
	// SignatureLen is the length in bytes of an Ed25519 signature.
	SignatureLen = 64
	// SecretKeyLen is the length in bytes of a symmetric secret key.
	SecretKeyLen = 32
	// HashLen is the length in bytes of a keyed hash / target id.
	HashLen = 32
	// SecretMetaLen is the length in bytes of the AEAD tag block
	// attached to encrypted objects: a 16-byte Poly1305 tag followed by
	// a 24-byte XChaCha20 nonce, padded to a fixed 48-byte field.
	SecretMetaLen = 48
	// secretMetaTagLen and secretMetaNonceLen are the meaningful prefix
	// of SecretMeta; the remaining bytes are reserved and always zero.
	secretMetaTagLen   = 16
	secretMetaNonceLen = 24
)

// Id identifies a service: the hash of its public key.
type Id [IDLen]byte

// PublicKey is an Ed25519 public key.
type PublicKey [PublicKeyLen]byte

// PrivateKey is an Ed25519 private key in seed||public form, matching
// the layout of crypto/ed25519.PrivateKey.
type PrivateKey [PrivateKeyLen]byte

// Signature is an Ed25519 signature or a symmetric MAC of equal length.
type Signature [SignatureLen]byte

// SecretKey is a symmetric AEAD key shared out of band or derived via
// key exchange.
type SecretKey [SecretKeyLen]byte

// CryptoHash is the output of a keyed hash, used as a registry lookup
// target.
type CryptoHash [HashLen]byte

// SecretMeta carries the AEAD tag and nonce for an encrypted body, in
// a fixed-size wire field.
type SecretMeta [SecretMetaLen]byte

// Tag returns the 16-byte Poly1305 authentication tag.
func (m SecretMeta) Tag() []byte { return m[:secretMetaTagLen] }

// Nonce returns the 24-byte XChaCha20 nonce.
func (m SecretMeta) Nonce() []byte {
	return m[secretMetaTagLen : secretMetaTagLen+secretMetaNonceLen]
}

// NewSecretMeta packs a tag and nonce into a SecretMeta field. It
// panics if the lengths don't match the AEAD construction in use;
// callers own the buffers so this indicates a programming error, not
// a runtime condition.
func NewSecretMeta(tag, nonce []byte) SecretMeta {
	var m SecretMeta
	if len(tag) != secretMetaTagLen || len(nonce) != secretMetaNonceLen {
		panic("dsf: invalid tag/nonce length for SecretMeta")
	}
	copy(m[:secretMetaTagLen], tag)
	copy(m[secretMetaTagLen:], nonce)
	return m
}

// Keys bundles the key material a service may hold. Any field may be
// zero/absent depending on the service's role (origin vs. replica,
// encrypted vs. cleartext).
type Keys struct {
	PublicKey  *PublicKey
	PrivateKey *PrivateKey
	SecretKey  *SecretKey
	// RxKey/TxKey hold a directional pair derived via key exchange,
	// used when two peers exchange encrypted traffic rather than
	// sharing a single symmetric key out of band.
	RxKey *SecretKey
	TxKey *SecretKey
}

// DateTime is a wire timestamp: whole seconds since the Unix epoch,
// encoded as a big-endian uint64.
type DateTime uint64

// Now returns the current time truncated to second precision.
func Now() DateTime { return DateTime(time.Now().Unix()) }

// FromTime truncates t to second precision.
func FromTime(t time.Time) DateTime { return DateTime(t.Unix()) }

// Time converts back to a time.Time in UTC.
func (d DateTime) Time() time.Time { return time.Unix(int64(d), 0).UTC() }

// Address is an IPv4 or IPv6 socket address carried in an option.
type Address struct {
	IP   [16]byte
	Len  int // 4 or 16
	Port uint16
}

// IsV4 reports whether the address is an IPv4 address.
func (a Address) IsV4() bool { return a.Len == 4 }
