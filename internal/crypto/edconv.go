// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package crypto

import (
	"crypto/sha512"
	"fmt"
	"math/big"

	"github.com/dsfproto/dsf-core/internal/types"
)

// edPrivateToX25519 converts an Ed25519 private key to its X25519
// scalar: the first 32 bytes of the SHA-512 digest of the seed, the
// same digest Ed25519 derives its own scalar from (the two curves are
// birationally equivalent and share the underlying group). The bytes
// are returned unclamped; curve25519.X25519 clamps them when used.
func edPrivateToX25519(priv types.PrivateKey) ([]byte, error) {
	seed := priv[:32]
	h := sha512.Sum512(seed)
	scalar := make([]byte, 32)
	copy(scalar, h[:32])
	return scalar, nil
}

// curve25519P is the field prime 2^255 - 19.
var curve25519P = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	return p.Sub(p, big.NewInt(19))
}()

// edPublicToX25519 converts a compressed Ed25519 public key (the
// Edwards y-coordinate with the sign bit folded into the top bit of
// the last byte) to the Montgomery u-coordinate used by X25519, via
// u = (1+y) / (1-y) mod p.
func edPublicToX25519(pub types.PublicKey) ([]byte, error) {
	yBytes := make([]byte, 32)
	copy(yBytes, pub[:])
	yBytes[31] &= 0x7f // strip the sign bit; only y is needed for u

	y := new(big.Int).SetBytes(reverse(yBytes))
	if y.Cmp(curve25519P) >= 0 {
		return nil, fmt.Errorf("invalid edwards point: y out of range")
	}

	one := big.NewInt(1)
	num := new(big.Int).Add(one, y)
	num.Mod(num, curve25519P)
	den := new(big.Int).Sub(one, y)
	den.Mod(den, curve25519P)
	denInv := new(big.Int).ModInverse(den, curve25519P)
	if denInv == nil {
		return nil, fmt.Errorf("invalid edwards point: y = 1")
	}
	u := num.Mul(num, denInv)
	u.Mod(u, curve25519P)

	out := u.FillBytes(make([]byte, 32))
	return reverse(out), nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
