// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

import (
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
)

// Container is a read-through view over an encoded object: every
// accessor returns a slice of buf, never a copy, so verifying or
// decrypting in place is a matter of mutating the slices this type
// hands back.
type Container struct {
	buf []byte
	len int
}

// Parse wraps buf as a Container, validating that it is at least long
// enough to hold a header and id and that the header's derived length
// does not exceed len(buf).
func Parse(buf []byte) (Container, error) {
	if len(buf) < BodyOffset+types.SignatureLen {
		return Container{}, dsferr.New(dsferr.CodeInvalidPageLength, "wire.parse")
	}
	h := NewHeader(buf)
	n := h.EncodedLen()
	if n > len(buf) {
		return Container{}, dsferr.New(dsferr.CodeInvalidPageLength, "wire.parse")
	}
	return Container{buf: buf, len: n}, nil
}

// Len returns the container's total encoded length, recomputed from
// its header fields rather than cached, so a header mutated in place
// (as the builder does) is always reflected.
func (c Container) Len() int { return NewHeader(c.buf).EncodedLen() }

// Raw returns the first Len() bytes of the underlying buffer.
func (c Container) Raw() []byte { return c.buf[:c.Len()] }

// Header returns a mutable view over the fixed header fields.
func (c Container) Header() Header { return NewHeader(c.buf) }

// IdRaw returns the 32-byte id slice.
func (c Container) IdRaw() []byte { return c.buf[HeaderLen:BodyOffset] }

// Id copies the id out as a types.Id value.
func (c Container) Id() types.Id {
	var id types.Id
	copy(id[:], c.IdRaw())
	return id
}

// Body returns the container's body region. While the container is
// encrypted this is ciphertext; callers that have a secret key should
// use Cyphertext alongside Tag to decrypt it.
func (c Container) Body() []byte {
	h := c.Header()
	return c.buf[BodyOffset : BodyOffset+int(h.DataLen())]
}

// PrivateOptions returns the raw private options region.
func (c Container) PrivateOptions() []byte {
	h := c.Header()
	start := h.PrivateOptionsOffset()
	return c.buf[start : start+int(h.PrivateOptionsLen())]
}

// PrivateOptionsIter decodes the private options region. Call this
// only once the container has been decrypted, or the options parsed
// out will be garbage ciphertext.
func (c Container) PrivateOptionsIter() ([]options.Option, error) {
	return options.All(c.PrivateOptions())
}

// Cyphertext returns the combined body+private-options span: the
// single region the AEAD construction seals and opens as one unit.
func (c Container) Cyphertext() []byte {
	h := c.Header()
	return c.buf[BodyOffset:h.TagOffset()]
}

// Tag returns the AEAD tag+nonce block, or an empty slice if the
// container is not encrypted.
func (c Container) Tag() []byte {
	h := c.Header()
	if !h.Flags().Has(FlagEncrypted) {
		return nil
	}
	start := h.TagOffset()
	return c.buf[start : start+TagLen]
}

// PublicOptions returns the raw public options region.
func (c Container) PublicOptions() []byte {
	h := c.Header()
	start := h.PublicOptionsOffset()
	return c.buf[start : start+int(h.PublicOptionsLen())]
}

// PublicOptionsIter decodes the public options region: always
// available, encrypted or not.
func (c Container) PublicOptionsIter() ([]options.Option, error) {
	return options.All(c.PublicOptions())
}

// Signed returns every byte covered by the trailing signature: the
// whole container except the signature itself.
func (c Container) Signed() []byte {
	h := c.Header()
	return c.buf[:h.SignatureOffset()]
}

// SignatureRaw returns the trailing 64-byte signature slice.
func (c Container) SignatureRaw() []byte {
	h := c.Header()
	start := h.SignatureOffset()
	return c.buf[start : start+types.SignatureLen]
}

// Signature copies the signature out as a types.Signature value.
func (c Container) Signature() types.Signature {
	var sig types.Signature
	copy(sig[:], c.SignatureRaw())
	return sig
}

// Verify calls verifier with the container's id, signature, and signed
// span, and reports whatever the verifier decides.
func (c Container) Verify(verifier func(id types.Id, sig types.Signature, signed []byte) (bool, error)) (bool, error) {
	return verifier(c.Id(), c.Signature(), c.Signed())
}
