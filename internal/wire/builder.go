// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

import (
	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
)

// state is the shared, mutable cursor a builder threads through its
// phases. Each phase wraps *state in a distinct named type so the
// compiler rejects calling a later phase's method before its
// predecessor has run — Go has no phantom-type markers, so the type
// itself carries what a generic parameter would in a language with
// zero-cost marker types.
type state struct {
	buf       []byte
	n         int // absolute write cursor into buf
	c         int // public options region: bytes written since entering that phase
	encrypted bool
}

// Init is a freshly allocated builder: only the header and id may be
// written.
type Init struct{ s *state }

// BodySet follows a written body: only private options may be set.
type BodySet struct{ s *state }

// EncryptReady follows private options: the object may be encrypted,
// tagged, or published in the clear.
type EncryptReady struct{ s *state }

// PublicOptionsReady follows the encryption decision: public options
// may be added and the object may be signed.
type PublicOptionsReady struct{ s *state }

// NewBuilder starts a builder over buf, which must be large enough to
// hold the final encoded container.
func NewBuilder(buf []byte) *Init {
	return &Init{s: &state{buf: buf, n: BodyOffset}}
}

// Header writes d into the fixed header fields.
func (b *Init) Header(d Descriptor) *Init {
	NewHeader(b.s.buf).Encode(d)
	return b
}

// Id writes the container's id.
func (b *Init) Id(id types.Id) *Init {
	copy(b.s.buf[HeaderLen:BodyOffset], id[:])
	return b
}

// Body writes body as the container's cleartext body.
func (b *Init) Body(body []byte) (*BodySet, error) {
	if BodyOffset+len(body) > len(b.s.buf) {
		return nil, dsferr.New(dsferr.CodeInvalidPageLength, "wire.builder.body")
	}
	copy(b.s.buf[BodyOffset:], body)
	b.s.n = BodyOffset + len(body)
	NewHeader(b.s.buf).SetDataLen(uint16(len(body)))
	return &BodySet{s: b.s}, nil
}

// NoBody writes a zero-length body.
func (b *Init) NoBody() (*BodySet, error) { return b.Body(nil) }

// PrivateOptions encodes opts as the private options region.
func (b *BodySet) PrivateOptions(opts []options.Option) (*EncryptReady, error) {
	start := b.s.n
	buf, err := options.EncodeAll(b.s.buf[:start], opts)
	if err != nil {
		return nil, err
	}
	if len(buf) > len(b.s.buf) {
		return nil, dsferr.New(dsferr.CodeInvalidPageLength, "wire.builder.private_options")
	}
	written := buf[start:]
	copy(b.s.buf[start:], written)
	b.s.n = start + len(written)
	NewHeader(b.s.buf).SetPrivateOptionsLen(uint16(len(written)))
	b.s.encrypted = false
	return &EncryptReady{s: b.s}, nil
}

// PrivateOptionsRaw writes raw as an already-encrypted private options
// region, used when reconstructing a container whose body has already
// been sealed elsewhere.
func (b *BodySet) PrivateOptionsRaw(raw []byte) (*EncryptReady, error) {
	start := b.s.n
	if start+len(raw) > len(b.s.buf) {
		return nil, dsferr.New(dsferr.CodeInvalidPageLength, "wire.builder.private_options_raw")
	}
	copy(b.s.buf[start:], raw)
	b.s.n = start + len(raw)
	NewHeader(b.s.buf).SetPrivateOptionsLen(uint16(len(raw)))
	b.s.encrypted = true
	return &EncryptReady{s: b.s}, nil
}

// Encrypt seals the body+private-options span in place using sk, with
// no associated data: the page/data publish path authenticates only
// the bytes it encrypts, not the header, since the header's length
// fields are still being assembled at this point.
func (b *EncryptReady) Encrypt(provider crypto.Provider, sk types.SecretKey) (*PublicOptionsReady, error) {
	return b.EncryptAAD(provider, sk, nil)
}

// EncryptAAD is Encrypt with an explicit associated-data span. The
// message path uses this to authenticate the header+id prefix
// alongside the sealed region, per the AAD convention spec.md §9
// documents as a per-object-kind invariant (page/data: aad=None,
// messages: aad=header+id).
func (b *EncryptReady) EncryptAAD(provider crypto.Provider, sk types.SecretKey, aad []byte) (*PublicOptionsReady, error) {
	h := NewHeader(b.s.buf)
	region := b.s.buf[BodyOffset:h.TagOffset()]
	meta, err := provider.SkEncrypt(sk, aad, region)
	if err != nil {
		return nil, dsferr.Wrap(dsferr.CodeCryptoError, "wire.builder.encrypt", err)
	}
	return b.attachTag(meta)
}

// ReEncrypt reuses the nonce carried in meta to reseal the
// body+private-options span, for idempotent republication of
// unchanged content.
func (b *EncryptReady) ReEncrypt(provider crypto.Provider, sk types.SecretKey, meta types.SecretMeta) (*PublicOptionsReady, error) {
	return b.ReEncryptAAD(provider, sk, meta, nil)
}

// ReEncryptAAD is ReEncrypt with an explicit associated-data span.
func (b *EncryptReady) ReEncryptAAD(provider crypto.Provider, sk types.SecretKey, meta types.SecretMeta, aad []byte) (*PublicOptionsReady, error) {
	h := NewHeader(b.s.buf)
	region := b.s.buf[BodyOffset:h.TagOffset()]
	newMeta, err := provider.SkReencrypt(sk, meta, aad, region)
	if err != nil {
		return nil, dsferr.Wrap(dsferr.CodeCryptoError, "wire.builder.reencrypt", err)
	}
	return b.attachTag(newMeta)
}

// Tag attaches a precomputed tag block without encrypting, for
// reconstructing a container whose body was sealed elsewhere.
func (b *EncryptReady) Tag(meta types.SecretMeta) (*PublicOptionsReady, error) {
	return b.attachTag(meta)
}

func (b *EncryptReady) attachTag(meta types.SecretMeta) (*PublicOptionsReady, error) {
	h := NewHeader(b.s.buf)
	start := h.TagOffset()
	if start+TagLen > len(b.s.buf) {
		return nil, dsferr.New(dsferr.CodeInvalidPageLength, "wire.builder.tag")
	}
	copy(b.s.buf[start:], meta[:])
	h.SetFlags(h.Flags() | FlagEncrypted)
	b.s.n = start + TagLen
	b.s.encrypted = true
	b.s.c = 0
	return &PublicOptionsReady{s: b.s}, nil
}

// Public skips encryption: the object is published in the clear.
func (b *EncryptReady) Public() *PublicOptionsReady {
	b.s.c = 0
	return &PublicOptionsReady{s: b.s}
}

// PublicOptions appends opts to the public options region. Calling it
// more than once is additive: each call grows the region rather than
// overwriting it, so callers can assemble public options across
// several independent steps (e.g. a shared prefix plus caller-supplied
// extras).
func (b *PublicOptionsReady) PublicOptions(opts []options.Option) (*PublicOptionsReady, error) {
	start := b.s.n
	buf, err := options.EncodeAll(b.s.buf[:start], opts)
	if err != nil {
		return nil, err
	}
	written := buf[start:]
	if start+len(written) > len(b.s.buf) {
		return nil, dsferr.New(dsferr.CodeInvalidPageLength, "wire.builder.public_options")
	}
	copy(b.s.buf[start:], written)
	b.s.n = start + len(written)
	b.s.c += len(written)
	NewHeader(b.s.buf).SetPublicOptionsLen(uint16(b.s.c))
	return b, nil
}

// PublicOption appends a single public option.
func (b *PublicOptionsReady) PublicOption(o options.Option) (*PublicOptionsReady, error) {
	return b.PublicOptions([]options.Option{o})
}

// SignPk signs the container so far with an asymmetric private key,
// appending the 64-byte signature and sealing the container.
func (b *PublicOptionsReady) SignPk(provider crypto.Provider, priv types.PrivateKey) (Container, error) {
	signed := b.s.buf[:b.s.n]
	sig, err := provider.PkSign(priv, signed)
	if err != nil {
		return Container{}, dsferr.Wrap(dsferr.CodeCryptoError, "wire.builder.sign_pk", err)
	}
	return b.attachSignature(sig)
}

// SignSk signs the container so far with a symmetric MAC.
func (b *PublicOptionsReady) SignSk(provider crypto.Provider, sk types.SecretKey) (Container, error) {
	signed := b.s.buf[:b.s.n]
	sig, err := provider.SkSign(sk, signed)
	if err != nil {
		return Container{}, dsferr.Wrap(dsferr.CodeCryptoError, "wire.builder.sign_sk", err)
	}
	return b.attachSignature(sig)
}

// SignRaw attaches a precomputed signature without recomputing it.
func (b *PublicOptionsReady) SignRaw(sig types.Signature) (Container, error) {
	return b.attachSignature(sig)
}

func (b *PublicOptionsReady) attachSignature(sig types.Signature) (Container, error) {
	if b.s.n+types.SignatureLen > len(b.s.buf) {
		return Container{}, dsferr.New(dsferr.CodeInvalidPageLength, "wire.builder.sign")
	}
	copy(b.s.buf[b.s.n:], sig[:])
	b.s.n += types.SignatureLen
	return Parse(b.s.buf[:b.s.n])
}
