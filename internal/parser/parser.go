// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package parser

import (
	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

// Parser verifies and decodes containers using a cryptographic
// provider and a KeySource for resolving unknown signers.
type Parser struct {
	Provider  crypto.Provider
	KeySource KeySource
}

// New builds a Parser. A nil KeySource is treated as NullKeySource.
func New(provider crypto.Provider, ks KeySource) *Parser {
	if ks == nil {
		ks = NullKeySource{}
	}
	return &Parser{Provider: provider, KeySource: ks}
}

// Parsed is the result of successfully parsing and verifying a
// container: the wire.Container plus the decoded public options and
// the public key the signature was checked against.
type Parsed struct {
	Container     wire.Container
	PublicOptions []options.Option
	PublicKey     types.PublicKey
}

// VerifyEarly verifies buf against a public key the caller already
// knows, without consulting the KeySource or looking at any embedded
// PubKey option. This is the fast path for a subscriber that already
// holds the service's key.
func (p *Parser) VerifyEarly(buf []byte, pub types.PublicKey) (Parsed, error) {
	c, err := wire.Parse(buf)
	if err != nil {
		return Parsed{}, err
	}
	ok, err := c.Verify(func(id types.Id, sig types.Signature, signed []byte) (bool, error) {
		return p.Provider.PkVerify(pub, sig, signed)
	})
	if err != nil {
		return Parsed{}, dsferr.Wrap(dsferr.CodeCryptoError, "parser.verify_early", err)
	}
	if !ok {
		return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.verify_early")
	}
	pubOpts, err := c.PublicOptionsIter()
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{Container: c, PublicOptions: pubOpts, PublicKey: pub}, nil
}

// VerifyLate verifies buf when the caller does not already know the
// signer's key: it decodes the public options first, looking for an
// embedded PubKey option or a PeerId resolvable via the KeySource. If
// both a known key (via PeerId) and an embedded PubKey are present,
// they must agree; a mismatch is treated as an invalid signature
// rather than silently preferring one source over the other.
func (p *Parser) VerifyLate(buf []byte) (Parsed, error) {
	c, err := wire.Parse(buf)
	if err != nil {
		return Parsed{}, err
	}
	pubOpts, err := c.PublicOptionsIter()
	if err != nil {
		return Parsed{}, err
	}
	f := options.Filters(pubOpts)

	embedded, hasEmbedded := f.PubKey()

	var known types.PublicKey
	var hasKnown bool
	if peerId, ok := f.PeerId(); ok {
		if keys, found := p.KeySource.Lookup(peerId); found && keys.PublicKey != nil {
			known = *keys.PublicKey
			hasKnown = true
		}
	}

	var signer types.PublicKey
	switch {
	case hasKnown && hasEmbedded:
		if known != embedded {
			return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.verify_late")
		}
		signer = known
	case hasKnown:
		signer = known
	case hasEmbedded:
		signer = embedded
	default:
		return Parsed{}, dsferr.New(dsferr.CodeNoPublicKey, "parser.verify_late")
	}

	ok, err := c.Verify(func(id types.Id, sig types.Signature, signed []byte) (bool, error) {
		return p.Provider.PkVerify(signer, sig, signed)
	})
	if err != nil {
		return Parsed{}, dsferr.Wrap(dsferr.CodeCryptoError, "parser.verify_late", err)
	}
	if !ok {
		return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.verify_late")
	}
	return Parsed{Container: c, PublicOptions: pubOpts, PublicKey: signer}, nil
}

// Parse runs the full two-phase verification algorithm over buf: an
// early pass using a key the KeySource already has for a primary
// object's own id, then (if that didn't resolve) a late pass that
// decodes public options to find the signing id (the object's own id
// for primary objects, the PeerId option for secondary/tertiary ones),
// resolves that id's key via the KeySource or an embedded PubKey
// option, checks the resolved key hashes to the signing id, and
// verifies the signature — asymmetrically, or via the directional
// symmetric MAC when SYMMETRIC_MODE is set on a message kind.
func (p *Parser) Parse(buf []byte) (Parsed, error) {
	c, err := wire.Parse(buf)
	if err != nil {
		return Parsed{}, err
	}
	h := c.Header()
	isPrimary := !h.Flags().Has(wire.FlagSecondary) && !h.Flags().Has(wire.FlagTertiary)

	// Early verification: only attempted for primary objects signed
	// asymmetrically, against a key the caller already has indexed by
	// the object's own id. SYMMETRIC_MODE containers always fall
	// through to the late path below, since a registered PublicKey
	// doesn't tell us which symmetric key (tx or rx) to verify with.
	var verified bool
	var signer types.PublicKey
	if isPrimary && !h.Flags().Has(wire.FlagSymmetricMode) {
		if keys, found := p.KeySource.Lookup(c.Id()); found && keys.PublicKey != nil {
			ok, err := p.Provider.PkVerify(*keys.PublicKey, c.Signature(), c.Signed())
			if err != nil {
				return Parsed{}, dsferr.Wrap(dsferr.CodeCryptoError, "parser.parse", err)
			}
			if !ok {
				return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.parse")
			}
			verified = true
			signer = *keys.PublicKey
		}
	}

	pubOpts, err := c.PublicOptionsIter()
	if err != nil {
		return Parsed{}, err
	}
	f := options.Filters(pubOpts)
	embedded, hasEmbedded := f.PubKey()

	var signingId types.Id
	if isPrimary {
		signingId = c.Id()
	} else {
		peerId, ok := f.PeerId()
		if !ok {
			return Parsed{}, dsferr.New(dsferr.CodeNoPeerId, "parser.parse")
		}
		signingId = peerId
	}

	if !verified {
		var known types.PublicKey
		var hasKnown bool
		var knownKeys types.Keys
		if keys, found := p.KeySource.Lookup(signingId); found {
			knownKeys = keys
			if keys.PublicKey != nil {
				known = *keys.PublicKey
				hasKnown = true
			}
		}

		switch {
		case hasKnown && hasEmbedded:
			if known != embedded {
				return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.parse")
			}
			signer = known
		case hasKnown:
			signer = known
		case hasEmbedded:
			signer = embedded
		default:
			return Parsed{}, dsferr.New(dsferr.CodeNoPublicKey, "parser.parse")
		}

		if p.Provider.Hash(signer) != signingId {
			return Parsed{}, dsferr.New(dsferr.CodeKeyIdMismatch, "parser.parse")
		}

		symmetric := h.Flags().Has(wire.FlagSymmetricMode)
		if symmetric && !h.Kind().IsMessage() {
			return Parsed{}, dsferr.New(dsferr.CodeUnsupportedSignatureMode, "parser.parse")
		}
		if symmetric {
			sk, ok := directionalKey(knownKeys, h.Flags())
			if !ok {
				return Parsed{}, dsferr.New(dsferr.CodeNoSymmetricKeys, "parser.parse")
			}
			ok, err := p.Provider.SkValidate(sk, c.Signature(), c.Signed())
			if err != nil {
				return Parsed{}, dsferr.Wrap(dsferr.CodeCryptoError, "parser.parse", err)
			}
			if !ok {
				return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.parse")
			}
		} else {
			ok, err := p.Provider.PkVerify(signer, c.Signature(), c.Signed())
			if err != nil {
				return Parsed{}, dsferr.Wrap(dsferr.CodeCryptoError, "parser.parse", err)
			}
			if !ok {
				return Parsed{}, dsferr.New(dsferr.CodeInvalidSignature, "parser.parse")
			}
		}
	} else if p.Provider.Hash(signer) != signingId {
		return Parsed{}, dsferr.New(dsferr.CodeKeyIdMismatch, "parser.parse")
	}

	return Parsed{Container: c, PublicOptions: pubOpts, PublicKey: signer}, nil
}

// directionalKey selects the symmetric key a SYMMETRIC_MODE message
// was signed with, per SYMMETRIC_DIR: the sender signs with its tx
// key, so the receiver verifies with the matching rx half of the
// directional pair it holds for that peer.
func directionalKey(keys types.Keys, flags wire.Flags) (types.SecretKey, bool) {
	if flags.Has(wire.FlagSymmetricDir) {
		if keys.TxKey != nil {
			return *keys.TxKey, true
		}
		return types.SecretKey{}, false
	}
	if keys.RxKey != nil {
		return *keys.RxKey, true
	}
	return types.SecretKey{}, false
}

// Decrypt opens a verified container's body in place using sk, with
// no associated data. It mutates the container's underlying buffer;
// callers that still need the ciphertext should copy it first.
func (p *Parser) Decrypt(parsed Parsed, sk types.SecretKey) ([]byte, error) {
	return p.DecryptAAD(parsed, sk, nil)
}

// DecryptAAD is Decrypt with an explicit associated-data span,
// matching whatever aad the builder sealed the container with (the
// message path authenticates header+id; the page/data path uses none).
func (p *Parser) DecryptAAD(parsed Parsed, sk types.SecretKey, aad []byte) ([]byte, error) {
	c := parsed.Container
	if !c.Header().Flags().Has(wire.FlagEncrypted) {
		return c.Cyphertext(), nil
	}
	region := c.Cyphertext()
	var meta types.SecretMeta
	copy(meta[:], c.Tag())
	if err := p.Provider.SkDecrypt(sk, meta, aad, region); err != nil {
		return nil, dsferr.Wrap(dsferr.CodeCryptoError, "parser.decrypt", err)
	}
	return region, nil
}
