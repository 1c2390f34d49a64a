// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package service

import (
	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

// Builder assembles a Service. Presets (Peer, Generic, Private, NS)
// set a conventional page kind and, for the name-service preset, a
// private Name option — callers can still override anything a preset
// sets before calling Build.
type Builder struct {
	provider crypto.Provider

	id            *types.Id
	applicationId uint16
	kind          wire.Kind

	publicKey  *types.PublicKey
	privateKey *types.PrivateKey
	encrypted  bool
	secretKey  *types.SecretKey

	body           []byte
	publicOptions  []options.Option
	privateOptions []options.Option
}

// NewBuilder starts a Builder using provider for key generation.
func NewBuilder(provider crypto.Provider) *Builder {
	return &Builder{provider: provider, kind: wire.PageGeneric}
}

// Generic configures a generic page-kind service (the default).
func (b *Builder) Generic() *Builder { b.kind = wire.PageGeneric; return b }

// Peer configures a peer page-kind service, for services that
// represent another node in the network rather than a named resource.
func (b *Builder) Peer() *Builder { b.kind = wire.PagePeer; return b }

// Private configures a service with the private page kind
// (wire.PagePrivate), reserved for private/experimental use. The
// application id is left unchanged.
func (b *Builder) Private() *Builder { b.kind = wire.PagePrivate; return b }

// NS configures a name-service entry: a generic page carrying a
// private Name option. On an encrypted service the body and private
// options are sealed together, so reading the name requires decrypting
// both.
func (b *Builder) NS(prefix string) *Builder {
	b.kind = wire.PageGeneric
	b.privateOptions = append(b.privateOptions, options.NameOpt(prefix))
	return b
}

// ApplicationId sets the application id to tag published objects with.
func (b *Builder) ApplicationId(id uint16) *Builder { b.applicationId = id; return b }

// Id explicitly sets the service id, overriding the one derived from
// the public key. Use with PublicKey when reconstructing a known
// service rather than generating a new identity.
func (b *Builder) Id(id types.Id) *Builder { b.id = &id; return b }

// PublicKey explicitly sets the public key.
func (b *Builder) PublicKey(pk types.PublicKey) *Builder { b.publicKey = &pk; return b }

// PrivateKey sets the private key the built service will publish with.
func (b *Builder) PrivateKey(pk types.PrivateKey) *Builder { b.privateKey = &pk; return b }

// Encrypted marks the service's published objects as encrypted,
// requiring a secret key at publish time.
func (b *Builder) Encrypted(yes bool) *Builder { b.encrypted = yes; return b }

// SecretKey sets the symmetric key used when Encrypted is set.
func (b *Builder) SecretKey(sk types.SecretKey) *Builder { b.secretKey = &sk; return b }

// Body sets the initial cleartext body.
func (b *Builder) Body(body []byte) *Builder { b.body = body; return b }

// PublicOptions sets the initial public option set.
func (b *Builder) PublicOptions(opts []options.Option) *Builder {
	b.publicOptions = append(b.publicOptions, opts...)
	return b
}

// PrivateOptions sets the initial private option set.
func (b *Builder) PrivateOptions(opts []options.Option) *Builder {
	b.privateOptions = append(b.privateOptions, opts...)
	return b
}

// Build resolves the service's identity and returns the constructed
// Service. Three combinations are valid:
//   - an explicit Id and PublicKey (a remote/replica service whose
//     private key is never held locally), optionally with a matching
//     PrivateKey
//   - a PrivateKey (the public key and id are regenerated from it; an
//     Id or PublicKey supplied alongside it must match)
//   - neither (a fresh keypair is generated)
// Any other combination — e.g. an Id with no PublicKey and no
// PrivateKey, or an Id or PublicKey that disagrees with a supplied
// PrivateKey — is a caller error rather than a panic.
func (b *Builder) Build() (*Service, error) {
	s := &Service{
		Provider:       b.provider,
		applicationId:  b.applicationId,
		kind:           b.kind,
		body:           b.body,
		publicOptions:  b.publicOptions,
		privateOptions: b.privateOptions,
		encrypted:      b.encrypted,
		secretKey:      b.secretKey,
	}

	switch {
	case b.id != nil && b.publicKey != nil:
		if b.privateKey != nil {
			derivedId, derivedPub, _, err := regeneratePublic(b.provider, *b.privateKey)
			if err != nil {
				return nil, err
			}
			if derivedPub != *b.publicKey || derivedId != *b.id {
				return nil, dsferr.New(dsferr.CodeInvalidOption, "service.builder.build: private key disagrees with supplied id/public key")
			}
		}
		s.id = *b.id
		s.publicKey = *b.publicKey
		s.privateKey = b.privateKey
	case b.privateKey != nil:
		id, pub, _, err := regeneratePublic(b.provider, *b.privateKey)
		if err != nil {
			return nil, err
		}
		if (b.publicKey != nil && *b.publicKey != pub) || (b.id != nil && *b.id != id) {
			return nil, dsferr.New(dsferr.CodeInvalidOption, "service.builder.build: private key disagrees with supplied id/public key")
		}
		s.id = id
		s.publicKey = pub
		s.privateKey = b.privateKey
	case b.id == nil && b.publicKey == nil:
		id, pub, priv, err := b.provider.NewPk()
		if err != nil {
			return nil, dsferr.Wrap(dsferr.CodeCryptoError, "service.builder.build", err)
		}
		s.id = id
		s.publicKey = pub
		s.privateKey = &priv
	default:
		return nil, dsferr.New(dsferr.CodeInvalidOption, "service.builder.build: an id requires a matching public key")
	}

	return s, nil
}

// regeneratePublic derives the public key and id that an Ed25519
// private key implies, since the stdlib representation already
// carries the public half in its second 32 bytes.
func regeneratePublic(provider crypto.Provider, priv types.PrivateKey) (types.Id, types.PublicKey, types.PrivateKey, error) {
	var pub types.PublicKey
	copy(pub[:], priv[32:])
	id := provider.Hash(pub)
	return id, pub, priv, nil
}
