// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package service implements the service lifecycle built on top of
// the wire codec: an origin service that publishes primary pages,
// secondary replica pointers and data blocks signed with a chain of
// previous-signature references. A Service built from an id and public
// key alone holds no private key and cannot publish; loading and
// applying a remote service's updates is done by package subscriber.
package service

import (
	"golang.org/x/time/rate"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

// Service is a signed, versioned object with an identity derived from
// its public key. It is the unit that gets published as a primary
// page, updated, and replicated.
type Service struct {
	Provider crypto.Provider

	id            types.Id
	applicationId uint16
	kind          wire.Kind
	version       uint16
	dataIndex     uint16

	body           []byte
	publicOptions  []options.Option
	privateOptions []options.Option

	publicKey  types.PublicKey
	privateKey *types.PrivateKey
	encrypted  bool
	secretKey  *types.SecretKey

	lastSig *types.Signature

	// limiter bounds PublishData for a CONSTRAINED peer; nil means
	// unconstrained.
	limiter *rate.Limiter
}

// DataIndex returns the current data block index.
func (s *Service) DataIndex() uint16 { return s.dataIndex }

// Id returns the service's identity.
func (s *Service) Id() types.Id { return s.id }

// Version returns the current primary page version.
func (s *Service) Version() uint16 { return s.version }

// Kind returns the service's page kind.
func (s *Service) Kind() wire.Kind { return s.kind }

// Body returns the current cleartext body.
func (s *Service) Body() []byte { return s.body }

// PublicOptions returns the current public option set.
func (s *Service) PublicOptions() []options.Option { return s.publicOptions }

// Encrypted reports whether the service publishes encrypted objects.
func (s *Service) Encrypted() bool { return s.encrypted }

// PublicKey returns the service's public key.
func (s *Service) PublicKey() types.PublicKey { return s.publicKey }

// PrivateKey returns the service's private key, if held.
func (s *Service) PrivateKey() (types.PrivateKey, bool) {
	if s.privateKey == nil {
		return types.PrivateKey{}, false
	}
	return *s.privateKey, true
}

// SecretKey returns the service's symmetric key, if held.
func (s *Service) SecretKey() (types.SecretKey, bool) {
	if s.secretKey == nil {
		return types.SecretKey{}, false
	}
	return *s.secretKey, true
}

// SetPrivateKey installs a private key, e.g. after loading it from a
// keystore separately from the public page data.
func (s *Service) SetPrivateKey(pk types.PrivateKey) { s.privateKey = &pk }

// SetSecretKey installs a symmetric key.
func (s *Service) SetSecretKey(sk types.SecretKey) { s.secretKey = &sk }

// Keys returns the key bundle currently held by the service.
func (s *Service) Keys() types.Keys {
	k := types.Keys{PublicKey: &s.publicKey}
	if s.privateKey != nil {
		pk := *s.privateKey
		k.PrivateKey = &pk
	}
	if s.secretKey != nil {
		sk := *s.secretKey
		k.SecretKey = &sk
	}
	return k
}

// IsOrigin reports whether this service holds the private key needed
// to publish updates, as opposed to being a replica tracking another
// origin's updates.
func (s *Service) IsOrigin() bool { return s.privateKey != nil }

// Update mutates the service under the origin's private key: fn may
// change the body, public options, and private options; on success the
// version is incremented and the data index reset, matching the
// semantics of starting a fresh chain of data blocks for the new
// primary page.
func (s *Service) Update(fn func(body *[]byte, public *[]options.Option, private *[]options.Option)) error {
	if s.privateKey == nil {
		return dsferr.New(dsferr.CodeNoPrivateKey, "service.update")
	}
	fn(&s.body, &s.publicOptions, &s.privateOptions)
	s.version++
	s.dataIndex = 0
	return nil
}
