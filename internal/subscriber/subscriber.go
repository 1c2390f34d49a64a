// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package subscriber reconstructs a read-only replica of a remote
// service's primary-page state from verified containers, enforcing
// version-monotonic application of updates.
package subscriber

import (
	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/parser"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

// Replica tracks a remote service's primary page. It never holds a
// private key: it is built and advanced entirely from containers the
// caller has already run through a parser.Parser.
type Replica struct {
	provider crypto.Provider

	id        types.Id
	publicKey types.PublicKey
	kind      wire.Kind
	version   uint16

	body          []byte
	publicOptions []options.Option
	flags         wire.Flags
}

func (r *Replica) Id() types.Id                   { return r.id }
func (r *Replica) PublicKey() types.PublicKey     { return r.publicKey }
func (r *Replica) Version() uint16                { return r.version }
func (r *Replica) Kind() wire.Kind                { return r.kind }
func (r *Replica) Flags() wire.Flags              { return r.flags }
func (r *Replica) Body() []byte                   { return r.body }
func (r *Replica) PublicOptions() []options.Option { return r.publicOptions }

// Load reconstructs a Replica from a verified primary page. p must
// not carry the SECONDARY flag and must carry a PubKey option whose
// hash matches the container's id.
func Load(provider crypto.Provider, p parser.Parsed) (*Replica, error) {
	h := p.Container.Header()
	if h.Flags().Has(wire.FlagSecondary) || h.Flags().Has(wire.FlagTertiary) {
		return nil, dsferr.New(dsferr.CodeExpectedPrimaryPage, "subscriber.load")
	}
	f := options.Filters(p.PublicOptions)
	pub, ok := f.PubKey()
	if !ok {
		return nil, dsferr.New(dsferr.CodeNoPublicKey, "subscriber.load")
	}
	id := p.Container.Id()
	if provider.Hash(pub) != id {
		return nil, dsferr.New(dsferr.CodeKeyIdMismatch, "subscriber.load")
	}
	return &Replica{
		provider:      provider,
		id:            id,
		publicKey:     pub,
		kind:          h.Kind(),
		version:       h.Index(),
		body:          append([]byte{}, p.Container.Body()...),
		publicOptions: append([]options.Option{}, p.PublicOptions...),
		flags:         h.Flags(),
	}, nil
}

// Apply merges a verified update into the replica:
//   - a different id is UnexpectedServiceId
//   - an equal version is a no-op
//   - a lower version is InvalidServiceVersion
//   - a different page kind is InvalidPageKind
//   - a SECONDARY-flagged update is ExpectedPrimaryPage (only primary
//     pages are ever applied to a replica)
//   - a missing or changed public key is NoPublicKey / PublicKeyChanged
//   - a public key that doesn't hash to the replica's id is
//     KeyIdMismatch
//
// On success, body, public options, flags and version are replaced
// wholesale from the update.
func (r *Replica) Apply(p parser.Parsed) error {
	id := p.Container.Id()
	if id != r.id {
		return dsferr.New(dsferr.CodeUnexpectedServiceId, "subscriber.apply")
	}

	h := p.Container.Header()
	version := h.Index()
	if version == r.version {
		return nil
	}
	if version < r.version {
		return dsferr.New(dsferr.CodeInvalidServiceVersion, "subscriber.apply")
	}
	if h.Kind() != r.kind {
		return dsferr.New(dsferr.CodeInvalidPageKind, "subscriber.apply")
	}
	if h.Flags().Has(wire.FlagSecondary) {
		return dsferr.New(dsferr.CodeExpectedPrimaryPage, "subscriber.apply")
	}

	f := options.Filters(p.PublicOptions)
	pub, ok := f.PubKey()
	if !ok {
		return dsferr.New(dsferr.CodeNoPublicKey, "subscriber.apply")
	}
	if pub != r.publicKey {
		return dsferr.New(dsferr.CodePublicKeyChanged, "subscriber.apply")
	}
	if r.provider.Hash(pub) != id {
		return dsferr.New(dsferr.CodeKeyIdMismatch, "subscriber.apply")
	}

	r.body = append([]byte{}, p.Container.Body()...)
	r.publicOptions = append([]options.Option{}, p.PublicOptions...)
	r.flags = h.Flags()
	r.version = version
	return nil
}
