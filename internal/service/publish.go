// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package service

import (
	"golang.org/x/time/rate"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

// scratchSize is the scratch buffer every publish path builds into
// before handing the signed span back as a Container. It is 64 KiB:
// wire.Builder rejects with InvalidPageLength any region that does not
// fit in it, so a published container, signature included, is at most
// this size.
const scratchSize = 1 << 16

// PublishOptions carries the issued/expiry window every publish path
// writes, plus any additional public options the caller wants attached
// after the ones the publish path always writes itself.
type PublishOptions struct {
	Issued types.DateTime
	Expiry types.DateTime
	Public []options.Option
}

// Constrained installs a token-bucket limiter that PublishData
// consults before minting a new data block, and marks the service's
// data-kind objects with the CONSTRAINED flag. Use this for services
// representing bandwidth- or power-limited peers that must not be
// allowed to flood a chain with data blocks.
func (s *Service) Constrained(limiter *rate.Limiter) { s.limiter = limiter }

// PublishPrimary mints and signs a new primary page: version is
// bumped, the body and private options come from the service's
// current in-memory state, and the public options are written in the
// fixed order PubKey, PrevSig (if any), Issued, Expiry, then the
// service's own public options, then opts.Public.
func (s *Service) PublishPrimary(opts PublishOptions) (wire.Container, error) {
	if s.privateKey == nil {
		return wire.Container{}, dsferr.New(dsferr.CodeNoPrivateKey, "service.publish_primary")
	}
	if s.encrypted && s.secretKey == nil {
		return wire.Container{}, dsferr.New(dsferr.CodeNoSecretKey, "service.publish_primary")
	}

	nextVersion := s.version + 1
	buf := make([]byte, scratchSize)
	init := wire.NewBuilder(buf).Header(wire.Descriptor{
		ApplicationId: s.applicationId,
		Kind:          s.kind,
		Index:         nextVersion,
	}).Id(s.id)

	bodySet, err := init.Body(s.body)
	if err != nil {
		return wire.Container{}, err
	}
	privReady, err := bodySet.PrivateOptions(s.privateOptions)
	if err != nil {
		return wire.Container{}, err
	}

	pubReady, err := s.encryptOrPublic(privReady)
	if err != nil {
		return wire.Container{}, err
	}

	pubOpts := []options.Option{options.PubKeyOpt(s.publicKey)}
	if s.lastSig != nil {
		pubOpts = append(pubOpts, options.PrevSigOpt(*s.lastSig))
	}
	pubOpts = append(pubOpts, options.IssuedOpt(opts.Issued), options.ExpiryOpt(opts.Expiry))
	pubOpts = append(pubOpts, s.publicOptions...)
	pubOpts = append(pubOpts, opts.Public...)

	withOpts, err := pubReady.PublicOptions(pubOpts)
	if err != nil {
		return wire.Container{}, err
	}
	c, err := withOpts.SignPk(s.Provider, *s.privateKey)
	if err != nil {
		return wire.Container{}, err
	}

	s.version = nextVersion
	sig := c.Signature()
	s.lastSig = &sig
	return c, nil
}

// PublishSecondary mints a replica pointer for targetId — the
// service being replicated, not this service's own id. kind must be a
// page kind. The container is signed with this service's private key
// and carries a PeerId option identifying this service as the author.
func (s *Service) PublishSecondary(targetId types.Id, kind wire.Kind, body []byte, opts PublishOptions) (wire.Container, error) {
	if s.privateKey == nil {
		return wire.Container{}, dsferr.New(dsferr.CodeNoPrivateKey, "service.publish_secondary")
	}
	if !kind.IsPage() {
		return wire.Container{}, dsferr.New(dsferr.CodeInvalidPageKind, "service.publish_secondary")
	}
	if s.encrypted && s.secretKey == nil {
		return wire.Container{}, dsferr.New(dsferr.CodeNoSecretKey, "service.publish_secondary")
	}

	buf := make([]byte, scratchSize)
	init := wire.NewBuilder(buf).Header(wire.Descriptor{
		ApplicationId: s.applicationId,
		Kind:          kind,
		Flags:         wire.FlagSecondary,
		Index:         s.version,
	}).Id(targetId)

	bodySet, err := init.Body(body)
	if err != nil {
		return wire.Container{}, err
	}
	privReady, err := bodySet.PrivateOptions(nil)
	if err != nil {
		return wire.Container{}, err
	}
	pubReady, err := s.encryptOrPublic(privReady)
	if err != nil {
		return wire.Container{}, err
	}

	pubOpts := []options.Option{options.PeerIdOpt(s.id), options.IssuedOpt(opts.Issued), options.ExpiryOpt(opts.Expiry)}
	if s.lastSig != nil {
		pubOpts = append(pubOpts, options.PrevSigOpt(*s.lastSig))
	}
	pubOpts = append(pubOpts, opts.Public...)

	withOpts, err := pubReady.PublicOptions(pubOpts)
	if err != nil {
		return wire.Container{}, err
	}
	c, err := withOpts.SignPk(s.Provider, *s.privateKey)
	if err != nil {
		return wire.Container{}, err
	}

	sig := c.Signature()
	s.lastSig = &sig
	return c, nil
}

// PublishData mints the next data block in this service's data
// stream. Constrained services are rate-limited: a block requested
// faster than the configured limiter allows fails with
// dsferr.CodeRateLimited rather than blocking, since minting a data
// block is not itself a suspension point at this layer.
func (s *Service) PublishData(body []byte, opts PublishOptions) (wire.Container, error) {
	if s.privateKey == nil {
		return wire.Container{}, dsferr.New(dsferr.CodeNoPrivateKey, "service.publish_data")
	}
	if s.encrypted && s.secretKey == nil {
		return wire.Container{}, dsferr.New(dsferr.CodeNoSecretKey, "service.publish_data")
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return wire.Container{}, dsferr.New(dsferr.CodeRateLimited, "service.publish_data")
	}

	nextIndex := s.dataIndex + 1
	flags := wire.Flags(0)
	if s.limiter != nil {
		flags |= wire.FlagConstrained
	}

	buf := make([]byte, scratchSize)
	init := wire.NewBuilder(buf).Header(wire.Descriptor{
		ApplicationId: s.applicationId,
		Kind:          wire.DataGeneric,
		Flags:         flags,
		Index:         nextIndex,
	}).Id(s.id)

	bodySet, err := init.Body(body)
	if err != nil {
		return wire.Container{}, err
	}
	privReady, err := bodySet.PrivateOptions(nil)
	if err != nil {
		return wire.Container{}, err
	}
	pubReady, err := s.encryptOrPublic(privReady)
	if err != nil {
		return wire.Container{}, err
	}

	pubOpts := []options.Option{options.IssuedOpt(opts.Issued)}
	if s.lastSig != nil {
		pubOpts = append(pubOpts, options.PrevSigOpt(*s.lastSig))
	}
	pubOpts = append(pubOpts, opts.Public...)

	withOpts, err := pubReady.PublicOptions(pubOpts)
	if err != nil {
		return wire.Container{}, err
	}
	c, err := withOpts.SignPk(s.Provider, *s.privateKey)
	if err != nil {
		return wire.Container{}, err
	}

	s.dataIndex = nextIndex
	sig := c.Signature()
	s.lastSig = &sig
	return c, nil
}

// encryptOrPublic applies the service's encryption policy uniformly
// across all three publish paths: encrypt against the service's
// secret key when the service is marked encrypted, otherwise publish
// the body and private options in the clear.
func (s *Service) encryptOrPublic(r *wire.EncryptReady) (*wire.PublicOptionsReady, error) {
	if !s.encrypted {
		return r.Public(), nil
	}
	return r.Encrypt(s.Provider, *s.secretKey)
}
