// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package registry implements the tertiary / name-service page
// issuer: a Registry resolves a queryable (a name, typically) to a
// deterministic target id via a keyed hash of the registry's own key
// material, and mints signed pages linking that id to a target
// service.
package registry

import (
	"encoding/hex"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/service"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

// scratchSize mirrors service.scratchSize, kept local since that
// constant is unexported in the service package.
const scratchSize = 1 << 16

// Queryable is anything a Registry can resolve to a tertiary-page
// target id.
type Queryable interface{ Bytes() []byte }

// Name is the common Queryable: a name-service lookup key.
type Name string

// Bytes implements Queryable.
func (n Name) Bytes() []byte { return []byte(n) }

// Registry issues tertiary pages over a backing service (the
// registry's own identity). Any holder of the registry's public keys
// can independently recompute Resolve(q) without needing to ask the
// registry anything.
type Registry struct {
	svc *service.Service
}

// New wraps svc as a Registry.
func New(svc *service.Service) *Registry { return &Registry{svc: svc} }

// Id returns the registry's own service id.
func (r *Registry) Id() types.Id { return r.svc.Id() }

// Resolve computes the deterministic target id for q under this
// registry: a salted, domain-separated keyed hash of q, keyed on the
// registry's own id and public key so distinct registries resolve the
// same queryable to distinct ids.
func (r *Registry) Resolve(q Queryable) types.Id {
	pub := r.svc.PublicKey()
	key := make([]byte, 0, types.IDLen+types.PublicKeyLen)
	key = append(key, r.svc.Id()[:]...)
	key = append(key, pub[:]...)
	sum := r.svc.Provider.Kdf(key, q.Bytes())
	return types.Id(sum)
}

// PublishTertiary mints and signs a tertiary page at Resolve(q),
// linking to targetServiceId. The page has an empty body; the target
// link is carried as a private Meta option so an encrypted registry
// can keep the linked identity confidential from anyone lacking its
// secret key.
func (r *Registry) PublishTertiary(targetServiceId types.Id, q Queryable, opts service.PublishOptions) (wire.Container, error) {
	priv, ok := r.svc.PrivateKey()
	if !ok {
		return wire.Container{}, dsferr.New(dsferr.CodeNoPrivateKey, "registry.publish_tertiary")
	}
	encrypted := r.svc.Encrypted()
	var secret types.SecretKey
	if encrypted {
		sk, ok := r.svc.SecretKey()
		if !ok {
			return wire.Container{}, dsferr.New(dsferr.CodeNoSecretKey, "registry.publish_tertiary")
		}
		secret = sk
	}

	tid := r.Resolve(q)
	buf := make([]byte, scratchSize)
	init := wire.NewBuilder(buf).Header(wire.Descriptor{
		Kind:  wire.PageTertiary,
		Flags: wire.FlagTertiary,
	}).Id(tid)

	bodySet, err := init.NoBody()
	if err != nil {
		return wire.Container{}, err
	}
	privReady, err := bodySet.PrivateOptions([]options.Option{targetInfo(targetServiceId)})
	if err != nil {
		return wire.Container{}, err
	}

	var pubReady *wire.PublicOptionsReady
	if encrypted {
		pubReady, err = privReady.Encrypt(r.svc.Provider, secret)
	} else {
		pubReady = privReady.Public()
	}
	if err != nil {
		return wire.Container{}, err
	}

	pubOpts := []options.Option{
		options.PeerIdOpt(r.svc.Id()),
		options.IssuedOpt(opts.Issued),
		options.ExpiryOpt(opts.Expiry),
	}
	pubOpts = append(pubOpts, opts.Public...)

	withOpts, err := pubReady.PublicOptions(pubOpts)
	if err != nil {
		return wire.Container{}, err
	}
	return withOpts.SignPk(r.svc.Provider, priv)
}

// targetInfoKey is the Meta option key under which a tertiary page's
// target link is stored, reproducing the original implementation's
// PageInfo::Tertiary{target_id} variant (src/page/info.rs) as a Meta
// option rather than a new wire option kind.
const targetInfoKey = "target"

func targetInfo(targetId types.Id) options.Option {
	return options.MetaOpt(targetInfoKey, hex.EncodeToString(targetId[:]))
}

// TargetInfo extracts a tertiary page's linked target id from its
// decoded private options, the inverse of targetInfo.
func TargetInfo(privateOpts []options.Option) (types.Id, bool) {
	for _, o := range privateOpts {
		if o.Kind != options.KindMeta || o.MetaKey != targetInfoKey {
			continue
		}
		raw, err := hex.DecodeString(o.MetaVal)
		if err != nil || len(raw) != types.IDLen {
			return types.Id{}, false
		}
		var id types.Id
		copy(id[:], raw)
		return id, true
	}
	return types.Id{}, false
}
