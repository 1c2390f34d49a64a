// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package message assembles and opens request/response envelopes: the
// wire container shapes spec.md's kind field reserves for peer-to-peer
// messaging (as opposed to pages and data blocks). The envelope's
// application payload is left opaque to this package — only the
// request/response kind space, the AAD convention, and the signature
// mode (asymmetric or SYMMETRIC_MODE) are its concern.
package message

import (
	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

const scratchSize = 1 << 16

// Envelope describes a request/response message to assemble.
type Envelope struct {
	ApplicationId uint16
	Kind          wire.Kind
	Flags         wire.Flags
	RequestId     uint16
	SenderId      types.Id
	Body          []byte
	PublicOptions []options.Option
	// SecretKey, if set, AEAD-encrypts Body under the message-path AAD
	// convention (header+id), rather than the page/data path's no-AAD
	// convention.
	SecretKey *types.SecretKey
}

// aad is the header+id span the message path authenticates alongside
// whatever it encrypts, per spec.md §9's per-object-kind AAD
// invariant.
func aad(buf []byte) []byte { return buf[:wire.BodyOffset] }

// BuildSigned assembles and signs e with an asymmetric private key.
func BuildSigned(provider crypto.Provider, priv types.PrivateKey, e Envelope) (wire.Container, error) {
	pubReady, err := assembleWith(provider, e, 0)
	if err != nil {
		return wire.Container{}, err
	}
	return pubReady.SignPk(provider, priv)
}

// BuildSymmetric assembles and MACs e with a symmetric key: this is
// the only envelope path SYMMETRIC_MODE is valid on, per spec.md §4.5
// and §9.
func BuildSymmetric(provider crypto.Provider, tx types.SecretKey, e Envelope) (wire.Container, error) {
	pubReady, err := assembleWith(provider, e, wire.FlagSymmetricMode)
	if err != nil {
		return wire.Container{}, err
	}
	return pubReady.SignSk(provider, tx)
}

func assembleWith(provider crypto.Provider, e Envelope, extraFlags wire.Flags) (*wire.PublicOptionsReady, error) {
	if !e.Kind.IsMessage() {
		return nil, dsferr.New(dsferr.CodeInvalidMessageKind, "message.assemble")
	}
	buf := make([]byte, scratchSize)
	init := wire.NewBuilder(buf).Header(wire.Descriptor{
		ApplicationId: e.ApplicationId,
		Kind:          e.Kind,
		Flags:         e.Flags | extraFlags,
		Index:         e.RequestId,
	}).Id(e.SenderId)

	bodySet, err := init.Body(e.Body)
	if err != nil {
		return nil, err
	}
	privReady, err := bodySet.PrivateOptions(nil)
	if err != nil {
		return nil, err
	}

	var pubReady *wire.PublicOptionsReady
	if e.SecretKey != nil {
		// Fix the header fields that are written after sealing (the
		// ENCRYPTED flag and the public options length) before using the
		// header as AAD, so the AAD matches the header of the finished
		// container that OpenBody authenticates against.
		pubRegion, encErr := options.EncodeAll(nil, e.PublicOptions)
		if encErr != nil {
			return nil, encErr
		}
		h := wire.NewHeader(buf)
		h.SetFlags(h.Flags() | wire.FlagEncrypted)
		h.SetPublicOptionsLen(uint16(len(pubRegion)))
		pubReady, err = privReady.EncryptAAD(provider, *e.SecretKey, aad(buf))
	} else {
		pubReady = privReady.Public()
	}
	if err != nil {
		return nil, err
	}
	return pubReady.PublicOptions(e.PublicOptions)
}

// OpenBody decrypts a message envelope's body in place when it was
// sealed with SecretKey, using the message path's header+id AAD
// rather than the page/data path's no-AAD convention.
func OpenBody(provider crypto.Provider, c wire.Container, sk types.SecretKey) ([]byte, error) {
	h := c.Header()
	if !h.Flags().Has(wire.FlagEncrypted) {
		return c.Cyphertext(), nil
	}
	region := c.Cyphertext()
	var meta types.SecretMeta
	copy(meta[:], c.Tag())
	if err := provider.SkDecrypt(sk, meta, aad(c.Raw()), region); err != nil {
		return nil, dsferr.Wrap(dsferr.CodeCryptoError, "message.open_body", err)
	}
	return region, nil
}
