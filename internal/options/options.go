// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package options implements the TLV option catalog carried in the
// private and public option regions of a wire container: a 4-byte
// header (2-byte kind, 2-byte length) followed by a kind-specific
// body. Unknown kinds below the application-private threshold are
// still well-formed wire data and are skipped rather than rejected,
// so forward compatibility doesn't require every reader to understand
// every option.
package options

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/types"
)

func f32bits(f float32) uint32 { return math.Float32bits(f) }
func bits2f32(b uint32) float32 { return math.Float32frombits(b) }

// HeaderLen is the size of an option's kind+length header.
const HeaderLen = 4

// Kind identifies an option's type and wire layout.
type Kind uint16

const (
	KindPubKey   Kind = 0
	KindPeerId   Kind = 1
	KindPrevSig  Kind = 2
	KindKind     Kind = 3
	KindName     Kind = 4
	KindIPv4     Kind = 5
	KindIPv6     Kind = 6
	KindIssued   Kind = 7
	KindExpiry   Kind = 8
	KindLimit    Kind = 9
	KindMeta     Kind = 10
	KindBuilding Kind = 11
	KindRoom     Kind = 12
	KindCoord    Kind = 13
)

// AppPrivateThreshold marks the start of the application-private kind
// range; kinds at or above this value are always opaque to this
// package and are preserved verbatim by callers that need them.
const AppPrivateThreshold Kind = 0x8000

// Option is a decoded TLV option. For the kinds this package decodes,
// the typed field selected by Kind is meaningful and Raw is nil; for
// any other kind (including application-private ones) Raw holds the
// undecoded body, so the option can still be re-encoded byte-for-byte.
type Option struct {
	Kind Kind
	Raw  []byte

	PubKey   types.PublicKey
	PeerId   types.Id
	PrevSig  types.Signature
	Text     string // Kind / Name
	Address  types.Address
	Issued   types.DateTime
	Expiry   types.DateTime
	Limit    uint32
	MetaKey  string
	MetaVal  string
	Lat      float32
	Lng      float32
	Alt      float32
}

// PubKeyOpt builds a PubKey option.
func PubKeyOpt(pk types.PublicKey) Option { return Option{Kind: KindPubKey, PubKey: pk} }

// PeerIdOpt builds a PeerId option.
func PeerIdOpt(id types.Id) Option { return Option{Kind: KindPeerId, PeerId: id} }

// PrevSigOpt builds a PrevSig option.
func PrevSigOpt(sig types.Signature) Option { return Option{Kind: KindPrevSig, PrevSig: sig} }

// KindOpt builds a Kind-string option.
func KindOpt(value string) Option { return Option{Kind: KindKind, Text: value} }

// NameOpt builds a Name option.
func NameOpt(value string) Option { return Option{Kind: KindName, Text: value} }

// AddressOpt builds an IPv4 or IPv6 address option depending on the
// length of the supplied address.
func AddressOpt(addr types.Address) Option {
	if addr.IsV4() {
		return Option{Kind: KindIPv4, Address: addr}
	}
	return Option{Kind: KindIPv6, Address: addr}
}

// IssuedOpt builds an Issued option.
func IssuedOpt(when types.DateTime) Option { return Option{Kind: KindIssued, Issued: when} }

// ExpiryOpt builds an Expiry option.
func ExpiryOpt(when types.DateTime) Option { return Option{Kind: KindExpiry, Expiry: when} }

// LimitOpt builds a Limit option.
func LimitOpt(n uint32) Option { return Option{Kind: KindLimit, Limit: n} }

// MetaOpt builds a Meta option from a key/value pair.
func MetaOpt(key, value string) Option {
	return Option{Kind: KindMeta, MetaKey: key, MetaVal: value}
}

// CoordOpt builds a Coordinates option.
func CoordOpt(lat, lng, alt float32) Option {
	return Option{Kind: KindCoord, Lat: lat, Lng: lng, Alt: alt}
}

// Encode appends the option's wire representation to dst.
func Encode(dst []byte, o Option) ([]byte, error) {
	var body []byte
	switch o.Kind {
	case KindPubKey:
		body = o.PubKey[:]
	case KindPeerId:
		body = o.PeerId[:]
	case KindPrevSig:
		body = o.PrevSig[:]
	case KindKind, KindName:
		body = []byte(o.Text)
	case KindIPv4:
		body = make([]byte, 6)
		copy(body[:4], o.Address.IP[:4])
		binary.BigEndian.PutUint16(body[4:], o.Address.Port)
	case KindIPv6:
		body = make([]byte, 18)
		copy(body[:16], o.Address.IP[:16])
		binary.BigEndian.PutUint16(body[16:], o.Address.Port)
	case KindIssued:
		body = make([]byte, 8)
		binary.BigEndian.PutUint64(body, uint64(o.Issued))
	case KindExpiry:
		body = make([]byte, 8)
		binary.BigEndian.PutUint64(body, uint64(o.Expiry))
	case KindLimit:
		body = make([]byte, 4)
		binary.BigEndian.PutUint32(body, o.Limit)
	case KindMeta:
		body = []byte(o.MetaKey + "|" + o.MetaVal)
	case KindCoord:
		body = make([]byte, 12)
		binary.BigEndian.PutUint32(body[0:4], f32bits(o.Lat))
		binary.BigEndian.PutUint32(body[4:8], f32bits(o.Lng))
		binary.BigEndian.PutUint32(body[8:12], f32bits(o.Alt))
	default:
		body = o.Raw
	}
	if len(body) > 0xffff {
		return nil, dsferr.New(dsferr.CodeInvalidOptionLength, "options.encode")
	}
	var hdr [HeaderLen]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(o.Kind))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(body)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, body...)
	return dst, nil
}

// EncodeAll appends every option in opts, in order, to dst.
func EncodeAll(dst []byte, opts []Option) ([]byte, error) {
	var err error
	for _, o := range opts {
		dst, err = Encode(dst, o)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Iter lazily walks a region of encoded options, stopping cleanly once
// fewer than HeaderLen bytes remain rather than treating a short tail
// as a parse error: option regions are length-prefixed by the
// container, not self-terminating.
type Iter struct {
	buf []byte
}

// NewIter returns an iterator over buf.
func NewIter(buf []byte) *Iter { return &Iter{buf: buf} }

// Next returns the next option, or (Option{}, false, nil) when the
// region is exhausted. A malformed option (length header pointing past
// the end of buf) yields an error.
func (it *Iter) Next() (Option, bool, error) {
	if len(it.buf) < HeaderLen {
		return Option{}, false, nil
	}
	kind := Kind(binary.BigEndian.Uint16(it.buf[0:2]))
	length := int(binary.BigEndian.Uint16(it.buf[2:4]))
	if len(it.buf) < HeaderLen+length {
		return Option{}, false, dsferr.New(dsferr.CodeInvalidOptionLength, "options.iter")
	}
	body := it.buf[HeaderLen : HeaderLen+length]
	it.buf = it.buf[HeaderLen+length:]

	o, err := decode(kind, body)
	if err != nil {
		return Option{}, false, err
	}
	return o, true, nil
}

// All drains the iterator into a slice. Unknown option kinds are
// included as opaque Raw options rather than dropped, so callers that
// need to re-encode a region verbatim (e.g. a relay forwarding a page
// it cannot fully interpret) can do so.
func All(buf []byte) ([]Option, error) {
	it := NewIter(buf)
	var out []Option
	for {
		o, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, o)
	}
	return out, nil
}

func decode(kind Kind, body []byte) (Option, error) {
	switch kind {
	case KindPubKey:
		if len(body) != types.PublicKeyLen {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.pub_key")
		}
		var o Option
		o.Kind = kind
		copy(o.PubKey[:], body)
		return o, nil
	case KindPeerId:
		if len(body) != types.IDLen {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.peer_id")
		}
		var o Option
		o.Kind = kind
		copy(o.PeerId[:], body)
		return o, nil
	case KindPrevSig:
		if len(body) != types.SignatureLen {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.prev_sig")
		}
		var o Option
		o.Kind = kind
		copy(o.PrevSig[:], body)
		return o, nil
	case KindKind, KindName:
		return Option{Kind: kind, Text: string(body)}, nil
	case KindIPv4:
		if len(body) != 6 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.ipv4")
		}
		var o Option
		o.Kind = kind
		copy(o.Address.IP[:4], body[:4])
		o.Address.Len = 4
		o.Address.Port = binary.BigEndian.Uint16(body[4:])
		return o, nil
	case KindIPv6:
		if len(body) != 18 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.ipv6")
		}
		var o Option
		o.Kind = kind
		copy(o.Address.IP[:16], body[:16])
		o.Address.Len = 16
		o.Address.Port = binary.BigEndian.Uint16(body[16:])
		return o, nil
	case KindIssued:
		if len(body) != 8 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.issued")
		}
		return Option{Kind: kind, Issued: types.DateTime(binary.BigEndian.Uint64(body))}, nil
	case KindExpiry:
		if len(body) != 8 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.expiry")
		}
		return Option{Kind: kind, Expiry: types.DateTime(binary.BigEndian.Uint64(body))}, nil
	case KindLimit:
		if len(body) != 4 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.limit")
		}
		return Option{Kind: kind, Limit: binary.BigEndian.Uint32(body)}, nil
	case KindMeta:
		parts := strings.SplitN(string(body), "|", 2)
		if len(parts) != 2 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOption, "options.meta")
		}
		return Option{Kind: kind, MetaKey: parts[0], MetaVal: parts[1]}, nil
	case KindCoord:
		if len(body) != 12 {
			return Option{}, dsferr.New(dsferr.CodeInvalidOptionLength, "options.coord")
		}
		return Option{
			Kind: kind,
			Lat:  bits2f32(binary.BigEndian.Uint32(body[0:4])),
			Lng:  bits2f32(binary.BigEndian.Uint32(body[4:8])),
			Alt:  bits2f32(binary.BigEndian.Uint32(body[8:12])),
		}, nil
	default:
		if kind >= AppPrivateThreshold {
			return Option{Kind: kind, Raw: append([]byte{}, body...)}, nil
		}
		// Unknown kind below the application-private threshold: still
		// consumed as opaque data rather than rejected, so a reader
		// that doesn't know about a new option kind can still walk
		// past it to the options that follow.
		return Option{Kind: kind, Raw: append([]byte{}, body...)}, nil
	}
}

// Filters exposes first-match lookups over a decoded option list,
// mirroring the handful of options every caller actually needs instead
// of forcing a manual scan at each call site.
type Filters []Option

func (f Filters) PubKey() (types.PublicKey, bool) {
	for _, o := range f {
		if o.Kind == KindPubKey {
			return o.PubKey, true
		}
	}
	return types.PublicKey{}, false
}

func (f Filters) PeerId() (types.Id, bool) {
	for _, o := range f {
		if o.Kind == KindPeerId {
			return o.PeerId, true
		}
	}
	return types.Id{}, false
}

func (f Filters) PrevSig() (types.Signature, bool) {
	for _, o := range f {
		if o.Kind == KindPrevSig {
			return o.PrevSig, true
		}
	}
	return types.Signature{}, false
}

func (f Filters) Issued() (types.DateTime, bool) {
	for _, o := range f {
		if o.Kind == KindIssued {
			return o.Issued, true
		}
	}
	return 0, false
}

func (f Filters) Expiry() (types.DateTime, bool) {
	for _, o := range f {
		if o.Kind == KindExpiry {
			return o.Expiry, true
		}
	}
	return 0, false
}

func (f Filters) Name() (string, bool) {
	for _, o := range f {
		if o.Kind == KindName {
			return o.Text, true
		}
	}
	return "", false
}

func (f Filters) Address() (types.Address, bool) {
	for _, o := range f {
		if o.Kind == KindIPv4 || o.Kind == KindIPv6 {
			return o.Address, true
		}
	}
	return types.Address{}, false
}

func (o Option) String() string {
	return fmt.Sprintf("Option{kind=%d}", o.Kind)
}
