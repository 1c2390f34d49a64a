// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

import (
	"encoding/binary"

	"github.com/dsfproto/dsf-core/internal/types"
)

// Wire layout constants. HeaderLen and IDLen together fix the offset
// every other region is computed from.
const (
	HeaderLen = 16
	// BodyOffset is HeaderLen + types.IDLen: the id is not logically
	// part of the fixed header, but it always immediately follows it.
	BodyOffset = HeaderLen + types.IDLen
	// TagLen is the size of the AEAD tag+nonce block appended after
	// the private options region when a container is encrypted.
	TagLen = types.SecretMetaLen
)

const (
	offProtoVersion      = 0
	offApplicationId     = 2
	offKind              = 4
	offFlags             = 6
	offIndex             = 8
	offDataLen           = 10
	offPrivateOptionsLen = 12
	offPublicOptionsLen  = 14
)

// Flags is the 16-bit object flags field.
type Flags uint16

const (
	FlagSecondary      Flags = 1 << 0
	FlagTertiary       Flags = 1 << 1
	FlagEncrypted      Flags = 1 << 2
	FlagAddressRequest Flags = 1 << 3
	FlagPubKeyRequest  Flags = 1 << 4
	FlagSymmetricMode  Flags = 1 << 5
	FlagSymmetricDir   Flags = 1 << 6
	FlagConstrained    Flags = 1 << 7
	FlagNoPersist      Flags = 1 << 8
	FlagQosPrioLatency Flags = 1 << 9
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Header is a 16-byte, fixed-layout accessor over a header-sized slice
// of a container's buffer. It never copies; all reads and writes go
// straight through to buf.
type Header struct {
	buf []byte
}

// NewHeader wraps the first HeaderLen bytes of buf as a Header view.
func NewHeader(buf []byte) Header { return Header{buf: buf[:HeaderLen]} }

func (h Header) ProtocolVersion() uint16 { return binary.BigEndian.Uint16(h.buf[offProtoVersion:]) }
func (h Header) SetProtocolVersion(v uint16) {
	binary.BigEndian.PutUint16(h.buf[offProtoVersion:], v)
}

func (h Header) ApplicationId() uint16 { return binary.BigEndian.Uint16(h.buf[offApplicationId:]) }
func (h Header) SetApplicationId(v uint16) {
	binary.BigEndian.PutUint16(h.buf[offApplicationId:], v)
}

func (h Header) Kind() Kind { return Kind(binary.BigEndian.Uint16(h.buf[offKind:])) }
func (h Header) SetKind(k Kind) { binary.BigEndian.PutUint16(h.buf[offKind:], uint16(k)) }

func (h Header) Flags() Flags { return Flags(binary.BigEndian.Uint16(h.buf[offFlags:])) }
func (h Header) SetFlags(f Flags) { binary.BigEndian.PutUint16(h.buf[offFlags:], uint16(f)) }

func (h Header) Index() uint16 { return binary.BigEndian.Uint16(h.buf[offIndex:]) }
func (h Header) SetIndex(v uint16) { binary.BigEndian.PutUint16(h.buf[offIndex:], v) }

func (h Header) DataLen() uint16 { return binary.BigEndian.Uint16(h.buf[offDataLen:]) }
func (h Header) SetDataLen(v uint16) { binary.BigEndian.PutUint16(h.buf[offDataLen:], v) }

func (h Header) PrivateOptionsLen() uint16 {
	return binary.BigEndian.Uint16(h.buf[offPrivateOptionsLen:])
}
func (h Header) SetPrivateOptionsLen(v uint16) {
	binary.BigEndian.PutUint16(h.buf[offPrivateOptionsLen:], v)
}

func (h Header) PublicOptionsLen() uint16 {
	return binary.BigEndian.Uint16(h.buf[offPublicOptionsLen:])
}
func (h Header) SetPublicOptionsLen(v uint16) {
	binary.BigEndian.PutUint16(h.buf[offPublicOptionsLen:], v)
}

// Descriptor is the set of fields needed to initialize a header; the
// three length fields are always derived during encoding rather than
// taken from the caller, since they depend on what gets written next.
type Descriptor struct {
	ProtocolVersion uint16
	ApplicationId   uint16
	Kind            Kind
	Flags           Flags
	Index           uint16
}

// Encode writes d's fields into h and zeroes the three length fields,
// which the builder fills in as each region is written.
func (h Header) Encode(d Descriptor) {
	h.SetProtocolVersion(d.ProtocolVersion)
	h.SetApplicationId(d.ApplicationId)
	h.SetKind(d.Kind)
	h.SetFlags(d.Flags)
	h.SetIndex(d.Index)
	h.SetDataLen(0)
	h.SetPrivateOptionsLen(0)
	h.SetPublicOptionsLen(0)
}

// PrivateOptionsOffset returns the offset of the private options
// region, which immediately follows the body.
func (h Header) PrivateOptionsOffset() int {
	return BodyOffset + int(h.DataLen())
}

// TagOffset returns the offset of the AEAD tag block, which follows
// the private options region whether or not the container is actually
// encrypted (callers consult Flags to know whether it's present).
func (h Header) TagOffset() int {
	return h.PrivateOptionsOffset() + int(h.PrivateOptionsLen())
}

// PublicOptionsOffset returns the offset of the public options region.
func (h Header) PublicOptionsOffset() int {
	off := h.TagOffset()
	if h.Flags().Has(FlagEncrypted) {
		off += TagLen
	}
	return off
}

// SignatureOffset returns the offset of the trailing signature.
func (h Header) SignatureOffset() int {
	return h.PublicOptionsOffset() + int(h.PublicOptionsLen())
}

// EncodedLen returns the total container length implied by the
// header's current field values.
func (h Header) EncodedLen() int {
	return h.SignatureOffset() + types.SignatureLen
}
