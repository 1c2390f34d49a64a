// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

// Kind is the 16-bit object kind field. The two bits just below the
// top bit (bits 13-14) select a category (page, request, response,
// data); the top bit flags an application-private kind space that
// every layer of this package passes through without interpreting.
type Kind uint16

const (
	kindMask     Kind = 0b0110_0000_0000_0000
	appFlag      Kind = 0b1000_0000_0000_0000
	pageFlags    Kind = 0b0000_0000_0000_0000
	requestFlags Kind = 0b0010_0000_0000_0000
	responseFlags Kind = 0b0100_0000_0000_0000
	dataFlags    Kind = 0b0110_0000_0000_0000
)

// Page kinds.
const (
	PageGeneric  Kind = 0x0000 | pageFlags
	PagePeer     Kind = 0x0001 | pageFlags
	PageReplica  Kind = 0x0002 | pageFlags
	PageTertiary Kind = 0x0003 | pageFlags
	PagePrivate  Kind = 0x0FFF | pageFlags
)

// Request kinds.
const (
	RequestHello      Kind = 0x0000 | requestFlags
	RequestPing       Kind = 0x0001 | requestFlags
	RequestFindNodes  Kind = 0x0002 | requestFlags
	RequestFindValues Kind = 0x0003 | requestFlags
	RequestStore      Kind = 0x0004 | requestFlags
	RequestSubscribe  Kind = 0x0005 | requestFlags
	RequestQuery      Kind = 0x0006 | requestFlags
	RequestPushData   Kind = 0x0007 | requestFlags
	RequestUnsubscribe Kind = 0x0008 | requestFlags
	RequestRegister   Kind = 0x0009 | requestFlags
	RequestUnregister Kind = 0x000A | requestFlags
	RequestDiscover   Kind = 0x000B | requestFlags
	RequestLocate     Kind = 0x000C | requestFlags
)

// Response kinds.
const (
	ResponseStatus     Kind = 0x0000 | responseFlags
	ResponseNoResult   Kind = 0x0001 | responseFlags
	ResponseNodesFound Kind = 0x0002 | responseFlags
	ResponseValuesFound Kind = 0x0003 | responseFlags
	ResponsePullData   Kind = 0x0004 | responseFlags
)

// Data kinds.
const (
	DataGeneric Kind = 0x0000 | dataFlags
	DataIot     Kind = 0x0001 | dataFlags
)

func (k Kind) category() Kind { return k & kindMask }

// IsApplication reports whether the kind falls in the
// application-private space (top bit set), opaque to this package.
func (k Kind) IsApplication() bool { return k&appFlag != 0 }

// IsPage reports whether k is a page kind.
func (k Kind) IsPage() bool { return !k.IsApplication() && k.category() == pageFlags }

// IsRequest reports whether k is a request message kind.
func (k Kind) IsRequest() bool { return !k.IsApplication() && k.category() == requestFlags }

// IsResponse reports whether k is a response message kind.
func (k Kind) IsResponse() bool { return !k.IsApplication() && k.category() == responseFlags }

// IsMessage reports whether k is a request or response kind.
func (k Kind) IsMessage() bool { return k.IsRequest() || k.IsResponse() }

// IsData reports whether k is a data-block kind.
func (k Kind) IsData() bool { return !k.IsApplication() && k.category() == dataFlags }

// ApplicationKind wraps an application-defined kind value, setting the
// application-private flag so the base packages never mistake it for
// one of the reserved categories above.
func ApplicationKind(v uint16) Kind { return Kind(v) | appFlag }
