// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package dsferr collects the error taxonomy shared by every layer of
// the codec: wire parsing, option decoding, cryptographic operations
// and service/registry semantics. Callers distinguish failure classes
// with errors.Is against the sentinel values below rather than string
// matching.
package dsferr

import "errors"

// Code classifies a failure so callers can branch on it without
// parsing error strings.
type Code int

const (
	CodeUnknown Code = iota
	CodeIO
	CodeTime
	CodeInvalidOption
	CodeInvalidOptionLength
	CodeInvalidPageLength
	CodeInvalidPageKind
	CodeInvalidMessageKind
	CodeCryptoError
	CodeUnexpectedPageType
	CodeUnexpectedServiceId
	CodeUnexpectedApplicationId
	CodeInvalidServiceVersion
	CodeNoPrivateKey
	CodeNoPublicKey
	CodeNoSignature
	CodeExpectedPrimaryPage
	CodeExpectedSecondaryPage
	CodeExpectedDataObject
	CodeUnexpectedPeerId
	CodeNoPeerId
	CodeKeyIdMismatch
	CodePublicKeyChanged
	CodeUnimplemented
	CodeNotFound
	CodeInvalidResponse
	CodeUnknownService
	CodeInvalidSignature
	CodeNoSecretKey
	CodeSecretKeyMismatch
	CodeNoSymmetricKeys
	CodeUnsupportedSignatureMode
	CodeTimeout
	CodeRateLimited
)

var codeNames = map[Code]string{
	CodeUnknown:                  "unknown",
	CodeIO:                       "io",
	CodeTime:                     "time",
	CodeInvalidOption:            "invalid option",
	CodeInvalidOptionLength:      "invalid option length",
	CodeInvalidPageLength:        "invalid page length",
	CodeInvalidPageKind:          "invalid page kind",
	CodeInvalidMessageKind:       "invalid message kind",
	CodeCryptoError:              "crypto error",
	CodeUnexpectedPageType:       "unexpected page type",
	CodeUnexpectedServiceId:      "unexpected service id",
	CodeUnexpectedApplicationId:  "unexpected application id",
	CodeInvalidServiceVersion:    "invalid service version",
	CodeNoPrivateKey:             "no private key",
	CodeNoPublicKey:              "no public key",
	CodeNoSignature:              "no signature",
	CodeExpectedPrimaryPage:      "expected primary page",
	CodeExpectedSecondaryPage:    "expected secondary page",
	CodeExpectedDataObject:       "expected data object",
	CodeUnexpectedPeerId:         "unexpected peer id",
	CodeNoPeerId:                 "no peer id",
	CodeKeyIdMismatch:            "key id mismatch",
	CodePublicKeyChanged:         "public key changed",
	CodeUnimplemented:            "unimplemented",
	CodeNotFound:                 "not found",
	CodeInvalidResponse:          "invalid response",
	CodeUnknownService:           "unknown service",
	CodeInvalidSignature:         "invalid signature",
	CodeNoSecretKey:              "no secret key",
	CodeSecretKeyMismatch:        "secret key mismatch",
	CodeNoSymmetricKeys:          "no symmetric keys",
	CodeUnsupportedSignatureMode: "unsupported signature mode",
	CodeTimeout:                  "timeout",
	CodeRateLimited:              "rate limited",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "unknown"
}

// Error is the concrete error type returned by dsf-core packages. It
// carries a Code for programmatic dispatch, the operation that failed,
// and an optional wrapped cause.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return e.Op + ": " + e.Code.String() + ": " + e.Err.Error()
		}
		return e.Code.String() + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + e.Code.String()
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Code, letting
// errors.Is(err, dsferr.ErrNoPrivateKey) work against a wrapped *Error.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Code == e.Code
	}
	return false
}

// New builds an *Error for op with no wrapped cause.
func New(code Code, op string) error {
	return &Error{Code: code, Op: op}
}

// Wrap builds an *Error for op around cause.
func Wrap(code Code, op string, cause error) error {
	if cause == nil {
		return New(code, op)
	}
	return &Error{Code: code, Op: op, Err: cause}
}

// Sentinels for errors.Is comparison against a bare code with no
// operation context, e.g. errors.Is(err, dsferr.ErrNoSecretKey).
var (
	ErrIO                       = &Error{Code: CodeIO}
	ErrTime                     = &Error{Code: CodeTime}
	ErrInvalidOption            = &Error{Code: CodeInvalidOption}
	ErrInvalidOptionLength      = &Error{Code: CodeInvalidOptionLength}
	ErrInvalidPageLength        = &Error{Code: CodeInvalidPageLength}
	ErrInvalidPageKind          = &Error{Code: CodeInvalidPageKind}
	ErrInvalidMessageKind       = &Error{Code: CodeInvalidMessageKind}
	ErrCryptoError              = &Error{Code: CodeCryptoError}
	ErrUnexpectedPageType       = &Error{Code: CodeUnexpectedPageType}
	ErrUnexpectedServiceId      = &Error{Code: CodeUnexpectedServiceId}
	ErrUnexpectedApplicationId  = &Error{Code: CodeUnexpectedApplicationId}
	ErrInvalidServiceVersion    = &Error{Code: CodeInvalidServiceVersion}
	ErrNoPrivateKey             = &Error{Code: CodeNoPrivateKey}
	ErrNoPublicKey              = &Error{Code: CodeNoPublicKey}
	ErrNoSignature              = &Error{Code: CodeNoSignature}
	ErrExpectedPrimaryPage      = &Error{Code: CodeExpectedPrimaryPage}
	ErrExpectedSecondaryPage    = &Error{Code: CodeExpectedSecondaryPage}
	ErrExpectedDataObject       = &Error{Code: CodeExpectedDataObject}
	ErrUnexpectedPeerId         = &Error{Code: CodeUnexpectedPeerId}
	ErrNoPeerId                 = &Error{Code: CodeNoPeerId}
	ErrKeyIdMismatch            = &Error{Code: CodeKeyIdMismatch}
	ErrPublicKeyChanged         = &Error{Code: CodePublicKeyChanged}
	ErrUnimplemented            = &Error{Code: CodeUnimplemented}
	ErrNotFound                 = &Error{Code: CodeNotFound}
	ErrInvalidResponse          = &Error{Code: CodeInvalidResponse}
	ErrUnknownService           = &Error{Code: CodeUnknownService}
	ErrInvalidSignature         = &Error{Code: CodeInvalidSignature}
	ErrNoSecretKey              = &Error{Code: CodeNoSecretKey}
	ErrSecretKeyMismatch        = &Error{Code: CodeSecretKeyMismatch}
	ErrNoSymmetricKeys          = &Error{Code: CodeNoSymmetricKeys}
	ErrUnsupportedSignatureMode = &Error{Code: CodeUnsupportedSignatureMode}
	ErrTimeout                  = &Error{Code: CodeTimeout}
	ErrRateLimited              = &Error{Code: CodeRateLimited}
)
