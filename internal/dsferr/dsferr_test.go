// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package dsferr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Wrap(CodeNoSecretKey, "service.publish_primary", fmt.Errorf("boom"))
	if !errors.Is(err, ErrNoSecretKey) {
		t.Fatalf("expected errors.Is to match ErrNoSecretKey, got %v", err)
	}
	if errors.Is(err, ErrNoPrivateKey) {
		t.Fatalf("did not expect match against a different code")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(CodeCryptoError, "op", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected unwrap to expose cause")
	}
}
