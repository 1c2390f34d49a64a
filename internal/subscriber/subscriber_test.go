// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package subscriber

import (
	"testing"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/parser"
	"github.com/dsfproto/dsf-core/internal/service"
	"github.com/dsfproto/dsf-core/internal/types"
)

func window() service.PublishOptions {
	now := types.Now()
	return service.PublishOptions{Issued: now, Expiry: now}
}

func publishAndParse(t *testing.T, svc *service.Service) parser.Parsed {
	t.Helper()
	c, err := svc.PublishPrimary(window())
	if err != nil {
		t.Fatalf("publish_primary: %v", err)
	}
	p := parser.New(crypto.Native{}, nil)
	parsed, err := p.VerifyEarly(c.Raw(), svc.PublicKey())
	if err != nil {
		t.Fatalf("verify_early: %v", err)
	}
	return parsed
}

func TestLoadReconstructsReplica(t *testing.T) {
	svc, err := service.NewBuilder(crypto.Native{}).Body([]byte("v1")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	parsed := publishAndParse(t, svc)

	r, err := Load(crypto.Native{}, parsed)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Id() != svc.Id() {
		t.Fatalf("replica id mismatch")
	}
	if string(r.Body()) != "v1" {
		t.Fatalf("unexpected body: %q", r.Body())
	}
	if r.Version() != 1 {
		t.Fatalf("expected version 1, got %d", r.Version())
	}
}

func TestApplyAdvancesOnNewerVersion(t *testing.T) {
	svc, err := service.NewBuilder(crypto.Native{}).Body([]byte("v1")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	r, err := Load(crypto.Native{}, publishAndParse(t, svc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := svc.Update(func(body *[]byte, _ *[]options.Option, _ *[]options.Option) {
		*body = []byte("v2")
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := r.Apply(publishAndParse(t, svc)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if string(r.Body()) != "v2" {
		t.Fatalf("expected updated body, got %q", r.Body())
	}
	// Update bumps the origin to version 2 and PublishPrimary bumps it
	// again, so the applied page carries index 3.
	if r.Version() != 3 {
		t.Fatalf("expected version 3, got %d", r.Version())
	}
}

func TestApplyIsNoOpOnEqualVersion(t *testing.T) {
	svc, err := service.NewBuilder(crypto.Native{}).Body([]byte("v1")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	parsed := publishAndParse(t, svc)
	r, err := Load(crypto.Native{}, parsed)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.Apply(parsed); err != nil {
		t.Fatalf("expected equal-version apply to be a no-op, got error: %v", err)
	}
	if string(r.Body()) != "v1" {
		t.Fatalf("body should be unchanged")
	}
}

func TestApplyRejectsVersionRegression(t *testing.T) {
	svc, err := service.NewBuilder(crypto.Native{}).Body([]byte("v1")).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	older := publishAndParse(t, svc)
	r, err := Load(crypto.Native{}, older)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := svc.Update(func(body *[]byte, _ *[]options.Option, _ *[]options.Option) {
		*body = []byte("v2")
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := r.Apply(publishAndParse(t, svc)); err != nil {
		t.Fatalf("apply v2: %v", err)
	}
	if err := r.Apply(older); err == nil {
		t.Fatalf("expected error reapplying a stale version")
	}
}

func TestApplyRejectsMismatchedId(t *testing.T) {
	svcA, err := service.NewBuilder(crypto.Native{}).Body([]byte("a")).Build()
	if err != nil {
		t.Fatalf("build a: %v", err)
	}
	svcB, err := service.NewBuilder(crypto.Native{}).Body([]byte("b")).Build()
	if err != nil {
		t.Fatalf("build b: %v", err)
	}
	r, err := Load(crypto.Native{}, publishAndParse(t, svcA))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.Apply(publishAndParse(t, svcB)); err == nil {
		t.Fatalf("expected error applying an update from a different service id")
	}
}

func TestLoadRejectsSecondaryFlag(t *testing.T) {
	svc, err := service.NewBuilder(crypto.Native{}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, targetPub, _, _ := crypto.Native{}.NewPk()
	target := crypto.Native{}.Hash(targetPub)
	c, err := svc.PublishSecondary(target, svc.Kind(), []byte("replica"), window())
	if err != nil {
		t.Fatalf("publish_secondary: %v", err)
	}

	p := parser.New(crypto.Native{}, nil)
	parsed, err := p.VerifyEarly(c.Raw(), svc.PublicKey())
	if err != nil {
		t.Fatalf("verify_early: %v", err)
	}
	if _, err := Load(crypto.Native{}, parsed); err == nil {
		t.Fatalf("expected error loading a secondary-flagged page as a replica")
	}
}
