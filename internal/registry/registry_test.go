// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package registry

import (
	"testing"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/parser"
	"github.com/dsfproto/dsf-core/internal/service"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

func window() service.PublishOptions {
	now := types.Now()
	return service.PublishOptions{Issued: now, Expiry: now}
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	svc, err := service.NewBuilder(crypto.Native{}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return New(svc)
}

func TestResolveIsDeterministicAndDistinctPerName(t *testing.T) {
	r := newRegistry(t)
	a1 := r.Resolve(Name("alice"))
	a2 := r.Resolve(Name("alice"))
	if a1 != a2 {
		t.Fatalf("Resolve should be deterministic for the same name")
	}
	b := r.Resolve(Name("bob"))
	if a1 == b {
		t.Fatalf("distinct names should resolve to distinct ids")
	}
}

func TestResolveIsRecomputableFromPublicKeysAlone(t *testing.T) {
	full := newRegistry(t)
	pub := full.svc.PublicKey()

	replica, err := service.NewBuilder(crypto.Native{}).Id(full.Id()).PublicKey(pub).Build()
	if err != nil {
		t.Fatalf("build replica: %v", err)
	}
	replicaRegistry := New(replica)

	if full.Resolve(Name("alice")) != replicaRegistry.Resolve(Name("alice")) {
		t.Fatalf("a holder of only the registry's public key should recompute the same target id")
	}
}

func TestPublishTertiaryCarriesTargetLink(t *testing.T) {
	r := newRegistry(t)
	_, targetPub, _, _ := crypto.Native{}.NewPk()
	target := crypto.Native{}.Hash(targetPub)

	c, err := r.PublishTertiary(target, Name("alice"), window())
	if err != nil {
		t.Fatalf("publish_tertiary: %v", err)
	}
	if c.Header().Kind() != wire.PageTertiary {
		t.Fatalf("expected PageTertiary kind")
	}
	if !c.Header().Flags().Has(wire.FlagTertiary) {
		t.Fatalf("expected TERTIARY flag")
	}
	if c.Id() != r.Resolve(Name("alice")) {
		t.Fatalf("container id should be the resolved target id")
	}

	privOpts, err := c.PrivateOptionsIter()
	if err != nil {
		t.Fatalf("private_options_iter: %v", err)
	}
	got, ok := TargetInfo(privOpts)
	if !ok {
		t.Fatalf("expected a target link in the private options")
	}
	if got != target {
		t.Fatalf("target link mismatch")
	}
}

func TestPublishTertiaryVerifiesAgainstRegistryKey(t *testing.T) {
	r := newRegistry(t)
	_, targetPub, _, _ := crypto.Native{}.NewPk()
	target := crypto.Native{}.Hash(targetPub)

	c, err := r.PublishTertiary(target, Name("alice"), window())
	if err != nil {
		t.Fatalf("publish_tertiary: %v", err)
	}

	p := parser.New(crypto.Native{}, nil)
	if _, err := p.VerifyEarly(c.Raw(), r.svc.PublicKey()); err != nil {
		t.Fatalf("verify_early: %v", err)
	}
}

func TestPublishTertiaryRequiresPrivateKey(t *testing.T) {
	_, pub, _, _ := crypto.Native{}.NewPk()
	var id types.Id
	svc, err := service.NewBuilder(crypto.Native{}).Id(id).PublicKey(pub).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	r := New(svc)
	if _, err := r.PublishTertiary(id, Name("alice"), window()); err == nil {
		t.Fatalf("expected error publishing without a private key")
	}
}
