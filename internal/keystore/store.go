// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package keystore holds the concurrency-safe in-memory service
// registry and the durable, gorm-backed KeySource the demo CLI uses
// to resolve peers' verification keys across runs.
package keystore

import (
	"sync"

	"github.com/dsfproto/dsf-core/internal/dsferr"
	"github.com/dsfproto/dsf-core/internal/service"
	"github.com/dsfproto/dsf-core/internal/types"
)

// Store is a concurrency-safe map of services a process holds open at
// once, mirroring the original implementation's single Manager owning
// many Service values keyed by id (src/manager.rs).
type Store struct {
	mu sync.RWMutex
	m  map[types.Id]*service.Service
}

// NewStore returns an empty Store.
func NewStore() *Store { return &Store{m: make(map[types.Id]*service.Service)} }

// Put registers svc under its own id, replacing any prior entry.
func (s *Store) Put(svc *service.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[svc.Id()] = svc
}

// Get looks up a service by id.
func (s *Store) Get(id types.Id) (*service.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.m[id]
	return svc, ok
}

// MustGet is a convenience for call sites that treat a missing
// service as a caller error rather than a recoverable miss.
func (s *Store) MustGet(id types.Id) (*service.Service, error) {
	svc, ok := s.Get(id)
	if !ok {
		return nil, dsferr.New(dsferr.CodeUnknownService, "keystore.get")
	}
	return svc, nil
}

// Delete removes a service from the store.
func (s *Store) Delete(id types.Id) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// List returns every service currently held, in no particular order.
func (s *Store) List() []*service.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*service.Service, 0, len(s.m))
	for _, svc := range s.m {
		out = append(out, svc)
	}
	return out
}
