// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package parser verifies and decodes received containers: resolving
// the signing key for a given service id, checking the signature, and
// decrypting the body when a secret key is available.
package parser

import (
	"sync"

	"github.com/dsfproto/dsf-core/internal/types"
)

// KeySource resolves the key material associated with a service id.
// Implementations range from a static in-memory map to a persistent
// store; composing them (e.g. wrapping one in a cache) lets callers
// tune the lookup cost without touching the parser itself.
type KeySource interface {
	Lookup(id types.Id) (types.Keys, bool)
}

// MappingKeySource is a KeySource backed by a plain map, typically
// populated up front from known peers or a configuration file.
type MappingKeySource struct {
	mu sync.RWMutex
	m  map[types.Id]types.Keys
}

// NewMappingKeySource builds an empty MappingKeySource.
func NewMappingKeySource() *MappingKeySource {
	return &MappingKeySource{m: make(map[types.Id]types.Keys)}
}

// Set associates keys with id, overwriting any previous entry.
func (s *MappingKeySource) Set(id types.Id, keys types.Keys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = keys
}

func (s *MappingKeySource) Lookup(id types.Id) (types.Keys, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.m[id]
	return k, ok
}

// CachedKeySource wraps another KeySource, remembering every lookup it
// makes (including misses, so repeated queries for an unknown id don't
// keep hitting the backing source).
type CachedKeySource struct {
	inner KeySource
	mu    sync.Mutex
	cache map[types.Id]cacheEntry
}

type cacheEntry struct {
	keys  types.Keys
	found bool
}

// NewCachedKeySource wraps inner with an unbounded in-memory cache.
func NewCachedKeySource(inner KeySource) *CachedKeySource {
	return &CachedKeySource{inner: inner, cache: make(map[types.Id]cacheEntry)}
}

func (s *CachedKeySource) Lookup(id types.Id) (types.Keys, bool) {
	s.mu.Lock()
	if e, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return e.keys, e.found
	}
	s.mu.Unlock()

	keys, found := s.inner.Lookup(id)

	s.mu.Lock()
	s.cache[id] = cacheEntry{keys: keys, found: found}
	s.mu.Unlock()
	return keys, found
}

// NullKeySource never resolves anything; it's a zero-value-safe
// default for parsers that only ever verify against an explicitly
// supplied key.
type NullKeySource struct{}

func (NullKeySource) Lookup(types.Id) (types.Keys, bool) { return types.Keys{}, false }
