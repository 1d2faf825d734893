// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

// KeyPrefix is the only API key prefix this deployment issues; no
// coexisting alternate prefix is implemented.
const KeyPrefix = "tw_sk_"

// keyPrefixLen is how many leading characters of a full key are stored
// unhashed as the lookup prefix.
const keyPrefixLen = 16

// APIKey is the persisted record for one issued API key. KeyHash is a
// bcrypt digest of the full key; the plaintext key is only ever returned
// once, at creation time.
type APIKey struct {
	ID         string
	Org        domain.OrgID
	Name       string
	KeyPrefix  string
	KeyHash    string
	Scopes     []Scope
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
}

// GenerateAPIKey mints a fresh tw_sk_ key: 24 random bytes, URL-safe
// base64 without padding.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.ErrBackend.Wrap(err)
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashAPIKey bcrypts the full key for storage.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.ErrBackend.Wrap(err)
	}
	return string(hash), nil
}

// Prefix returns the lookup prefix of a full key: its first 16 characters.
func Prefix(key string) string {
	if len(key) < keyPrefixLen {
		return key
	}
	return key[:keyPrefixLen]
}

// VerifyAPIKey bcrypt-compares key against the stored hash.
func VerifyAPIKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// KeyStore resolves a presented API key to its issuing context. It is
// deliberately narrow — the identity store itself (a Postgres-backed
// service) is an external collaborator; KeyStore is the boundary
// contract the auth extractor depends on.
type KeyStore interface {
	// LookupByPrefix returns every persisted key sharing prefix, so the
	// caller can bcrypt-verify the tail against each candidate.
	LookupByPrefix(prefix string) ([]APIKey, error)
	// MarkUsed records a successful verification's timestamp, updated
	// out-of-band from the verification call itself.
	MarkUsed(id string, at time.Time)
}

// MemoryKeyStore is an in-process KeyStore, used by local-mode and cloud
// deployments whose identity store has not yet been wired (and by tests).
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]APIKey // by id
}

// NewMemoryKeyStore constructs an empty MemoryKeyStore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]APIKey)}
}

// Add registers a key record, typically produced by IssueAPIKey.
func (m *MemoryKeyStore) Add(k APIKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[k.ID] = k
}

// Revoke removes a key record by id.
func (m *MemoryKeyStore) Revoke(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, id)
}

func (m *MemoryKeyStore) LookupByPrefix(prefix string) ([]APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []APIKey
	for _, k := range m.keys {
		if k.KeyPrefix == prefix {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryKeyStore) MarkUsed(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.keys[id]; ok {
		k.LastUsedAt = &at
		m.keys[id] = k
	}
}

// IssueAPIKey generates, hashes, and registers a new key for org with the
// given scopes, returning both the record and the one-time plaintext key.
func IssueAPIKey(store *MemoryKeyStore, org domain.OrgID, name string, scopes []Scope, expiresAt *time.Time) (APIKey, string, error) {
	plain, err := GenerateAPIKey()
	if err != nil {
		return APIKey{}, "", err
	}
	hash, err := HashAPIKey(plain)
	if err != nil {
		return APIKey{}, "", err
	}
	rec := APIKey{
		ID:        string(domain.NewSpanID()),
		Org:       org,
		Name:      name,
		KeyPrefix: Prefix(plain),
		KeyHash:   hash,
		Scopes:    scopes,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	store.Add(rec)
	return rec, plain, nil
}

// AuthenticateAPIKey resolves a presented full key against store,
// returning the authenticated Context or a mapped auth error.
func AuthenticateAPIKey(store KeyStore, key string) (Context, error) {
	candidates, err := store.LookupByPrefix(Prefix(key))
	if err != nil {
		return Context{}, err
	}
	for _, cand := range candidates {
		if !VerifyAPIKey(key, cand.KeyHash) {
			continue
		}
		if cand.ExpiresAt != nil && time.Now().After(*cand.ExpiresAt) {
			return Context{}, errors.ErrExpiredAPIKey
		}
		store.MarkUsed(cand.ID, time.Now().UTC())
		org := cand.Org
		return Context{Org: &org, Scopes: cand.Scopes, FromAPIKey: true}, nil
	}
	return Context{}, errors.ErrInvalidAPIKey
}
