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
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

// User is one login identity in cloud mode, scoped to a single
// organisation.
type User struct {
	Email        string
	Org          domain.OrgID
	PasswordHash string
	Scopes       []Scope
}

// UserStore persists login identities. MemoryUserStore is the only
// implementation; the relational and remote backends do not carry users,
// which keeps identity storage independent of the span/trace backend a
// deployment picks.
type UserStore interface {
	Find(email string) (User, bool)
	Put(u User)
}

// MemoryUserStore is a concurrency-safe in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryUserStore constructs an empty user directory.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (m *MemoryUserStore) Find(email string) (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[normalizeEmail(email)]
	return u, ok
}

func (m *MemoryUserStore) Put(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[normalizeEmail(u.Email)] = u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp hashes password and registers a new user for org, granting the
// default traces-read/traces-write scope pair. ErrAlreadyExists is
// returned if the email is taken.
func SignUp(store UserStore, email, password string, org domain.OrgID) (User, error) {
	if _, exists := store.Find(email); exists {
		return User{}, errors.ErrAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.ErrAuthInvalidFormat.Wrap(err)
	}
	u := User{
		Email:        normalizeEmail(email),
		Org:          org,
		PasswordHash: string(hash),
		Scopes:       []Scope{ScopeTracesRead, ScopeTracesWrite},
	}
	store.Put(u)
	return u, nil
}

// Login verifies email/password and issues a signed session token via
// signer.
func Login(store UserStore, signer *SessionSigner, email, password string) (string, error) {
	u, ok := store.Find(email)
	if !ok {
		return "", errors.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", errors.ErrInvalidSession
	}
	return signer.Issue(u.Email, u.Org, u.Scopes)
}

// SetPassword overwrites a user's password hash, used by the
// password-reset flow. ErrUserNotFound if the email is unknown.
func SetPassword(store UserStore, email, newPassword string) error {
	u, ok := store.Find(email)
	if !ok {
		return errors.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrAuthInvalidFormat.Wrap(err)
	}
	u.PasswordHash = string(hash)
	store.Put(u)
	return nil
}
