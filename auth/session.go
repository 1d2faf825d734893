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
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

// SessionTTL is how long a signed session token remains valid after
// issuance.
const SessionTTL = 7 * 24 * time.Hour

// sessionClaims is the JWT claim set for a session token: {sub, org,
// scopes, iat, exp}.
type sessionClaims struct {
	Org    string   `json:"org"`
	Scopes []Scope  `json:"scopes"`
	jwt.StandardClaims
}

// SessionSigner issues and verifies HS256 session tokens over a single
// per-deployment secret.
type SessionSigner struct {
	secret []byte
}

// NewSessionSigner constructs a signer over secret. An empty secret is
// only valid in local mode, where session verification is never reached.
func NewSessionSigner(secret string) *SessionSigner {
	return &SessionSigner{secret: []byte(secret)}
}

// Issue signs a new session token for user/org/scopes, exp = now + 7 days.
func (s *SessionSigner) Issue(user string, org domain.OrgID, scopes []Scope) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Org:    string(org),
		Scopes: scopes,
		StandardClaims: jwt.StandardClaims{
			Subject:   user,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(SessionTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.ErrAuthInvalidFormat.Wrap(err)
	}
	return signed, nil
}

// Verify parses and validates a session token, mapping expiry to
// ExpiredSession and every other failure to InvalidSession.
func (s *SessionSigner) Verify(token string) (Context, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidSession
		}
		return s.secret, nil
	})
	if err != nil {
		if verr, ok := err.(*jwt.ValidationError); ok && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return Context{}, errors.ErrExpiredSession
		}
		return Context{}, errors.ErrInvalidSession
	}
	if !parsed.Valid {
		return Context{}, errors.ErrInvalidSession
	}

	org := domain.OrgID(claims.Org)
	user := claims.Subject
	return Context{Org: &org, User: &user, Scopes: claims.Scopes}, nil
}
