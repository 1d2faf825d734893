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

package api

import (
	"net/http"
	"time"

	"github.com/sagelabs-oss/sentryd/auth"
	"github.com/sagelabs-oss/sentryd/domain"
)

const sessionCookieName = "session"

// authConfigResponse tells a client how to authenticate before it has any
// credentials: whether the deployment runs in local mode (no login
// required) and whether self-service signup is open.
type authConfigResponse struct {
	LocalMode   bool `json:"local_mode"`
	SignupOpen  bool `json:"signup_open"`
	HasPassword bool `json:"password_auth"`
}

func (s *Server) handleAuthConfig(w http.ResponseWriter, r *http.Request) {
	writeOK(w, authConfigResponse{
		LocalMode:   s.Auth.LocalMode,
		SignupOpen:  s.AllowSignup && s.Users != nil,
		HasPassword: s.Users != nil,
	})
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Org      string `json:"org"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if s.Users == nil || !s.AllowSignup {
		writeNotFound(w, "signup is disabled for this deployment")
		return
	}
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}
	org := domain.OrgID(req.Org)
	if org == "" {
		org = domain.OrgID("default")
	}
	u, err := auth.SignUp(s.Users, req.Email, req.Password, org)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.Sessions.Issue(u.Email, u.Org, u.Scopes)
	if err != nil {
		writeError(w, err)
		return
	}
	setSessionCookie(w, token)
	writeCreated(w, map[string]string{"email": u.Email, "org": string(u.Org)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.Users == nil {
		writeNotFound(w, "password login is disabled for this deployment")
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	token, err := auth.Login(s.Users, s.Sessions, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	setSessionCookie(w, token)
	writeOK(w, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

type passwordResetRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	if s.Users == nil {
		writeNotFound(w, "password auth is disabled for this deployment")
		return
	}
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := auth.SetPassword(s.Users, req.Email, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
	})
}
