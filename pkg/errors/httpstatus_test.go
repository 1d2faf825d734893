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

package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", New(CategoryNotFound, "X", "x"), http.StatusNotFound},
		{"storage", New(CategoryStorage, "X", "x"), http.StatusInternalServerError},
		{"state machine terminal already", New(CategoryStateMachine, CodeTerminalAlready, "x"), http.StatusConflict},
		{"state machine wrong status", New(CategoryStateMachine, CodeWrongStatus, "x"), http.StatusConflict},
		{"state machine other", New(CategoryStateMachine, "OTHER", "x"), http.StatusNotFound},
		{"unauthorized default", New(CategoryUnauthorized, CodeMissingAuth, "x"), http.StatusUnauthorized},
		{"unauthorized insufficient scope", New(CategoryUnauthorized, CodeInsufficientScope, "x"), http.StatusForbidden},
		{"unauthorized org not found", New(CategoryUnauthorized, CodeOrgNotFound, "x"), http.StatusNotFound},
		{"validation", New(CategoryValidation, "X", "x"), http.StatusBadRequest},
		{"proxy body too large", New(CategoryProxy, CodeBodyTooLarge, "x"), http.StatusRequestEntityTooLarge},
		{"proxy upstream timeout", New(CategoryProxy, CodeUpstreamTimeout, "x"), http.StatusGatewayTimeout},
		{"proxy upstream failure", New(CategoryProxy, CodeUpstreamFailure, "x"), http.StatusBadGateway},
		{"network", New(CategoryNetwork, "X", "x"), http.StatusBadGateway},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"uncategorized error", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
