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

// Auth errors, one per case in the request-auth pipeline.
var (
	ErrMissingAuth = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeMissingAuth,
		Message:  "no credentials supplied",
	}
	ErrAuthInvalidFormat = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeInvalidFormat,
		Message:  "credentials are malformed",
	}
	ErrInvalidAPIKey = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeInvalidAPIKey,
		Message:  "api key is invalid",
	}
	ErrExpiredAPIKey = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeExpiredAPIKey,
		Message:  "api key has expired",
	}
	ErrInvalidSession = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeInvalidSession,
		Message:  "session token is invalid",
	}
	ErrExpiredSession = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeExpiredSession,
		Message:  "session token has expired",
	}
	ErrInsufficientScope = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeInsufficientScope,
		Message:  "caller lacks the required scope",
	}
	ErrOrgNotFound = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeOrgNotFound,
		Message:  "organisation not found",
	}
	ErrUserNotFound = &Error{
		Category: CategoryUnauthorized,
		Code:     CodeUserNotFound,
		Message:  "user not found",
	}
)

// State machine errors.
var (
	ErrTerminalAlready = &Error{
		Category: CategoryStateMachine,
		Code:     CodeTerminalAlready,
		Message:  "entity already reached a terminal state",
	}
	ErrWrongStatus = &Error{
		Category: CategoryStateMachine,
		Code:     CodeWrongStatus,
		Message:  "entity is not in the status required for this transition",
	}
)

// Proxy errors.
var (
	ErrBodyTooLarge = &Error{
		Category: CategoryProxy,
		Code:     CodeBodyTooLarge,
		Message:  "request body exceeds the proxy's size cap",
	}
	ErrUpstreamTimeout = &Error{
		Category: CategoryProxy,
		Code:     CodeUpstreamTimeout,
		Message:  "upstream did not respond in time",
	}
	ErrUpstreamFailure = &Error{
		Category: CategoryProxy,
		Code:     CodeUpstreamFailure,
		Message:  "upstream request failed",
	}
)

// Persistence errors beyond the generic storage ones already declared in
// storage.go.
var (
	ErrDatabase = &Error{
		Category: CategoryStorage,
		Code:     CodeDatabase,
		Message:  "database operation failed",
	}
	ErrSerialization = &Error{
		Category: CategoryStorage,
		Code:     CodeSerialization,
		Message:  "failed to serialize or deserialize entity",
	}
	ErrIO = &Error{
		Category: CategoryStorage,
		Code:     CodeIO,
		Message:  "backend i/o failed",
	}
	ErrBackend = &Error{
		Category: CategoryStorage,
		Code:     CodeBackend,
		Message:  "backend reported a failure",
	}
)
