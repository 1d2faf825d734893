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

// Package config assembles the daemon's runtime configuration from three
// layers, applied in order: DefaultConfig(), an optional YAML/JSON file
// overlay via LoadFromFile, and an environment-variable overlay via
// LoadEnv applied last so it always wins. Validate checks cross-field
// invariants — for example, a JWT secret is required whenever the
// deployment is not running in local mode.
//
// Configuration loading does no parsing of wire formats and enforces no
// business rules beyond its own structure; it exists so the cmd/
// entrypoint has one thing to load before wiring the store, auth
// extractor, proxy, and HTTP server.
package config
