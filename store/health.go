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

package store

import (
	"context"

	"github.com/sagelabs-oss/sentryd/observability/health"
)

// HealthChecker reports the store as healthy whenever it is non-nil,
// naming the backend type in the result's details. It does not probe
// the backend itself.
type HealthChecker struct {
	store *Store
}

// NewHealthChecker wraps st as a health.Checker.
func NewHealthChecker(st *Store) *HealthChecker {
	return &HealthChecker{store: st}
}

func (c *HealthChecker) Name() string { return "store" }

func (c *HealthChecker) Check(ctx context.Context) health.CheckResult {
	if c.store == nil {
		return health.CheckResult{Name: c.Name(), Status: health.StatusUnhealthy, Message: "store not initialized"}
	}
	return health.CheckResult{
		Name:    c.Name(),
		Status:  health.StatusHealthy,
		Details: map[string]interface{}{"backend": c.store.BackendType()},
	}
}
