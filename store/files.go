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
	"sort"
	"strings"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/observability/logging"
)

// RecordFileVersion saves the file's bytes to the content-addressed blob
// table (first-writer-wins on hash) and records a FileVersion for
// (path, hash). If creatorSpan is non-nil it is attached for provenance.
func (s *Store) RecordFileVersion(ctx context.Context, path string, content []byte, creatorSpan *domain.SpanID) (domain.FileVersion, error) {
	hash := domain.ContentHash(content)
	if err := s.backend.SaveFileContent(ctx, hash, content); err != nil {
		return domain.FileVersion{}, err
	}

	fv := domain.NewFileVersion(path, hash, int64(len(content)))
	fv.CreatorSpan = creatorSpan

	s.mu.Lock()
	s.fileVersion = append(s.fileVersion, fv)
	s.mu.Unlock()

	if err := s.backend.SaveFileVersion(ctx, fv); err != nil {
		s.log.Error(ctx, "failed to persist file version", logging.String("path", path), logging.Error(err))
	}
	s.publish(ctx, domain.EventFileVersionCreated, map[string]interface{}{"file_version": fv})
	return fv, nil
}

// FileContent loads the blob for hash from the backend. File content
// itself is never cached in memory — only its FileVersion metadata is.
func (s *Store) FileContent(ctx context.Context, hash string) ([]byte, error) {
	return s.backend.LoadFileContent(ctx, hash)
}

// ListFileVersions returns every recorded version whose path starts with
// pathPrefix (empty prefix matches all), ascending by creation time.
func (s *Store) ListFileVersions(pathPrefix string) []domain.FileVersion {
	s.mu.RLock()
	all := make([]domain.FileVersion, len(s.fileVersion))
	copy(all, s.fileVersion)
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if pathPrefix == "" {
		return all
	}
	out := make([]domain.FileVersion, 0, len(all))
	for _, fv := range all {
		if strings.HasPrefix(fv.Path, pathPrefix) {
			out = append(out, fv)
		}
	}
	return out
}

// LatestFileVersion returns the most recent version recorded for path.
func (s *Store) LatestFileVersion(path string) (domain.FileVersion, bool) {
	versions := s.ListFileVersions(path)
	var latest domain.FileVersion
	found := false
	for _, fv := range versions {
		if fv.Path != path {
			continue
		}
		if !found || fv.CreatedAt.After(latest.CreatedAt) {
			latest = fv
			found = true
		}
	}
	return latest, found
}
