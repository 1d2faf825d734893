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

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/observability/logging"
)

// CreateDataset inserts a new, empty dataset.
func (s *Store) CreateDataset(ctx context.Context, ds domain.Dataset) domain.Dataset {
	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.mu.Unlock()

	if err := s.backend.SaveDataset(ctx, ds); err != nil {
		s.log.Error(ctx, "failed to persist dataset", logging.String("dataset_id", string(ds.ID)), logging.Error(err))
	}
	s.publish(ctx, domain.EventDatasetCreated, map[string]interface{}{"dataset": ds})
	return ds
}

// GetDataset looks up a dataset by id.
func (s *Store) GetDataset(id domain.DatasetID) (domain.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	return d, ok
}

// ListDatasets returns every dataset, ascending by id.
func (s *Store) ListDatasets() []domain.Dataset {
	s.mu.RLock()
	out := make([]domain.Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, d)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DeleteDataset removes the dataset and cascades to its datapoints and
// queue items.
func (s *Store) DeleteDataset(ctx context.Context, id domain.DatasetID) bool {
	s.mu.Lock()
	_, ok := s.datasets[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	for dpID, dp := range s.datapoints {
		if dp.DatasetID == id {
			delete(s.datapoints, dpID)
		}
	}
	for qiID, qi := range s.queueItems {
		if qi.DatasetID == id {
			delete(s.queueItems, qiID)
		}
	}
	delete(s.datasets, id)
	s.mu.Unlock()

	if _, err := s.backend.DeleteDataset(ctx, id); err != nil {
		s.log.Error(ctx, "failed to delete dataset in backend", logging.String("dataset_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, domain.EventDatasetDeleted, map[string]interface{}{"dataset_id": id})
	return true
}

// CreateDatapoint inserts a new datapoint into an existing dataset.
func (s *Store) CreateDatapoint(ctx context.Context, dp domain.Datapoint) domain.Datapoint {
	s.mu.Lock()
	s.datapoints[dp.ID] = dp
	s.mu.Unlock()

	if err := s.backend.SaveDatapoint(ctx, dp); err != nil {
		s.log.Error(ctx, "failed to persist datapoint", logging.String("datapoint_id", string(dp.ID)), logging.Error(err))
	}
	s.publish(ctx, domain.EventDatapointCreated, map[string]interface{}{"datapoint": dp})
	return dp
}

// CreateDatapointsBatch inserts many datapoints in one write-through pass,
// chunking backend calls at storage.MaxBatchSize to bound memory use.
func (s *Store) CreateDatapointsBatch(ctx context.Context, dps []domain.Datapoint) []domain.Datapoint {
	s.mu.Lock()
	for _, dp := range dps {
		s.datapoints[dp.ID] = dp
	}
	s.mu.Unlock()

	const chunkSize = 1000
	for i := 0; i < len(dps); i += chunkSize {
		end := i + chunkSize
		if end > len(dps) {
			end = len(dps)
		}
		if err := s.backend.SaveDatapointsBatch(ctx, dps[i:end]); err != nil {
			s.log.Error(ctx, "failed to persist datapoint batch", logging.Int("count", end-i), logging.Error(err))
		}
	}
	for _, dp := range dps {
		s.publish(ctx, domain.EventDatapointCreated, map[string]interface{}{"datapoint": dp})
	}
	return dps
}

// GetDatapoint looks up a datapoint by id.
func (s *Store) GetDatapoint(id domain.DatapointID) (domain.Datapoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dp, ok := s.datapoints[id]
	return dp, ok
}

// ListDatapoints returns every datapoint belonging to datasetID, ascending
// by id.
func (s *Store) ListDatapoints(datasetID domain.DatasetID) []domain.Datapoint {
	s.mu.RLock()
	out := make([]domain.Datapoint, 0)
	for _, dp := range s.datapoints {
		if dp.DatasetID == datasetID {
			out = append(out, dp)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateQueueItem inserts a new pending queue item.
func (s *Store) CreateQueueItem(ctx context.Context, qi domain.QueueItem) domain.QueueItem {
	s.mu.Lock()
	s.queueItems[qi.ID] = qi
	s.mu.Unlock()

	if err := s.backend.SaveQueueItem(ctx, qi); err != nil {
		s.log.Error(ctx, "failed to persist queue item", logging.String("queue_item_id", string(qi.ID)), logging.Error(err))
	}
	s.publish(ctx, domain.EventQueueItemUpdated, map[string]interface{}{"queue_item": qi})
	s.metrics.RecordQueueEnqueued(string(qi.DatasetID))
	return qi
}

// GetQueueItem looks up a queue item by id.
func (s *Store) GetQueueItem(id domain.QueueItemID) (domain.QueueItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qi, ok := s.queueItems[id]
	return qi, ok
}

// ListQueueItems returns every queue item belonging to datasetID, ascending
// by id.
func (s *Store) ListQueueItems(datasetID domain.DatasetID) []domain.QueueItem {
	s.mu.RLock()
	out := make([]domain.QueueItem, 0)
	for _, qi := range s.queueItems {
		if qi.DatasetID == datasetID {
			out = append(out, qi)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ClaimQueueItem transitions a pending item to claimed, per the queue
// item state machine. ok is false if the item is unknown or not pending.
func (s *Store) ClaimQueueItem(ctx context.Context, id domain.QueueItemID, by string) (domain.QueueItem, bool) {
	s.mu.Lock()
	qi, ok := s.queueItems[id]
	if !ok {
		s.mu.Unlock()
		return domain.QueueItem{}, false
	}
	next, transitioned := qi.Claim(by)
	if !transitioned {
		s.mu.Unlock()
		return domain.QueueItem{}, false
	}
	s.queueItems[id] = next
	s.mu.Unlock()

	if err := s.backend.SaveQueueItem(ctx, next); err != nil {
		s.log.Error(ctx, "failed to persist queue item claim", logging.String("queue_item_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, domain.EventQueueItemUpdated, map[string]interface{}{"queue_item": next})
	return next, true
}

// CompleteQueueItem transitions a claimed item to completed, optionally
// recording edited data.
func (s *Store) CompleteQueueItem(ctx context.Context, id domain.QueueItemID, editedData []byte) (domain.QueueItem, bool) {
	s.mu.Lock()
	qi, ok := s.queueItems[id]
	if !ok {
		s.mu.Unlock()
		return domain.QueueItem{}, false
	}
	next, transitioned := qi.Complete(editedData)
	if !transitioned {
		s.mu.Unlock()
		return domain.QueueItem{}, false
	}
	s.queueItems[id] = next
	s.mu.Unlock()

	if err := s.backend.SaveQueueItem(ctx, next); err != nil {
		s.log.Error(ctx, "failed to persist queue item completion", logging.String("queue_item_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, domain.EventQueueItemUpdated, map[string]interface{}{"queue_item": next})
	s.metrics.RecordQueueCompleted(string(next.DatasetID))
	return next, true
}
