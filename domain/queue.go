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

package domain

import (
	"encoding/json"
	"time"
)

// QueueItemStatus tracks the human-labelling state of one datapoint:
// pending -> claimed -> completed. Transitions are one-directional and
// checked the same way span status transitions are.
type QueueItemStatus string

const (
	QueueItemPending   QueueItemStatus = "pending"
	QueueItemClaimed   QueueItemStatus = "claimed"
	QueueItemCompleted QueueItemStatus = "completed"
)

// QueueItem is one labelling task over a single datapoint.
type QueueItem struct {
	ID          QueueItemID     `json:"id"`
	DatasetID   DatasetID       `json:"dataset_id"`
	DatapointID DatapointID     `json:"datapoint_id"`
	Status      QueueItemStatus `json:"status"`
	ClaimedBy   *string         `json:"claimed_by,omitempty"`
	OriginalData json.RawMessage `json:"original_data"`
	EditedData  json.RawMessage `json:"edited_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewQueueItem creates a pending queue item for a datapoint.
func NewQueueItem(datasetID DatasetID, datapointID DatapointID, originalData json.RawMessage) QueueItem {
	return QueueItem{
		ID:           NewQueueItemID(),
		DatasetID:    datasetID,
		DatapointID:  datapointID,
		Status:       QueueItemPending,
		OriginalData: originalData,
		CreatedAt:    time.Now().UTC(),
	}
}

// Claim transitions a pending item to claimed. ok is false (and q is
// returned unchanged) if the item was not pending.
func (q QueueItem) Claim(by string) (out QueueItem, ok bool) {
	if q.Status != QueueItemPending {
		return q, false
	}
	q.Status = QueueItemClaimed
	q.ClaimedBy = &by
	return q, true
}

// Complete transitions a claimed item to completed, optionally recording
// edited data. ok is false (and q is returned unchanged) if the item was
// not claimed.
func (q QueueItem) Complete(editedData json.RawMessage) (out QueueItem, ok bool) {
	if q.Status != QueueItemClaimed {
		return q, false
	}
	q.Status = QueueItemCompleted
	if editedData != nil {
		q.EditedData = editedData
	}
	return q, true
}
