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
	"fmt"
	"time"
)

// Dataset is a named collection of Datapoints, typically assembled for
// evaluation or fine-tuning.
type Dataset struct {
	ID          DatasetID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDataset starts a new, empty dataset.
func NewDataset(name, description string) Dataset {
	now := time.Now().UTC()
	return Dataset{
		ID:          NewDatasetID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Message is one turn of an LLM conversation recorded in a datapoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DatapointKindType discriminates the two datapoint shapes.
type DatapointKindType string

const (
	DatapointKindLLMConversation DatapointKindType = "llm_conversation"
	DatapointKindGeneric         DatapointKindType = "generic"
)

// LLMConversationKind is a datapoint built from a recorded conversation.
type LLMConversationKind struct {
	Messages []Message       `json:"messages"`
	Expected *string         `json:"expected,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// GenericKind is a freeform input/expected/actual/score datapoint.
type GenericKind struct {
	Input        json.RawMessage `json:"input"`
	ExpectedOutput json.RawMessage `json:"expected_output,omitempty"`
	ActualOutput json.RawMessage `json:"actual_output,omitempty"`
	Score        *float64        `json:"score,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// DatapointKind is a tagged union over LLMConversationKind and GenericKind,
// marshaled the same internally-tagged way as SpanKind.
type DatapointKind struct {
	Type            DatapointKindType
	LLMConversation *LLMConversationKind
	Generic         *GenericKind
}

// MarshalJSON flattens the active payload alongside the discriminator.
func (k DatapointKind) MarshalJSON() ([]byte, error) {
	switch k.Type {
	case DatapointKindLLMConversation:
		if k.LLMConversation == nil {
			return nil, fmt.Errorf("domain: datapoint kind %q missing payload", k.Type)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			LLMConversationKind
		}{string(k.Type), *k.LLMConversation})
	case DatapointKindGeneric:
		if k.Generic == nil {
			return nil, fmt.Errorf("domain: datapoint kind %q missing payload", k.Type)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			GenericKind
		}{string(k.Type), *k.Generic})
	default:
		return nil, fmt.Errorf("domain: unknown datapoint kind %q", k.Type)
	}
}

// UnmarshalJSON routes on "type" back into the matching payload.
func (k *DatapointKind) UnmarshalJSON(data []byte) error {
	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return err
	}
	k.Type = DatapointKindType(disc.Type)
	switch k.Type {
	case DatapointKindLLMConversation:
		var v LLMConversationKind
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		k.LLMConversation = &v
	case DatapointKindGeneric:
		var v GenericKind
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		k.Generic = &v
	default:
		return fmt.Errorf("domain: unknown datapoint kind %q", disc.Type)
	}
	return nil
}

// DatapointSource records how a datapoint entered the dataset.
type DatapointSource string

const (
	DatapointSourceManual    DatapointSource = "manual"
	DatapointSourceSpanExport DatapointSource = "span_export"
	DatapointSourceFileUpload DatapointSource = "file_upload"
)

// Datapoint is a single example belonging to one Dataset.
type Datapoint struct {
	ID         DatapointID     `json:"id"`
	DatasetID  DatasetID       `json:"dataset_id"`
	Kind       DatapointKind   `json:"kind"`
	Source     DatapointSource `json:"source"`
	SourceSpan *SpanID         `json:"source_span,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewDatapoint starts a new datapoint in the given dataset.
func NewDatapoint(datasetID DatasetID, kind DatapointKind, source DatapointSource) Datapoint {
	return Datapoint{
		ID:        NewDatapointID(),
		DatasetID: datasetID,
		Kind:      kind,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// WithSourceSpan attaches the span a datapoint was exported from.
func (d Datapoint) WithSourceSpan(id SpanID) Datapoint {
	d.SourceSpan = &id
	return d
}
