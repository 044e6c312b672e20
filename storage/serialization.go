// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/docgraph/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalEntity serializes an Entity to bytes.
func MarshalEntity(entity *core.Entity) []byte {
	buf := make([]byte, core.EntityMUS.Size(*entity))
	core.EntityMUS.Marshal(*entity, buf)
	return buf
}

// UnmarshalEntity deserializes an Entity from bytes.
func UnmarshalEntity(data []byte) (*core.Entity, error) {
	entity, _, err := core.EntityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// MarshalMention serializes a Mention to bytes.
func MarshalMention(mention *core.Mention) []byte {
	buf := make([]byte, core.MentionMUS.Size(*mention))
	core.MentionMUS.Marshal(*mention, buf)
	return buf
}

// UnmarshalMention deserializes a Mention from bytes.
func UnmarshalMention(data []byte) (*core.Mention, error) {
	mention, _, err := core.MentionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &mention, nil
}

// MarshalRelation serializes a Relation to bytes.
func MarshalRelation(relation *core.Relation) []byte {
	buf := make([]byte, core.RelationMUS.Size(*relation))
	core.RelationMUS.Marshal(*relation, buf)
	return buf
}

// UnmarshalRelation deserializes a Relation from bytes.
func UnmarshalRelation(data []byte) (*core.Relation, error) {
	relation, _, err := core.RelationMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

// MarshalRunReport serializes a RunReport to bytes.
func MarshalRunReport(report *core.RunReport) []byte {
	buf := make([]byte, core.RunReportMUS.Size(*report))
	core.RunReportMUS.Marshal(*report, buf)
	return buf
}

// UnmarshalRunReport deserializes a RunReport from bytes.
func UnmarshalRunReport(data []byte) (*core.RunReport, error) {
	report, _, err := core.RunReportMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
