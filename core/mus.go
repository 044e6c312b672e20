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


package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types. Field order is part of the stored
// format; changing it breaks existing databases.
var (
	IDMUS           = idSer{}
	TimeMUS         = timeSer{}
	LinksMUS        = ord.NewSliceSer[string](ord.String)
	VectorMUS       = ord.NewSliceSer[float32](raw.Float32)
	PropertiesMUS   = ord.NewMapSer[string, string](ord.String, ord.String)
	DuplicateRefMUS = duplicateRefSer{}
	DuplicateOfMUS  = ord.NewPtrSer[DuplicateRef](duplicateRefSer{})
	DocumentMUS     = documentSer{}
	EntityMUS       = entitySer{}
	MentionMUS      = mentionSer{}
	RelationMUS     = relationSer{}
	RunReportMUS    = runReportSer{}
)

var (
	_ mus.Serializer[ID]           = IDMUS
	_ mus.Serializer[time.Time]    = TimeMUS
	_ mus.Serializer[DuplicateRef] = DuplicateRefMUS
	_ mus.Serializer[Document]     = DocumentMUS
	_ mus.Serializer[Entity]       = EntityMUS
	_ mus.Serializer[Mention]      = MentionMUS
	_ mus.Serializer[Relation]     = RelationMUS
	_ mus.Serializer[RunReport]    = RunReportMUS
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// timeSer stores timestamps as UnixMicro, which is the precision the
// storage layer guarantees on round trips.
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type duplicateRefSer struct{}

func (duplicateRefSer) Marshal(r DuplicateRef, bs []byte) (n int) {
	n = ord.String.Marshal(r.Name, bs)
	n += IDMUS.Marshal(r.Id, bs[n:])
	return
}

func (duplicateRefSer) Unmarshal(bs []byte) (r DuplicateRef, n int, err error) {
	var n1 int
	r.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Id, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (duplicateRefSer) Size(r DuplicateRef) (size int) {
	size = ord.String.Size(r.Name)
	size += IDMUS.Size(r.Id)
	return
}

func (duplicateRefSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	return
}

type documentSer struct{}

func (documentSer) Marshal(d Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.Namespace, bs)
	n += ord.String.Marshal(d.DocID, bs[n:])
	n += ord.String.Marshal(d.SourcePath, bs[n:])
	n += ord.String.Marshal(d.Fingerprint, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Text, bs[n:])
	n += LinksMUS.Marshal(d.Links, bs[n:])
	n += TimeMUS.Marshal(d.InsertedAt, bs[n:])
	n += TimeMUS.Marshal(d.UpdatedAt, bs[n:])
	return
}

func (documentSer) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	d.Namespace, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	d.DocID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.SourcePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Links, n1, err = LinksMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.InsertedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentSer) Size(d Document) (size int) {
	size = ord.String.Size(d.Namespace)
	size += ord.String.Size(d.DocID)
	size += ord.String.Size(d.SourcePath)
	size += ord.String.Size(d.Fingerprint)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Text)
	size += LinksMUS.Size(d.Links)
	size += TimeMUS.Size(d.InsertedAt)
	size += TimeMUS.Size(d.UpdatedAt)
	return
}

func (documentSer) Skip(bs []byte) (n int, err error) {
	skippers := []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, ord.String.Skip, ord.String.Skip,
		ord.String.Skip, ord.String.Skip, LinksMUS.Skip, TimeMUS.Skip,
		TimeMUS.Skip,
	}
	return skipAll(bs, skippers)
}

type entitySer struct{}

func (entitySer) Marshal(e Entity, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Namespace, bs[n:])
	n += ord.String.Marshal(e.Type, bs[n:])
	n += ord.String.Marshal(e.Name, bs[n:])
	n += ord.String.Marshal(e.NormalizedName, bs[n:])
	n += raw.Float64.Marshal(e.Confidence, bs[n:])
	n += PropertiesMUS.Marshal(e.Properties, bs[n:])
	n += DuplicateOfMUS.Marshal(e.DuplicateOf, bs[n:])
	n += VectorMUS.Marshal(e.Vector, bs[n:])
	n += TimeMUS.Marshal(e.InsertedAt, bs[n:])
	n += TimeMUS.Marshal(e.UpdatedAt, bs[n:])
	return
}

func (entitySer) Unmarshal(bs []byte) (e Entity, n int, err error) {
	var n1 int
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	e.Namespace, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.NormalizedName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Confidence, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Properties, n1, err = PropertiesMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.DuplicateOf, n1, err = DuplicateOfMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Vector, n1, err = VectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.InsertedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (entitySer) Size(e Entity) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Namespace)
	size += ord.String.Size(e.Type)
	size += ord.String.Size(e.Name)
	size += ord.String.Size(e.NormalizedName)
	size += raw.Float64.Size(e.Confidence)
	size += PropertiesMUS.Size(e.Properties)
	size += DuplicateOfMUS.Size(e.DuplicateOf)
	size += VectorMUS.Size(e.Vector)
	size += TimeMUS.Size(e.InsertedAt)
	size += TimeMUS.Size(e.UpdatedAt)
	return
}

func (entitySer) Skip(bs []byte) (n int, err error) {
	skippers := []func([]byte) (int, error){
		IDMUS.Skip, ord.String.Skip, ord.String.Skip, ord.String.Skip,
		ord.String.Skip, raw.Float64.Skip, PropertiesMUS.Skip,
		DuplicateOfMUS.Skip, VectorMUS.Skip, TimeMUS.Skip, TimeMUS.Skip,
	}
	return skipAll(bs, skippers)
}

type mentionSer struct{}

func (mentionSer) Marshal(m Mention, bs []byte) (n int) {
	n = ord.String.Marshal(m.Namespace, bs)
	n += ord.String.Marshal(m.DocID, bs[n:])
	n += IDMUS.Marshal(m.EntityId, bs[n:])
	n += raw.Float64.Marshal(m.Confidence, bs[n:])
	n += varint.Int.Marshal(m.Occurrences, bs[n:])
	n += TimeMUS.Marshal(m.UpdatedAt, bs[n:])
	return
}

func (mentionSer) Unmarshal(bs []byte) (m Mention, n int, err error) {
	var n1 int
	m.Namespace, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	m.DocID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.EntityId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Confidence, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Occurrences, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (mentionSer) Size(m Mention) (size int) {
	size = ord.String.Size(m.Namespace)
	size += ord.String.Size(m.DocID)
	size += IDMUS.Size(m.EntityId)
	size += raw.Float64.Size(m.Confidence)
	size += varint.Int.Size(m.Occurrences)
	size += TimeMUS.Size(m.UpdatedAt)
	return
}

func (mentionSer) Skip(bs []byte) (n int, err error) {
	skippers := []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, IDMUS.Skip, raw.Float64.Skip,
		varint.Int.Skip, TimeMUS.Skip,
	}
	return skipAll(bs, skippers)
}

type relationSer struct{}

func (relationSer) Marshal(r Relation, bs []byte) (n int) {
	n = ord.String.Marshal(r.Namespace, bs)
	n += IDMUS.Marshal(r.FromId, bs[n:])
	n += IDMUS.Marshal(r.ToId, bs[n:])
	n += ord.String.Marshal(r.Type, bs[n:])
	n += raw.Float64.Marshal(r.Confidence, bs[n:])
	n += varint.Int.Marshal(r.Occurrences, bs[n:])
	n += TimeMUS.Marshal(r.UpdatedAt, bs[n:])
	return
}

func (relationSer) Unmarshal(bs []byte) (r Relation, n int, err error) {
	var n1 int
	r.Namespace, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.FromId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.ToId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Confidence, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Occurrences, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (relationSer) Size(r Relation) (size int) {
	size = ord.String.Size(r.Namespace)
	size += IDMUS.Size(r.FromId)
	size += IDMUS.Size(r.ToId)
	size += ord.String.Size(r.Type)
	size += raw.Float64.Size(r.Confidence)
	size += varint.Int.Size(r.Occurrences)
	size += TimeMUS.Size(r.UpdatedAt)
	return
}

func (relationSer) Skip(bs []byte) (n int, err error) {
	skippers := []func([]byte) (int, error){
		ord.String.Skip, IDMUS.Skip, IDMUS.Skip, ord.String.Skip,
		raw.Float64.Skip, varint.Int.Skip, TimeMUS.Skip,
	}
	return skipAll(bs, skippers)
}

type runReportSer struct{}

func (runReportSer) Marshal(r RunReport, bs []byte) (n int) {
	n = ord.String.Marshal(r.Namespace, bs)
	n += ord.String.Marshal(r.Status, bs[n:])
	n += TimeMUS.Marshal(r.StartedAt, bs[n:])
	n += TimeMUS.Marshal(r.FinishedAt, bs[n:])
	for _, v := range r.counters() {
		n += varint.Uint64.Marshal(v, bs[n:])
	}
	return
}

func (runReportSer) Unmarshal(bs []byte) (r RunReport, n int, err error) {
	var n1 int
	r.Namespace, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Status, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.StartedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.FinishedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	counters := []*uint64{
		&r.DocsDiscovered, &r.DocsProcessed, &r.DocsSkipped, &r.DocsFailed,
		&r.EntitiesCreated, &r.EntitiesExisting, &r.EntitiesDropped,
		&r.MentionsUpserted, &r.RelationsUpserted,
	}
	for _, c := range counters {
		*c, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (runReportSer) Size(r RunReport) (size int) {
	size = ord.String.Size(r.Namespace)
	size += ord.String.Size(r.Status)
	size += TimeMUS.Size(r.StartedAt)
	size += TimeMUS.Size(r.FinishedAt)
	for _, v := range r.counters() {
		size += varint.Uint64.Size(v)
	}
	return
}

func (runReportSer) Skip(bs []byte) (n int, err error) {
	skippers := []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, TimeMUS.Skip, TimeMUS.Skip,
	}
	n, err = skipAll(bs, skippers)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < 9; i++ {
		n1, err = varint.Uint64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (r RunReport) counters() []uint64 {
	return []uint64{
		r.DocsDiscovered, r.DocsProcessed, r.DocsSkipped, r.DocsFailed,
		r.EntitiesCreated, r.EntitiesExisting, r.EntitiesDropped,
		r.MentionsUpserted, r.RelationsUpserted,
	}
}

func skipAll(bs []byte, skippers []func([]byte) (int, error)) (n int, err error) {
	var n1 int
	for _, skip := range skippers {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}
