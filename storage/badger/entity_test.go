package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

func TestEntityBasics(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entity := &core.Entity{
		Namespace:      "docs",
		Type:           "technology",
		Name:           "Kubernetes",
		NormalizedName: "kubernetes",
		Confidence:     0.95,
	}

	created, wasCreated, err := entityRepo.CreateEntity(ctx, entity)
	if err != nil {
		t.Fatalf("Failed to create entity: %v", err)
	}
	if !wasCreated {
		t.Fatal("Expected created=true for new entity")
	}
	if created.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := entityRepo.GetEntity(ctx, "docs", created.Id)
	if err != nil {
		t.Fatalf("Failed to get entity: %v", err)
	}
	if retrieved.Name != "Kubernetes" {
		t.Fatalf("Expected 'Kubernetes', got '%s'", retrieved.Name)
	}

	found, err := entityRepo.FindEntityByTypeAndName(ctx, "docs", "technology", "kubernetes")
	if err != nil {
		t.Fatalf("Failed to find entity: %v", err)
	}
	if found.Id != created.Id {
		t.Fatalf("Expected ID %d, got %d", created.Id, found.Id)
	}
}

func TestCreateEntity_ExistingKeyIsNoOp(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first := &core.Entity{
		Namespace:      "docs",
		Type:           "technology",
		Name:           "Kubernetes",
		NormalizedName: "kubernetes",
		Confidence:     0.95,
	}
	stored, wasCreated, err := entityRepo.CreateEntity(ctx, first)
	if err != nil {
		t.Fatalf("Failed to create entity: %v", err)
	}
	if !wasCreated {
		t.Fatal("Expected created=true on first create")
	}

	// Same identity tuple, different display name and confidence
	second := &core.Entity{
		Namespace:      "docs",
		Type:           "technology",
		Name:           "kubernetes",
		NormalizedName: "kubernetes",
		Confidence:     0.5,
	}
	existing, wasCreated, err := entityRepo.CreateEntity(ctx, second)
	if err != nil {
		t.Fatalf("Expected no error on duplicate create, got: %v", err)
	}
	if wasCreated {
		t.Fatal("Expected created=false on duplicate create")
	}
	if existing.Id != stored.Id {
		t.Fatalf("Expected stored entity %d, got %d", stored.Id, existing.Id)
	}
	if existing.Name != "Kubernetes" {
		t.Fatalf("Expected stored display name to win, got '%s'", existing.Name)
	}
}

func TestCreateEntity_SameNameDifferentNamespace(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	a := &core.Entity{Namespace: "one", Type: "technology", Name: "Redis", NormalizedName: "redis", Confidence: 1}
	b := &core.Entity{Namespace: "two", Type: "technology", Name: "Redis", NormalizedName: "redis", Confidence: 1}

	_, createdA, err := entityRepo.CreateEntity(ctx, a)
	if err != nil || !createdA {
		t.Fatalf("Failed to create in namespace one: created=%v err=%v", createdA, err)
	}
	_, createdB, err := entityRepo.CreateEntity(ctx, b)
	if err != nil || !createdB {
		t.Fatalf("Failed to create in namespace two: created=%v err=%v", createdB, err)
	}
}

func TestUpdateEntity(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entity := &core.Entity{
		Namespace:      "docs",
		Type:           "technology",
		Name:           "Redis",
		NormalizedName: "redis",
		Confidence:     0.9,
	}
	stored, _, err := entityRepo.CreateEntity(ctx, entity)
	if err != nil {
		t.Fatalf("Failed to create entity: %v", err)
	}

	stored.Vector = []float32{0.6, 0.8}
	if err := entityRepo.UpdateEntity(ctx, stored); err != nil {
		t.Fatalf("Failed to update entity: %v", err)
	}

	got, err := entityRepo.GetEntity(ctx, "docs", stored.Id)
	if err != nil {
		t.Fatalf("Failed to get entity: %v", err)
	}
	if len(got.Vector) != 2 {
		t.Fatalf("Expected vector of length 2, got %d", len(got.Vector))
	}
}

func TestUpdateEntity_NotFound(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	entity := &core.Entity{
		Id:             core.ID(999),
		Namespace:      "docs",
		Type:           "technology",
		Name:           "Missing",
		NormalizedName: "missing",
		Confidence:     1,
	}
	err = entityRepo.UpdateEntity(context.Background(), entity)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntitiesByType(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	seed := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "Redis", NormalizedName: "redis", Confidence: 1},
		{Namespace: "docs", Type: "technology", Name: "Kafka", NormalizedName: "kafka", Confidence: 1},
		{Namespace: "docs", Type: "tool", Name: "Helm", NormalizedName: "helm", Confidence: 1},
		{Namespace: "other", Type: "technology", Name: "Etcd", NormalizedName: "etcd", Confidence: 1},
	}
	for _, e := range seed {
		if _, _, err := entityRepo.CreateEntity(ctx, e); err != nil {
			t.Fatalf("Failed to create entity %s: %v", e.Name, err)
		}
	}

	techs, err := entityRepo.EntitiesByType(ctx, "docs", "technology")
	if err != nil {
		t.Fatalf("Failed to list entities: %v", err)
	}
	if len(techs) != 2 {
		t.Fatalf("Expected 2 technology entities, got %d", len(techs))
	}
	// Tuple index iterates in normalized-name order
	if techs[0].NormalizedName != "kafka" || techs[1].NormalizedName != "redis" {
		t.Fatalf("Expected [kafka redis], got [%s %s]", techs[0].NormalizedName, techs[1].NormalizedName)
	}

	all, err := entityRepo.AllEntities(ctx, "docs")
	if err != nil {
		t.Fatalf("Failed to list all entities: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 entities in namespace, got %d", len(all))
	}
}

func TestUpsertMention_IncrementsOccurrences(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	mention := &core.Mention{
		Namespace:  "docs",
		DocID:      "guides/install",
		EntityId:   core.ID(7),
		Confidence: 0.8,
	}
	if err := entityRepo.UpsertMention(ctx, mention); err != nil {
		t.Fatalf("Failed to upsert mention: %v", err)
	}
	if err := entityRepo.UpsertMention(ctx, &core.Mention{
		Namespace:  "docs",
		DocID:      "guides/install",
		EntityId:   core.ID(7),
		Confidence: 0.6,
	}); err != nil {
		t.Fatalf("Failed to re-upsert mention: %v", err)
	}

	var stored *core.Mention
	err = backend.WithTx(func(tx *badger.Txn) error {
		var readErr error
		stored, readErr = readMention(tx, makeMentionKey("docs", "guides/install", core.ID(7)))
		return readErr
	}, false)
	if err != nil {
		t.Fatalf("Failed to read mention: %v", err)
	}
	if stored.Occurrences != 2 {
		t.Fatalf("Expected 2 occurrences, got %d", stored.Occurrences)
	}
	if stored.Confidence != 0.8 {
		t.Fatalf("Expected highest confidence to be kept, got %f", stored.Confidence)
	}
}

func TestUpsertRelation_IncrementsOccurrences(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { entityRepo.Close(); backend.Close() }()

	ctx := context.Background()

	relation := &core.Relation{
		Namespace:  "docs",
		FromId:     core.ID(7),
		ToId:       core.ID(9),
		Type:       "deployed_with",
		Confidence: 0.7,
	}
	for i := 0; i < 3; i++ {
		if err := entityRepo.UpsertRelation(ctx, relation); err != nil {
			t.Fatalf("Failed to upsert relation: %v", err)
		}
	}

	var stored *core.Relation
	err = backend.WithTx(func(tx *badger.Txn) error {
		var readErr error
		stored, readErr = readRelation(tx, makeRelationKey("docs", core.ID(7), "deployed_with", core.ID(9)))
		return readErr
	}, false)
	if err != nil {
		t.Fatalf("Failed to read relation: %v", err)
	}
	if stored.Occurrences != 3 {
		t.Fatalf("Expected 3 occurrences, got %d", stored.Occurrences)
	}
}
