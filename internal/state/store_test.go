package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/timmy/papertrawl/internal/config"
	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	return NewStore(db)
}

func TestStoreColdStart(t *testing.T) {
	s := newTestStore(t)

	var cp domain.Checkpoint
	if err := s.Load(context.Background(), NamespaceHarvest, &cp); err != nil {
		t.Fatalf("cold load: %v", err)
	}
	if cp.ResumptionToken != "" || len(cp.FetchedDates) != 0 || cp.BatchNum != 0 {
		t.Errorf("cold start must leave zero value, got %+v", cp)
	}
}

func TestStoreRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := domain.Checkpoint{
		Mode:         domain.ModeDate,
		LastDate:     "2024-01-16",
		FetchedDates: []string{"2024-01-15", "2024-01-16"},
	}
	if err := s.Save(ctx, NamespaceHarvest, &in); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out domain.Checkpoint
	if err := s.Load(ctx, NamespaceHarvest, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Mode != in.Mode || out.LastDate != in.LastDate || len(out.FetchedDates) != 2 {
		t.Errorf("roundtrip mismatch: %+v", out)
	}
}

func TestStoreOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := domain.Checkpoint{Mode: domain.ModeGlobal, ResumptionToken: "t1", BatchNum: 1}
	if err := s.Save(ctx, NamespaceHarvest, &first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := domain.Checkpoint{Mode: domain.ModeGlobal, ResumptionToken: "t2", BatchNum: 2}
	if err := s.Save(ctx, NamespaceHarvest, &second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var out domain.Checkpoint
	if err := s.Load(ctx, NamespaceHarvest, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.ResumptionToken != "t2" || out.BatchNum != 2 {
		t.Errorf("overwrite not applied: %+v", out)
	}
}

func TestStoreNamespacesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hcp := domain.Checkpoint{Mode: domain.ModeDate, FetchedDates: []string{"2024-01-15"}}
	if err := s.Save(ctx, NamespaceHarvest, &hcp); err != nil {
		t.Fatalf("save harvest: %v", err)
	}
	tcp := domain.TransformCheckpoint{TransformedDates: []string{"2024-01-14"}}
	if err := s.Save(ctx, NamespaceTransform, &tcp); err != nil {
		t.Fatalf("save transform: %v", err)
	}

	var outH domain.Checkpoint
	var outT domain.TransformCheckpoint
	if err := s.Load(ctx, NamespaceHarvest, &outH); err != nil {
		t.Fatalf("load harvest: %v", err)
	}
	if err := s.Load(ctx, NamespaceTransform, &outT); err != nil {
		t.Fatalf("load transform: %v", err)
	}
	if len(outH.FetchedDates) != 1 || outH.FetchedDates[0] != "2024-01-15" {
		t.Errorf("harvest checkpoint = %+v", outH)
	}
	if len(outT.TransformedDates) != 1 || outT.TransformedDates[0] != "2024-01-14" {
		t.Errorf("transform checkpoint = %+v", outT)
	}
}
