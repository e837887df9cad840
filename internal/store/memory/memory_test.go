package memory

import (
	"context"
	"testing"

	"fornecedores/internal/core"
)

func TestReplaceAllSwapsGeneration(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := []core.VendorAggregate{{Fornecedor: "Hitss", Total: 100}}
	if err := s.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	second := []core.VendorAggregate{{Fornecedor: "MJV", Total: 50}}
	if err := s.ReplaceAll(ctx, second); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 1 || got[0].Fornecedor != "MJV" {
		t.Fatalf("got %v, want only the second generation", got)
	}
}

func TestReadAllReturnsIsolatedSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.ReplaceAll(ctx, []core.VendorAggregate{
		{Fornecedor: "Hitss", Total: 100, Detalhes: []core.RawRow{{"Fornecedor": "Hitss"}}},
	}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	snap, _ := s.ReadAll(ctx)
	snap[0].Total = 999
	snap[0].Detalhes = append(snap[0].Detalhes, core.RawRow{"Fornecedor": "extra"})

	again, _ := s.ReadAll(ctx)
	if again[0].Total != 100 || len(again[0].Detalhes) != 1 {
		t.Fatalf("snapshot mutation leaked into store: %+v", again[0])
	}
}

func TestUploadLogDedup(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.RecordUpload(ctx, core.Upload{ID: "u1", FileHash: "abc"}); err != nil {
		t.Fatalf("RecordUpload: %v", err)
	}
	if err := s.RecordUpload(ctx, core.Upload{ID: "u2", FileHash: "def", Error: "parse failed"}); err != nil {
		t.Fatalf("RecordUpload: %v", err)
	}

	found, err := s.FindUploadByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("FindUploadByHash: %v", err)
	}
	if found == nil || found.ID != "u1" {
		t.Fatalf("found = %v, want u1", found)
	}

	// Failed uploads do not count as duplicates.
	found, _ = s.FindUploadByHash(ctx, "def")
	if found != nil {
		t.Fatalf("found failed upload %v, want nil", found)
	}

	if found, _ := s.FindUploadByHash(ctx, "missing"); found != nil {
		t.Fatalf("found = %v for unknown hash, want nil", found)
	}
}

func TestListUploadsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, id := range []string{"u1", "u2", "u3"} {
		if err := s.RecordUpload(ctx, core.Upload{ID: id}); err != nil {
			t.Fatalf("RecordUpload: %v", err)
		}
	}

	got, err := s.ListUploads(ctx, 2)
	if err != nil {
		t.Fatalf("ListUploads: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u3" || got[1].ID != "u2" {
		t.Fatalf("got %v, want [u3 u2]", got)
	}
}
