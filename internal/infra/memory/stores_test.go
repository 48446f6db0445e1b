package memory

import (
	"context"
	"errors"
	"testing"

	"evaluation-console/internal/domain"
)

func TestPreferenceStoreLifecycle(t *testing.T) {
	store := NewPreferenceStore()
	ctx := context.Background()

	if _, ok, _ := store.GetPreference(ctx, "theme"); ok {
		t.Fatalf("expected no preference")
	}
	if err := store.SetPreference(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := store.GetPreference(ctx, "theme"); !ok || v != "dark" {
		t.Fatalf("expected dark, got %q %v", v, ok)
	}
}

func TestSnapshotStoreIsolatesCopies(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()
	snap := domain.ResultSnapshot{Subject: "EVAL-42", Records: []domain.ResultRecord{{StudentID: "ETU-1", Rank: 1}}}

	if err := store.SaveSnapshot(ctx, "evaluation", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.Records[0].Rank = 99

	got, err := store.LoadSnapshot(ctx, "evaluation", "EVAL-42")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Records[0].Rank != 1 {
		t.Fatalf("stored snapshot was mutated through caller slice")
	}
	if _, err := store.LoadSnapshot(ctx, "etudiant", "EVAL-42"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
