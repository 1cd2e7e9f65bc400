package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store, err := Open(filepath.Join(root, "campaigns"), filepath.Join(root, "players"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func testCampaign(name string) artifact.Campaign {
	return artifact.Campaign{
		Metadata:   artifact.NewMetadata("b5qtm3vzxkgyxpvlqrz4a2dwma", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Name:       name,
		RuleSystem: "dnd5e",
		Status:     artifact.CampaignStatusDraft,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	path := store.CampaignPath("campaign-1")

	saved := testCampaign("The Dragon Hunt")
	if err := store.Save(ctx, path, saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var loaded artifact.Campaign
	if err := store.Load(ctx, path, &loaded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Name != saved.Name {
		t.Fatalf("expected name %q, got %q", saved.Name, loaded.Name)
	}
	if !loaded.Metadata.CreatedAt.Equal(saved.Metadata.CreatedAt.Time) {
		t.Fatalf("expected created_at %v, got %v", saved.Metadata.CreatedAt, loaded.Metadata.CreatedAt)
	}
	if loaded.Metadata.Version != saved.Metadata.Version {
		t.Fatalf("expected version %d, got %d", saved.Metadata.Version, loaded.Metadata.Version)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	path := store.CampaignPath("campaign-1")

	if err := store.Save(ctx, path, testCampaign("The Dragon Hunt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "campaign.yaml" {
		t.Fatalf("expected only campaign.yaml, got %v", entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := testStore(t)
	var c artifact.Campaign
	err := store.Load(context.Background(), store.CampaignPath("nope"), &c)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	path := store.CampaignPath("campaign-1")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := "metadata:\n  id: x\n  created_at: 2026-03-01T12:00:00Z\n  updated_at: 2026-03-01T12:00:00Z\n  version: 1\n  schema_version: \"1.0\"\nname: X\nrule_system: dnd5e\nstatus: draft\nbogus_field: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var c artifact.Campaign
	err := store.Load(ctx, path, &c)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentSavesLeaveOneWriterIntact(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	path := store.CampaignPath("campaign-1")

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := store.Save(ctx, path, testCampaign(fmt.Sprintf("campaign %d", n))); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var loaded artifact.Campaign
	if err := store.Load(ctx, path, &loaded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for i := 0; i < writers; i++ {
		if loaded.Name == fmt.Sprintf("campaign %d", i) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected content from exactly one writer, got %q", loaded.Name)
	}
}

func TestListSortedWithPrefix(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	dir := store.CharactersDir("campaign-1")

	for _, name := range []string{"pc_zara.yaml", "npc_goblin.yaml", "pc_aria.yaml", "notes.txt"} {
		if err := store.Save(ctx, filepath.Join(dir, name), testCampaign(name)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	all, err := store.List(ctx, dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 yaml files, got %d", len(all))
	}
	if filepath.Base(all[0]) != "npc_goblin.yaml" || filepath.Base(all[2]) != "pc_zara.yaml" {
		t.Fatalf("expected sorted listing, got %v", all)
	}

	pcs, err := store.List(ctx, dir, "pc_")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pcs) != 2 {
		t.Fatalf("expected 2 pc files, got %d", len(pcs))
	}
}

func TestListMissingDirectory(t *testing.T) {
	store := testStore(t)
	got, err := store.List(context.Background(), store.SessionsDir("nope"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty listing, got %v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	path := store.CampaignPath("campaign-1")

	if err := store.Save(ctx, path, testCampaign("X")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("expected deleting a missing file to succeed, got %v", err)
	}
}

func TestCampaignIDsSkipsBareDirectories(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, store.CampaignPath("beta"), testCampaign("B")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, store.CampaignPath("alpha"), testCampaign("A")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.MkdirAll(store.CampaignDir("empty"), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids, err := store.CampaignIDs(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Fatalf("expected [alpha beta], got %v", ids)
	}
}
