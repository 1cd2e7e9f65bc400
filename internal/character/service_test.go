package character

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
	"github.com/lorekeep/lorekeep/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	store, err := storage.Open(filepath.Join(root, "campaigns"), filepath.Join(root, "players"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc := NewService(store, zap.NewNop())
	svc.clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() (string, error) {
		n++
		return fmt.Sprintf("char-id-%d", n), nil
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	campaign := artifact.Campaign{
		Metadata:   artifact.NewMetadata("campaign-1", now),
		Name:       "The Dragon Hunt",
		RuleSystem: "dnd5e",
		Status:     artifact.CampaignStatusActive,
	}
	if err := store.Save(context.Background(), store.CampaignPath("campaign-1"), campaign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Aria", "aria"},
		{"Goblin Chief", "goblin_chief"},
		{"  Sir Reginald III  ", "sir_reginald_iii"},
		{"D'Artagnan", "d_artagnan"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestCreateUsesTypedFilename(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	pc, err := svc.Create(ctx, "campaign-1", CreateInput{
		Type:     artifact.CharacterTypePlayer,
		Identity: artifact.Identity{Name: "Aria Stormwind", Level: 3},
		Combat:   artifact.CombatStats{HitPoints: artifact.HitPoints{Current: 24, Maximum: 24}, ArmorClass: 15},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	npc, err := svc.Create(ctx, "campaign-1", CreateInput{
		Type:     artifact.CharacterTypeNonPlayer,
		Identity: artifact.Identity{Name: "Goblin Chief", Level: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paths, err := svc.store.List(ctx, svc.store.CharactersDir("campaign-1"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	if filepath.Base(paths[0]) != "npc_goblin_chief.yaml" || filepath.Base(paths[1]) != "pc_aria_stormwind.yaml" {
		t.Fatalf("expected typed filenames, got %v", paths)
	}
	if pc.Metadata.ID == npc.Metadata.ID {
		t.Fatal("expected distinct character ids")
	}
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := CreateInput{Type: artifact.CharacterTypePlayer, Identity: artifact.Identity{Name: "Aria", Level: 1}}
	if _, err := svc.Create(ctx, "campaign-1", in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, "campaign-1", in); !apperrors.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestListFiltersByType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Type: artifact.CharacterTypePlayer, Identity: artifact.Identity{Name: "Aria", Level: 1}},
		{Type: artifact.CharacterTypePlayer, Identity: artifact.Identity{Name: "Borin", Level: 1}},
		{Type: artifact.CharacterTypeNonPlayer, Identity: artifact.Identity{Name: "Goblin", Level: 1}},
	} {
		if _, err := svc.Create(ctx, "campaign-1", in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	pcs, err := svc.List(ctx, "campaign-1", artifact.CharacterTypePlayer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pcs) != 2 {
		t.Fatalf("expected 2 player characters, got %d", len(pcs))
	}
	all, err := svc.List(ctx, "campaign-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(all))
	}
}

func TestUpdatePreservesFilename(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sheet, err := svc.Create(ctx, "campaign-1", CreateInput{
		Type:     artifact.CharacterTypePlayer,
		Identity: artifact.Identity{Name: "Aria", Level: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	renamed := artifact.Identity{Name: "Aria the Bold", Level: 2}
	updated, err := svc.Update(ctx, "campaign-1", sheet.Metadata.ID, UpdateInput{Identity: &renamed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Identity.Name != "Aria the Bold" {
		t.Fatalf("expected renamed identity, got %q", updated.Identity.Name)
	}
	if updated.Metadata.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Metadata.Version)
	}

	paths, err := svc.store.List(ctx, svc.store.CharactersDir("campaign-1"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "pc_aria.yaml" {
		t.Fatalf("expected the original filename, got %v", paths)
	}
}

func TestGetByPlayer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sheet, err := svc.Create(ctx, "campaign-1", CreateInput{
		Type:     artifact.CharacterTypePlayer,
		Identity: artifact.Identity{Name: "Aria", Level: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := artifact.Membership{
		Metadata:    artifact.NewMetadata("membership-1", now),
		PlayerID:    "player-1",
		CampaignID:  "campaign-1",
		Role:        artifact.RolePlayer,
		CharacterID: sheet.Metadata.ID,
		JoinedAt:    timeutil.New(now),
	}
	if err := svc.store.Save(ctx, svc.store.MembershipPath("campaign-1", "player-1"), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetByPlayer(ctx, "campaign-1", "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Metadata.ID != sheet.Metadata.ID {
		t.Fatalf("expected character %s, got %s", sheet.Metadata.ID, got.Metadata.ID)
	}

	m.CharacterID = ""
	m.Metadata.Touch(now)
	if err := svc.store.Save(ctx, svc.store.MembershipPath("campaign-1", "player-1"), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetByPlayer(ctx, "campaign-1", "player-1"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestImportAssignsID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sheet := artifact.CharacterSheet{
		Type:     artifact.CharacterTypeNonPlayer,
		Identity: artifact.Identity{Name: "Dragon", Level: 15},
		Combat:   artifact.CombatStats{HitPoints: artifact.HitPoints{Current: 200, Maximum: 200}, ArmorClass: 19},
	}
	imported, err := svc.Import(ctx, "campaign-1", sheet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imported.Metadata.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if imported.Metadata.Version != 1 {
		t.Fatalf("expected version 1, got %d", imported.Metadata.Version)
	}

	got, err := svc.Get(ctx, "campaign-1", imported.Metadata.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Identity.Name != "Dragon" {
		t.Fatalf("expected Dragon, got %q", got.Identity.Name)
	}
}

func TestDeleteCharacter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sheet, err := svc.Create(ctx, "campaign-1", CreateInput{
		Type:     artifact.CharacterTypePlayer,
		Identity: artifact.Identity{Name: "Aria", Level: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, "campaign-1", sheet.Metadata.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, "campaign-1", sheet.Metadata.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
