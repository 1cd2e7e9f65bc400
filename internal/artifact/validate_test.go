package artifact

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
)

func testMetadata(t *testing.T) Metadata {
	t.Helper()
	return NewMetadata("b5qtm3vzxkgyxpvlqrz4a2dwma", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func hasViolation(violations []Violation, field string) bool {
	for _, v := range violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func TestValidateMetadata(t *testing.T) {
	m := testMetadata(t)
	if vs := ValidateMetadata(m); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}

	m.ID = ""
	m.Version = 0
	vs := ValidateMetadata(m)
	if !hasViolation(vs, "metadata.id") {
		t.Fatalf("expected metadata.id violation, got %v", vs)
	}
	if !hasViolation(vs, "metadata.version") {
		t.Fatalf("expected metadata.version violation, got %v", vs)
	}
}

func TestValidateMetadataUpdatedBeforeCreated(t *testing.T) {
	m := testMetadata(t)
	m.UpdatedAt = timeutil.New(m.CreatedAt.Add(-time.Hour))
	vs := ValidateMetadata(m)
	if !hasViolation(vs, "metadata.updated_at") {
		t.Fatalf("expected metadata.updated_at violation, got %v", vs)
	}
}

func TestValidateCampaign(t *testing.T) {
	c := Campaign{
		Metadata:   testMetadata(t),
		Name:       "The Dragon Hunt",
		RuleSystem: "dnd5e",
		Status:     CampaignStatusActive,
	}
	if vs := ValidateCampaign(c); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}

	c.Name = "  "
	c.Status = "cancelled"
	vs := ValidateCampaign(c)
	if !hasViolation(vs, "name") {
		t.Fatalf("expected name violation, got %v", vs)
	}
	if !hasViolation(vs, "status") {
		t.Fatalf("expected status violation, got %v", vs)
	}
}

func TestValidateSessionParticipants(t *testing.T) {
	now := timeutil.New(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	s := Session{
		Metadata:      testMetadata(t),
		CampaignID:    "campaign-1",
		SessionNumber: 1,
		Status:        SessionStatusActive,
		StartedAt:     now,
		StartedBy:     "gm-1",
		Participants: []Participant{
			{PlayerID: "gm-1", JoinedAt: now, IsGM: true},
			{PlayerID: "player-1", CharacterID: "char-1", JoinedAt: now},
		},
	}
	if vs := ValidateSession(s); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}

	s.Participants[1].CharacterID = ""
	vs := ValidateSession(s)
	if !hasViolation(vs, "participants[1].character_id") {
		t.Fatalf("expected character_id violation, got %v", vs)
	}
}

func TestValidateSessionEnded(t *testing.T) {
	now := timeutil.New(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	s := Session{
		Metadata:      testMetadata(t),
		CampaignID:    "campaign-1",
		SessionNumber: 2,
		Status:        SessionStatusEnded,
		StartedAt:     now,
		StartedBy:     "gm-1",
		Participants: []Participant{
			{PlayerID: "player-1", CharacterID: "char-1", JoinedAt: now},
		},
	}
	vs := ValidateSession(s)
	if !hasViolation(vs, "ended_at") {
		t.Fatalf("expected ended_at violation, got %v", vs)
	}
	if !hasViolation(vs, "participants[0].left_at") {
		t.Fatalf("expected left_at violation, got %v", vs)
	}
}

func TestValidateCharacter(t *testing.T) {
	c := CharacterSheet{
		Metadata: testMetadata(t),
		Type:     CharacterTypePlayer,
		Identity: Identity{Name: "Aria", Level: 5},
		Combat: CombatStats{
			HitPoints:  HitPoints{Current: 30, Maximum: 30},
			ArmorClass: 15,
		},
	}
	if vs := ValidateCharacter(c); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}

	c.Identity.Level = 0
	c.Combat.HitPoints.Current = -1
	c.Inventory = []InventoryItem{{Item: "", Quantity: 0}}
	vs := ValidateCharacter(c)
	for _, field := range []string{"identity.level", "combat.hit_points.current", "inventory[0].item", "inventory[0].quantity"} {
		if !hasViolation(vs, field) {
			t.Fatalf("expected %s violation, got %v", field, vs)
		}
	}
}

func TestValidateActionStateChanges(t *testing.T) {
	a := GameAction{
		ActionID:   "b5qtm3vzxkgyxpvlqrz4a2dwma",
		Timestamp:  timeutil.New(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)),
		ActorID:    "player-1",
		ActorType:  ActorPlayer,
		ActionType: "attack",
		Outcome: ActionOutcome{
			Success: true,
			StateChanges: []StateChange{
				{Target: "char-1", Field: "combat.hit_points.current", OldValue: 30, NewValue: 24},
			},
		},
	}
	if vs := ValidateAction(a); len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", vs)
	}

	a.Outcome.StateChanges[0].NewValue = []int{1, 2}
	vs := ValidateAction(a)
	if !hasViolation(vs, "outcome.state_changes[0].new_value") {
		t.Fatalf("expected new_value violation, got %v", vs)
	}
}

func TestValidateHistoryDuplicateActionID(t *testing.T) {
	now := timeutil.New(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	action := GameAction{
		ActionID:   "dup",
		Timestamp:  now,
		ActorID:    "gm-1",
		ActorType:  ActorGM,
		ActionType: "combat_start",
	}
	h := History{
		Metadata: testMetadata(t),
		Actions:  []GameAction{action, action},
	}
	vs := ValidateHistory(h)
	if !hasViolation(vs, "actions[1].action_id") {
		t.Fatalf("expected duplicate action id violation, got %v", vs)
	}
}

func TestValidationError(t *testing.T) {
	if err := ValidationError("campaign", nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	err := ValidationError("campaign", []Violation{{"name", "is required"}})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "name: is required") {
		t.Fatalf("expected violation in message, got %q", err.Error())
	}
}
