package artifact

import (
	"fmt"
	"strings"

	apperrors "github.com/lorekeep/lorekeep/internal/errors"
)

// Violation describes one failed validation rule.
type Violation struct {
	Field   string
	Message string
}

// String renders the violation as "field: message".
func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// ValidationError folds violations into a single typed error, or returns nil
// when the list is empty.
func ValidationError(kind string, violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}
	return apperrors.Validationf("invalid %s: %s", kind, strings.Join(parts, "; "))
}

// Check validates any artifact document and folds the violations into a
// single typed error. Unknown document types are rejected outright.
func Check(doc any) error {
	switch d := doc.(type) {
	case Campaign:
		return ValidationError("campaign", ValidateCampaign(d))
	case *Campaign:
		return ValidationError("campaign", ValidateCampaign(*d))
	case Player:
		return ValidationError("player", ValidatePlayer(d))
	case *Player:
		return ValidationError("player", ValidatePlayer(*d))
	case Membership:
		return ValidationError("membership", ValidateMembership(d))
	case *Membership:
		return ValidationError("membership", ValidateMembership(*d))
	case Session:
		return ValidationError("session", ValidateSession(d))
	case *Session:
		return ValidationError("session", ValidateSession(*d))
	case CharacterSheet:
		return ValidationError("character", ValidateCharacter(d))
	case *CharacterSheet:
		return ValidationError("character", ValidateCharacter(*d))
	case GameAction:
		return ValidationError("action", ValidateAction(d))
	case *GameAction:
		return ValidationError("action", ValidateAction(*d))
	case History:
		return ValidationError("history", ValidateHistory(d))
	case *History:
		return ValidationError("history", ValidateHistory(*d))
	default:
		return apperrors.Validationf("unknown artifact type %T", doc)
	}
}

// ValidateMetadata checks the invariants every artifact metadata block obeys.
func ValidateMetadata(m Metadata) []Violation {
	var out []Violation
	if strings.TrimSpace(m.ID) == "" {
		out = append(out, Violation{"metadata.id", "is required"})
	}
	if m.CreatedAt.IsZero() {
		out = append(out, Violation{"metadata.created_at", "is required"})
	}
	if m.UpdatedAt.IsZero() {
		out = append(out, Violation{"metadata.updated_at", "is required"})
	}
	if !m.CreatedAt.IsZero() && !m.UpdatedAt.IsZero() && m.UpdatedAt.Before(m.CreatedAt.Time) {
		out = append(out, Violation{"metadata.updated_at", "must not precede created_at"})
	}
	if m.Version < 1 {
		out = append(out, Violation{"metadata.version", "must be at least 1"})
	}
	if strings.TrimSpace(m.SchemaVersion) == "" {
		out = append(out, Violation{"metadata.schema_version", "is required"})
	}
	return out
}

// ValidateCampaign checks a campaign document.
func ValidateCampaign(c Campaign) []Violation {
	out := ValidateMetadata(c.Metadata)
	if strings.TrimSpace(c.Name) == "" {
		out = append(out, Violation{"name", "is required"})
	}
	if strings.TrimSpace(c.RuleSystem) == "" {
		out = append(out, Violation{"rule_system", "is required"})
	}
	if !c.Status.IsValid() {
		out = append(out, Violation{"status", fmt.Sprintf("unknown value %q", c.Status)})
	}
	return out
}

// ValidatePlayer checks a player document.
func ValidatePlayer(p Player) []Violation {
	out := ValidateMetadata(p.Metadata)
	if strings.TrimSpace(p.Username) == "" {
		out = append(out, Violation{"username", "is required"})
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		out = append(out, Violation{"display_name", "is required"})
	}
	if !p.Status.IsValid() {
		out = append(out, Violation{"status", fmt.Sprintf("unknown value %q", p.Status)})
	}
	return out
}

// ValidateMembership checks a membership document.
func ValidateMembership(m Membership) []Violation {
	out := ValidateMetadata(m.Metadata)
	if strings.TrimSpace(m.PlayerID) == "" {
		out = append(out, Violation{"player_id", "is required"})
	}
	if strings.TrimSpace(m.CampaignID) == "" {
		out = append(out, Violation{"campaign_id", "is required"})
	}
	if !m.Role.IsValid() {
		out = append(out, Violation{"role", fmt.Sprintf("unknown value %q", m.Role)})
	}
	if m.JoinedAt.IsZero() {
		out = append(out, Violation{"joined_at", "is required"})
	}
	return out
}

// ValidateSession checks a session document and its participants.
func ValidateSession(s Session) []Violation {
	out := ValidateMetadata(s.Metadata)
	if strings.TrimSpace(s.CampaignID) == "" {
		out = append(out, Violation{"campaign_id", "is required"})
	}
	if s.SessionNumber < 1 {
		out = append(out, Violation{"session_number", "must be at least 1"})
	}
	if !s.Status.IsValid() {
		out = append(out, Violation{"status", fmt.Sprintf("unknown value %q", s.Status)})
	}
	if s.StartedAt.IsZero() {
		out = append(out, Violation{"started_at", "is required"})
	}
	if strings.TrimSpace(s.StartedBy) == "" {
		out = append(out, Violation{"started_by", "is required"})
	}
	if s.Status == SessionStatusEnded && s.EndedAt == nil {
		out = append(out, Violation{"ended_at", "is required for an ended session"})
	}
	for i, p := range s.Participants {
		field := fmt.Sprintf("participants[%d]", i)
		if strings.TrimSpace(p.PlayerID) == "" {
			out = append(out, Violation{field + ".player_id", "is required"})
		}
		if p.JoinedAt.IsZero() {
			out = append(out, Violation{field + ".joined_at", "is required"})
		}
		if !p.IsGM && p.CharacterID == "" {
			out = append(out, Violation{field + ".character_id", "is required for non-GM participants"})
		}
		if s.Status == SessionStatusEnded && p.Active() {
			out = append(out, Violation{field + ".left_at", "must be set in an ended session"})
		}
	}
	return out
}

// ValidateCharacter checks a character sheet document.
func ValidateCharacter(c CharacterSheet) []Violation {
	out := ValidateMetadata(c.Metadata)
	if !c.Type.IsValid() {
		out = append(out, Violation{"type", fmt.Sprintf("unknown value %q", c.Type)})
	}
	if strings.TrimSpace(c.Identity.Name) == "" {
		out = append(out, Violation{"identity.name", "is required"})
	}
	if c.Identity.Level < 1 || c.Identity.Level > 20 {
		out = append(out, Violation{"identity.level", "must be between 1 and 20"})
	}
	if c.Combat.HitPoints.Current < 0 {
		out = append(out, Violation{"combat.hit_points.current", "must not be negative"})
	}
	if c.Combat.HitPoints.Maximum < 0 {
		out = append(out, Violation{"combat.hit_points.maximum", "must not be negative"})
	}
	if c.Combat.ArmorClass < 0 {
		out = append(out, Violation{"combat.armor_class", "must not be negative"})
	}
	for i, item := range c.Inventory {
		field := fmt.Sprintf("inventory[%d]", i)
		if strings.TrimSpace(item.Item) == "" {
			out = append(out, Violation{field + ".item", "is required"})
		}
		if item.Quantity < 1 {
			out = append(out, Violation{field + ".quantity", "must be at least 1"})
		}
	}
	return out
}

// ValidateAction checks a game action record.
func ValidateAction(a GameAction) []Violation {
	var out []Violation
	if strings.TrimSpace(a.ActionID) == "" {
		out = append(out, Violation{"action_id", "is required"})
	}
	if a.Timestamp.IsZero() {
		out = append(out, Violation{"timestamp", "is required"})
	}
	if strings.TrimSpace(a.ActorID) == "" {
		out = append(out, Violation{"actor_id", "is required"})
	}
	if !a.ActorType.IsValid() {
		out = append(out, Violation{"actor_type", fmt.Sprintf("unknown value %q", a.ActorType)})
	}
	if strings.TrimSpace(a.ActionType) == "" {
		out = append(out, Violation{"action_type", "is required"})
	}
	for i, change := range a.Outcome.StateChanges {
		field := fmt.Sprintf("outcome.state_changes[%d]", i)
		if strings.TrimSpace(change.Target) == "" {
			out = append(out, Violation{field + ".target", "is required"})
		}
		if strings.TrimSpace(change.Field) == "" {
			out = append(out, Violation{field + ".field", "is required"})
		}
		if !scalarOrNil(change.OldValue) {
			out = append(out, Violation{field + ".old_value", "must be an int, string, bool, or null"})
		}
		if !scalarOrNil(change.NewValue) {
			out = append(out, Violation{field + ".new_value", "must be an int, string, bool, or null"})
		}
	}
	return out
}

// ValidateHistory checks an action history document.
func ValidateHistory(h History) []Violation {
	out := ValidateMetadata(h.Metadata)
	seen := make(map[string]struct{}, len(h.Actions))
	for i, action := range h.Actions {
		for _, v := range ValidateAction(action) {
			out = append(out, Violation{fmt.Sprintf("actions[%d].%s", i, v.Field), v.Message})
		}
		if _, dup := seen[action.ActionID]; dup {
			out = append(out, Violation{fmt.Sprintf("actions[%d].action_id", i), "duplicates an earlier action"})
		}
		seen[action.ActionID] = struct{}{}
	}
	return out
}

func scalarOrNil(v any) bool {
	switch v.(type) {
	case nil, int, int64, string, bool:
		return true
	default:
		return false
	}
}
