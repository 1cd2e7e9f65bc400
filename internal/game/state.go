// Package game derives in-memory game state from a campaign's action log.
//
// The append-only history file is the single source of truth. Derived state
// is never persisted: it is rebuilt by replaying the log, which makes
// rollback a truncate-and-replay operation.
package game

import (
	"fmt"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
)

// CharacterState is the mutable, derived view of one character.
type CharacterState struct {
	HitPoints   artifact.HitPoints
	ArmorClass  int
	AttackBonus int
	Level       int
	Conditions  []string
	Notes       string
}

// State is the derived game state of a campaign.
type State struct {
	CampaignID      string
	InCombat        bool
	InitiativeOrder []string
	CurrentTurn     int
	Characters      map[string]*CharacterState
}

// NewState returns an empty state for a campaign.
func NewState(campaignID string) *State {
	return &State{
		CampaignID: campaignID,
		Characters: make(map[string]*CharacterState),
	}
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := NewState(s.CampaignID)
	out.InCombat = s.InCombat
	out.InitiativeOrder = append([]string(nil), s.InitiativeOrder...)
	out.CurrentTurn = s.CurrentTurn
	for id, cs := range s.Characters {
		copied := *cs
		copied.Conditions = append([]string(nil), cs.Conditions...)
		out.Characters[id] = &copied
	}
	return out
}

// Replay folds a campaign's actions into a fresh state. Replay is pure:
// it touches no storage and ignores changes it cannot interpret, so a
// historical log always replays to completion.
func Replay(campaignID string, actions []artifact.GameAction) *State {
	state := NewState(campaignID)
	for _, action := range actions {
		applyAction(state, action, false)
	}
	return state
}

// applyAction folds one action into the state. In strict mode an
// uninterpretable state change aborts with a Validation error; in lenient
// mode it is skipped.
func applyAction(state *State, action artifact.GameAction, strict bool) error {
	switch action.ActionType {
	case "combat_start":
		state.InCombat = true
		state.CurrentTurn = 0
		state.InitiativeOrder = initiativeOrder(action.Parameters)
	case "combat_end":
		state.InCombat = false
		state.CurrentTurn = 0
		state.InitiativeOrder = nil
	case "next_turn":
		if len(state.InitiativeOrder) > 0 {
			state.CurrentTurn = (state.CurrentTurn + 1) % len(state.InitiativeOrder)
		}
	}
	for _, change := range action.Outcome.StateChanges {
		if err := applyChange(state, change); err != nil && strict {
			return err
		}
	}
	return nil
}

func initiativeOrder(params map[string]any) []string {
	raw, ok := params["initiative_order"]
	if !ok {
		return nil
	}
	var order []string
	switch values := raw.(type) {
	case []string:
		order = append(order, values...)
	case []any:
		for _, v := range values {
			if s, ok := v.(string); ok {
				order = append(order, s)
			}
		}
	}
	return order
}

// applyChange sets one dotted field on a target character. The character's
// state entry is created on first touch.
func applyChange(state *State, change artifact.StateChange) error {
	if change.Target == "" {
		return nil
	}
	cs, ok := state.Characters[change.Target]
	if !ok {
		cs = &CharacterState{}
		state.Characters[change.Target] = cs
	}
	switch change.Field {
	case "combat.hit_points.current":
		return setInt(&cs.HitPoints.Current, change)
	case "combat.hit_points.maximum":
		return setInt(&cs.HitPoints.Maximum, change)
	case "combat.armor_class":
		return setInt(&cs.ArmorClass, change)
	case "combat.attack_bonus":
		return setInt(&cs.AttackBonus, change)
	case "identity.level":
		return setInt(&cs.Level, change)
	case "notes":
		s, ok := change.NewValue.(string)
		if !ok {
			return apperrors.Validationf("field %s needs a string value, got %T", change.Field, change.NewValue)
		}
		cs.Notes = s
		return nil
	case "conditions.add":
		name, ok := change.NewValue.(string)
		if !ok {
			return apperrors.Validationf("field %s needs a string value, got %T", change.Field, change.NewValue)
		}
		for _, existing := range cs.Conditions {
			if existing == name {
				return nil
			}
		}
		cs.Conditions = append(cs.Conditions, name)
		return nil
	case "conditions.remove":
		name, ok := change.NewValue.(string)
		if !ok {
			return apperrors.Validationf("field %s needs a string value, got %T", change.Field, change.NewValue)
		}
		kept := cs.Conditions[:0]
		for _, existing := range cs.Conditions {
			if existing != name {
				kept = append(kept, existing)
			}
		}
		cs.Conditions = kept
		return nil
	default:
		return apperrors.Validationf("unknown state field %q", change.Field)
	}
}

func setInt(dst *int, change artifact.StateChange) error {
	switch v := change.NewValue.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	default:
		return apperrors.Validationf("field %s needs an integer value, got %s", change.Field, describe(change.NewValue))
	}
	return nil
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
