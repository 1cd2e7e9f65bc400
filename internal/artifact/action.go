package artifact

import "github.com/lorekeep/lorekeep/internal/platform/timeutil"

// DiceResult records one dice roll made while resolving an action.
type DiceResult struct {
	Expression string        `yaml:"expression"`
	Total      int           `yaml:"total"`
	Rolls      []int         `yaml:"rolls,omitempty"`
	Modifier   int           `yaml:"modifier"`
	Breakdown  string        `yaml:"breakdown,omitempty"`
	Timestamp  timeutil.Time `yaml:"timestamp"`
	Seed       string        `yaml:"seed,omitempty"`
}

// StateChange records one field mutation produced by an action. Values are
// restricted to scalars (int, string, bool) or nil.
type StateChange struct {
	Target   string `yaml:"target"`
	Field    string `yaml:"field"`
	OldValue any    `yaml:"old_value"`
	NewValue any    `yaml:"new_value"`
}

// ActionOutcome is the resolved result of a game action.
type ActionOutcome struct {
	Success      bool          `yaml:"success"`
	Description  string        `yaml:"description"`
	Narrative    string        `yaml:"narrative,omitempty"`
	StateChanges []StateChange `yaml:"state_changes,omitempty"`
}

// GameAction is a discrete game event that transitions derived game state.
// Actions are appended to a per-campaign history and never mutated.
type GameAction struct {
	ActionID    string         `yaml:"action_id"`
	Timestamp   timeutil.Time  `yaml:"timestamp"`
	ActorID     string         `yaml:"actor_id"`
	ActorType   ActorType      `yaml:"actor_type"`
	ActionType  string         `yaml:"action_type"`
	TargetIDs   []string       `yaml:"target_ids,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty"`
	DiceResults []DiceResult   `yaml:"dice_results,omitempty"`
	Outcome     ActionOutcome  `yaml:"outcome"`
}

// History is the append-only per-campaign action log. The log is the single
// source of truth for derived game state; state is rebuilt by replaying it.
type History struct {
	Metadata Metadata     `yaml:"metadata"`
	Actions  []GameAction `yaml:"actions"`
}
