package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/id"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
	"github.com/lorekeep/lorekeep/internal/storage"
)

// Service maintains each campaign's action history and the game state
// derived from it.
type Service struct {
	store  *storage.Store
	logger *zap.Logger

	clock func() time.Time
	newID func() (string, error)

	mu        sync.Mutex
	campaigns map[string]*campaignState
}

type campaignState struct {
	history artifact.History
	state   *State
}

// NewService builds a game state service over the given store.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		logger:    logger,
		clock:     timeutil.Now,
		newID:     id.NewID,
		campaigns: make(map[string]*campaignState),
	}
}

// load returns the campaign's cached state, replaying the history file on
// first touch so state survives a process restart. Callers hold s.mu.
func (s *Service) load(ctx context.Context, campaignID string) (*campaignState, error) {
	if cs, ok := s.campaigns[campaignID]; ok {
		return cs, nil
	}
	var campaign artifact.Campaign
	if err := s.store.Load(ctx, s.store.CampaignPath(campaignID), &campaign); err != nil {
		return nil, err
	}

	var history artifact.History
	err := s.store.Load(ctx, s.store.HistoryPath(campaignID), &history)
	switch {
	case apperrors.IsNotFound(err):
		historyID, idErr := s.newID()
		if idErr != nil {
			return nil, apperrors.IO(idErr, "generate history id")
		}
		history = artifact.History{Metadata: artifact.NewMetadata(historyID, s.clock())}
	case err != nil:
		return nil, err
	}

	cs := &campaignState{
		history: history,
		state:   Replay(campaignID, history.Actions),
	}
	s.campaigns[campaignID] = cs
	return cs, nil
}

// Apply validates an action, applies its state changes, and appends it to
// the campaign's history. A failed apply leaves both the in-memory state and
// the history file untouched.
func (s *Service) Apply(ctx context.Context, campaignID string, action artifact.GameAction) (artifact.GameAction, error) {
	if action.ActionID == "" {
		actionID, err := s.newID()
		if err != nil {
			return artifact.GameAction{}, apperrors.IO(err, "generate action id")
		}
		action.ActionID = actionID
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = timeutil.New(s.clock())
	}
	if err := artifact.Check(action); err != nil {
		return artifact.GameAction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cs, err := s.load(ctx, campaignID)
	if err != nil {
		return artifact.GameAction{}, err
	}
	for _, existing := range cs.history.Actions {
		if existing.ActionID == action.ActionID {
			return artifact.GameAction{}, apperrors.Conflictf("action %s was already applied", action.ActionID)
		}
	}

	next := cs.state.Clone()
	if err := applyAction(next, action, true); err != nil {
		return artifact.GameAction{}, err
	}

	history := cs.history
	history.Actions = append(append([]artifact.GameAction(nil), cs.history.Actions...), action)
	history.Metadata.Touch(s.clock())
	if err := s.store.Save(ctx, s.store.HistoryPath(campaignID), history); err != nil {
		return artifact.GameAction{}, err
	}
	cs.history = history
	cs.state = next

	s.logger.Info("action applied",
		zap.String("campaign_id", campaignID),
		zap.String("action_id", action.ActionID),
		zap.String("action_type", action.ActionType))
	return action, nil
}

// CurrentState returns the campaign's derived state.
func (s *Service) CurrentState(ctx context.Context, campaignID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return cs.state.Clone(), nil
}

// History returns the campaign's most recent actions, newest last. A limit
// of zero returns the full log.
func (s *Service) History(ctx context.Context, campaignID string, limit int) ([]artifact.GameAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	actions := cs.history.Actions
	if limit > 0 && len(actions) > limit {
		actions = actions[len(actions)-limit:]
	}
	return append([]artifact.GameAction(nil), actions...), nil
}

// Rollback truncates the history after the given action, keeping the action
// itself, persists the shortened log, and rebuilds the state from it.
func (s *Service) Rollback(ctx context.Context, campaignID, actionID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	cut := -1
	for i, action := range cs.history.Actions {
		if action.ActionID == actionID {
			cut = i
			break
		}
	}
	if cut < 0 {
		return nil, apperrors.NotFoundf("action %s not found in campaign %s", actionID, campaignID)
	}

	history := cs.history
	history.Actions = append([]artifact.GameAction(nil), cs.history.Actions[:cut+1]...)
	history.Metadata.Touch(s.clock())
	if err := s.store.Save(ctx, s.store.HistoryPath(campaignID), history); err != nil {
		return nil, err
	}
	cs.history = history
	cs.state = Replay(campaignID, history.Actions)

	s.logger.Info("history rolled back",
		zap.String("campaign_id", campaignID),
		zap.String("action_id", actionID),
		zap.Int("actions_kept", len(history.Actions)))
	return cs.state.Clone(), nil
}
