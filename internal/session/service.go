// Package session manages the session lifecycle for campaigns.
//
// Sessions follow a small state machine: active and paused convert into each
// other, ending is terminal. A campaign has at most one non-ended session at
// a time and a player participates in at most one open session system-wide.
package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/id"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
	"github.com/lorekeep/lorekeep/internal/storage"
)

// Service coordinates session state for all campaigns.
type Service struct {
	store  *storage.Store
	logger *zap.Logger

	clock func() time.Time
	newID func() (string, error)

	// mu guards locks; each campaign gets its own mutex so the
	// check-then-write sequences of Create and Join are serialized
	// per campaign without stalling unrelated campaigns.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds a session service over the given store.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		clock:  timeutil.Now,
		newID:  id.NewID,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *Service) campaignLock(campaignID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[campaignID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[campaignID] = lock
	}
	return lock
}

// CreateInput carries the fields needed to start a session.
type CreateInput struct {
	StartedBy string
	Name      string
	Notes     string
}

// NormalizeCreateInput trims whitespace from create input fields.
func NormalizeCreateInput(in CreateInput) CreateInput {
	in.StartedBy = strings.TrimSpace(in.StartedBy)
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// Create starts a new session for the campaign. It fails with a Conflict
// while another session of the campaign is still open. Session numbers are
// sequential per campaign and never reused.
func (s *Service) Create(ctx context.Context, campaignID string, in CreateInput) (artifact.Session, error) {
	in = NormalizeCreateInput(in)
	if in.StartedBy == "" {
		return artifact.Session{}, apperrors.Validationf("started_by is required")
	}
	var campaign artifact.Campaign
	if err := s.store.Load(ctx, s.store.CampaignPath(campaignID), &campaign); err != nil {
		return artifact.Session{}, err
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := LoadAll(ctx, s.store, campaignID)
	if err != nil {
		return artifact.Session{}, err
	}
	if open, ok := FindOpen(existing); ok {
		return artifact.Session{}, apperrors.Conflictf("campaign %s already has open session %d", campaignID, open.SessionNumber)
	}
	number := 0
	for _, sess := range existing {
		if sess.SessionNumber > number {
			number = sess.SessionNumber
		}
	}
	number++

	sessionID, err := s.newID()
	if err != nil {
		return artifact.Session{}, apperrors.IO(err, "generate session id")
	}
	now := s.clock()
	sess := artifact.Session{
		Metadata:      artifact.NewMetadata(sessionID, now),
		CampaignID:    campaignID,
		SessionNumber: number,
		Name:          in.Name,
		Status:        artifact.SessionStatusActive,
		StartedAt:     timeutil.New(now),
		StartedBy:     in.StartedBy,
		Notes:         in.Notes,
	}
	if err := artifact.Check(sess); err != nil {
		return artifact.Session{}, err
	}
	if err := s.store.Save(ctx, s.store.SessionPath(campaignID, number), sess); err != nil {
		return artifact.Session{}, err
	}
	s.logger.Info("session created",
		zap.String("campaign_id", campaignID),
		zap.String("session_id", sessionID),
		zap.Int("session_number", number))
	return sess, nil
}

// Get returns the campaign's session with the given id.
func (s *Service) Get(ctx context.Context, campaignID, sessionID string) (artifact.Session, error) {
	sessions, err := LoadAll(ctx, s.store, campaignID)
	if err != nil {
		return artifact.Session{}, err
	}
	for _, sess := range sessions {
		if sess.Metadata.ID == sessionID {
			return sess, nil
		}
	}
	return artifact.Session{}, apperrors.NotFoundf("session %s not found in campaign %s", sessionID, campaignID)
}

// List returns the campaign's sessions ordered by session number. A non-empty
// status filters the result.
func (s *Service) List(ctx context.Context, campaignID string, status artifact.SessionStatus) ([]artifact.Session, error) {
	sessions, err := LoadAll(ctx, s.store, campaignID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return sessions, nil
	}
	filtered := sessions[:0]
	for _, sess := range sessions {
		if sess.Status == status {
			filtered = append(filtered, sess)
		}
	}
	return filtered, nil
}

// Active returns the campaign's open session, or a NotFound error.
func (s *Service) Active(ctx context.Context, campaignID string) (artifact.Session, error) {
	sessions, err := LoadAll(ctx, s.store, campaignID)
	if err != nil {
		return artifact.Session{}, err
	}
	if open, ok := FindOpen(sessions); ok {
		return open, nil
	}
	return artifact.Session{}, apperrors.NotFoundf("campaign %s has no open session", campaignID)
}

// UpdateInput carries the mutable session fields.
type UpdateInput struct {
	Name   *string
	Notes  *string
	Status *artifact.SessionStatus
}

// Update mutates a session's name, notes, or status. Ended sessions are
// immutable and status changes must follow the transition table.
func (s *Service) Update(ctx context.Context, campaignID, sessionID string, in UpdateInput) (artifact.Session, error) {
	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(ctx, campaignID, sessionID)
	if err != nil {
		return artifact.Session{}, err
	}
	if sess.Status == artifact.SessionStatusEnded {
		return artifact.Session{}, apperrors.Conflictf("session %s has ended and cannot be modified", sessionID)
	}
	if in.Status != nil && *in.Status != sess.Status {
		if !artifact.CanTransition(sess.Status, *in.Status) {
			return artifact.Session{}, apperrors.Conflictf("session cannot move from %s to %s", sess.Status, *in.Status)
		}
		sess.Status = *in.Status
	}
	if in.Name != nil {
		sess.Name = strings.TrimSpace(*in.Name)
	}
	if in.Notes != nil {
		sess.Notes = strings.TrimSpace(*in.Notes)
	}
	sess.Metadata.Touch(s.clock())
	if err := artifact.Check(sess); err != nil {
		return artifact.Session{}, err
	}
	if err := s.store.Save(ctx, s.store.SessionPath(campaignID, sess.SessionNumber), sess); err != nil {
		return artifact.Session{}, err
	}
	return sess, nil
}

// End closes a session. Every still-joined participant is stamped with the
// end time. Ending an already ended session is a no-op.
func (s *Service) End(ctx context.Context, campaignID, sessionID string) (artifact.Session, error) {
	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(ctx, campaignID, sessionID)
	if err != nil {
		return artifact.Session{}, err
	}
	if sess.Status == artifact.SessionStatusEnded {
		return sess, nil
	}
	now := timeutil.New(s.clock())
	for i := range sess.Participants {
		if sess.Participants[i].Active() {
			left := now
			sess.Participants[i].LeftAt = &left
		}
	}
	sess.Status = artifact.SessionStatusEnded
	sess.EndedAt = &now
	sess.Metadata.Touch(now.Time)
	if err := s.store.Save(ctx, s.store.SessionPath(campaignID, sess.SessionNumber), sess); err != nil {
		return artifact.Session{}, err
	}
	s.logger.Info("session ended",
		zap.String("campaign_id", campaignID),
		zap.String("session_id", sessionID),
		zap.Int("session_number", sess.SessionNumber))
	return sess, nil
}

// Delete removes an ended session's record. Open sessions cannot be deleted.
func (s *Service) Delete(ctx context.Context, campaignID, sessionID string) error {
	sess, err := s.Get(ctx, campaignID, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != artifact.SessionStatusEnded {
		return apperrors.Conflictf("session %s is %s; only ended sessions can be deleted", sessionID, sess.Status)
	}
	return s.store.Delete(ctx, s.store.SessionPath(campaignID, sess.SessionNumber))
}

// Join adds a player to an active session. The player must be a campaign
// member and must not be active in any other session. Non-GM joiners need a
// character: an explicit id must agree with the membership default, and an
// omitted id falls back to it.
func (s *Service) Join(ctx context.Context, campaignID, sessionID, playerID, characterID string, isGM bool) (artifact.Session, error) {
	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(ctx, campaignID, sessionID)
	if err != nil {
		return artifact.Session{}, err
	}
	if sess.Status != artifact.SessionStatusActive {
		return artifact.Session{}, apperrors.Conflictf("session %s is %s; players can only join an active session", sessionID, sess.Status)
	}
	if _, ok := sess.ActiveParticipant(playerID); ok {
		return sess, nil
	}
	if current, ok, err := ActiveParticipation(ctx, s.store, playerID); err != nil {
		return artifact.Session{}, err
	} else if ok {
		return artifact.Session{}, apperrors.Conflictf("player %s is already in session %s of campaign %s", playerID, current.Session.Metadata.ID, current.CampaignID)
	}

	var membership artifact.Membership
	if err := s.store.Load(ctx, s.store.MembershipPath(campaignID, playerID), &membership); err != nil {
		if apperrors.IsNotFound(err) {
			return artifact.Session{}, apperrors.Conflictf("player %s is not a member of campaign %s", playerID, campaignID)
		}
		return artifact.Session{}, err
	}

	if !isGM {
		switch {
		case characterID == "":
			characterID = membership.CharacterID
		case membership.CharacterID != "" && characterID != membership.CharacterID:
			return artifact.Session{}, apperrors.Conflictf("character %s does not match the membership default %s", characterID, membership.CharacterID)
		}
		if characterID == "" {
			return artifact.Session{}, apperrors.Conflictf("player %s has no character to join with", playerID)
		}
	}

	now := timeutil.New(s.clock())
	sess.Participants = append(sess.Participants, artifact.Participant{
		PlayerID:    playerID,
		CharacterID: characterID,
		JoinedAt:    now,
		IsGM:        isGM,
	})
	sess.Metadata.Touch(now.Time)
	if err := artifact.Check(sess); err != nil {
		return artifact.Session{}, err
	}
	if err := s.store.Save(ctx, s.store.SessionPath(campaignID, sess.SessionNumber), sess); err != nil {
		return artifact.Session{}, err
	}
	s.logger.Info("player joined session",
		zap.String("campaign_id", campaignID),
		zap.String("session_id", sessionID),
		zap.String("player_id", playerID))
	return sess, nil
}

// Leave stamps the player's departure from a session.
func (s *Service) Leave(ctx context.Context, campaignID, sessionID, playerID string) (artifact.Session, error) {
	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(ctx, campaignID, sessionID)
	if err != nil {
		return artifact.Session{}, err
	}
	now := timeutil.New(s.clock())
	left := false
	for i := range sess.Participants {
		p := &sess.Participants[i]
		if p.PlayerID == playerID && p.Active() {
			stamp := now
			p.LeftAt = &stamp
			left = true
		}
	}
	if !left {
		return artifact.Session{}, apperrors.Conflictf("player %s is not an active participant of session %s", playerID, sessionID)
	}
	sess.Metadata.Touch(now.Time)
	if err := s.store.Save(ctx, s.store.SessionPath(campaignID, sess.SessionNumber), sess); err != nil {
		return artifact.Session{}, err
	}
	return sess, nil
}

// Participants returns the session's active participants.
func (s *Service) Participants(ctx context.Context, campaignID, sessionID string) ([]artifact.Participant, error) {
	sess, err := s.Get(ctx, campaignID, sessionID)
	if err != nil {
		return nil, err
	}
	var active []artifact.Participant
	for _, p := range sess.Participants {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active, nil
}

// LoadAll reads every session of a campaign, ordered by session number.
func LoadAll(ctx context.Context, store *storage.Store, campaignID string) ([]artifact.Session, error) {
	paths, err := store.List(ctx, store.SessionsDir(campaignID), "session_")
	if err != nil {
		return nil, err
	}
	sessions := make([]artifact.Session, 0, len(paths))
	for _, path := range paths {
		var sess artifact.Session
		if err := store.Load(ctx, path, &sess); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SessionNumber < sessions[j].SessionNumber
	})
	return sessions, nil
}

// FindOpen returns the first non-ended session in the slice, if any.
func FindOpen(sessions []artifact.Session) (artifact.Session, bool) {
	for _, sess := range sessions {
		if sess.Open() {
			return sess, true
		}
	}
	return artifact.Session{}, false
}

// Participation locates a player inside an open session.
type Participation struct {
	CampaignID string
	Session    artifact.Session
}

// ActiveParticipation scans every campaign for an open session in which the
// player is still an active participant. A player has at most one.
func ActiveParticipation(ctx context.Context, store *storage.Store, playerID string) (Participation, bool, error) {
	campaignIDs, err := store.CampaignIDs(ctx)
	if err != nil {
		return Participation{}, false, err
	}
	for _, campaignID := range campaignIDs {
		sessions, err := LoadAll(ctx, store, campaignID)
		if err != nil {
			return Participation{}, false, err
		}
		for _, sess := range sessions {
			if !sess.Open() {
				continue
			}
			if _, ok := sess.ActiveParticipant(playerID); ok {
				return Participation{CampaignID: campaignID, Session: sess}, true, nil
			}
		}
	}
	return Participation{}, false, nil
}
