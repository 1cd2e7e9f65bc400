// Package player manages player documents stored outside any campaign.
package player

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/id"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
	"github.com/lorekeep/lorekeep/internal/session"
	"github.com/lorekeep/lorekeep/internal/storage"
)

// Service manages player records.
type Service struct {
	store  *storage.Store
	logger *zap.Logger

	clock func() time.Time
	newID func() (string, error)
}

// NewService builds a player service over the given store.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		clock:  timeutil.Now,
		newID:  id.NewID,
	}
}

// CreateInput carries the fields needed to register a player.
type CreateInput struct {
	Username    string
	DisplayName string
	Email       string
	AvatarURL   string
	Status      artifact.PlayerStatus
}

// NormalizeCreateInput trims whitespace and lowercases the username.
func NormalizeCreateInput(in CreateInput) CreateInput {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	return in
}

// Create registers a new player. Usernames are globally unique.
func (s *Service) Create(ctx context.Context, in CreateInput) (artifact.Player, error) {
	in = NormalizeCreateInput(in)
	if in.Status == "" {
		in.Status = artifact.PlayerStatusOffline
	}
	if err := s.checkUsernameFree(ctx, in.Username, ""); err != nil {
		return artifact.Player{}, err
	}

	playerID, err := s.newID()
	if err != nil {
		return artifact.Player{}, apperrors.IO(err, "generate player id")
	}
	p := artifact.Player{
		Metadata:    artifact.NewMetadata(playerID, s.clock()),
		Username:    in.Username,
		DisplayName: in.DisplayName,
		Email:       in.Email,
		AvatarURL:   in.AvatarURL,
		Status:      in.Status,
	}
	if err := artifact.Check(p); err != nil {
		return artifact.Player{}, err
	}
	if err := s.store.Save(ctx, s.store.PlayerPath(playerID), p); err != nil {
		return artifact.Player{}, err
	}
	s.logger.Info("player created",
		zap.String("player_id", playerID),
		zap.String("username", p.Username))
	return p, nil
}

// Get returns the player with the given id.
func (s *Service) Get(ctx context.Context, playerID string) (artifact.Player, error) {
	var p artifact.Player
	if err := s.store.Load(ctx, s.store.PlayerPath(playerID), &p); err != nil {
		return artifact.Player{}, err
	}
	return p, nil
}

// GetByUsername returns the player with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (artifact.Player, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	players, err := s.List(ctx)
	if err != nil {
		return artifact.Player{}, err
	}
	for _, p := range players {
		if p.Username == username {
			return p, nil
		}
	}
	return artifact.Player{}, apperrors.NotFoundf("player %s not found", username)
}

// UpdateInput carries the mutable player fields.
type UpdateInput struct {
	Username    *string
	DisplayName *string
	Email       *string
	AvatarURL   *string
	Status      *artifact.PlayerStatus
}

// Update mutates a player's fields. Username changes re-check uniqueness.
func (s *Service) Update(ctx context.Context, playerID string, in UpdateInput) (artifact.Player, error) {
	p, err := s.Get(ctx, playerID)
	if err != nil {
		return artifact.Player{}, err
	}
	if in.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*in.Username))
		if username != p.Username {
			if err := s.checkUsernameFree(ctx, username, playerID); err != nil {
				return artifact.Player{}, err
			}
			p.Username = username
		}
	}
	if in.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Email != nil {
		p.Email = strings.TrimSpace(*in.Email)
	}
	if in.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	p.Metadata.Touch(s.clock())
	if err := artifact.Check(p); err != nil {
		return artifact.Player{}, err
	}
	if err := s.store.Save(ctx, s.store.PlayerPath(playerID), p); err != nil {
		return artifact.Player{}, err
	}
	return p, nil
}

// List returns every player, ordered by id.
func (s *Service) List(ctx context.Context) ([]artifact.Player, error) {
	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		return nil, err
	}
	players := make([]artifact.Player, 0, len(ids))
	for _, playerID := range ids {
		p, err := s.Get(ctx, playerID)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// Delete removes a player record. A player who is active in a session
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, playerID string) error {
	if _, err := s.Get(ctx, playerID); err != nil {
		return err
	}
	if current, ok, err := session.ActiveParticipation(ctx, s.store, playerID); err != nil {
		return err
	} else if ok {
		return apperrors.Conflictf("player %s is in session %s of campaign %s", playerID, current.Session.Metadata.ID, current.CampaignID)
	}
	if err := s.store.RemoveAll(ctx, s.store.PlayerDir(playerID)); err != nil {
		return err
	}
	s.logger.Info("player deleted", zap.String("player_id", playerID))
	return nil
}

// ActiveSession returns the open session the player currently participates
// in, or a NotFound error.
func (s *Service) ActiveSession(ctx context.Context, playerID string) (artifact.Session, error) {
	current, ok, err := session.ActiveParticipation(ctx, s.store, playerID)
	if err != nil {
		return artifact.Session{}, err
	}
	if !ok {
		return artifact.Session{}, apperrors.NotFoundf("player %s is not in a session", playerID)
	}
	return current.Session, nil
}

// Campaigns returns the player's memberships across every campaign.
func (s *Service) Campaigns(ctx context.Context, playerID string) ([]artifact.Membership, error) {
	if _, err := s.Get(ctx, playerID); err != nil {
		return nil, err
	}
	campaignIDs, err := s.store.CampaignIDs(ctx)
	if err != nil {
		return nil, err
	}
	var memberships []artifact.Membership
	for _, campaignID := range campaignIDs {
		var m artifact.Membership
		err := s.store.Load(ctx, s.store.MembershipPath(campaignID, playerID), &m)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

func (s *Service) checkUsernameFree(ctx context.Context, username, selfID string) error {
	if username == "" {
		return apperrors.Validationf("username is required")
	}
	players, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		if p.Username == username && p.Metadata.ID != selfID {
			return apperrors.Conflictf("username %s is taken", username)
		}
	}
	return nil
}
