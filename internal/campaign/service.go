// Package campaign manages campaign documents and campaign membership.
package campaign

import (
	"context"
	"os"
	"sort"
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

// Service manages campaigns and their memberships.
type Service struct {
	store  *storage.Store
	logger *zap.Logger

	clock func() time.Time
	newID func() (string, error)
}

// NewService builds a campaign service over the given store.
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

// CreateInput carries the fields needed to create a campaign.
type CreateInput struct {
	Name        string
	RuleSystem  string
	Description string
	CreatedBy   string
}

// NormalizeCreateInput trims whitespace from create input fields.
func NormalizeCreateInput(in CreateInput) CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.RuleSystem = strings.TrimSpace(in.RuleSystem)
	in.Description = strings.TrimSpace(in.Description)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	return in
}

// Create makes a new draft campaign with its directory skeleton.
func (s *Service) Create(ctx context.Context, in CreateInput) (artifact.Campaign, error) {
	in = NormalizeCreateInput(in)
	campaignID, err := s.newID()
	if err != nil {
		return artifact.Campaign{}, apperrors.IO(err, "generate campaign id")
	}
	c := artifact.Campaign{
		Metadata:    artifact.NewMetadata(campaignID, s.clock()),
		Name:        in.Name,
		RuleSystem:  in.RuleSystem,
		Status:      artifact.CampaignStatusDraft,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
	}
	if err := artifact.Check(c); err != nil {
		return artifact.Campaign{}, err
	}
	for _, dir := range []string{
		s.store.CharactersDir(campaignID),
		s.store.ModulesDir(campaignID),
		s.store.MembershipsDir(campaignID),
		s.store.SessionsDir(campaignID),
		s.store.StateDir(campaignID),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return artifact.Campaign{}, apperrors.IO(err, "create directory %s", dir)
		}
	}
	if err := s.store.Save(ctx, s.store.CampaignPath(campaignID), c); err != nil {
		return artifact.Campaign{}, err
	}
	s.logger.Info("campaign created",
		zap.String("campaign_id", campaignID),
		zap.String("name", c.Name))
	return c, nil
}

// Get returns the campaign with the given id.
func (s *Service) Get(ctx context.Context, campaignID string) (artifact.Campaign, error) {
	var c artifact.Campaign
	if err := s.store.Load(ctx, s.store.CampaignPath(campaignID), &c); err != nil {
		return artifact.Campaign{}, err
	}
	return c, nil
}

// UpdateInput carries the mutable campaign fields.
type UpdateInput struct {
	Name           *string
	Description    *string
	Status         *artifact.CampaignStatus
	ActiveModuleID *string
}

// Update mutates a campaign's fields and refreshes its metadata.
func (s *Service) Update(ctx context.Context, campaignID string, in UpdateInput) (artifact.Campaign, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return artifact.Campaign{}, err
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.ActiveModuleID != nil {
		c.ActiveModuleID = strings.TrimSpace(*in.ActiveModuleID)
	}
	c.Metadata.Touch(s.clock())
	if err := artifact.Check(c); err != nil {
		return artifact.Campaign{}, err
	}
	if err := s.store.Save(ctx, s.store.CampaignPath(campaignID), c); err != nil {
		return artifact.Campaign{}, err
	}
	return c, nil
}

// List returns every campaign, ordered by id. Directories without a campaign
// document are skipped.
func (s *Service) List(ctx context.Context) ([]artifact.Campaign, error) {
	ids, err := s.store.CampaignIDs(ctx)
	if err != nil {
		return nil, err
	}
	campaigns := make([]artifact.Campaign, 0, len(ids))
	for _, campaignID := range ids {
		c, err := s.Get(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

// Delete removes a campaign and everything under it. A campaign with an open
// session cannot be deleted.
func (s *Service) Delete(ctx context.Context, campaignID string) error {
	if _, err := s.Get(ctx, campaignID); err != nil {
		return err
	}
	sessions, err := session.LoadAll(ctx, s.store, campaignID)
	if err != nil {
		return err
	}
	if open, ok := session.FindOpen(sessions); ok {
		return apperrors.Conflictf("campaign %s has open session %d", campaignID, open.SessionNumber)
	}
	if err := s.store.RemoveAll(ctx, s.store.CampaignDir(campaignID)); err != nil {
		return err
	}
	s.logger.Info("campaign deleted", zap.String("campaign_id", campaignID))
	return nil
}

// AddPlayer creates a membership for a player. A player can hold at most one
// membership per campaign.
func (s *Service) AddPlayer(ctx context.Context, campaignID, playerID string, role artifact.MembershipRole, characterID string) (artifact.Membership, error) {
	if _, err := s.Get(ctx, campaignID); err != nil {
		return artifact.Membership{}, err
	}
	if !role.IsValid() {
		return artifact.Membership{}, apperrors.Validationf("unknown membership role %q", role)
	}
	path := s.store.MembershipPath(campaignID, playerID)
	var existing artifact.Membership
	if err := s.store.Load(ctx, path, &existing); err == nil {
		return artifact.Membership{}, apperrors.Conflictf("player %s is already a member of campaign %s", playerID, campaignID)
	} else if !apperrors.IsNotFound(err) {
		return artifact.Membership{}, err
	}

	membershipID, err := s.newID()
	if err != nil {
		return artifact.Membership{}, apperrors.IO(err, "generate membership id")
	}
	now := s.clock()
	m := artifact.Membership{
		Metadata:    artifact.NewMetadata(membershipID, now),
		PlayerID:    playerID,
		CampaignID:  campaignID,
		Role:        role,
		CharacterID: characterID,
		JoinedAt:    timeutil.New(now),
	}
	if err := artifact.Check(m); err != nil {
		return artifact.Membership{}, err
	}
	if err := s.store.Save(ctx, path, m); err != nil {
		return artifact.Membership{}, err
	}
	s.logger.Info("player added to campaign",
		zap.String("campaign_id", campaignID),
		zap.String("player_id", playerID),
		zap.String("role", string(role)))
	return m, nil
}

// RemovePlayer deletes a player's membership. The membership stays while the
// player is an active participant in the campaign's open session.
func (s *Service) RemovePlayer(ctx context.Context, campaignID, playerID string) error {
	path := s.store.MembershipPath(campaignID, playerID)
	var m artifact.Membership
	if err := s.store.Load(ctx, path, &m); err != nil {
		return err
	}
	sessions, err := session.LoadAll(ctx, s.store, campaignID)
	if err != nil {
		return err
	}
	if open, ok := session.FindOpen(sessions); ok {
		if _, active := open.ActiveParticipant(playerID); active {
			return apperrors.Conflictf("player %s is in session %d of campaign %s", playerID, open.SessionNumber, campaignID)
		}
	}
	return s.store.Delete(ctx, path)
}

// UpdateMembershipInput carries the mutable membership fields.
type UpdateMembershipInput struct {
	Role        *artifact.MembershipRole
	CharacterID *string
}

// UpdateMembership mutates a membership's role or default character.
func (s *Service) UpdateMembership(ctx context.Context, campaignID, playerID string, in UpdateMembershipInput) (artifact.Membership, error) {
	path := s.store.MembershipPath(campaignID, playerID)
	var m artifact.Membership
	if err := s.store.Load(ctx, path, &m); err != nil {
		return artifact.Membership{}, err
	}
	if in.Role != nil {
		m.Role = *in.Role
	}
	if in.CharacterID != nil {
		m.CharacterID = *in.CharacterID
	}
	m.Metadata.Touch(s.clock())
	if err := artifact.Check(m); err != nil {
		return artifact.Membership{}, err
	}
	if err := s.store.Save(ctx, path, m); err != nil {
		return artifact.Membership{}, err
	}
	return m, nil
}

// GetMembership returns a player's membership in a campaign.
func (s *Service) GetMembership(ctx context.Context, campaignID, playerID string) (artifact.Membership, error) {
	var m artifact.Membership
	if err := s.store.Load(ctx, s.store.MembershipPath(campaignID, playerID), &m); err != nil {
		return artifact.Membership{}, err
	}
	return m, nil
}

// ListMembers returns the campaign's memberships, ordered by player id.
func (s *Service) ListMembers(ctx context.Context, campaignID string) ([]artifact.Membership, error) {
	if _, err := s.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	paths, err := s.store.List(ctx, s.store.MembershipsDir(campaignID), "")
	if err != nil {
		return nil, err
	}
	members := make([]artifact.Membership, 0, len(paths))
	for _, path := range paths {
		var m artifact.Membership
		if err := s.store.Load(ctx, path, &m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].PlayerID < members[j].PlayerID
	})
	return members, nil
}
