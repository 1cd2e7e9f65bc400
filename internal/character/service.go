// Package character manages character sheets within a campaign.
//
// Sheets are stored one file per character, named by type prefix and a slug
// of the character's name: pc_aria.yaml, npc_goblin_chief.yaml.
package character

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/id"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
	"github.com/lorekeep/lorekeep/internal/storage"
)

// Service manages character sheets.
type Service struct {
	store  *storage.Store
	logger *zap.Logger

	clock func() time.Time
	newID func() (string, error)
}

// NewService builds a character service over the given store.
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

// Slug converts a character name into a filename-safe token. Runs of
// non-alphanumeric characters collapse into single underscores.
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Filename returns the storage filename for a character of the given type
// and name.
func Filename(t artifact.CharacterType, name string) string {
	prefix := "pc_"
	if t == artifact.CharacterTypeNonPlayer {
		prefix = "npc_"
	}
	return prefix + Slug(name) + ".yaml"
}

// CreateInput carries the fields needed to create a character sheet.
type CreateInput struct {
	Type       artifact.CharacterType
	Identity   artifact.Identity
	Abilities  map[string]int
	Combat     artifact.CombatStats
	Inventory  []artifact.InventoryItem
	Conditions []string
	Notes      string
}

// Create makes a new character sheet in a campaign. Two characters of the
// same type cannot share a name slug.
func (s *Service) Create(ctx context.Context, campaignID string, in CreateInput) (artifact.CharacterSheet, error) {
	var campaign artifact.Campaign
	if err := s.store.Load(ctx, s.store.CampaignPath(campaignID), &campaign); err != nil {
		return artifact.CharacterSheet{}, err
	}
	if in.Identity.Level == 0 {
		in.Identity.Level = 1
	}
	characterID, err := s.newID()
	if err != nil {
		return artifact.CharacterSheet{}, apperrors.IO(err, "generate character id")
	}
	sheet := artifact.CharacterSheet{
		Metadata:   artifact.NewMetadata(characterID, s.clock()),
		Type:       in.Type,
		Identity:   in.Identity,
		Abilities:  in.Abilities,
		Combat:     in.Combat,
		Inventory:  in.Inventory,
		Conditions: in.Conditions,
		Notes:      in.Notes,
	}
	if err := artifact.Check(sheet); err != nil {
		return artifact.CharacterSheet{}, err
	}
	return s.saveNew(ctx, campaignID, sheet)
}

// Import stores an externally built character sheet. Missing ids and
// metadata are filled in before saving.
func (s *Service) Import(ctx context.Context, campaignID string, sheet artifact.CharacterSheet) (artifact.CharacterSheet, error) {
	var campaign artifact.Campaign
	if err := s.store.Load(ctx, s.store.CampaignPath(campaignID), &campaign); err != nil {
		return artifact.CharacterSheet{}, err
	}
	if sheet.Metadata.ID == "" {
		characterID, err := s.newID()
		if err != nil {
			return artifact.CharacterSheet{}, apperrors.IO(err, "generate character id")
		}
		sheet.Metadata = artifact.NewMetadata(characterID, s.clock())
	}
	if err := artifact.Check(sheet); err != nil {
		return artifact.CharacterSheet{}, err
	}
	return s.saveNew(ctx, campaignID, sheet)
}

func (s *Service) saveNew(ctx context.Context, campaignID string, sheet artifact.CharacterSheet) (artifact.CharacterSheet, error) {
	path := s.store.CharacterPath(campaignID, Filename(sheet.Type, sheet.Identity.Name))
	var existing artifact.CharacterSheet
	if err := s.store.Load(ctx, path, &existing); err == nil {
		return artifact.CharacterSheet{}, apperrors.Conflictf("character %s already exists in campaign %s", sheet.Identity.Name, campaignID)
	} else if !apperrors.IsNotFound(err) {
		return artifact.CharacterSheet{}, err
	}
	if err := s.store.Save(ctx, path, sheet); err != nil {
		return artifact.CharacterSheet{}, err
	}
	s.logger.Info("character created",
		zap.String("campaign_id", campaignID),
		zap.String("character_id", sheet.Metadata.ID),
		zap.String("name", sheet.Identity.Name))
	return sheet, nil
}

// Get returns the campaign's character with the given id.
func (s *Service) Get(ctx context.Context, campaignID, characterID string) (artifact.CharacterSheet, error) {
	sheet, _, err := s.find(ctx, campaignID, characterID)
	return sheet, err
}

// GetByPlayer returns the character a player's membership points at.
func (s *Service) GetByPlayer(ctx context.Context, campaignID, playerID string) (artifact.CharacterSheet, error) {
	var m artifact.Membership
	if err := s.store.Load(ctx, s.store.MembershipPath(campaignID, playerID), &m); err != nil {
		return artifact.CharacterSheet{}, err
	}
	if m.CharacterID == "" {
		return artifact.CharacterSheet{}, apperrors.NotFoundf("player %s has no character in campaign %s", playerID, campaignID)
	}
	return s.Get(ctx, campaignID, m.CharacterID)
}

// List returns the campaign's characters, ordered by filename. A non-empty
// type filters the result.
func (s *Service) List(ctx context.Context, campaignID string, typ artifact.CharacterType) ([]artifact.CharacterSheet, error) {
	prefix := ""
	switch typ {
	case artifact.CharacterTypePlayer:
		prefix = "pc_"
	case artifact.CharacterTypeNonPlayer:
		prefix = "npc_"
	}
	paths, err := s.store.List(ctx, s.store.CharactersDir(campaignID), prefix)
	if err != nil {
		return nil, err
	}
	sheets := make([]artifact.CharacterSheet, 0, len(paths))
	for _, path := range paths {
		var sheet artifact.CharacterSheet
		if err := s.store.Load(ctx, path, &sheet); err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// UpdateInput carries the mutable character sheet fields.
type UpdateInput struct {
	Identity   *artifact.Identity
	Abilities  map[string]int
	Combat     *artifact.CombatStats
	Inventory  []artifact.InventoryItem
	Conditions []string
	Notes      *string
}

// Update mutates a character sheet in place. The sheet keeps the filename it
// was created under even when the name changes.
func (s *Service) Update(ctx context.Context, campaignID, characterID string, in UpdateInput) (artifact.CharacterSheet, error) {
	sheet, path, err := s.find(ctx, campaignID, characterID)
	if err != nil {
		return artifact.CharacterSheet{}, err
	}
	if in.Identity != nil {
		sheet.Identity = *in.Identity
	}
	if in.Abilities != nil {
		sheet.Abilities = in.Abilities
	}
	if in.Combat != nil {
		sheet.Combat = *in.Combat
	}
	if in.Inventory != nil {
		sheet.Inventory = in.Inventory
	}
	if in.Conditions != nil {
		sheet.Conditions = in.Conditions
	}
	if in.Notes != nil {
		sheet.Notes = *in.Notes
	}
	sheet.Metadata.Touch(s.clock())
	if err := artifact.Check(sheet); err != nil {
		return artifact.CharacterSheet{}, err
	}
	if err := s.store.Save(ctx, path, sheet); err != nil {
		return artifact.CharacterSheet{}, err
	}
	return sheet, nil
}

// Delete removes a character sheet.
func (s *Service) Delete(ctx context.Context, campaignID, characterID string) error {
	_, path, err := s.find(ctx, campaignID, characterID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, path)
}

func (s *Service) find(ctx context.Context, campaignID, characterID string) (artifact.CharacterSheet, string, error) {
	paths, err := s.store.List(ctx, s.store.CharactersDir(campaignID), "")
	if err != nil {
		return artifact.CharacterSheet{}, "", err
	}
	for _, path := range paths {
		var sheet artifact.CharacterSheet
		if err := s.store.Load(ctx, path, &sheet); err != nil {
			return artifact.CharacterSheet{}, "", err
		}
		if sheet.Metadata.ID == characterID {
			return sheet, path, nil
		}
	}
	return artifact.CharacterSheet{}, "", apperrors.NotFoundf("character %s not found in campaign %s", characterID, campaignID)
}
