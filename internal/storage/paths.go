package storage

import (
	"fmt"
	"path/filepath"
)

// CampaignDir returns the root directory of a campaign.
func (s *Store) CampaignDir(campaignID string) string {
	return filepath.Join(s.campaignsDir, campaignID)
}

// CampaignPath returns the campaign document path.
func (s *Store) CampaignPath(campaignID string) string {
	return filepath.Join(s.CampaignDir(campaignID), "campaign.yaml")
}

// CharactersDir returns a campaign's character sheet directory.
func (s *Store) CharactersDir(campaignID string) string {
	return filepath.Join(s.CampaignDir(campaignID), "characters")
}

// CharacterPath returns the path of a named character sheet file.
func (s *Store) CharacterPath(campaignID, filename string) string {
	return filepath.Join(s.CharactersDir(campaignID), filename)
}

// ModulesDir returns a campaign's adventure module directory.
func (s *Store) ModulesDir(campaignID string) string {
	return filepath.Join(s.CampaignDir(campaignID), "modules")
}

// MembershipsDir returns a campaign's membership directory.
func (s *Store) MembershipsDir(campaignID string) string {
	return filepath.Join(s.CampaignDir(campaignID), "memberships")
}

// MembershipPath returns the membership document path for a player. Keying
// the file by player id makes membership uniqueness a filesystem property.
func (s *Store) MembershipPath(campaignID, playerID string) string {
	return filepath.Join(s.MembershipsDir(campaignID), playerID+".yaml")
}

// SessionsDir returns a campaign's session directory.
func (s *Store) SessionsDir(campaignID string) string {
	return filepath.Join(s.CampaignDir(campaignID), "sessions")
}

// SessionPath returns the session document path for a session number.
func (s *Store) SessionPath(campaignID string, number int) string {
	return filepath.Join(s.SessionsDir(campaignID), fmt.Sprintf("session_%03d.yaml", number))
}

// StateDir returns a campaign's derived game state directory.
func (s *Store) StateDir(campaignID string) string {
	return filepath.Join(s.CampaignDir(campaignID), "state")
}

// HistoryPath returns a campaign's action history path.
func (s *Store) HistoryPath(campaignID string) string {
	return filepath.Join(s.StateDir(campaignID), "history.yaml")
}

// PlayerDir returns the root directory of a player.
func (s *Store) PlayerDir(playerID string) string {
	return filepath.Join(s.playersDir, playerID)
}

// PlayerPath returns the player document path.
func (s *Store) PlayerPath(playerID string) string {
	return filepath.Join(s.PlayerDir(playerID), "player.yaml")
}
