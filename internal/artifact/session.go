package artifact

import "github.com/lorekeep/lorekeep/internal/platform/timeutil"

// Membership records a player's relationship to a campaign. At most one
// membership exists per (campaign, player) pair; the file is keyed by
// player id to make uniqueness a filesystem property.
type Membership struct {
	Metadata    Metadata       `yaml:"metadata"`
	PlayerID    string         `yaml:"player_id"`
	CampaignID  string         `yaml:"campaign_id"`
	Role        MembershipRole `yaml:"role"`
	CharacterID string         `yaml:"character_id,omitempty"`
	JoinedAt    timeutil.Time  `yaml:"joined_at"`
}

// Participant records a player's presence in a session. A nil LeftAt means
// the participation is still active.
type Participant struct {
	PlayerID    string         `yaml:"player_id"`
	CharacterID string         `yaml:"character_id,omitempty"`
	JoinedAt    timeutil.Time  `yaml:"joined_at"`
	LeftAt      *timeutil.Time `yaml:"left_at,omitempty"`
	IsGM        bool           `yaml:"is_gm"`
}

// Active reports whether the participant is still in the session.
func (p Participant) Active() bool {
	return p.LeftAt == nil
}

// Session represents one sitting of gameplay for a campaign. Session numbers
// are sequential per campaign starting at 1 and are never reused.
type Session struct {
	Metadata      Metadata       `yaml:"metadata"`
	CampaignID    string         `yaml:"campaign_id"`
	SessionNumber int            `yaml:"session_number"`
	Name          string         `yaml:"name,omitempty"`
	Status        SessionStatus  `yaml:"status"`
	StartedAt     timeutil.Time  `yaml:"started_at"`
	EndedAt       *timeutil.Time `yaml:"ended_at,omitempty"`
	StartedBy     string         `yaml:"started_by"`
	Notes         string         `yaml:"notes,omitempty"`
	Participants  []Participant  `yaml:"participants"`
}

// ActiveParticipant returns the player's active participation, if any.
func (s Session) ActiveParticipant(playerID string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.PlayerID == playerID && p.Active() {
			return p, true
		}
	}
	return Participant{}, false
}

// Open reports whether the session is still active or paused.
func (s Session) Open() bool {
	return s.Status == SessionStatusActive || s.Status == SessionStatusPaused
}
