package artifact

// CampaignStatus describes the lifecycle state of a campaign.
type CampaignStatus string

const (
	// CampaignStatusDraft indicates a campaign still being set up.
	CampaignStatusDraft CampaignStatus = "draft"
	// CampaignStatusActive indicates a campaign currently being played.
	CampaignStatusActive CampaignStatus = "active"
	// CampaignStatusCompleted indicates a campaign played to its end.
	CampaignStatusCompleted CampaignStatus = "completed"
	// CampaignStatusArchived indicates a campaign kept for reference only.
	CampaignStatusArchived CampaignStatus = "archived"
)

// IsValid reports whether the campaign status is a known value.
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusCompleted, CampaignStatusArchived:
		return true
	default:
		return false
	}
}

// PlayerStatus describes a player's presence.
type PlayerStatus string

const (
	// PlayerStatusOnline indicates the player is connected.
	PlayerStatusOnline PlayerStatus = "online"
	// PlayerStatusOffline indicates the player is not connected.
	PlayerStatusOffline PlayerStatus = "offline"
	// PlayerStatusAway indicates the player is connected but idle.
	PlayerStatusAway PlayerStatus = "away"
)

// IsValid reports whether the player status is a known value.
func (s PlayerStatus) IsValid() bool {
	switch s {
	case PlayerStatusOnline, PlayerStatusOffline, PlayerStatusAway:
		return true
	default:
		return false
	}
}

// SessionStatus describes the lifecycle state of a session.
type SessionStatus string

const (
	// SessionStatusActive indicates the session is currently being played.
	SessionStatusActive SessionStatus = "active"
	// SessionStatusPaused indicates the session is suspended but resumable.
	SessionStatusPaused SessionStatus = "paused"
	// SessionStatusEnded indicates the session is over. Ended is terminal.
	SessionStatusEnded SessionStatus = "ended"
)

// IsValid reports whether the session status is a known value.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusPaused, SessionStatusEnded:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a session may move between two statuses via
// an update. Ending a session goes through its own operation, and ended is
// terminal.
func CanTransition(from, to SessionStatus) bool {
	if from == SessionStatusEnded {
		return false
	}
	switch {
	case from == to:
		return true
	case from == SessionStatusActive && to == SessionStatusPaused:
		return true
	case from == SessionStatusPaused && to == SessionStatusActive:
		return true
	default:
		return false
	}
}

// MembershipRole describes a player's role within a campaign.
type MembershipRole string

const (
	// RolePlayer indicates a regular participating player.
	RolePlayer MembershipRole = "player"
	// RoleGM indicates the game master.
	RoleGM MembershipRole = "gm"
	// RoleSpectator indicates a non-participating observer.
	RoleSpectator MembershipRole = "spectator"
)

// IsValid reports whether the membership role is a known value.
func (r MembershipRole) IsValid() bool {
	switch r {
	case RolePlayer, RoleGM, RoleSpectator:
		return true
	default:
		return false
	}
}

// CharacterType distinguishes player characters from NPCs.
type CharacterType string

const (
	// CharacterTypePlayer indicates a character controlled by a player.
	CharacterTypePlayer CharacterType = "player_character"
	// CharacterTypeNonPlayer indicates a character controlled by the GM.
	CharacterTypeNonPlayer CharacterType = "non_player_character"
)

// IsValid reports whether the character type is a known value.
func (t CharacterType) IsValid() bool {
	switch t {
	case CharacterTypePlayer, CharacterTypeNonPlayer:
		return true
	default:
		return false
	}
}

// ActorType identifies who performed a game action.
type ActorType string

const (
	// ActorPlayer indicates a player performed the action.
	ActorPlayer ActorType = "player"
	// ActorGM indicates the game master performed the action.
	ActorGM ActorType = "gm"
)

// IsValid reports whether the actor type is a known value.
func (t ActorType) IsValid() bool {
	switch t {
	case ActorPlayer, ActorGM:
		return true
	default:
		return false
	}
}
