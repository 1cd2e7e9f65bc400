package artifact

// Campaign represents a game world and owns its sub-artifacts: characters,
// sessions, memberships, and the action history.
type Campaign struct {
	Metadata       Metadata       `yaml:"metadata"`
	Name           string         `yaml:"name"`
	RuleSystem     string         `yaml:"rule_system"`
	Status         CampaignStatus `yaml:"status"`
	Description    string         `yaml:"description,omitempty"`
	CreatedBy      string         `yaml:"created_by,omitempty"`
	ActiveModuleID string         `yaml:"active_module_id,omitempty"`
}

// Player represents a real human user, stored independently of any campaign.
type Player struct {
	Metadata    Metadata     `yaml:"metadata"`
	Username    string       `yaml:"username"`
	DisplayName string       `yaml:"display_name"`
	Email       string       `yaml:"email,omitempty"`
	AvatarURL   string       `yaml:"avatar_url,omitempty"`
	Status      PlayerStatus `yaml:"status"`
}
