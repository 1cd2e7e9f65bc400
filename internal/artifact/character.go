package artifact

// Identity holds who a character is.
type Identity struct {
	Name       string `yaml:"name"`
	PlayerName string `yaml:"player_name,omitempty"`
	Ancestry   string `yaml:"ancestry,omitempty"`
	Class      string `yaml:"class,omitempty"`
	Level      int    `yaml:"level"`
	Alignment  string `yaml:"alignment,omitempty"`
}

// HitPoints tracks current versus maximum hit points.
type HitPoints struct {
	Current int `yaml:"current"`
	Maximum int `yaml:"maximum"`
}

// CombatStats holds a character's combat numbers.
type CombatStats struct {
	HitPoints   HitPoints `yaml:"hit_points"`
	ArmorClass  int       `yaml:"armor_class"`
	AttackBonus int       `yaml:"attack_bonus"`
}

// InventoryItem is one carried item.
type InventoryItem struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
	Equipped bool   `yaml:"equipped"`
}

// CharacterSheet is a PC or NPC character sheet.
type CharacterSheet struct {
	Metadata   Metadata        `yaml:"metadata"`
	Type       CharacterType   `yaml:"type"`
	Identity   Identity        `yaml:"identity"`
	Abilities  map[string]int  `yaml:"abilities,omitempty"`
	Combat     CombatStats     `yaml:"combat"`
	Inventory  []InventoryItem `yaml:"inventory,omitempty"`
	Conditions []string        `yaml:"conditions,omitempty"`
	Notes      string          `yaml:"notes,omitempty"`
}
