package models

import "time"

// Participant is one player's stat line in one game. (game_id, player_id)
// is unique: re-running extraction for a game replaces the prior line
// instead of duplicating it.
type Participant struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	GameID    uint   `gorm:"not null;uniqueIndex:idx_game_player"`
	PlayerID  uint   `gorm:"index;not null;uniqueIndex:idx_game_player"`
	Player    Player `gorm:"foreignKey:PlayerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	// Team is "A" (top table) or "B" (bottom table).
	Team string `gorm:"size:1;not null"`

	Pts       int `gorm:"not null"`
	Reb       int `gorm:"not null"`
	Ast       int `gorm:"not null"`
	Stl       int `gorm:"not null"`
	Blk       int `gorm:"not null"`
	Fouls     int `gorm:"not null"`
	Turnovers int `gorm:"not null"`

	Fgm int `gorm:"not null"`
	Fga int `gorm:"not null"`
	Tpm int `gorm:"not null"`
	Tpa int `gorm:"not null"`
	Ftm int `gorm:"not null"`
	Fta int `gorm:"not null"`
}
