package models

import "time"

// Game statuses. OCR ingestion creates games as DRAFT; a reviewed game is
// finalized and only FINAL games count toward the leaderboard.
const (
	GameDraft = "DRAFT"
	GameFinal = "FINAL"
)

// Game is one recorded match.
type Game struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// PlayedAt is an ISO date (YYYY-MM-DD).
	PlayedAt string `gorm:"size:32;not null"`
	Status   string `gorm:"size:16;not null;default:DRAFT;index"`
	// ImagePath is the locally saved screenshot the stats came from.
	ImagePath  string `gorm:"size:512"`
	TeamAScore *int
	TeamBScore *int

	Participants []Participant `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
