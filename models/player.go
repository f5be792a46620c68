package models

import "time"

// Player is a known human gamertag eligible for OCR roster matching.
type Player struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Gamertag  string `gorm:"size:64;uniqueIndex;not null"`
}
