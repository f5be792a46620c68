package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"stattrack/models"
	"stattrack/pkg/ocr"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Roles first so the users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Player{}); err != nil {
			log.Printf("migration warning (players): %v", err)
		}
		if err := db.AutoMigrate(&models.Game{}); err != nil {
			log.Printf("migration warning (games): %v", err)
		}
		if err := db.AutoMigrate(&models.Participant{}); err != nil {
			log.Printf("migration warning (participants): %v", err)
		}
	}
}

func seedRoles() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

// loadRoster snapshots the players table for one extraction run. Called
// fresh before every run so roster edits between runs are picked up.
func loadRoster() (*ocr.Roster, error) {
	var players []models.Player
	if err := db.Order("id").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	roster := ocr.NewRoster()
	for _, p := range players {
		roster.Add(p.ID, p.Gamertag)
	}
	return roster, nil
}

// upsertParticipant replaces any existing stat line for (gameID, player).
// Delete-then-insert inside a transaction keeps repeated extraction runs on
// the same screenshot idempotent.
func upsertParticipant(gameID uint, line ocr.StatLine) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ? AND player_id = ?", gameID, line.PlayerID).
			Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Participant{
			GameID:   gameID,
			PlayerID: line.PlayerID,
			Team:     string(line.Team),
			Pts:      line.Pts, Reb: line.Reb, Ast: line.Ast, Stl: line.Stl,
			Blk: line.Blk, Fouls: line.Fouls, Turnovers: line.Turnovers,
			Fgm: line.FG.Made, Fga: line.FG.Attempted,
			Tpm: line.ThreePt.Made, Tpa: line.ThreePt.Attempted,
			Ftm: line.FT.Made, Fta: line.FT.Attempted,
		}).Error
	})
}
