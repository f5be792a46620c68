package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"stattrack/models"
	"stattrack/pkg/fantasy"
	"stattrack/pkg/ocr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.GET("/players", listPlayersHandler)
	authGroup.POST("/players", createPlayerHandler)
	authGroup.GET("/players/:id/summary", playerSummaryHandler)
	authGroup.GET("/games", listGamesHandler)
	authGroup.POST("/games", createGameHandler)
	authGroup.GET("/games/:id/summary", gameSummaryHandler)
	authGroup.POST("/games/ocr", ocrGameHandler)
	authGroup.POST("/games/:id/score", setScoreHandler)
	authGroup.POST("/games/:id/finalize", finalizeGameHandler)
	authGroup.POST("/games/:id/unfinalize", unfinalizeGameHandler)
	authGroup.POST("/games/:id/stats", manualStatsHandler)
	authGroup.GET("/leaderboard", leaderboardHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string)})
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "registered"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

// requireWriteAccess gates mutating routes behind the administrator role,
// mirroring how score entry was restricted in the league.
func requireWriteAccess(c *gin.Context) bool {
	roleVal, _ := c.Get("role")
	if role, _ := roleVal.(string); role == "administrator" {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "write access requires administrator role"})
	return false
}

// ----------------------------
// Players
// ----------------------------

func listPlayersHandler(c *gin.Context) {
	var players []models.Player
	if err := db.Order("id").Find(&players).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, players)
}

func createPlayerHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	var req struct {
		Gamertag string `json:"gamertag" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ocr.Normalize(req.Gamertag) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gamertag has no matchable characters"})
		return
	}
	player := models.Player{Gamertag: strings.TrimSpace(req.Gamertag)}
	if err := db.Create(&player).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "gamertag already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, player)
}

// ----------------------------
// Games
// ----------------------------

func gameFromParam(c *gin.Context) (*models.Game, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return nil, false
	}
	var g models.Game
	if err := db.First(&g, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return nil, false
	}
	return &g, true
}

func listGamesHandler(c *gin.Context) {
	var games []models.Game
	if err := db.Order("id desc").Limit(50).Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, games)
}

func createGameHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	var req struct {
		PlayedAt string `json:"played_at"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.PlayedAt == "" {
		req.PlayedAt = time.Now().Format("2006-01-02")
	}
	game := models.Game{PlayedAt: req.PlayedAt, Status: models.GameDraft}
	if err := db.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game)
}

// ocrGameHandler ingests one box-score screenshot: creates a DRAFT game,
// saves the full image as its receipt, then runs extraction and upserts a
// participant row per matched player.
func ocrGameHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: image"})
		return
	}

	game := models.Game{PlayedAt: time.Now().Format("2006-01-02"), Status: models.GameDraft}
	if err := db.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || len(ext) > 5 {
		ext = ".png"
	}
	if err := os.MkdirAll(appConfig.Server.ImageDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	receipt := filepath.Join(appConfig.Server.ImageDir, fmt.Sprintf("game_%d%s", game.ID, ext))
	if err := c.SaveUploadedFile(file, receipt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	db.Model(&game).Update("image_path", receipt)

	roster, err := loadRoster()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ex := ocr.NewExtractor(appConfig.ocrEngine(), appConfig.extractorConfig(c.Query("preset")))
	var write ocr.WriteFunc
	if appConfig.OCR.WriteStats {
		gameID := game.ID
		write = func(line ocr.StatLine) error { return upsertParticipant(gameID, line) }
	}
	res, err := ex.Run(receipt, roster, write)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "game_id": game.ID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game_id":       game.ID,
		"status":        game.Status,
		"receipt":       receipt,
		"matched":       res.Matched,
		"written":       res.Written,
		"parse_failed":  res.Failed,
		"write_enabled": appConfig.OCR.WriteStats,
		"lines":         res.Lines,
	})
}

func setScoreHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	game, ok := gameFromParam(c)
	if !ok {
		return
	}
	var req struct {
		TeamAScore *int `json:"team_a_score" binding:"required"`
		TeamBScore *int `json:"team_b_score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.TeamAScore < 0 || *req.TeamBScore < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scores must be non-negative"})
		return
	}
	if err := db.Model(game).Updates(map[string]interface{}{
		"team_a_score": *req.TeamAScore,
		"team_b_score": *req.TeamBScore,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": game.ID, "team_a_score": *req.TeamAScore, "team_b_score": *req.TeamBScore})
}

func finalizeGameHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	game, ok := gameFromParam(c)
	if !ok {
		return
	}
	res := db.Model(&models.Game{}).
		Where("id = ? AND UPPER(status) = ?", game.ID, models.GameDraft).
		Update("status", models.GameFinal)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "game is not in DRAFT status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": game.ID, "status": models.GameFinal})
}

func unfinalizeGameHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	game, ok := gameFromParam(c)
	if !ok {
		return
	}
	res := db.Model(&models.Game{}).
		Where("id = ? AND UPPER(status) = ?", game.ID, models.GameFinal).
		Update("status", models.GameDraft)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "game is not in FINAL status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": game.ID, "status": models.GameDraft})
}

// manualStatsHandler writes one stat line by hand, for rows OCR missed or
// misread. Same replace semantics as extraction output.
func manualStatsHandler(c *gin.Context) {
	if !requireWriteAccess(c) {
		return
	}
	game, ok := gameFromParam(c)
	if !ok {
		return
	}
	var req struct {
		PlayerID  uint   `json:"player_id" binding:"required"`
		Team      string `json:"team" binding:"required"`
		Pts       int    `json:"pts"`
		Reb       int    `json:"reb"`
		Ast       int    `json:"ast"`
		Stl       int    `json:"stl"`
		Blk       int    `json:"blk"`
		Fouls     int    `json:"fouls"`
		Turnovers int    `json:"turnovers"`

		Fgm int `json:"fgm"`
		Fga int `json:"fga"`
		Tpm int `json:"tpm"`
		Tpa int `json:"tpa"`
		Ftm int `json:"ftm"`
		Fta int `json:"fta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	team := ocr.Team(strings.ToUpper(req.Team))
	if team != ocr.TeamA && team != ocr.TeamB {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team must be A or B"})
		return
	}
	var player models.Player
	if err := db.First(&player, req.PlayerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}
	line := ocr.StatLine{
		Team:     team,
		PlayerID: req.PlayerID,
		Pts:      req.Pts, Reb: req.Reb, Ast: req.Ast, Stl: req.Stl,
		Blk: req.Blk, Fouls: req.Fouls, Turnovers: req.Turnovers,
		FG:      ocr.ShotPair{Made: req.Fgm, Attempted: req.Fga},
		ThreePt: ocr.ShotPair{Made: req.Tpm, Attempted: req.Tpa},
		FT:      ocr.ShotPair{Made: req.Ftm, Attempted: req.Fta},
	}
	for _, p := range []ocr.ShotPair{line.FG, line.ThreePt, line.FT} {
		if !p.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shot pair made exceeds attempted"})
			return
		}
	}
	if err := upsertParticipant(game.ID, line); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": game.ID, "player_id": req.PlayerID})
}

// ----------------------------
// Summaries and leaderboard
// ----------------------------

func gameSummaryHandler(c *gin.Context) {
	game, ok := gameFromParam(c)
	if !ok {
		return
	}
	var parts []models.Participant
	if err := db.Preload("Player").Where("game_id = ?", game.ID).Order("id").Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	lines := make([]gin.H, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, gin.H{
			"player_id": p.PlayerID,
			"gamertag":  p.Player.Gamertag,
			"team":      p.Team,
			"pts":       p.Pts, "reb": p.Reb, "ast": p.Ast, "stl": p.Stl,
			"blk": p.Blk, "fouls": p.Fouls, "turnovers": p.Turnovers,
			"fgm": p.Fgm, "fga": p.Fga, "tpm": p.Tpm, "tpa": p.Tpa,
			"ftm": p.Ftm, "fta": p.Fta,
			"fantasy_points": fantasyPoints(p),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"game_id":      game.ID,
		"played_at":    game.PlayedAt,
		"status":       game.Status,
		"image_path":   game.ImagePath,
		"team_a_score": game.TeamAScore,
		"team_b_score": game.TeamBScore,
		"lines":        lines,
	})
}

func fantasyPoints(p models.Participant) float64 {
	return fantasy.Points(fantasy.Line{
		Pts: p.Pts, Reb: p.Reb, Ast: p.Ast, Stl: p.Stl, Blk: p.Blk, Turnovers: p.Turnovers,
		FGM: p.Fgm, FGA: p.Fga, TPM: p.Tpm, TPA: p.Tpa, FTM: p.Ftm, FTA: p.Fta,
	})
}

func playerSummaryHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}
	var player models.Player
	if err := db.First(&player, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}
	var parts []models.Participant
	if err := db.Where("player_id = ?", player.ID).Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	games := len(parts)
	var pts, reb, ast, stl, blk, tov, fgm, fga, tpm, tpa, ftm, fta int
	var fpTotal float64
	for _, p := range parts {
		pts += p.Pts
		reb += p.Reb
		ast += p.Ast
		stl += p.Stl
		blk += p.Blk
		tov += p.Turnovers
		fgm += p.Fgm
		fga += p.Fga
		tpm += p.Tpm
		tpa += p.Tpa
		ftm += p.Ftm
		fta += p.Fta
		fpTotal += fantasyPoints(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": player.ID,
		"gamertag":  player.Gamertag,
		"games":     games,
		"totals": gin.H{
			"pts": pts, "reb": reb, "ast": ast, "stl": stl, "blk": blk,
			"turnovers": tov, "fgm": fgm, "fga": fga, "tpm": tpm, "tpa": tpa,
			"ftm": ftm, "fta": fta,
		},
		"per_game": gin.H{
			"pts": perGame(pts, games), "reb": perGame(reb, games),
			"ast": perGame(ast, games), "stl": perGame(stl, games),
			"blk": perGame(blk, games),
			"fp":  perGameF(fpTotal, games),
		},
		"shooting": gin.H{
			"fg_pct": pct(fgm, fga), "tp_pct": pct(tpm, tpa), "ft_pct": pct(ftm, fta),
		},
		"fantasy_total": fpTotal,
	})
}

func perGame(total, games int) float64 {
	return perGameF(float64(total), games)
}

func perGameF(total float64, games int) float64 {
	if games <= 0 {
		return 0
	}
	return total / float64(games)
}

func pct(made, att int) float64 {
	if att <= 0 {
		return 0
	}
	return float64(made) / float64(att)
}

// leaderboardHandler ranks players by fantasy points per game over FINAL
// games only.
func leaderboardHandler(c *gin.Context) {
	type row struct {
		PlayerID   uint
		Gamertag   string
		Team       string
		TeamAScore *int
		TeamBScore *int
		Pts        int
		Reb        int
		Ast        int
		Stl        int
		Blk        int
		Turnovers  int
		Fgm        int
		Fga        int
		Tpm        int
		Tpa        int
		Ftm        int
		Fta        int
	}
	var rows []row
	err := db.Table("participants").
		Select("participants.player_id, players.gamertag, participants.team, games.team_a_score, games.team_b_score, participants.pts, participants.reb, participants.ast, participants.stl, participants.blk, participants.turnovers, participants.fgm, participants.fga, participants.tpm, participants.tpa, participants.ftm, participants.fta").
		Joins("JOIN players ON players.id = participants.player_id").
		Joins("JOIN games ON games.id = participants.game_id").
		Where("UPPER(games.status) = ?", models.GameFinal).
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type agg struct {
		gamertag                 string
		gp, wins, losses         int
		pts, reb, ast, stl, blk  int
		fpTotal                  float64
	}
	byPlayer := map[uint]*agg{}
	for _, r := range rows {
		a := byPlayer[r.PlayerID]
		if a == nil {
			a = &agg{gamertag: r.Gamertag}
			byPlayer[r.PlayerID] = a
		}
		a.gp++
		a.pts += r.Pts
		a.reb += r.Reb
		a.ast += r.Ast
		a.stl += r.Stl
		a.blk += r.Blk
		a.fpTotal += fantasy.Points(fantasy.Line{
			Pts: r.Pts, Reb: r.Reb, Ast: r.Ast, Stl: r.Stl, Blk: r.Blk, Turnovers: r.Turnovers,
			FGM: r.Fgm, FGA: r.Fga, TPM: r.Tpm, TPA: r.Tpa, FTM: r.Ftm, FTA: r.Fta,
		})
		// W/L only when both scores are recorded and not tied
		if r.TeamAScore != nil && r.TeamBScore != nil && *r.TeamAScore != *r.TeamBScore {
			aWon := *r.TeamAScore > *r.TeamBScore
			if (r.Team == string(ocr.TeamA)) == aWon {
				a.wins++
			} else {
				a.losses++
			}
		}
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	type entry struct {
		PlayerID uint    `json:"player_id"`
		Gamertag string  `json:"gamertag"`
		GP       int     `json:"gp"`
		Wins     int     `json:"wins"`
		Losses   int     `json:"losses"`
		FpPerG   float64 `json:"fp_per_game"`
		PtsPerG  float64 `json:"pts_per_game"`
		RebPerG  float64 `json:"reb_per_game"`
		AstPerG  float64 `json:"ast_per_game"`
		StlPerG  float64 `json:"stl_per_game"`
		BlkPerG  float64 `json:"blk_per_game"`
	}
	board := make([]entry, 0, len(byPlayer))
	for id, a := range byPlayer {
		board = append(board, entry{
			PlayerID: id,
			Gamertag: a.gamertag,
			GP:       a.gp,
			Wins:     a.wins,
			Losses:   a.losses,
			FpPerG:   perGameF(a.fpTotal, a.gp),
			PtsPerG:  perGame(a.pts, a.gp),
			RebPerG:  perGame(a.reb, a.gp),
			AstPerG:  perGame(a.ast, a.gp),
			StlPerG:  perGame(a.stl, a.gp),
			BlkPerG:  perGame(a.blk, a.gp),
		})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].FpPerG != board[j].FpPerG {
			return board[i].FpPerG > board[j].FpPerG
		}
		return board[i].Gamertag < board[j].Gamertag
	})
	if len(board) > limit {
		board = board[:limit]
	}
	c.JSON(http.StatusOK, board)
}
