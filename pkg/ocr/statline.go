package ocr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Team labels which half of the box score a row came from.
type Team string

const (
	TeamA Team = "A" // top table
	TeamB Team = "B" // bottom table
)

// ShotPair is a made/attempted count for one shooting category.
type ShotPair struct {
	Made      int `json:"made"`
	Attempted int `json:"attempted"`
}

// Valid reports whether the pair is internally consistent.
func (p ShotPair) Valid() bool {
	return p.Made >= 0 && p.Attempted >= 0 && p.Made <= p.Attempted
}

// StatLine is one parsed box-score row for a rostered player. It is
// self-contained: no reference back to tokens or rows survives in it.
type StatLine struct {
	Team     Team `json:"team"`
	PlayerID uint `json:"player_id"`

	Pts       int `json:"pts"`
	Reb       int `json:"reb"`
	Ast       int `json:"ast"`
	Stl       int `json:"stl"`
	Blk       int `json:"blk"`
	Fouls     int `json:"fouls"`
	Turnovers int `json:"turnovers"`

	FG      ShotPair `json:"fg"`
	ThreePt ShotPair `json:"three_pt"`
	FT      ShotPair `json:"ft"`
}

var (
	pairRE  = regexp.MustCompile(`^(\d{1,2})\s*/\s*(\d{1,2})$`)
	intRE   = regexp.MustCompile(`\b\d{1,3}\b`)
	gradeRE = regexp.MustCompile(`^[ABCDF][+-]?$`)
)

// fixToken rewrites the two OCR confusions that break stat tokens: the
// letter O read in place of a zero, and V read in place of the shot-pair
// separator.
func fixToken(s string) string {
	s = strings.ReplaceAll(s, "O", "0")
	s = strings.ReplaceAll(s, "o", "0")
	s = strings.ReplaceAll(s, "V", "/")
	return strings.ReplaceAll(s, "v", "/")
}

// ParseStatLine extracts a stat line from one row already attributed to
// playerID. midY is the vertical midpoint of the cropped table: rows with
// a center above it are team A, at or below it team B.
//
// Base stats are the LAST seven bare integers seen before the first
// made/attempted pair (pts reb ast stl blk fouls to); anything earlier is
// leading overlay noise and dropped. Integers after the first pair belong
// to shooting tokens and are ignored. Pairs map positionally to FG, 3PT
// and FT, defaulting to 0/0 when the trailing pairs are missing.
func ParseStatLine(row Row, playerID uint, midY int) (*StatLine, error) {
	joined := strings.ToUpper(strings.Join(row.Tokens, " "))
	if strings.Contains(joined, "PTS") || strings.Contains(joined, "TOTAL") {
		return nil, fmt.Errorf("%w: header or totals row", ErrRowParse)
	}

	var ints []int
	var pairs []ShotPair
	seenPair := false

	for _, tok := range row.Tokens {
		s := strings.TrimSpace(tok)
		if s == "" {
			continue
		}
		s = fixToken(s)
		if gradeRE.MatchString(s) {
			continue // teammate grade overlay, not a stat
		}
		if m := pairRE.FindStringSubmatch(s); m != nil {
			made, _ := strconv.Atoi(m[1])
			att, _ := strconv.Atoi(m[2])
			pairs = append(pairs, ShotPair{Made: made, Attempted: att})
			seenPair = true
			continue
		}
		if !seenPair {
			for _, d := range intRE.FindAllString(s, -1) {
				if v, err := strconv.Atoi(d); err == nil {
					ints = append(ints, v)
				}
			}
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no shot pairs", ErrRowParse)
	}
	if len(ints) < 7 {
		return nil, fmt.Errorf("%w: %d ints before first pair, need 7", ErrRowParse, len(ints))
	}

	base := ints[len(ints)-7:]
	fg := pairs[0]
	tp := ShotPair{}
	if len(pairs) > 1 {
		tp = pairs[1]
	}
	ft := ShotPair{}
	if len(pairs) > 2 {
		ft = pairs[2]
	}
	if !fg.Valid() || !tp.Valid() || !ft.Valid() {
		return nil, fmt.Errorf("%w: made exceeds attempted", ErrRowParse)
	}

	team := TeamB
	if row.CenterY < midY {
		team = TeamA
	}

	return &StatLine{
		Team:     team,
		PlayerID: playerID,
		Pts:      base[0], Reb: base[1], Ast: base[2], Stl: base[3],
		Blk: base[4], Fouls: base[5], Turnovers: base[6],
		FG: fg, ThreePt: tp, FT: ft,
	}, nil
}
