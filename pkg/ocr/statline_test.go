package ocr

import (
	"errors"
	"testing"
)

func TestParseStatLineLastSevenRule(t *testing.T) {
	row := Row{
		CenterY: 10,
		Tokens:  []string{"99", "12", "4", "1", "0", "2", "1", "3", "9/20", "0/1", "4/4"},
	}
	line, err := ParseStatLine(row, 5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Pts != 12 || line.Reb != 4 || line.Ast != 1 || line.Stl != 0 ||
		line.Blk != 2 || line.Fouls != 1 || line.Turnovers != 3 {
		t.Fatalf("base stats wrong: %+v", line)
	}
	if line.FG != (ShotPair{9, 20}) || line.ThreePt != (ShotPair{0, 1}) || line.FT != (ShotPair{4, 4}) {
		t.Fatalf("shot pairs wrong: %+v", line)
	}
	if line.Team != TeamA {
		t.Fatalf("expected team A got %s", line.Team)
	}
	if line.PlayerID != 5 {
		t.Fatalf("expected player 5 got %d", line.PlayerID)
	}
}

func TestParseStatLineMissingPairsDefaultToZero(t *testing.T) {
	row := Row{Tokens: []string{"7", "3", "2", "1", "0", "2", "1", "3/8"}}
	line, err := ParseStatLine(row, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.FG != (ShotPair{3, 8}) {
		t.Fatalf("fg wrong: %+v", line.FG)
	}
	if line.ThreePt != (ShotPair{0, 0}) || line.FT != (ShotPair{0, 0}) {
		t.Fatalf("missing pairs should default to 0/0: %+v", line)
	}
}

func TestParseStatLineRejectsHeaderAndTotals(t *testing.T) {
	for _, tokens := range [][]string{
		{"GAMERTAG", "PTS", "REB", "AST"},
		{"Totals", "48", "20", "10", "3", "2", "8", "5", "20/40"},
	} {
		if _, err := ParseStatLine(Row{Tokens: tokens}, 1, 100); !errors.Is(err, ErrRowParse) {
			t.Fatalf("expected ErrRowParse for %v, got %v", tokens, err)
		}
	}
}

func TestParseStatLineRejectsMadeOverAttempted(t *testing.T) {
	row := Row{Tokens: []string{"10", "2", "3", "1", "0", "1", "2", "5/3"}}
	if _, err := ParseStatLine(row, 1, 100); !errors.Is(err, ErrRowParse) {
		t.Fatalf("expected ErrRowParse got %v", err)
	}
}

func TestParseStatLineRequiresSevenIntsAndOnePair(t *testing.T) {
	noPair := Row{Tokens: []string{"10", "2", "3", "1", "0", "1", "2"}}
	if _, err := ParseStatLine(noPair, 1, 100); !errors.Is(err, ErrRowParse) {
		t.Fatalf("expected ErrRowParse got %v", err)
	}
	tooFew := Row{Tokens: []string{"10", "2", "3", "9/20"}}
	if _, err := ParseStatLine(tooFew, 1, 100); !errors.Is(err, ErrRowParse) {
		t.Fatalf("expected ErrRowParse got %v", err)
	}
}

func TestParseStatLineOCRCorrections(t *testing.T) {
	// "1O" reads as 10, "9V20" reads as the 9/20 pair, "B-" is a teammate
	// grade and is skipped entirely.
	row := Row{Tokens: []string{"B-", "1O", "4", "1", "0", "2", "1", "3", "9V20"}}
	line, err := ParseStatLine(row, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Pts != 10 {
		t.Fatalf("expected pts=10 got %d", line.Pts)
	}
	if line.FG != (ShotPair{9, 20}) {
		t.Fatalf("expected fg 9/20 got %+v", line.FG)
	}
}

func TestParseStatLineIgnoresIntsAfterFirstPair(t *testing.T) {
	row := Row{Tokens: []string{"12", "4", "1", "0", "2", "1", "3", "9/20", "55", "0/1"}}
	line, err := ParseStatLine(row, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Pts != 12 || line.Turnovers != 3 {
		t.Fatalf("post-pair int leaked into base stats: %+v", line)
	}
}

func TestParseStatLineTeamSplitBoundary(t *testing.T) {
	tokens := []string{"12", "4", "1", "0", "2", "1", "3", "9/20"}
	above, err := ParseStatLine(Row{CenterY: 99, Tokens: tokens}, 1, 100)
	if err != nil || above.Team != TeamA {
		t.Fatalf("centerY above midpoint should be A: %+v err=%v", above, err)
	}
	at, err := ParseStatLine(Row{CenterY: 100, Tokens: tokens}, 1, 100)
	if err != nil || at.Team != TeamB {
		t.Fatalf("centerY at midpoint should be B: %+v err=%v", at, err)
	}
}

func TestShotPairValid(t *testing.T) {
	if (ShotPair{5, 3}).Valid() {
		t.Fatal("made > attempted must be invalid")
	}
	if !(ShotPair{0, 0}).Valid() || !(ShotPair{3, 3}).Valid() {
		t.Fatal("0/0 and n/n must be valid")
	}
}
