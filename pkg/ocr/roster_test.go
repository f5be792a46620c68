package ocr

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize("@Lying_Bible!"); got != "lyingbible" {
		t.Fatalf("expected lyingbible got %q", got)
	}
	// idempotent
	if got := Normalize(Normalize("@Lying_Bible!")); got != "lyingbible" {
		t.Fatalf("normalize not idempotent: %q", got)
	}
	if got := Normalize("  ~~~ "); got != "" {
		t.Fatalf("expected empty got %q", got)
	}
}

func TestRosterMatchAcrossSplitTokens(t *testing.T) {
	r := NewRoster()
	r.Add(7, "LyingBible")
	row := Row{Tokens: []string{"@", "Lying", "Bible", "12", "4"}}
	id, ok := r.Match(row)
	if !ok || id != 7 {
		t.Fatalf("expected match id=7 got id=%d ok=%v", id, ok)
	}
}

func TestRosterNoMatch(t *testing.T) {
	r := NewRoster()
	r.Add(1, "SomePlayer")
	if _, ok := r.Match(Row{Tokens: []string{"GAMERTAG", "PTS", "REB"}}); ok {
		t.Fatal("header row should not match")
	}
	if _, ok := r.Match(Row{Tokens: []string{"~", "@"}}); ok {
		t.Fatal("all-symbol row should not match")
	}
}

func TestRosterTieBreakIsEntryOrder(t *testing.T) {
	row := Row{Tokens: []string{"Lying", "Bible", "10", "2"}}

	r := NewRoster()
	r.Add(1, "LyingBible")
	r.Add(2, "Bible")
	if id, _ := r.Match(row); id != 1 {
		t.Fatalf("expected first entry to win, got %d", id)
	}

	r2 := NewRoster()
	r2.Add(2, "Bible")
	r2.Add(1, "LyingBible")
	if id, _ := r2.Match(row); id != 2 {
		t.Fatalf("expected first entry to win, got %d", id)
	}
}

func TestRosterIgnoresUnmatchableNames(t *testing.T) {
	r := NewRoster()
	r.Add(1, "!!!")
	if r.Len() != 0 {
		t.Fatalf("expected empty roster got %d entries", r.Len())
	}
}
