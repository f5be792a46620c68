package ocr

import (
	"regexp"
	"strings"
)

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]`)

// Normalize lowercases s and strips everything outside [a-z0-9]. Platform
// overlay junk like a leading "@" disappears, so a row tokenized as
// ["@", "Lying", "_Bible"] and the stored name "LyingBible" normalize to
// the same string. Idempotent.
func Normalize(s string) string {
	return nonAlnumRE.ReplaceAllString(strings.ToLower(s), "")
}

// RosterEntry pairs a player id with the normalized form of their gamertag.
type RosterEntry struct {
	ID   uint
	Name string
}

// Roster is the set of human gamertags eligible for matching, in priority
// order. Entry order is the tie-break when several names occur in the same
// row; callers wanting a different policy reorder entries before the run.
// A Roster is read-only during an extraction run.
type Roster struct {
	entries []RosterEntry
}

func NewRoster() *Roster { return &Roster{} }

// Add normalizes displayName and appends it. Names that normalize to the
// empty string are unmatchable and ignored.
func (r *Roster) Add(id uint, displayName string) {
	n := Normalize(displayName)
	if n == "" {
		return
	}
	r.entries = append(r.entries, RosterEntry{ID: id, Name: n})
}

func (r *Roster) Len() int { return len(r.entries) }

// Match concatenates the row's normalized tokens (no separators, so names
// split across tokens still match) and returns the first entry whose name
// is a substring of the result.
func (r *Roster) Match(row Row) (uint, bool) {
	var b strings.Builder
	for _, t := range row.Tokens {
		b.WriteString(Normalize(t))
	}
	joined := b.String()
	if joined == "" {
		return 0, false
	}
	for _, e := range r.entries {
		if strings.Contains(joined, e.Name) {
			return e.ID, true
		}
	}
	return 0, false
}
