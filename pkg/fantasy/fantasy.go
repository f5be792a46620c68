// Package fantasy implements the league's fixed-weight fantasy scoring.
package fantasy

import "math"

// Category weights per the league scoring sheet.
const (
	fgMadeW = 1.0
	fgMissW = -0.55

	ftMadeW = 0.5
	ftMissW = -0.85

	tpMadeW = 1.25
	tpMissW = -0.6

	rebW = 1.2
	astW = 1.7
	stlW = 2.0
	blkW = 1.9
	tovW = -1.5

	doubleDoubleBonus = 3.0
	tripleDoubleBonus = 5.0
)

// Line is the subset of a stat line that scores fantasy points.
type Line struct {
	Pts, Reb, Ast, Stl, Blk, Turnovers int
	FGM, FGA                           int
	TPM, TPA                           int
	FTM, FTA                           int
}

// Points returns the fantasy value of one line, rounded to one decimal.
//
// A made three counts as both a made FG and a made three; a missed three as
// both misses. Double/triple-double bonuses count only pts, reb, ast, stl
// and blk at 10+; a triple-double keeps the double-double bonus on top.
func Points(l Line) float64 {
	fgMiss := nonNeg(l.FGA - l.FGM)
	tpMiss := nonNeg(l.TPA - l.TPM)
	ftMiss := nonNeg(l.FTA - l.FTM)

	total := float64(l.FGM)*fgMadeW + float64(fgMiss)*fgMissW
	total += float64(l.TPM)*tpMadeW + float64(tpMiss)*tpMissW
	total += float64(l.FTM)*ftMadeW + float64(ftMiss)*ftMissW

	total += float64(l.Reb) * rebW
	total += float64(l.Ast) * astW
	total += float64(l.Stl) * stlW
	total += float64(l.Blk) * blkW
	total += float64(l.Turnovers) * tovW

	if dd := tenPlusCategories(l); dd >= 2 {
		total += doubleDoubleBonus
		if dd >= 3 {
			total += tripleDoubleBonus
		}
	}

	return math.Round(total*10) / 10
}

func tenPlusCategories(l Line) int {
	c := 0
	for _, v := range [5]int{l.Pts, l.Reb, l.Ast, l.Stl, l.Blk} {
		if v >= 10 {
			c++
		}
	}
	return c
}

func nonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
