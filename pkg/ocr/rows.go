package ocr

import "sort"

// Row is a horizontal band of tokens believed to form one table line.
// Tokens are ordered left to right; CenterY is the mean y of the band.
type Row struct {
	CenterY int
	Tokens  []string
}

// BuildRows clusters unordered tokens into visual rows.
//
// Tokens left of minX (icon gutter leak) or with a reported confidence
// below minConf are dropped first; a Conf of -1 means the engine reported
// none and is kept. The remainder is sorted by (y, x) and walked once: a
// token starts a new row when its y differs from the FIRST token of the
// current cluster by more than yThreshold. Greedy single-pass on purpose;
// box-score rows are well separated vertically, so full linkage buys
// nothing. Rows come out in ascending y already.
func BuildRows(tokens []Token, minX, yThreshold, minConf int) []Row {
	var kept []Token
	for _, t := range tokens {
		if t.X < minX {
			continue
		}
		if t.Conf >= 0 && t.Conf < minConf {
			continue
		}
		kept = append(kept, t)
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Y != kept[j].Y {
			return kept[i].Y < kept[j].Y
		}
		return kept[i].X < kept[j].X
	})

	var rows []Row
	var cluster []Token
	anchorY := 0
	for _, t := range kept {
		if len(cluster) == 0 {
			cluster = append(cluster, t)
			anchorY = t.Y
			continue
		}
		if abs(t.Y-anchorY) <= yThreshold {
			cluster = append(cluster, t)
			continue
		}
		rows = append(rows, finishRow(cluster))
		cluster = []Token{t}
		anchorY = t.Y
	}
	if len(cluster) > 0 {
		rows = append(rows, finishRow(cluster))
	}
	return rows
}

func finishRow(cluster []Token) Row {
	sort.Slice(cluster, func(i, j int) bool { return cluster[i].X < cluster[j].X })
	sum := 0
	texts := make([]string, len(cluster))
	for i, t := range cluster {
		sum += t.Y
		texts[i] = t.Text
	}
	return Row{CenterY: sum / len(cluster), Tokens: texts}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
