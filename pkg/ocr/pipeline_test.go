package ocr

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// stubEngine returns a fixed token set regardless of the image.
type stubEngine struct {
	tokens []Token
	err    error
}

func (s stubEngine) Recognize(string) ([]Token, error) { return s.tokens, s.err }

func writeTestImage(t *testing.T, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
	return path
}

func statTokens(y int, name string, conf int) []Token {
	toks := []Token{{Text: name, X: 100, Y: y, Conf: conf}}
	for i, s := range []string{"12", "4", "1", "0", "2", "1", "3", "9/20", "0/1", "4/4"} {
		toks = append(toks, Token{Text: s, X: 200 + i*50, Y: y, Conf: conf})
	}
	return toks
}

func testConfig() Config {
	return Config{
		Crop:       CropBox{X1: 0, X2: 1, Y1: 0, Y2: 1},
		YThreshold: 14,
		MinXFrac:   0,
		MinConf:    40,
	}
}

func TestExtractorEndToEnd(t *testing.T) {
	// 1000x1000 image, full crop: midpoint at y=500.
	path := writeTestImage(t, 1000, 1000)

	var tokens []Token
	tokens = append(tokens, Token{Text: "GAMERTAG", X: 100, Y: 20, Conf: 95}, Token{Text: "PTS", X: 300, Y: 20, Conf: 95})
	tokens = append(tokens, statTokens(100, "PlayerOne", 92)...)
	tokens = append(tokens, statTokens(800, "playertwo", 92)...)

	roster := NewRoster()
	roster.Add(1, "PlayerOne")
	roster.Add(2, "PlayerTwo")

	var written []StatLine
	write := func(line StatLine) error {
		written = append(written, line)
		return nil
	}

	ex := NewExtractor(stubEngine{tokens: tokens}, testConfig())
	res, err := ex.Run(path, roster, write)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Matched != 2 || res.Written != 2 || res.Failed != 0 {
		t.Fatalf("counters wrong: %+v", res)
	}
	if len(res.Lines) != 2 {
		t.Fatalf("expected 2 lines got %d", len(res.Lines))
	}
	if res.Lines[0].PlayerID != 1 || res.Lines[0].Team != TeamA {
		t.Fatalf("line 0 wrong: %+v", res.Lines[0])
	}
	if res.Lines[1].PlayerID != 2 || res.Lines[1].Team != TeamB {
		t.Fatalf("line 1 wrong: %+v", res.Lines[1])
	}
	if len(written) != 2 {
		t.Fatalf("write func saw %d lines", len(written))
	}
}

func TestExtractorCountsParseFailures(t *testing.T) {
	path := writeTestImage(t, 400, 400)
	// Roster name present but no shot pairs in the row.
	tokens := []Token{
		{Text: "PlayerOne", X: 50, Y: 100, Conf: 92},
		{Text: "12", X: 150, Y: 100, Conf: 92},
	}
	roster := NewRoster()
	roster.Add(1, "PlayerOne")

	ex := NewExtractor(stubEngine{tokens: tokens}, testConfig())
	res, err := ex.Run(path, roster, nil)
	if err != nil {
		t.Fatalf("row failures must not abort the run: %v", err)
	}
	if res.Matched != 0 || res.Failed != 1 || len(res.Lines) != 0 {
		t.Fatalf("counters wrong: %+v", res)
	}
}

func TestExtractorZeroRowsIsNotAnError(t *testing.T) {
	path := writeTestImage(t, 400, 400)
	roster := NewRoster()
	roster.Add(1, "PlayerOne")
	ex := NewExtractor(stubEngine{tokens: nil}, testConfig())
	res, err := ex.Run(path, roster, nil)
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(res.Lines) != 0 || res.Matched != 0 {
		t.Fatalf("expected empty result: %+v", res)
	}
}

func TestExtractorImageReadError(t *testing.T) {
	ex := NewExtractor(stubEngine{}, testConfig())
	_, err := ex.Run(filepath.Join(t.TempDir(), "missing.png"), NewRoster(), nil)
	if !errors.Is(err, ErrImageRead) {
		t.Fatalf("expected ErrImageRead got %v", err)
	}
}

func TestExtractorEnginePropagatesInvocationError(t *testing.T) {
	path := writeTestImage(t, 400, 400)
	ex := NewExtractor(stubEngine{err: fmt.Errorf("%w: exit status 1", ErrInvocation)}, testConfig())
	_, err := ex.Run(path, NewRoster(), nil)
	if !errors.Is(err, ErrInvocation) {
		t.Fatalf("expected ErrInvocation got %v", err)
	}
}

func TestExtractorWritesDebugCrop(t *testing.T) {
	path := writeTestImage(t, 400, 400)
	cfg := testConfig()
	cfg.DebugCropPath = filepath.Join(t.TempDir(), "diag", "crop.png")
	ex := NewExtractor(stubEngine{}, cfg)
	if _, err := ex.Run(path, NewRoster(), nil); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(cfg.DebugCropPath); err != nil {
		t.Fatalf("debug crop not written: %v", err)
	}
}

func TestExtractorWriteErrorDoesNotAbort(t *testing.T) {
	path := writeTestImage(t, 1000, 1000)
	tokens := statTokens(100, "PlayerOne", 92)
	roster := NewRoster()
	roster.Add(1, "PlayerOne")

	ex := NewExtractor(stubEngine{tokens: tokens}, testConfig())
	res, err := ex.Run(path, roster, func(StatLine) error { return errors.New("db down") })
	if err != nil {
		t.Fatalf("write errors must not abort the run: %v", err)
	}
	if res.Matched != 1 || res.Written != 0 {
		t.Fatalf("counters wrong: %+v", res)
	}
}
