package ocr

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Config carries the tunable thresholds for an extraction run. All of them
// are explicit so tests can exercise edge cases (zero threshold, no margin).
type Config struct {
	// Crop bounds the stats table inside the input image.
	Crop CropBox
	// YThreshold is the row clustering tolerance in crop pixels.
	YThreshold int
	// MinXFrac discards tokens left of this fraction of the crop width.
	MinXFrac float64
	// MinConf rejects tokens below this confidence; tokens without a
	// reported confidence always pass.
	MinConf int
	// DebugCropPath, when non-empty, receives a PNG of the cropped region
	// for visual inspection. Never read back.
	DebugCropPath string
}

// DefaultConfig returns the thresholds tuned for full console screenshots.
func DefaultConfig() Config {
	return Config{Crop: ScreenshotCrop, YThreshold: 14, MinXFrac: 0.03, MinConf: 40}
}

// WriteFunc persists one stat line. The collaborator is expected to replace
// any existing record for the same game+player, so re-running extraction on
// an image never duplicates rows. A nil WriteFunc disables writes; an error
// skips that line's written count without stopping the run.
type WriteFunc func(line StatLine) error

// Result reports one extraction run.
type Result struct {
	Lines   []StatLine
	Matched int // rows matched to a rostered player and parsed
	Written int // lines accepted by the storage collaborator
	Failed  int // matched rows whose tokens did not parse
}

// Extractor runs the crop -> OCR -> cluster -> match -> parse pipeline for
// one image at a time. It holds no mutable state, so a single Extractor may
// serve concurrent runs as long as each run's roster snapshot is not
// mutated while the run is in flight.
type Extractor struct {
	engine Engine
	cfg    Config
}

func NewExtractor(engine Engine, cfg Config) *Extractor {
	return &Extractor{engine: engine, cfg: cfg}
}

// Run extracts stat lines from the screenshot at imagePath. Image decode
// and engine failures abort the run; per-row failures are logged with the
// offending tokens and counted. Zero extracted lines is a valid outcome,
// not an error.
func (ex *Extractor) Run(imagePath string, roster *Roster, write WriteFunc) (*Result, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageRead, imagePath, err)
	}
	crop := CropRelative(img, ex.cfg.Crop)

	if ex.cfg.DebugCropPath != "" {
		if err := saveDebugCrop(crop, ex.cfg.DebugCropPath); err != nil {
			log.Printf("ocr: debug crop %s: %v", ex.cfg.DebugCropPath, err)
		}
	}

	// The engine reads files, so the crop goes through a temp PNG.
	tmpFile, err := os.CreateTemp("", "stats-crop-*.png")
	if err != nil {
		return nil, fmt.Errorf("crop temp file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmp)
	if err := imaging.Save(crop, tmp); err != nil {
		return nil, fmt.Errorf("save crop: %w", err)
	}

	tokens, err := ex.engine.Recognize(tmp)
	if err != nil {
		return nil, err
	}

	minX := int(float64(crop.Bounds().Dx()) * ex.cfg.MinXFrac)
	rows := BuildRows(tokens, minX, ex.cfg.YThreshold, ex.cfg.MinConf)
	midY := crop.Bounds().Dy() / 2

	res := &Result{}
	for _, row := range rows {
		playerID, ok := roster.Match(row)
		if !ok {
			continue // headers, totals and AI players land here
		}
		line, err := ParseStatLine(row, playerID, midY)
		if err != nil {
			res.Failed++
			log.Printf("ocr: parse failed tokens=%q: %v", row.Tokens, err)
			continue
		}
		res.Matched++
		res.Lines = append(res.Lines, *line)
		if write != nil {
			if werr := write(*line); werr != nil {
				log.Printf("ocr: write player=%d: %v", playerID, werr)
			} else {
				res.Written++
			}
		}
	}
	log.Printf("ocr: %s matched=%d written=%d failed=%d", filepath.Base(imagePath), res.Matched, res.Written, res.Failed)
	return res, nil
}

func saveDebugCrop(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return imaging.Save(img, path)
}
