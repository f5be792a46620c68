package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Engine produces positioned word tokens for one image file. Implementations
// must be safe for use from multiple goroutines.
type Engine interface {
	Recognize(imagePath string) ([]Token, error)
}

// TesseractCLI shells out to the tesseract binary and parses its TSV table.
// The zero value is usable.
type TesseractCLI struct {
	// Binary overrides the executable name (default "tesseract").
	Binary string
	// Timeout bounds the external process; zero means no timeout.
	Timeout time.Duration
}

func (t TesseractCLI) Recognize(imagePath string) ([]Token, error) {
	bin := t.Binary
	if bin == "" {
		bin = "tesseract"
	}
	ctx := context.Background()
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, imagePath, "stdout", "-l", "eng", "--oem", "1", "--psm", "6", "tsv")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	return ParseTSV(buf.String()), nil
}
