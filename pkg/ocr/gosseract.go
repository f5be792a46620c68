package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs Tesseract in-process through gosseract and converts
// word-level bounding boxes into tokens. An alternative to TesseractCLI for
// deployments where libtesseract is linked but no binary is on PATH.
type GosseractEngine struct{}

func (GosseractEngine) Recognize(imagePath string) ([]Token, error) {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvocation, err)
	}
	out := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		out = append(out, Token{Text: text, X: b.Box.Min.X, Y: b.Box.Min.Y, Conf: int(b.Confidence)})
	}
	return out, nil
}
