package ocr

import (
	"errors"
	"testing"
)

func TestTesseractCLIMissingBinary(t *testing.T) {
	eng := TesseractCLI{Binary: "definitely-not-a-tesseract-binary"}
	_, err := eng.Recognize("whatever.png")
	if !errors.Is(err, ErrInvocation) {
		t.Fatalf("expected ErrInvocation got %v", err)
	}
}
