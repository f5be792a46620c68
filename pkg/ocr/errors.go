package ocr

import "errors"

var (
	// ErrImageRead is returned when the input screenshot cannot be decoded.
	ErrImageRead = errors.New("cannot read image")
	// ErrInvocation is returned when the external OCR engine cannot be
	// started or exits non-zero. Fatal for the current image.
	ErrInvocation = errors.New("ocr engine invocation failed")
	// ErrRowParse is returned when a row's tokens do not form a valid stat
	// line. Non-fatal; the row is skipped.
	ErrRowParse = errors.New("row parse failed")
)
