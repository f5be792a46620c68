package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stattrack/pkg/ocr"
)

func TestLoadAppConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadAppConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8081" {
		t.Fatalf("addr = %q, want :8081", cfg.Server.Addr)
	}
	if cfg.OCR.YThreshold != 14 || cfg.OCR.MinConf != 40 {
		t.Fatalf("thresholds = %d/%d, want 14/40", cfg.OCR.YThreshold, cfg.OCR.MinConf)
	}
	if !cfg.OCR.WriteStats {
		t.Fatal("write_stats should default to true")
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  addr: \":9090\"\nocr:\n  engine: gosseract\n  min_conf: 55\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.OCR.Engine != "gosseract" || cfg.OCR.MinConf != 55 {
		t.Fatalf("ocr overrides not applied: %+v", cfg.OCR)
	}
	// keys absent from the file keep defaults
	if cfg.OCR.YThreshold != 14 {
		t.Fatalf("y_threshold = %d, want default 14", cfg.OCR.YThreshold)
	}
	if cfg.Server.ImageDir != "data/images" {
		t.Fatalf("image_dir = %q, want default", cfg.Server.ImageDir)
	}
}

func TestLoadAppConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadAppConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExtractorConfigPresetOverride(t *testing.T) {
	cfg := defaultAppConfig()
	if got := cfg.extractorConfig(""); got.Crop != ocr.ScreenshotCrop {
		t.Fatalf("default preset crop = %+v, want screenshot", got.Crop)
	}
	if got := cfg.extractorConfig("receipt"); got.Crop != ocr.ReceiptCrop {
		t.Fatalf("receipt override crop = %+v, want receipt", got.Crop)
	}
	cfg.OCR.Preset = "receipt"
	if got := cfg.extractorConfig(""); got.Crop != ocr.ReceiptCrop {
		t.Fatalf("configured receipt preset not honored")
	}
}

func TestOCREngineSelection(t *testing.T) {
	cfg := defaultAppConfig()
	if _, ok := cfg.ocrEngine().(ocr.TesseractCLI); !ok {
		t.Fatalf("default engine = %T, want TesseractCLI", cfg.ocrEngine())
	}
	cfg.OCR.Engine = "gosseract"
	if _, ok := cfg.ocrEngine().(ocr.GosseractEngine); !ok {
		t.Fatalf("engine = %T, want GosseractEngine", cfg.ocrEngine())
	}
	cfg.OCR.Engine = "cli"
	cfg.OCR.TimeoutSeconds = 5
	cli := cfg.ocrEngine().(ocr.TesseractCLI)
	if cli.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", cli.Timeout)
	}
}
