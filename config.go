package main

import (
	"fmt"
	"os"
	"time"

	"stattrack/pkg/ocr"

	"gopkg.in/yaml.v3"
)

// Config is the application config file (yaml). Every extraction threshold
// is a file setting so deployments can retune without a rebuild.
type Config struct {
	Server ServerConfig `yaml:"server"`
	OCR    OCRConfig    `yaml:"ocr"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// ImageDir receives the uploaded screenshot receipts.
	ImageDir string `yaml:"image_dir"`
}

type OCRConfig struct {
	// Engine selects "cli" (tesseract binary) or "gosseract" (in-process).
	Engine          string `yaml:"engine"`
	TesseractBinary string `yaml:"tesseract_binary"`
	// TimeoutSeconds bounds the external OCR process; 0 means no timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// Preset picks the crop box: "screenshot" (full 3840x2160 capture) or
	// "receipt" (pre-cropped table image).
	Preset        string  `yaml:"preset"`
	YThreshold    int     `yaml:"y_threshold"`
	MinXFrac      float64 `yaml:"min_x_frac"`
	MinConf       int     `yaml:"min_conf"`
	DebugCropPath string  `yaml:"debug_crop_path"`
	// WriteStats disables participant writes when false; extraction still
	// runs and reports what it would have written.
	WriteStats bool `yaml:"write_stats"`
}

func defaultAppConfig() *Config {
	base := ocr.DefaultConfig()
	return &Config{
		Server: ServerConfig{Addr: ":8081", ImageDir: "data/images"},
		OCR: OCRConfig{
			Engine:     "cli",
			Preset:     "screenshot",
			YThreshold: base.YThreshold,
			MinXFrac:   base.MinXFrac,
			MinConf:    base.MinConf,
			WriteStats: true,
		},
	}
}

// loadAppConfig reads path if it exists, falling back to defaults when it
// does not. Keys absent from the file keep their default values.
func loadAppConfig(path string) (*Config, error) {
	cfg := defaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// extractorConfig converts file settings into pipeline thresholds. preset
// overrides the configured crop preset when non-empty (per-request choice).
func (c *Config) extractorConfig(preset string) ocr.Config {
	out := ocr.Config{
		Crop:          ocr.ScreenshotCrop,
		YThreshold:    c.OCR.YThreshold,
		MinXFrac:      c.OCR.MinXFrac,
		MinConf:       c.OCR.MinConf,
		DebugCropPath: c.OCR.DebugCropPath,
	}
	if preset == "" {
		preset = c.OCR.Preset
	}
	if preset == "receipt" {
		out.Crop = ocr.ReceiptCrop
	}
	return out
}

func (c *Config) ocrEngine() ocr.Engine {
	if c.OCR.Engine == "gosseract" {
		return ocr.GosseractEngine{}
	}
	return ocr.TesseractCLI{
		Binary:  c.OCR.TesseractBinary,
		Timeout: time.Duration(c.OCR.TimeoutSeconds) * time.Second,
	}
}
