// Package config holds the runtime configuration for betterkle.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/betterkle/internal/capture"
	"github.com/ayusman/betterkle/internal/detector"
	"github.com/ayusman/betterkle/internal/fps"
	"github.com/ayusman/betterkle/internal/model"
	"github.com/ayusman/betterkle/internal/motion"
	"github.com/ayusman/betterkle/internal/stabilizer"
)

// maxFileSize caps the size of a config file.
const maxFileSize = 1 * 1024 * 1024

// Binding maps a finger press to a plugin action.
type Binding struct {
	Plugin string          `json:"plugin"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Config is the full application configuration.
// Fields omitted from a config file keep their default values.
type Config struct {
	// Window
	WindowName string `json:"window_name"`
	ShowWindow bool   `json:"show_window"`

	// Capture: VideoPath takes precedence over CameraIndex when set.
	CameraIndex int    `json:"camera_index"`
	VideoPath   string `json:"video_path,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`

	// Hand detection
	MaxNumHands            int     `json:"max_num_hands"`
	ModelComplexity        int     `json:"model_complexity"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`

	// Model download
	ModelURL  string `json:"model_url"`
	ModelDir  string `json:"model_dir"`
	ModelName string `json:"model_name"`

	// Landmark processing
	StabilizerThreshold float64 `json:"stabilizer_threshold"`
	PressThreshold      float64 `json:"press_threshold"`
	FPSBufferLen        int     `json:"fps_buffer_len"`

	// Services
	ListenAddr string             `json:"listen_addr,omitempty"`
	DBPath     string             `json:"db_path,omitempty"`
	Record     bool               `json:"record"`
	Tray       bool               `json:"tray"`
	PluginDir  string             `json:"plugin_dir,omitempty"`
	Bindings   map[string]Binding `json:"bindings,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	det := detector.DefaultConfig()
	return &Config{
		WindowName:             "BetterKLE",
		ShowWindow:             true,
		CameraIndex:            0,
		Width:                  capture.DefaultWidth,
		Height:                 capture.DefaultHeight,
		MaxNumHands:            det.MaxHands,
		ModelComplexity:        det.ModelComplexity,
		MinDetectionConfidence: det.MinConfidence,
		MinTrackingConfidence:  det.MinTrackingConf,
		ModelURL:               model.DefaultURL,
		ModelDir:               model.DefaultDir,
		ModelName:              model.DefaultName,
		StabilizerThreshold:    stabilizer.DefaultThreshold,
		PressThreshold:         motion.DefaultPressThreshold,
		FPSBufferLen:           fps.DefaultBufferLen,
	}
}

// Load reads a JSON config file on top of the defaults.
// The file must have a .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.StabilizerThreshold < 0 {
		return fmt.Errorf("stabilizer_threshold must be >= 0, got %v", c.StabilizerThreshold)
	}
	if c.PressThreshold <= 0 {
		return fmt.Errorf("press_threshold must be > 0, got %v", c.PressThreshold)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.MaxNumHands <= 0 {
		return fmt.Errorf("max_num_hands must be > 0, got %d", c.MaxNumHands)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("min_detection_confidence must be in [0,1], got %v", c.MinDetectionConfidence)
	}
	if c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1 {
		return fmt.Errorf("min_tracking_confidence must be in [0,1], got %v", c.MinTrackingConfidence)
	}
	if c.FPSBufferLen <= 0 {
		return fmt.Errorf("fps_buffer_len must be > 0, got %d", c.FPSBufferLen)
	}
	for name, b := range c.Bindings {
		if _, ok := detector.ParseFinger(name); !ok {
			return fmt.Errorf("binding for unknown finger %q", name)
		}
		if b.Plugin == "" || b.Action == "" {
			return fmt.Errorf("binding for %q needs plugin and action", name)
		}
	}
	return nil
}

// DetectorConfig returns the hand detector settings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxNumHands,
		ModelComplexity: c.ModelComplexity,
		MinConfidence:   c.MinDetectionConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
	}
}
