package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/betterkle/internal/config"
)

var (
	device     = flag.Int("device", 0, "Camera device number")
	video      = flag.String("video", "", "Read frames from a video file instead of the camera")
	configPath = flag.String("config", "", "Path to a JSON config file")
	threshold  = flag.Float64("threshold", 0, "Stabilizer movement threshold (normalized units)")
	addr       = flag.String("addr", "", "Serve the HTTP API on this address, e.g. :8080")
	record     = flag.Bool("record", false, "Record stabilized landmarks to the session database")
	dbPath     = flag.String("db", "", "Session database path (default ~/.betterkle/betterkle.db)")
	useTray    = flag.Bool("tray", false, "Show a system tray menu")
	noWindow   = flag.Bool("no-window", false, "Do not open the preview window")
	pluginDir  = flag.String("plugins", "", "Directory of action plugins for finger presses")
)

// loadConfig reads the config file, if any, and applies the flags the user
// set explicitly on top of it.
func loadConfig(fs *flag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.CameraIndex = *device
		case "video":
			cfg.VideoPath = *video
		case "threshold":
			cfg.StabilizerThreshold = *threshold
		case "addr":
			cfg.ListenAddr = *addr
		case "record":
			cfg.Record = *record
		case "db":
			cfg.DBPath = *dbPath
		case "tray":
			cfg.Tray = *useTray
		case "no-window":
			cfg.ShowWindow = !*noWindow
		case "plugins":
			cfg.PluginDir = *pluginDir
		}
	})

	if cfg.DBPath == "" {
		cfg.DBPath, err = defaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".betterkle", "betterkle.db"), nil
}
