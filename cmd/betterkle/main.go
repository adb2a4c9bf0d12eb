// Command betterkle shows a webcam or video feed with stabilized hand
// landmarks drawn on top.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/betterkle/internal/app"
	"github.com/ayusman/betterkle/internal/capture"
	"github.com/ayusman/betterkle/internal/config"
	"github.com/ayusman/betterkle/internal/detector"
	"github.com/ayusman/betterkle/internal/display"
	"github.com/ayusman/betterkle/internal/model"
	"github.com/ayusman/betterkle/internal/plugin"
	"github.com/ayusman/betterkle/internal/server"
	"github.com/ayusman/betterkle/internal/store"
	"github.com/ayusman/betterkle/internal/tray"
)

func init() {
	// HighGUI and the tray both need the main thread.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	fmt.Println("BetterKLE - stabilized hand landmarks")

	cfg, err := loadConfig(flag.CommandLine)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg); err != nil {
		log.Fatalf("betterkle: %v", err)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config) error {
	det := newDetector(ctx, cfg)
	defer det.Close()

	var src capture.Source
	if cfg.VideoPath != "" {
		src = capture.NewVideoFile(cfg.VideoPath)
	} else {
		src = capture.NewCamera(cfg.CameraIndex, cfg.Width, cfg.Height)
	}
	if err := src.Open(); err != nil {
		return err
	}
	defer src.Close()

	appCfg := app.Config{
		Source:         src,
		Detector:       det,
		Threshold:      cfg.StabilizerThreshold,
		PressThreshold: cfg.PressThreshold,
		FPSBufferLen:   cfg.FPSBufferLen,
		Record:         cfg.Record,
	}

	if cfg.Record || cfg.ListenAddr != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		st, err := store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer st.Close()
		appCfg.Store = st
	}

	if cfg.PluginDir != "" && len(cfg.Bindings) > 0 {
		mgr := plugin.NewManager(cfg.PluginDir)
		if err := mgr.Discover(); err != nil {
			return fmt.Errorf("discover plugins: %w", err)
		}
		log.Printf("Loaded %d plugins from %s", len(mgr.List()), cfg.PluginDir)

		d := plugin.NewDispatcher(mgr, plugin.NewExecutor(plugin.DefaultTimeoutMs), cfg.Bindings, plugin.DefaultQueueLen)
		d.Start(ctx)
		defer d.Stop()
		appCfg.Dispatcher = d
	}

	var hub *server.Hub
	if cfg.ListenAddr != "" {
		hub = server.NewHub()
		appCfg.Publisher = hub
	}

	if cfg.ShowWindow {
		w, h := src.Size()
		win := display.NewWindow(cfg.WindowName, w, h)
		defer win.Close()
		appCfg.Window = win
	}

	a, err := app.New(appCfg)
	if err != nil {
		return err
	}

	if hub != nil {
		srv := server.New(server.Config{
			StaticDir:  findWebDir(),
			Store:      appCfg.Store,
			Hub:        hub,
			Stabilizer: a,
		})
		go func() {
			log.Printf("Starting server on %s", cfg.ListenAddr)
			if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	if !cfg.Tray {
		return a.Run(ctx)
	}

	tr := tray.New()
	tr.OnToggle(a.SetEnabled)
	tr.OnReset(a.ResetStabilizer)
	tr.OnQuit(stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		tr.Quit()
	}()
	go updateTray(ctx, tr, a)

	tr.Run()
	stop()
	return <-errCh
}

// newDetector starts the MediaPipe service detector, falling back to the
// mock detector when the service is unavailable.
func newDetector(ctx context.Context, cfg *config.Config) detector.Detector {
	dc := cfg.DetectorConfig()

	path, err := model.Ensure(ctx, nil, cfg.ModelURL, cfg.ModelDir, cfg.ModelName)
	if err != nil {
		log.Printf("Hand landmarker model unavailable (%v), using the service default", err)
	} else {
		dc.ModelPath = path
	}

	mp, err := detector.NewMediaPipeDetector(dc)
	if err != nil {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		return detector.NewMockDetector()
	}
	log.Println("Using MediaPipe hand detection")
	return mp
}

func updateTray(ctx context.Context, tr *tray.Tray, a *app.App) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := a.Stats()
			tr.SetStatus(s.Hands, s.FPS)
		}
	}
}

// findWebDir returns the first existing web directory, or "" if none.
func findWebDir() string {
	candidates := []string{"web", "../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".betterkle", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
