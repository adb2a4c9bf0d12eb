// Package app runs one capture session: frames flow from a source through
// hand detection and landmark stabilization to the overlay and its consumers.
package app

import (
	"errors"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/betterkle/internal/capture"
	"github.com/ayusman/betterkle/internal/detector"
	"github.com/ayusman/betterkle/internal/fps"
	"github.com/ayusman/betterkle/internal/motion"
	"github.com/ayusman/betterkle/internal/plugin"
	"github.com/ayusman/betterkle/internal/stabilizer"
	"github.com/ayusman/betterkle/internal/store"
)

// MaxReadFailures is how many consecutive failed reads end a live session.
const MaxReadFailures = 30

var (
	// ErrNoSource is returned by New when no frame source is configured.
	ErrNoSource = errors.New("app: no frame source")
	// ErrNoDetector is returned by New when no hand detector is configured.
	ErrNoDetector = errors.New("app: no hand detector")
)

// Publisher receives every annotated frame with its stabilized batch.
type Publisher interface {
	Publish(frame *gocv.Mat, batch detector.Batch, fps float64)
}

// Sink shows annotated frames. Show returns true when the viewer asked to quit.
type Sink interface {
	Show(img *gocv.Mat) bool
}

// Config holds the collaborators of a capture session. Store, Dispatcher,
// Publisher and Window are optional.
type Config struct {
	Source         capture.Source
	Detector       detector.Detector
	Threshold      float64
	PressThreshold float64
	FPSBufferLen   int

	// Store receives every processed batch when Record is set.
	Store  *store.Store
	Record bool

	// Dispatcher receives finger presses. Its worker is started and stopped
	// by the caller.
	Dispatcher *plugin.Dispatcher
	Publisher  Publisher
	Window     Sink
}

// Stats is a snapshot of the running session.
type Stats struct {
	Frames int     `json:"frames"`
	Hands  int     `json:"hands"`
	Held   int     `json:"held"`
	FPS    float64 `json:"fps"`
}

// App is one capture session. Its stabilizer state belongs to the session
// and is discarded with it.
type App struct {
	config Config
	stab   *stabilizer.Stabilizer
	press  *motion.PressDetector
	fps    *fps.Counter

	mu      sync.RWMutex
	enabled bool
	stats   Stats

	session   *store.Session
	recording bool
	seq       int
}

// New creates an App for the given configuration. Stabilization starts
// enabled.
func New(config Config) (*App, error) {
	if config.Source == nil {
		return nil, ErrNoSource
	}
	if config.Detector == nil {
		return nil, ErrNoDetector
	}

	return &App{
		config:  config,
		stab:    stabilizer.New(config.Threshold),
		press:   motion.NewPressDetector(config.PressThreshold),
		fps:     fps.NewCounter(config.FPSBufferLen),
		enabled: true,
	}, nil
}

// SetEnabled turns stabilization on or off. Raw landmarks pass through
// while it is off; turning it back on starts from a clean state.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if enabled && !a.enabled {
		a.stab.Reset()
	}
	a.enabled = enabled
	log.Printf("Stabilizer enabled: %v", enabled)
}

// IsEnabled returns whether stabilization is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// ResetStabilizer forgets every held landmark position.
func (a *App) ResetStabilizer() {
	a.stab.Reset()
	log.Println("Stabilizer reset")
}

// StabilizerThreshold returns the session's movement threshold.
func (a *App) StabilizerThreshold() float64 {
	return a.stab.Threshold()
}

// HeldLandmarks returns how many landmark positions the stabilizer tracks.
func (a *App) HeldLandmarks() int {
	return a.stab.Len()
}

// Stats returns a snapshot of the session counters.
func (a *App) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.stats
	s.Held = a.stab.Len()
	return s
}

// SessionID returns the ID of the latest recorded session, or "" when
// nothing was recorded.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session == nil {
		return ""
	}
	return a.session.ID
}

// Source returns the frame source.
func (a *App) Source() capture.Source {
	return a.config.Source
}
