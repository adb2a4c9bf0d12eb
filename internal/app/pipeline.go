package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/betterkle/internal/capture"
	"github.com/ayusman/betterkle/internal/detector"
	"github.com/ayusman/betterkle/internal/render"
	"github.com/ayusman/betterkle/internal/store"
)

// Run processes frames until the source ends, the window asks to quit or
// ctx is cancelled. It opens the source if needed and closes it on return.
func (a *App) Run(ctx context.Context) error {
	src := a.config.Source
	if !src.IsOpen() {
		if err := src.Open(); err != nil {
			return fmt.Errorf("open %s: %w", src.Name(), err)
		}
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Printf("Error closing %s: %v", src.Name(), err)
		}
	}()

	if err := a.startRecording(); err != nil {
		return err
	}
	defer a.stopRecording()

	log.Printf("Capture started from %s", src.Name())
	defer log.Println("Capture stopped")

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			failures++
			if failures >= MaxReadFailures {
				return fmt.Errorf("reading %s: %w", src.Name(), err)
			}
			log.Printf("Error reading frame: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		failures = 0

		quit := a.handleFrame(frame)
		frame.Close()
		if quit {
			return nil
		}
	}
}

func (a *App) handleFrame(frame *gocv.Mat) bool {
	if _, err := a.ProcessFrame(frame); err != nil {
		log.Printf("Error processing frame: %v", err)
	}
	if a.config.Window != nil {
		return a.config.Window.Show(frame)
	}
	return false
}

// ProcessFrame detects hands in frame, stabilizes them and draws the overlay
// onto frame. The stabilized batch is recorded, checked for finger presses
// and published before it is returned.
func (a *App) ProcessFrame(frame *gocv.Mat) (detector.Batch, error) {
	rate := a.fps.Tick()

	raw, err := a.config.Detector.Detect(frame)
	if err != nil {
		a.overlay(frame, nil, rate)
		return nil, fmt.Errorf("detect hands: %w", err)
	}

	batch := raw
	if a.IsEnabled() {
		batch = a.stab.Filter(raw)
	}

	for _, ev := range a.press.Update(batch) {
		if a.config.Dispatcher != nil && !a.config.Dispatcher.Dispatch(ev) && a.config.Dispatcher.Bound(ev.Finger) {
			log.Printf("Dropped %s press on hand %d: dispatch queue full", ev.Finger, ev.Hand)
		}
	}

	a.record(batch)
	a.overlay(frame, batch, rate)

	if a.config.Publisher != nil {
		a.config.Publisher.Publish(frame, batch, rate)
	}

	a.mu.Lock()
	a.stats.Frames++
	a.stats.Hands = len(batch)
	a.stats.FPS = rate
	a.mu.Unlock()

	return batch, nil
}

func (a *App) overlay(frame *gocv.Mat, batch detector.Batch, rate float64) {
	if frame == nil || frame.Empty() {
		return
	}
	render.DrawHands(frame, batch)
	for h := range batch {
		render.DrawPressed(frame, batch, h, a.press.Pressed(h))
	}
	render.DrawFPS(frame, rate)
}

func (a *App) startRecording() error {
	if !a.config.Record || a.config.Store == nil {
		return nil
	}

	sess := &store.Session{
		Source:    a.config.Source.Name(),
		Threshold: a.stab.Threshold(),
	}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	a.mu.Lock()
	a.session = sess
	a.recording = true
	a.seq = 0
	a.mu.Unlock()

	log.Printf("Recording session %s", sess.ID)
	return nil
}

func (a *App) stopRecording() {
	a.mu.Lock()
	sess := a.session
	wasRecording := a.recording
	a.recording = false
	a.mu.Unlock()

	if !wasRecording {
		return
	}
	if err := a.config.Store.Sessions().End(sess.ID, time.Now()); err != nil {
		log.Printf("Error ending session %s: %v", sess.ID, err)
	}
}

func (a *App) record(batch detector.Batch) {
	a.mu.Lock()
	if !a.recording {
		a.mu.Unlock()
		return
	}
	sess := a.session
	seq := a.seq
	a.seq++
	a.mu.Unlock()

	if err := a.config.Store.Frames().Append(sess.ID, seq, time.Now(), batch); err != nil {
		log.Printf("Error recording frame %d: %v", seq, err)
	}
}
