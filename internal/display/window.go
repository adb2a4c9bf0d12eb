// Package display shows annotated frames in a desktop window.
package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// DefaultTitle is the window title.
const DefaultTitle = "BetterKLE"

// QuitKey closes the window when pressed.
const QuitKey = 'q'

// Window is a fixed-size OpenCV window.
type Window struct {
	window *gocv.Window
	mu     sync.Mutex
}

// NewWindow opens a window of the given size.
func NewWindow(title string, width, height int) *Window {
	if title == "" {
		title = DefaultTitle
	}
	w := gocv.NewWindow(title)
	if width > 0 && height > 0 {
		w.ResizeWindow(width, height)
	}
	return &Window{window: w}
}

// Show displays img and polls the keyboard. It returns true when the user
// asked to quit.
func (w *Window) Show(img *gocv.Mat) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return true
	}
	if img != nil && !img.Empty() {
		w.window.IMShow(*img)
	}
	key := w.window.WaitKey(1)
	return isQuit(key)
}

// Close destroys the window.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}

func isQuit(key int) bool {
	return key >= 0 && key&0xFF == QuitKey
}
