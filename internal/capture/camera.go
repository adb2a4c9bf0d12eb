// Package capture provides frame sources backed by GoCV (OpenCV) video capture.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultDevice = 0
	DefaultWidth  = 960
	DefaultHeight = 540
)

var (
	// ErrSourceNotOpen is returned when reading from a source that is not open.
	ErrSourceNotOpen = errors.New("frame source is not open")
	// ErrEndOfStream is returned when a video file has no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Source defines the interface for anything that produces video frames.
type Source interface {
	Open() error
	Close() error
	// ReadFrame reads the next frame. The caller must close the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
	// Size returns the frame size reported by the device once open.
	Size() (width, height int)
	// Name describes the source for logs and session records.
	Name() string
}

// videoSource manages a gocv.VideoCapture opened from a device ID or file.
type videoSource struct {
	device  any
	name    string
	live    bool
	width   int
	height  int
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Source reading from the given camera device.
// The requested resolution is applied on Open; Size reports what the
// device actually delivers.
func NewCamera(deviceID, width, height int) Source {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &videoSource{
		device: deviceID,
		name:   fmt.Sprintf("camera:%d", deviceID),
		live:   true,
		width:  width,
		height: height,
	}
}

// NewVideoFile creates a Source reading frames from a video file.
func NewVideoFile(path string) Source {
	return &videoSource{
		device: path,
		name:   "file:" + path,
	}
}

// Open opens the device or file for capturing frames.
func (c *videoSource) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.name, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open %s: device not available", c.name)
	}

	if c.live {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.height))
	}

	// Use the resolution the backend actually settled on
	if w := int(capture.Get(gocv.VideoCaptureFrameWidth)); w > 0 {
		c.width = w
	}
	if h := int(capture.Get(gocv.VideoCaptureFrameHeight)); h > 0 {
		c.height = h
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the source and releases resources.
func (c *videoSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame.
// The caller is responsible for closing the returned Mat.
func (c *videoSource) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrSourceNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		if !c.live {
			return nil, ErrEndOfStream
		}
		return nil, fmt.Errorf("failed to read frame from %s", c.name)
	}

	if mat.Empty() {
		mat.Close()
		if !c.live {
			return nil, ErrEndOfStream
		}
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true if the source is currently open.
func (c *videoSource) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

func (c *videoSource) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.width, c.height
}

func (c *videoSource) Name() string {
	return c.name
}
