package capture

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name       string
		deviceID   int
		width      int
		height     int
		wantWidth  int
		wantHeight int
		wantName   string
	}{
		{
			name:       "default resolution",
			deviceID:   0,
			wantWidth:  960,
			wantHeight: 540,
			wantName:   "camera:0",
		},
		{
			name:       "explicit resolution",
			deviceID:   1,
			width:      640,
			height:     480,
			wantWidth:  640,
			wantHeight: 480,
			wantName:   "camera:1",
		},
		{
			name:       "negative resolution uses default",
			deviceID:   2,
			width:      -1,
			height:     -1,
			wantWidth:  960,
			wantHeight: 540,
			wantName:   "camera:2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.deviceID, tt.width, tt.height)

			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}

			w, h := cam.Size()
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
			if cam.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", cam.Name(), tt.wantName)
			}
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0, DefaultWidth, DefaultHeight)

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		w, h := cam.Size()
		if mat.Cols() != w || mat.Rows() != h {
			t.Logf("Frame dimensions: %dx%d (reported %dx%d)", mat.Cols(), mat.Rows(), w, h)
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(0, 0, 0)

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrSourceNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrSourceNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0, 0, 0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestVideoFile_Missing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs the OpenCV runtime")
	}

	src := NewVideoFile(filepath.Join(t.TempDir(), "missing.mp4"))
	if src.Name() == "" {
		t.Error("expected a source name")
	}

	if err := src.Open(); err == nil {
		src.Close()
		t.Error("Open() on a missing file should fail")
	}
	if src.IsOpen() {
		t.Error("source should not be open after a failed Open()")
	}
}
