package server

import (
	"encoding/json"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/betterkle/internal/detector"
)

// LandmarksMessage is the websocket payload for one processed frame.
type LandmarksMessage struct {
	Hands     detector.Batch `json:"hands"`
	FPS       float64        `json:"fps"`
	Timestamp int64          `json:"timestamp"`
}

// Hub fans processed frames out to HTTP clients. The capture loop publishes
// into it and never waits on a slow client: every subscriber only ever sees
// the latest value.
type Hub struct {
	mu        sync.Mutex
	jpeg      []byte
	frameSubs map[chan []byte]struct{}
	lmSubs    map[chan []byte]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		frameSubs: make(map[chan []byte]struct{}),
		lmSubs:    make(map[chan []byte]struct{}),
	}
}

// Publish encodes the annotated frame for stream clients and sends the
// batch to landmark clients. Encoding is skipped with no stream clients.
func (h *Hub) Publish(frame *gocv.Mat, batch detector.Batch, fps float64) {
	if frame != nil && !frame.Empty() && h.StreamClients() > 0 {
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
		if err == nil {
			data := make([]byte, buf.Len())
			copy(data, buf.GetBytes())
			buf.Close()
			h.PublishJPEG(data)
		}
	}
	h.PublishLandmarks(batch, fps)
}

// PublishJPEG stores an encoded frame and wakes stream clients.
func (h *Hub) PublishJPEG(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.jpeg = data
	for ch := range h.frameSubs {
		offer(ch, data)
	}
}

// PublishLandmarks sends a batch to every landmark client.
func (h *Hub) PublishLandmarks(batch detector.Batch, fps float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.lmSubs) == 0 {
		return
	}
	if batch == nil {
		batch = detector.Batch{}
	}
	msg, err := json.Marshal(LandmarksMessage{
		Hands:     batch,
		FPS:       fps,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	for ch := range h.lmSubs {
		offer(ch, msg)
	}
}

// Latest returns the most recent encoded frame, if any.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jpeg
}

// StreamClients returns the number of connected MJPEG clients.
func (h *Hub) StreamClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frameSubs)
}

// LandmarkClients returns the number of connected websocket clients.
func (h *Hub) LandmarkClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lmSubs)
}

func (h *Hub) subscribeFrames() (chan []byte, func()) {
	return h.subscribe(h.frameSubs)
}

func (h *Hub) subscribeLandmarks() (chan []byte, func()) {
	return h.subscribe(h.lmSubs)
}

func (h *Hub) subscribe(subs map[chan []byte]struct{}) (chan []byte, func()) {
	ch := make(chan []byte, 1)

	h.mu.Lock()
	subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(subs, ch)
		h.mu.Unlock()
	}
}

// offer replaces any unread value in ch with v.
func offer(ch chan []byte, v []byte) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
