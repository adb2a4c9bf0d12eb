package server

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/betterkle/internal/detector"
	"github.com/ayusman/betterkle/internal/store"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	sess := &store.Session{Source: "camera:0", Threshold: 0.005}
	require.NoError(t, s.Sessions().Create(sess))
	require.NoError(t, s.Frames().Append(sess.ID, 0, time.Now(), detector.Batch{detector.OpenPalm()}))

	ts := httptest.NewServer(New(Config{Store: s}))
	defer ts.Close()
	client := ts.Client()

	resp, err := client.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	var listed struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Sessions, 1)
	assert.Equal(t, sess.ID, listed.Sessions[0].ID)

	resp, err = client.Get(ts.URL + "/api/sessions/" + sess.ID)
	require.NoError(t, err)
	var got struct {
		Frames int `json:"frames"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, 1, got.Frames)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+sess.ID, nil)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/api/sessions/" + sess.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Stream(t *testing.T) {
	hub := NewHub()
	hub.PublishJPEG([]byte("jpeg-bytes"))

	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 5 {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	assert.Equal(t, []string{
		"--frame",
		"Content-Type: image/jpeg",
		"Content-Length: 10",
		"",
		"jpeg-bytes",
	}, lines)
}

func TestAPI_LandmarksWebsocket(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/landmarks"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.LandmarkClients() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.PublishLandmarks(detector.Batch{detector.OpenPalm()}, 24)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg LandmarksMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 24.0, msg.FPS)
	require.Len(t, msg.Hands, 1)
	assert.Len(t, msg.Hands[0].Landmarks, detector.NumLandmarks)

	conn.Close()
	require.Eventually(t, func() bool { return hub.LandmarkClients() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestAPI_HealthCheck(t *testing.T) {
	ts := httptest.NewServer(New(Config{}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}
