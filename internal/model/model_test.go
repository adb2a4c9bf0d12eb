package model

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestEnsure_Downloads(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("model-bytes"))
	}))
	defer ts.Close()

	dir := filepath.Join(t.TempDir(), "model")

	path, err := Ensure(context.Background(), ts.Client(), ts.URL, dir, DefaultName)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	if string(data) != "model-bytes" {
		t.Errorf("model contents = %q", data)
	}

	// Second call uses the cached file
	if _, err := Ensure(context.Background(), ts.Client(), ts.URL, dir, DefaultName); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 download, got %d", hits.Load())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the model file in %s, found %d entries", dir, len(entries))
	}
}

func TestEnsure_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	dir := t.TempDir()

	_, err := Ensure(context.Background(), ts.Client(), ts.URL, dir, DefaultName)
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("Ensure() error = %v, want ErrDownload", err)
	}

	if _, err := os.Stat(filepath.Join(dir, DefaultName)); !os.IsNotExist(err) {
		t.Error("failed download should not leave a model file")
	}
}

func TestEnsure_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Ensure(ctx, nil, "http://127.0.0.1:1/model", t.TempDir(), DefaultName)
	if !errors.Is(err, ErrDownload) {
		t.Errorf("Ensure() error = %v, want ErrDownload", err)
	}
}
