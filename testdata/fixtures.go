// Package testdata provides recorded landmark sequences for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/betterkle/internal/detector"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Recorded sequences.
const (
	// Jitter is 30 frames of one right hand held still with sub-threshold
	// noise, moved by 0.05 in x from frame 20 on.
	Jitter = "jitter"
	// Press is one flat right hand whose index tip dips toward the camera
	// on frames 2-4; the hand is lost on frame 6.
	Press = "press"
)

// LoadSequence loads a recorded sequence of detection batches by name.
func LoadSequence(name string) ([]detector.Batch, error) {
	data, err := sequencesFS.ReadFile(path.Join("sequences", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var batches []detector.Batch
	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return batches, nil
}

// Sequences lists the names of all recorded sequences.
func Sequences() ([]string, error) {
	entries, err := sequencesFS.ReadDir("sequences")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
