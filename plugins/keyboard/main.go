// Command keyboard is a betterkle plugin that turns finger presses into
// keystrokes. It uses osascript on macOS and xdotool elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request is the press event sent by the plugin executor.
type Request struct {
	Action     string          `json:"action"`
	Finger     string          `json:"finger"`
	Hand       int             `json:"hand"`
	Handedness string          `json:"handedness,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// Response is written back to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

// fingerKeys is the home-row layout used when a binding names no key.
var fingerKeys = map[string]string{
	"thumb":  "space",
	"index":  "j",
	"middle": "k",
	"ring":   "l",
	"pinky":  "semicolon",
}

var appleModifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

var xdotoolModifiers = map[string]string{
	"command": "super",
	"cmd":     "super",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	writeResponse(handle(req, runtime.GOOS, run))
}

func handle(req Request, goos string, runner func(name string, args ...string) error) error {
	switch req.Action {
	case "keystroke", "shortcut":
	default:
		return fmt.Errorf("unknown action: %s", req.Action)
	}

	p, err := resolveParams(req)
	if err != nil {
		return err
	}

	name, args := keystrokeCommand(goos, p.Key, p.Modifiers)
	if err := runner(name, args...); err != nil {
		return fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	return nil
}

// resolveParams reads the binding params, falling back to the finger's
// home-row key.
func resolveParams(req Request) (KeystrokeParams, error) {
	var p KeystrokeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return p, fmt.Errorf("failed to parse params: %w", err)
		}
	}
	if p.Key == "" {
		p.Key = fingerKeys[req.Finger]
	}
	if p.Key == "" {
		return p, errors.New("key is required")
	}
	return p, nil
}

// keystrokeCommand builds the command line that sends key with modifiers.
func keystrokeCommand(goos, key string, modifiers []string) (string, []string) {
	if goos == "darwin" {
		return "osascript", []string{"-e", appleScript(key, modifiers)}
	}

	combo := make([]string, 0, len(modifiers)+1)
	for _, mod := range modifiers {
		if m, ok := xdotoolModifiers[strings.ToLower(mod)]; ok {
			combo = append(combo, m)
		}
	}
	combo = append(combo, key)
	return "xdotool", []string{"key", strings.Join(combo, "+")}
}

func appleScript(key string, modifiers []string) string {
	if key == "space" {
		key = " "
	}

	var mods []string
	for _, mod := range modifiers {
		if m, ok := appleModifiers[strings.ToLower(mod)]; ok {
			mods = append(mods, m)
		}
	}

	if len(mods) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, strings.Join(mods, ", "))
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
