package letterfall

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// scriptStep represents a single action in an automation script.
type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
	Ms     int    `json:"ms,omitempty"`
}

// scriptFile is the top-level JSON structure for an automation script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences waits, screenshots and custom actions across frames for
// automated visual checks. Attach to a Document via SetScript.
//
// Built-in actions: "wait" (frames or ms), "screenshot" (label), "load"
// (Document.Load) and "quit" (Document.Quit). Other actions are dispatched
// to handlers registered with Handle.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	waitUntil time.Duration
	handlers  map[string]func(*Document)
	done      bool
}

// LoadScript parses a JSON automation script and returns a Script ready to
// be attached to a Document via SetScript.
func LoadScript(jsonData []byte) (*Script, error) {
	var file scriptFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("letterfall: parse script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, errors.New("letterfall: parse script: no steps")
	}
	return &Script{steps: file.Steps, handlers: make(map[string]func(*Document))}, nil
}

// Handle registers fn for a custom action name.
func (s *Script) Handle(action string, fn func(*Document)) {
	s.handlers[action] = fn
}

// SetScript attaches a Script to the document. The script advances by one
// step from every Document.Update.
func (d *Document) SetScript(s *Script) {
	d.script = s
}

// Done reports whether all steps in the script have been executed.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one frame. Called from Document.Update.
func (s *Script) step(d *Document) {
	if s.done {
		return
	}
	// Count down wait frames and wait time.
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if d.now < s.waitUntil {
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "screenshot":
		d.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
		if st.Ms > 0 {
			s.waitUntil = d.now + time.Duration(st.Ms)*time.Millisecond
		}
	case "load":
		d.Load()
	case "quit":
		d.Quit()
	default:
		if fn, ok := s.handlers[st.Action]; ok {
			fn(d)
		} else {
			d.log.Warn("script: unknown action", zap.String("action", st.Action))
		}
	}

	// Check if we've reached the end after executing.
	if s.cursor >= len(s.steps) && s.waitCount == 0 && d.now >= s.waitUntil {
		s.done = true
	}
}
