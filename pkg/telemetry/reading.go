// Package telemetry polls the posture sensor's status endpoint. It owns the
// wire format of a reading, the sequence numbering of in-flight polls and the
// classification of poll failures. It has no knowledge of how a reading is
// displayed.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reading is one decoded sample from the status endpoint.
type Reading struct {
	Angle  float64 `json:"angle"`  // neck inclination in degrees
	Status string  `json:"status"` // "Normal" or a "Warning..." string
}

// Result is a successful poll. Seq is assigned when the request is
// dispatched, not when it completes, so consumers can detect out-of-order
// completions.
type Result struct {
	Seq        uint64        `json:"seq"`
	Reading    Reading       `json:"reading"`
	Latency    time.Duration `json:"latency"`
	ReceivedAt time.Time     `json:"received_at"`
}

// wireReading mirrors Reading with pointer fields so a body that is valid
// JSON but lacks either key is rejected instead of zero-filled.
type wireReading struct {
	Angle  *float64 `json:"angle"`
	Status *string  `json:"status"`
}

// DecodeReading parses a status endpoint body. Both keys are required.
func DecodeReading(body []byte) (Reading, error) {
	var w wireReading
	if err := json.Unmarshal(body, &w); err != nil {
		return Reading{}, err
	}
	if w.Angle == nil {
		return Reading{}, fmt.Errorf("missing %q field", "angle")
	}
	if w.Status == nil {
		return Reading{}, fmt.Errorf("missing %q field", "status")
	}
	return Reading{Angle: *w.Angle, Status: *w.Status}, nil
}
