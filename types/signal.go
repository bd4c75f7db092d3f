package types

import "fmt"

// SignalType identifies the kind of civic signal being reported.
type SignalType int

const (
	Checkpoint SignalType = 0
	NoiseLevel SignalType = 1
	Hazard     SignalType = 2
	Traffic    SignalType = 3
)

// signalLabels are the human-readable names used in prompts and audio alerts.
var signalLabels = map[SignalType]string{
	Checkpoint: "checkpoint",
	NoiseLevel: "noise complaint",
	Hazard:     "road hazard",
	Traffic:    "traffic congestion",
}

// evidenceRequired drives the submission branch: Checkpoint and Noise reports
// must pass evidence validation before they can go on-chain, Hazard and
// Traffic submit directly.
var evidenceRequired = map[SignalType]bool{
	Checkpoint: true,
	NoiseLevel: true,
	Hazard:     false,
	Traffic:    false,
}

func (s SignalType) Valid() bool {
	_, ok := signalLabels[s]
	return ok
}

func (s SignalType) Label() string {
	if label, ok := signalLabels[s]; ok {
		return label
	}
	return "unknown signal"
}

func (s SignalType) RequiresEvidence() bool {
	return evidenceRequired[s]
}

func (s SignalType) String() string {
	return fmt.Sprintf("%s(%d)", s.Label(), int(s))
}

// Signal is an on-chain signal record with coordinates already decoded back
// to signed degrees.
type Signal struct {
	ID         string     `json:"id"`
	Reporter   string     `json:"reporter"`
	SignalType SignalType `json:"signal_type"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Timestamp  string     `json:"timestamp"`
	Confidence int        `json:"confidence"`
}
