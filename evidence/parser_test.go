package evidence

import (
	"testing"

	"go-siren/types"
)

func TestParseNoiseVerdictFencedJSON(t *testing.T) {
	t.Parallel()

	text := "Here is my analysis:\n```json\n{\"isNoisePollution\": true, \"confidence\": 88, \"severity\": \"high\", \"details\": \"Sustained traffic noise\"}\n```\nLet me know if you need more."

	verdict := ParseNoiseVerdict(text, types.NoiseMeasurement{})
	if !verdict.Accepted {
		t.Error("expected accepted verdict")
	}
	if verdict.Confidence != 88 {
		t.Errorf("confidence = %d, want 88", verdict.Confidence)
	}
	if verdict.Severity != "high" {
		t.Errorf("severity = %q, want %q", verdict.Severity, "high")
	}
	if verdict.Detail != "Sustained traffic noise" {
		t.Errorf("detail = %q", verdict.Detail)
	}
}

func TestParseNoiseVerdictBareFence(t *testing.T) {
	t.Parallel()

	text := "```\n{\"isNoisePollution\": false, \"confidence\": 95, \"severity\": \"low\", \"details\": \"Quiet street\"}\n```"

	verdict := ParseNoiseVerdict(text, types.NoiseMeasurement{})
	if verdict.Accepted {
		t.Error("expected rejected verdict")
	}
	if verdict.Confidence != 95 {
		t.Errorf("confidence = %d, want 95", verdict.Confidence)
	}
}

func TestParseNoiseVerdictRawJSON(t *testing.T) {
	t.Parallel()

	text := `{"isNoisePollution": true, "confidence": 75, "severity": "moderate", "details": "Construction noise"}`

	verdict := ParseNoiseVerdict(text, types.NoiseMeasurement{})
	if !verdict.Accepted {
		t.Error("expected accepted verdict")
	}
	if verdict.Severity != "moderate" {
		t.Errorf("severity = %q, want %q", verdict.Severity, "moderate")
	}
}

func TestParseNoiseVerdictFallsBackOnGarbage(t *testing.T) {
	t.Parallel()

	m := types.NoiseMeasurement{Max: 92, Min: 60, Avg: 78}
	verdict := ParseNoiseVerdict("I could not produce structured output, sorry.", m)

	// Avg 78 clears the 70 dB threshold, so the fallback accepts.
	if !verdict.Accepted {
		t.Error("expected fallback to accept avg 78 dB")
	}
	if verdict.Confidence != fallbackNoiseConfidence {
		t.Errorf("confidence = %d, want %d", verdict.Confidence, fallbackNoiseConfidence)
	}
	if verdict.Severity != "moderate" {
		t.Errorf("severity = %q, want %q", verdict.Severity, "moderate")
	}
}

func TestNoiseFallbackBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		m            types.NoiseMeasurement
		wantAccepted bool
		wantSeverity string
	}{
		{"quiet", types.NoiseMeasurement{Avg: 40, Max: 60}, false, "low"},
		{"loud average", types.NoiseMeasurement{Avg: 75, Max: 80}, true, "moderate"},
		{"quiet average loud peak", types.NoiseMeasurement{Avg: 55, Max: 90}, true, "low"},
		{"very loud", types.NoiseMeasurement{Avg: 88, Max: 101}, true, "high"},
		{"threshold average", types.NoiseMeasurement{Avg: 70, Max: 70}, true, "moderate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := NoiseFallback(tc.m)
			if verdict.Accepted != tc.wantAccepted {
				t.Errorf("accepted = %v, want %v", verdict.Accepted, tc.wantAccepted)
			}
			if verdict.Severity != tc.wantSeverity {
				t.Errorf("severity = %q, want %q", verdict.Severity, tc.wantSeverity)
			}
		})
	}
}

func TestParseImageVerdictPerSignalType(t *testing.T) {
	t.Parallel()

	text := `{"hasCheckpoint": true, "hasHazard": false, "confidence": 82, "details": "Marked police vehicle at intersection"}`

	checkpoint := ParseImageVerdict(text, types.Checkpoint)
	if !checkpoint.Accepted {
		t.Error("checkpoint verdict should accept when hasCheckpoint is true")
	}
	if checkpoint.Confidence != 82 {
		t.Errorf("confidence = %d, want 82", checkpoint.Confidence)
	}

	hazard := ParseImageVerdict(text, types.Hazard)
	if hazard.Accepted {
		t.Error("hazard verdict should reject when hasHazard is false")
	}
}

func TestParseImageVerdictKeywordFallback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		text         string
		sigType      types.SignalType
		wantAccepted bool
	}{
		{"checkpoint keyword", "The image clearly shows a police checkpoint ahead.", types.Checkpoint, true},
		{"no checkpoint keyword", "Just an empty street with parked cars.", types.Checkpoint, false},
		{"hazard keyword", "There is debris scattered across the lane.", types.Hazard, true},
		{"no hazard keyword", "A clean stretch of highway.", types.Hazard, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := ParseImageVerdict(tc.text, tc.sigType)
			if verdict.Accepted != tc.wantAccepted {
				t.Errorf("accepted = %v, want %v", verdict.Accepted, tc.wantAccepted)
			}
			if verdict.Confidence != fallbackImageConfidence {
				t.Errorf("confidence = %d, want %d", verdict.Confidence, fallbackImageConfidence)
			}
		})
	}
}

func TestExtractJSONPrefersJSONFence(t *testing.T) {
	t.Parallel()

	text := "```\nnot this one\n```\n```json\n{\"a\": 1}\n```"
	if got := extractJSON(text); got != `{"a": 1}` {
		t.Errorf("extractJSON = %q, want %q", got, `{"a": 1}`)
	}
}
