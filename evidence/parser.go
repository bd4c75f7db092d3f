package evidence

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go-siren/types"
)

// Deterministic fallback thresholds, used when the classifier response does
// not contain parseable JSON.
const (
	noiseAvgThreshold  = 70.0
	noisePeakThreshold = 85.0
	noiseHighBand      = 85.0

	fallbackNoiseConfidence = 70
	fallbackImageConfidence = 50
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedRe     = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// checkpointKeywords decide the keyword-fallback verdict per signal type.
var checkpointKeywords = map[types.SignalType][]string{
	types.Checkpoint: {"checkpoint", "police", "law enforcement"},
	types.Hazard:     {"hazard", "obstacle", "danger", "debris"},
}

type noiseAnalysis struct {
	IsNoisePollution bool    `json:"isNoisePollution"`
	Confidence       float64 `json:"confidence"`
	Severity         string  `json:"severity"`
	Details          string  `json:"details"`
}

type imageAnalysis struct {
	HasCheckpoint bool    `json:"hasCheckpoint"`
	HasHazard     bool    `json:"hasHazard"`
	Confidence    float64 `json:"confidence"`
	Details       string  `json:"details"`
}

// extractJSON pulls the JSON payload out of free-form classifier text:
// a ```json fenced block first, then any fenced block, then the raw text.
func extractJSON(text string) string {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.TrimSpace(text)
}

// ParseNoiseVerdict interprets the classifier's noise response. If the text
// carries no parseable JSON the deterministic threshold policy decides.
func ParseNoiseVerdict(text string, m types.NoiseMeasurement) types.Verdict {
	var analysis noiseAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		return NoiseFallback(m)
	}
	return types.Verdict{
		Accepted:   analysis.IsNoisePollution,
		Confidence: int(analysis.Confidence),
		Severity:   analysis.Severity,
		Detail:     analysis.Details,
	}
}

// NoiseFallback applies the threshold policy from standard noise-pollution
// guidance: sustained average over 70 dB or peaks over 85 dB.
func NoiseFallback(m types.NoiseMeasurement) types.Verdict {
	severity := "low"
	if m.Avg >= noiseHighBand {
		severity = "high"
	} else if m.Avg >= noiseAvgThreshold {
		severity = "moderate"
	}

	return types.Verdict{
		Accepted:   m.Avg >= noiseAvgThreshold || m.Max >= noisePeakThreshold,
		Confidence: fallbackNoiseConfidence,
		Severity:   severity,
		Detail:     fmt.Sprintf("Average noise level: %.1f dB, Peak: %.1f dB", m.Avg, m.Max),
	}
}

// ParseImageVerdict interprets the classifier's image response for the given
// signal type. Unparseable responses fall back to keyword matching against
// the raw text with a fixed low confidence.
func ParseImageVerdict(text string, sigType types.SignalType) types.Verdict {
	var analysis imageAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		return imageKeywordFallback(text, sigType)
	}

	accepted := analysis.HasCheckpoint
	if sigType == types.Hazard {
		accepted = analysis.HasHazard
	}

	return types.Verdict{
		Accepted:   accepted,
		Confidence: int(analysis.Confidence),
		Detail:     analysis.Details,
	}
}

func imageKeywordFallback(text string, sigType types.SignalType) types.Verdict {
	lower := strings.ToLower(text)
	accepted := false
	for _, kw := range checkpointKeywords[sigType] {
		if strings.Contains(lower, kw) {
			accepted = true
			break
		}
	}
	return types.Verdict{
		Accepted:   accepted,
		Confidence: fallbackImageConfidence,
		Detail:     text,
	}
}
