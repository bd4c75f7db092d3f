package types

// NoiseMeasurement is the aggregate of a finished decibel recording session.
// Samples are ordered in capture order; Duration is in seconds.
type NoiseMeasurement struct {
	Max      float64   `json:"max" firestore:"max"`
	Min      float64   `json:"min" firestore:"min"`
	Avg      float64   `json:"avg" firestore:"avg"`
	Samples  []float64 `json:"samples" firestore:"samples"`
	Duration float64   `json:"duration" firestore:"duration"`
}

// ImageMetadata describes the circumstances of a checkpoint photo capture.
type ImageMetadata struct {
	Timestamp  int64   `json:"timestamp" firestore:"timestamp"`
	Lat        float64 `json:"lat" firestore:"lat"`
	Lon        float64 `json:"lon" firestore:"lon"`
	DeviceInfo string  `json:"deviceInfo" firestore:"deviceInfo"`
}

// CheckpointImage is a single captured photo plus its capture metadata.
// ImageData is base64, optionally with a data-URL prefix.
type CheckpointImage struct {
	ImageData string        `json:"imageData"`
	Metadata  ImageMetadata `json:"metadata"`
}

// Verdict is the structured outcome of evidence validation. Rejection is a
// normal verdict, not an error.
type Verdict struct {
	Accepted   bool   `json:"accepted" firestore:"accepted"`
	Confidence int    `json:"confidence" firestore:"confidence"`
	Severity   string `json:"severity,omitempty" firestore:"severity,omitempty"`
	Detail     string `json:"detail" firestore:"detail"`
}

// GeoPoint is a plain lat/lon pair in signed degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
