package types

// Measurement is the audit record persisted after a submission attempt,
// keyed by the authenticated user. It never stores key material.
type Measurement struct {
	ID            string            `firestore:"-" json:"id"`
	PrivyUserID   string            `firestore:"privyUserId" json:"privyUserId"`
	SignalType    SignalType        `firestore:"signalType" json:"signalType"`
	Lat           float64           `firestore:"lat" json:"lat"`
	Lon           float64           `firestore:"lon" json:"lon"`
	NoiseData     *NoiseMeasurement `firestore:"noiseData,omitempty" json:"noiseData,omitempty"`
	ImageURL      string            `firestore:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageAnalysis *Verdict          `firestore:"imageAnalysis,omitempty" json:"imageAnalysis,omitempty"`
	ImageMetadata *ImageMetadata    `firestore:"imageMetadata,omitempty" json:"imageMetadata,omitempty"`
	TxHash        string            `firestore:"txHash,omitempty" json:"txHash,omitempty"`
	OnChainID     int64             `firestore:"onChainSignalId,omitempty" json:"onChainSignalId,omitempty"`
	CreatedAt     string            `firestore:"createdAt" json:"createdAt"`
}
