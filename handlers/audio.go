package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-siren/audio"
)

type audioSummaryRequest struct {
	UserLat  float64  `json:"userLat"`
	UserLon  float64  `json:"userLon"`
	RadiusKm *float64 `json:"radiusKm"`
}

const defaultSummaryRadiusKm = 0.1

// GenerateAudioSummary produces a spoken alert for signals near the caller.
func GenerateAudioSummary(c *gin.Context, summarizer *audio.Summarizer) {
	var req audioSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserLat < -90 || req.UserLat > 90 || req.UserLon < -180 || req.UserLon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	radius := defaultSummaryRadiusKm
	if req.RadiusKm != nil {
		radius = *req.RadiusKm
	}

	summary, err := summarizer.SummarizeNearby(c.Request.Context(), req.UserLat, req.UserLon, radius)
	if errors.Is(err, audio.ErrNoSignals) {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "NO_SIGNALS",
			"message": "No signals detected nearby",
		})
		return
	}
	if err != nil {
		// The text summary is still usable when synthesis fails.
		log.Printf("TTS error: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "TTS_FAILED",
			"message": "Failed to generate audio",
			"summary": summary.Text,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"audioContent":    summary.AudioContent,
		"summary":         summary.Text,
		"signalCount":     summary.SignalCount,
		"nearestDistance": summary.NearestKm,
	})
}
