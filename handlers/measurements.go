package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-siren/db"
)

// GetMeasurements returns a user's audit records, newest first.
func GetMeasurements(c *gin.Context, store *db.Store) {
	privyUserID := c.Param("privyUserId")

	measurements, err := store.GetMeasurementsByUser(c.Request.Context(), privyUserID)
	if err != nil {
		log.Printf("Error fetching measurements for %s: %v", privyUserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"measurements": measurements})
}
