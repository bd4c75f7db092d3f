package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-siren/geocode"
)

// ReverseGeocode resolves a lat/lon query to a display address.
func ReverseGeocode(c *gin.Context, cache *geocode.Cache) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}

	address := geocode.ReverseGeocode(c.Request.Context(), cache, lat, lon)
	c.JSON(http.StatusOK, gin.H{"address": address})
}
