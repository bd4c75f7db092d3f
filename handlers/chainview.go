package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-siren/chain"
)

// GetSignals returns every registry signal with decoded coordinates.
func GetSignals(c *gin.Context, queries *chain.Queries) {
	signals, err := queries.GetAllSignals(c.Request.Context())
	if err != nil {
		log.Printf("Error fetching signals: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

// GetReputation returns an address's on-chain reputation; unregistered
// reporters read as zero.
func GetReputation(c *gin.Context, queries *chain.Queries) {
	address := c.Param("address")

	reputation, err := queries.GetReputation(c.Request.Context(), address)
	if err != nil {
		log.Printf("Error fetching reputation for %s: %v", address, err)
		c.JSON(http.StatusOK, gin.H{"reputation": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reputation": reputation})
}

// GetBalance returns an address's native balance in base and display units.
// Missing accounts read as zero balance rather than an error.
func GetBalance(c *gin.Context, queries *chain.Queries) {
	address := c.Param("address")

	balance, err := queries.Balance(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"balance": 0, "balanceMove": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":     balance,
		"balanceMove": float64(balance) / chain.OctasPerMove,
	})
}
