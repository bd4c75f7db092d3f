package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-siren/wallet"
)

type fundRequest struct {
	Address string `json:"address" binding:"required"`
}

// FundWallet tops up a user wallet from the sponsor account when its balance
// is below the submission minimum. Already-funded wallets are a success with
// no transfer.
func FundWallet(c *gin.Context, manager *wallet.FundingManager) {
	var req fundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := manager.Fund(c.Request.Context(), req.Address)
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
