package routes

import (
	"github.com/gin-gonic/gin"

	"go-siren/audio"
	"go-siren/chain"
	"go-siren/db"
	"go-siren/geocode"
	"go-siren/handlers"
	"go-siren/wallet"
)

// Deps carries the shared clients the handlers need.
type Deps struct {
	Sessions     *handlers.SessionManager
	Queries      *chain.Queries
	Funding      *wallet.FundingManager
	Store        *db.Store
	Summarizer   *audio.Summarizer
	GeocodeCache *geocode.Cache
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to Go Siren!",
		})
	})

	// api routes
	api := r.Group("/api/siren")
	{
		api.POST("/session/start", deps.Sessions.StartSession)
		api.POST("/session/noise", deps.Sessions.SubmitNoiseEvidence)
		api.POST("/session/image", deps.Sessions.SubmitImageEvidence)
		api.POST("/session/cancel", deps.Sessions.CancelSession)
		api.POST("/session/dismiss", deps.Sessions.DismissSession)
		api.GET("/session/:privyUserId", deps.Sessions.SessionStatus)

		api.GET("/signals", func(c *gin.Context) {
			handlers.GetSignals(c, deps.Queries)
		})
		api.GET("/reputation/:address", func(c *gin.Context) {
			handlers.GetReputation(c, deps.Queries)
		})
		api.GET("/balance/:address", func(c *gin.Context) {
			handlers.GetBalance(c, deps.Queries)
		})
		api.POST("/wallet/fund", func(c *gin.Context) {
			handlers.FundWallet(c, deps.Funding)
		})
		api.POST("/audio/summary", func(c *gin.Context) {
			handlers.GenerateAudioSummary(c, deps.Summarizer)
		})
		api.GET("/measurements/:privyUserId", func(c *gin.Context) {
			handlers.GetMeasurements(c, deps.Store)
		})
		api.GET("/geocode", func(c *gin.Context) {
			handlers.ReverseGeocode(c, deps.GeocodeCache)
		})
	}

	return r
}
