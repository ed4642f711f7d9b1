// Package routes wires handlers onto the gin router.
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	itineraryhandlers "github.com/creator-platform/creator_service/internal/api/handlers/itinerary"
	mediahandlers "github.com/creator-platform/creator_service/internal/api/handlers/media"
	wallethandlers "github.com/creator-platform/creator_service/internal/api/handlers/wallet"
	"github.com/creator-platform/creator_service/internal/api/middleware"
)

// Handlers aggregates the handler groups mounted by the router
type Handlers struct {
	Wallet    *wallethandlers.Handlers
	Itinerary *itineraryhandlers.Handlers
	Media     *mediahandlers.Handlers
}

// Setup builds the gin engine with all routes registered
func Setup(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MaxBodySize(12 << 20))
	router.Use(middleware.Timeout(60 * time.Second))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.CreatorIdentity())

	wallet := v1.Group("/wallet")
	{
		wallet.POST("", h.Wallet.CreateWallet)
		wallet.GET("", h.Wallet.GetWallet)
		wallet.POST("/deposit", h.Wallet.Deposit)
		wallet.POST("/payout-destination", h.Wallet.LinkPayoutDestination)
		wallet.POST("/withdrawals", h.Wallet.RequestWithdrawal)
		wallet.GET("/withdrawals", h.Wallet.GetHistory)
		wallet.POST("/withdrawals/:withdrawalId/check", h.Wallet.ForceCheck)
	}

	itineraries := v1.Group("/itineraries")
	{
		itineraries.POST("", h.Itinerary.Create)
		itineraries.GET("", h.Itinerary.List)
		itineraries.GET("/:itineraryId", h.Itinerary.Get)
		itineraries.PUT("/:itineraryId", h.Itinerary.Update)
		itineraries.DELETE("/:itineraryId", h.Itinerary.Delete)
		itineraries.POST("/:itineraryId/days", h.Itinerary.AddDay)
		itineraries.PUT("/days/:dayId", h.Itinerary.UpdateDay)
		itineraries.DELETE("/days/:dayId", h.Itinerary.DeleteDay)
	}

	v1.POST("/media/images", h.Media.UploadImage)

	return router
}
