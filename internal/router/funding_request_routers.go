package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mfigueroa/spotter/internal/handler"
)

func registerFundingRequestRoutes(router *gin.RouterGroup, fundingRequestsHandler *handler.FundingRequestsHandler) {
	fundingRequests := router.Group("/funding-requests")
	{
		fundingRequests.GET("", fundingRequestsHandler.GetAvailable)
		fundingRequests.GET("/promising", fundingRequestsHandler.GetPromising)
		fundingRequests.POST("/fetch", fundingRequestsHandler.Fetch)
	}

	router.DELETE("/cache", fundingRequestsHandler.InvalidateCache)
}
