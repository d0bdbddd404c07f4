package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mfigueroa/spotter/internal/handler"
)

type Config struct {
	FundingRequestsHandler *handler.FundingRequestsHandler
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1/")
	registerFundingRequestRoutes(api, cfg.FundingRequestsHandler)

	return router
}
