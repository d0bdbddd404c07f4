package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfigueroa/spotter/internal/cumplo"
	"github.com/mfigueroa/spotter/internal/service"
	"github.com/mfigueroa/spotter/internal/store"
)

type FundingRequestsHandler struct {
	fundingRequestsService *service.FundingRequestsService
}

func NewFundingRequestsHandler(service *service.FundingRequestsService) *FundingRequestsHandler {
	return &FundingRequestsHandler{
		fundingRequestsService: service,
	}
}

func (h *FundingRequestsHandler) GetAvailable(c *gin.Context) {
	requests, err := h.fundingRequestsService.GetAvailable(c.Request.Context())
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *FundingRequestsHandler) GetPromising(c *gin.Context) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
		return
	}

	user, err := h.fundingRequestsService.UserByAPIKey(apiKey)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	requests, err := h.fundingRequestsService.GetPromising(c.Request.Context(), *user)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *FundingRequestsHandler) Fetch(c *gin.Context) {
	notified, err := h.fundingRequestsService.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications_sent": notified})
}

func (h *FundingRequestsHandler) InvalidateCache(c *gin.Context) {
	h.fundingRequestsService.InvalidateCache()
	c.Status(http.StatusNoContent)
}

func upstreamStatus(err error) int {
	if errors.Is(err, cumplo.ErrSourceUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
