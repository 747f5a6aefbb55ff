package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	provider           string
	providerConfigured func() bool
}

func NewHealthHandler(provider string, providerConfigured func() bool) *HealthHandler {
	return &HealthHandler{
		provider:           provider,
		providerConfigured: providerConfigured,
	}
}

func (h *HealthHandler) IsHealthy(c *gin.Context) {
	configured := h.providerConfigured != nil && h.providerConfigured()
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"provider":           h.provider,
		"providerConfigured": configured,
	})
}
