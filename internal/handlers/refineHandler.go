package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/utils"
	"github.com/MamunCrafts/ai-simplified-by-mamun/localratelimiter"
	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

// RefineService is the part of refiner.Service the HTTP layer needs.
type RefineService interface {
	Configured() bool
	Admit(identity string) error
	Refine(ctx context.Context, payload models.RefinePromptPayload) (*models.RefinePromptResponse, error)
}

type RefineHandler struct {
	refineService RefineService
	logger        *slog.Logger
}

func NewRefineHandler(refineService RefineService, logger *slog.Logger) *RefineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefineHandler{
		refineService: refineService,
		logger:        logger,
	}
}

// Refine handles POST /api/refine. The credential check and the rate limit run
// before the body is read, so a throttled caller is rejected whatever it sent.
func (h *RefineHandler) Refine(c *gin.Context) {
	if !h.refineService.Configured() {
		h.logger.Error("refine provider credential not configured")
		utils.ProcessServiceUnconfigured(c)
		return
	}

	if err := h.refineService.Admit(localratelimiter.ClientIdentity(c)); err != nil {
		h.processError(c, err)
		return
	}

	var payload models.RefinePromptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			utils.ProcessValidationFailed(c, []string{
				fmt.Sprintf("%s: Expected %s, received %s", typeErr.Field, typeErr.Type, typeErr.Value),
			})
			return
		}
		h.logger.Info("refine body is not valid JSON", "error", err)
		utils.ProcessInvalidJSON(c)
		return
	}

	response, err := h.refineService.Refine(c.Request.Context(), payload)
	if err != nil {
		h.processError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Options answers CORS preflight requests that reach the route directly.
func (h *RefineHandler) Options(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Status(http.StatusOK)
}

func (h *RefineHandler) processError(c *gin.Context, err error) {
	var validationErr *refiner.ValidationError
	if errors.As(err, &validationErr) {
		utils.ProcessValidationFailed(c, validationErr.Details)
		return
	}

	status, message := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("refine request failed", "status", status, "error", err)
	}
	utils.ProcessStatus(c, status, message)
}

// StatusForError maps a refinement error onto its HTTP status and public message.
func StatusForError(err error) (int, string) {
	var validationErr *refiner.ValidationError
	var timeoutErr *refiner.TimeoutError
	var serviceErr *refiner.ExternalServiceError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, localratelimiter.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a minute."
	case errors.As(err, &timeoutErr):
		return http.StatusRequestTimeout, "Request timeout. Please try again with a shorter prompt."
	case errors.As(err, &serviceErr) && serviceErr.Kind == refiner.KindCredential:
		return http.StatusInternalServerError, "Service configuration error. Please contact support."
	case errors.As(err, &serviceErr) && serviceErr.Kind == refiner.KindQuota:
		return http.StatusServiceUnavailable, "Service temporarily unavailable due to high demand. Please try again later."
	}
	return http.StatusInternalServerError, "An unexpected error occurred. Please try again."
}
