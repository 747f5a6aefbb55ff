package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/utils"
	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
	"github.com/MamunCrafts/ai-simplified-by-mamun/supabase"
)

const (
	authorizationHeaderKey = "Authorization"
	bearerPrefix           = "Bearer "

	userContextKey  = "libraryUser"
	tokenContextKey = "libraryToken"

	relatedPromptsLimit = 3
)

// LibraryStore is the record store behind the prompt library routes.
type LibraryStore interface {
	GetUser(ctx context.Context, token string) (*models.User, error)

	ListPublicPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error)
	LibraryFacets(ctx context.Context) (*models.LibraryFacets, error)
	GetPublicPrompt(ctx context.Context, id string) (*models.Prompt, error)
	RelatedPrompts(ctx context.Context, prompt *models.Prompt, limit int) ([]models.Prompt, error)

	ListUserPrompts(ctx context.Context, token, userId string, filter models.PromptFilter) ([]models.Prompt, error)
	CreatePrompt(ctx context.Context, token, userId string, input models.PromptInput) (*models.Prompt, error)
	UpdatePrompt(ctx context.Context, token, userId, id string, input models.PromptInput) (*models.Prompt, error)
	DeletePrompt(ctx context.Context, token, userId, id string) error

	ListCollections(ctx context.Context, token, userId string) ([]models.Collection, error)
	CreateCollection(ctx context.Context, token, userId string, input models.CollectionInput) (*models.Collection, error)
	GetCollection(ctx context.Context, token, userId, id string) (*models.Collection, error)
	DeleteCollection(ctx context.Context, token, userId, id string) error
	ListCollectionPrompts(ctx context.Context, token, collectionId string) ([]models.CollectionPrompt, error)
	AddPromptToCollection(ctx context.Context, token, collectionId, promptId string) (*models.CollectionPrompt, error)
	RemovePromptFromCollection(ctx context.Context, token, collectionId, promptId string) error

	GetProfile(ctx context.Context, token, userId string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, token string, user models.User, input models.ProfileInput) (*models.Profile, error)
}

type LibraryHandler struct {
	store  LibraryStore
	logger *slog.Logger
}

func NewLibraryHandler(store LibraryStore, logger *slog.Logger) *LibraryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryHandler{
		store:  store,
		logger: logger,
	}
}

// RequireUser resolves the bearer token to a user and aborts with 401 otherwise.
func (h *LibraryHandler) RequireUser(c *gin.Context) {
	header := c.GetHeader(authorizationHeaderKey)
	if !strings.HasPrefix(header, bearerPrefix) {
		utils.ProcessUnauthorized(c)
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	user, err := h.store.GetUser(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, supabase.ErrUnauthorized) {
			h.logger.Error("failed to resolve access token", "error", err)
		}
		utils.ProcessUnauthorized(c)
		return
	}

	c.Set(userContextKey, user)
	c.Set(tokenContextKey, token)
	c.Next()
}

func (h *LibraryHandler) ListLibrary(c *gin.Context) {
	filter := models.PromptFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
		Tags:     queryList(c, "tags"),
	}

	prompts, err := h.store.ListPublicPrompts(c.Request.Context(), filter)
	if err != nil {
		h.processStoreError(c, err, "prompts")
		return
	}
	c.JSON(http.StatusOK, prompts)
}

func (h *LibraryHandler) Facets(c *gin.Context) {
	facets, err := h.store.LibraryFacets(c.Request.Context())
	if err != nil {
		h.processStoreError(c, err, "facets")
		return
	}
	c.JSON(http.StatusOK, facets)
}

func (h *LibraryHandler) GetPrompt(c *gin.Context) {
	ctx := c.Request.Context()
	prompt, err := h.store.GetPublicPrompt(ctx, c.Param("id"))
	if err != nil {
		h.processStoreError(c, err, "prompt")
		return
	}

	related, err := h.store.RelatedPrompts(ctx, prompt, relatedPromptsLimit)
	if err != nil {
		h.logger.Warn("failed to load related prompts", "promptId", prompt.Id, "error", err)
		related = []models.Prompt{}
	}
	c.JSON(http.StatusOK, models.PromptDetails{Prompt: *prompt, Related: related})
}

func (h *LibraryHandler) ListMyPrompts(c *gin.Context) {
	user, token := currentUser(c)

	filter := models.PromptFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Visibility: models.Visibility(c.Query("visibility")),
	}
	if filter.Visibility == "all" {
		filter.Visibility = models.VisibilityAll
	}
	switch filter.Visibility {
	case models.VisibilityAll, models.VisibilityPublic, models.VisibilityPrivate:
	default:
		utils.ProcessValidationFailed(c, []string{"visibility: expected one of all, public, private"})
		return
	}

	prompts, err := h.store.ListUserPrompts(c.Request.Context(), token, user.Id, filter)
	if err != nil {
		h.processStoreError(c, err, "prompts")
		return
	}
	c.JSON(http.StatusOK, prompts)
}

func (h *LibraryHandler) CreatePrompt(c *gin.Context) {
	user, token := currentUser(c)

	var input models.PromptInput
	if !h.bind(c, &input) {
		return
	}

	prompt, err := h.store.CreatePrompt(c.Request.Context(), token, user.Id, input)
	if err != nil {
		h.processStoreError(c, err, "prompt")
		return
	}
	c.JSON(http.StatusCreated, prompt)
}

func (h *LibraryHandler) UpdatePrompt(c *gin.Context) {
	user, token := currentUser(c)

	var input models.PromptInput
	if !h.bind(c, &input) {
		return
	}

	prompt, err := h.store.UpdatePrompt(c.Request.Context(), token, user.Id, c.Param("id"), input)
	if err != nil {
		h.processStoreError(c, err, "prompt")
		return
	}
	c.JSON(http.StatusOK, prompt)
}

func (h *LibraryHandler) DeletePrompt(c *gin.Context) {
	user, token := currentUser(c)

	if err := h.store.DeletePrompt(c.Request.Context(), token, user.Id, c.Param("id")); err != nil {
		h.processStoreError(c, err, "prompt")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) ListCollections(c *gin.Context) {
	user, token := currentUser(c)

	collections, err := h.store.ListCollections(c.Request.Context(), token, user.Id)
	if err != nil {
		h.processStoreError(c, err, "collections")
		return
	}
	c.JSON(http.StatusOK, collections)
}

func (h *LibraryHandler) CreateCollection(c *gin.Context) {
	user, token := currentUser(c)

	var input models.CollectionInput
	if !h.bind(c, &input) {
		return
	}

	collection, err := h.store.CreateCollection(c.Request.Context(), token, user.Id, input)
	if err != nil {
		h.processStoreError(c, err, "collection")
		return
	}
	c.JSON(http.StatusCreated, collection)
}

func (h *LibraryHandler) GetCollection(c *gin.Context) {
	user, token := currentUser(c)
	ctx := c.Request.Context()

	collection, err := h.store.GetCollection(ctx, token, user.Id, c.Param("id"))
	if err != nil {
		h.processStoreError(c, err, "collection")
		return
	}

	entries, err := h.store.ListCollectionPrompts(ctx, token, collection.Id)
	if err != nil {
		h.processStoreError(c, err, "collection prompts")
		return
	}
	c.JSON(http.StatusOK, models.CollectionDetails{Collection: *collection, Prompts: entries})
}

func (h *LibraryHandler) DeleteCollection(c *gin.Context) {
	user, token := currentUser(c)

	if err := h.store.DeleteCollection(c.Request.Context(), token, user.Id, c.Param("id")); err != nil {
		h.processStoreError(c, err, "collection")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) AddCollectionPrompt(c *gin.Context) {
	user, token := currentUser(c)
	ctx := c.Request.Context()

	collection, err := h.store.GetCollection(ctx, token, user.Id, c.Param("id"))
	if err != nil {
		h.processStoreError(c, err, "collection")
		return
	}

	entry, err := h.store.AddPromptToCollection(ctx, token, collection.Id, c.Param("promptId"))
	if err != nil {
		h.processStoreError(c, err, "prompt")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *LibraryHandler) RemoveCollectionPrompt(c *gin.Context) {
	user, token := currentUser(c)
	ctx := c.Request.Context()

	collection, err := h.store.GetCollection(ctx, token, user.Id, c.Param("id"))
	if err != nil {
		h.processStoreError(c, err, "collection")
		return
	}

	if err := h.store.RemovePromptFromCollection(ctx, token, collection.Id, c.Param("promptId")); err != nil {
		h.processStoreError(c, err, "prompt")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile returns the caller's profile, or a bare one built from the
// auth record when no profile row exists yet.
func (h *LibraryHandler) GetProfile(c *gin.Context) {
	user, token := currentUser(c)

	profile, err := h.store.GetProfile(c.Request.Context(), token, user.Id)
	if errors.Is(err, supabase.ErrNotFound) {
		c.JSON(http.StatusOK, models.Profile{Id: user.Id, Email: user.Email})
		return
	}
	if err != nil {
		h.processStoreError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *LibraryHandler) UpdateProfile(c *gin.Context) {
	user, token := currentUser(c)

	var input models.ProfileInput
	if !h.bind(c, &input) {
		return
	}

	profile, err := h.store.UpsertProfile(c.Request.Context(), token, *user, input)
	if err != nil {
		h.processStoreError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// bind decodes and validates the JSON body into input, answering 400 on failure.
func (h *LibraryHandler) bind(c *gin.Context, input interface{}) bool {
	err := c.ShouldBindJSON(input)
	if err == nil {
		return true
	}

	var fieldErrors validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrors):
		utils.ProcessValidationFailed(c, bindingDetails(fieldErrors, input))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		utils.ProcessValidationFailed(c, []string{typeErr.Field + ": Expected " + typeErr.Type.String() + ", received " + typeErr.Value})
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		utils.ProcessInvalidJSON(c)
	default:
		h.logger.Info("library body rejected", "error", err)
		utils.ProcessInvalidJSON(c)
	}
	return false
}

// bindingDetails renders validator failures using the JSON field names of input.
func bindingDetails(fieldErrors validator.ValidationErrors, input interface{}) []string {
	inputType := reflect.TypeOf(input)
	for inputType.Kind() == reflect.Pointer {
		inputType = inputType.Elem()
	}

	details := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		name := fieldError.Field()
		if field, ok := inputType.FieldByName(fieldError.StructField()); ok {
			if tag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]; tag != "" {
				name = tag
			}
		}

		message := "failed " + fieldError.Tag() + " validation"
		switch fieldError.Tag() {
		case "required":
			message = "is required"
		case "max":
			message = "must be at most " + fieldError.Param() + " characters"
		case "url":
			message = "must be a valid URL"
		}
		details = append(details, name+": "+message)
	}
	return details
}

func (h *LibraryHandler) processStoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, supabase.ErrNotFound):
		utils.ProcessNotFound(c, what)
	case errors.Is(err, supabase.ErrUnauthorized):
		utils.ProcessUnauthorized(c)
	default:
		h.logger.Error("library store call failed", "path", c.FullPath(), "error", err)
		utils.ProcessGenericInternalError(c)
	}
}

func currentUser(c *gin.Context) (*models.User, string) {
	user, _ := c.MustGet(userContextKey).(*models.User)
	return user, c.GetString(tokenContextKey)
}

// queryList accepts both repeated parameters and comma separated values.
func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, value := range strings.Split(raw, ",") {
			if value = strings.TrimSpace(value); value != "" {
				values = append(values, value)
			}
		}
	}
	return values
}
