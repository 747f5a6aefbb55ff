package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIdHeaderKey = "X-Request-ID"

// RouterDeps holds what NewRouter wires. Library is nil when no record store
// is configured, and the library routes are then not mounted.
type RouterDeps struct {
	RefineService  RefineService
	Provider       string
	Library        LibraryStore
	LibraryLimiter gin.HandlerFunc
	Metrics        http.Handler
	Logger         *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestId())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		ExposeHeaders:   []string{requestIdHeaderKey},
	}))

	healthHandler := NewHealthHandler(deps.Provider, deps.RefineService.Configured)
	router.GET("/health", healthHandler.IsHealthy)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	refineHandler := NewRefineHandler(deps.RefineService, deps.Logger)
	router.POST("/api/refine", refineHandler.Refine)
	router.OPTIONS("/api/refine", refineHandler.Options)

	if deps.Library != nil {
		mountLibrary(router, NewLibraryHandler(deps.Library, deps.Logger), deps.LibraryLimiter)
	}

	return router
}

func mountLibrary(router *gin.Engine, libraryHandler *LibraryHandler, limiter gin.HandlerFunc) {
	api := router.Group("/api")
	api.GET("/library", libraryHandler.ListLibrary)
	api.GET("/library/facets", libraryHandler.Facets)
	api.GET("/prompts/:id", libraryHandler.GetPrompt)

	me := api.Group("/me", libraryHandler.RequireUser)
	if limiter != nil {
		me.Use(limiter)
	}
	me.GET("/prompts", libraryHandler.ListMyPrompts)
	me.POST("/prompts", libraryHandler.CreatePrompt)
	me.PUT("/prompts/:id", libraryHandler.UpdatePrompt)
	me.DELETE("/prompts/:id", libraryHandler.DeletePrompt)

	me.GET("/collections", libraryHandler.ListCollections)
	me.POST("/collections", libraryHandler.CreateCollection)
	me.GET("/collections/:id", libraryHandler.GetCollection)
	me.DELETE("/collections/:id", libraryHandler.DeleteCollection)
	me.POST("/collections/:id/prompts/:promptId", libraryHandler.AddCollectionPrompt)
	me.DELETE("/collections/:id/prompts/:promptId", libraryHandler.RemoveCollectionPrompt)

	me.GET("/profile", libraryHandler.GetProfile)
	me.PUT("/profile", libraryHandler.UpdateProfile)
}

// requestId tags every request with an id, reusing the caller's when present.
func requestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIdHeaderKey)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestId", id)
		c.Header(requestIdHeaderKey, id)
		c.Next()
	}
}
