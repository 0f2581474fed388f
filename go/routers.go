package inventoryserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers served by the router.
type ApiHandleFunctions struct {
	// Routes for the InventoryAPI part of the API
	InventoryAPI InventoryAPI
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, middleware...)
}

// NewRouterWithGinEngine adds the routes to an existing engine. Middleware applies to the
// inventory routes only; probes and metrics stay unauthenticated.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if handleFunctions.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handleFunctions.Metrics))
	}
	group := router.Group("/", middleware...)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			group.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			group.POST(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"Adjust",
			http.MethodPost,
			"/admin/inventory/adjust",
			handleFunctions.InventoryAPI.Adjust,
		},
		{
			"Health",
			http.MethodGet,
			"/admin/inventory/health",
			handleFunctions.InventoryAPI.Health,
		},
		{
			"ListAdjustments",
			http.MethodGet,
			"/admin/inventory/adjustments",
			handleFunctions.InventoryAPI.ListAdjustments,
		},
	}
}
