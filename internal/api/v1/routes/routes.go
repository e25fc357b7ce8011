// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/productbird/connector/internal/api/middleware"
	"github.com/productbird/connector/internal/api/v1/handlers"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Description routes
	SubmitBatch = "SubmitBatch"
	Regenerate  = "Regenerate"
	Callback    = "Callback"
	CheckStatus = "CheckStatus"
	Preflight   = "Preflight"
	Apply       = "Apply"
	Decline     = "Decline"
	UndoDecline = "UndoDecline"
	ClearRecord = "ClearRecord"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v1 routes.
//
// Every endpoint under /descriptions requires the management token except the
// callback, which authenticates with its own HMAC signature and must stay
// reachable by the generation service.
func RegisterRoutes(
	app *fiber.App,
	descriptionHandler *handlers.DescriptionHandler,
	managementToken string,
) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	// API v1 routes
	v1 := app.Group(APIv1Prefix)

	descriptions := v1.Group("/descriptions")
	descriptions.Post("/callback", descriptionHandler.Callback).Name(Callback)

	auth := middleware.ManagementAuth(managementToken)
	descriptions.Get("/status", auth, descriptionHandler.CheckStatus).Name(CheckStatus)
	descriptions.Get("/preflight", auth, descriptionHandler.Preflight).Name(Preflight)
	descriptions.Post("/bulk", auth, descriptionHandler.SubmitBatch).Name(SubmitBatch)
	descriptions.Post("/apply", auth, descriptionHandler.Apply).Name(Apply)
	descriptions.Post("/decline", auth, descriptionHandler.Decline).Name(Decline)
	descriptions.Post("/undo-decline", auth, descriptionHandler.UndoDecline).Name(UndoDecline)
	descriptions.Put("/regenerate", auth, descriptionHandler.Regenerate).Name(Regenerate)
	descriptions.Delete("/:id/meta", auth, descriptionHandler.Clear).Name(ClearRecord)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		routeCache = make(map[string]string)

		app := fiber.New()
		mockHandler := &handlers.DescriptionHandler{}
		RegisterRoutes(app, mockHandler, "")

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				routeCache[route.Name] = route.Path
			}
		}
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()

	// Initialize cache if needed
	if routeCache == nil {
		routeCacheMu.RUnlock()
		initRouteCache()
		routeCacheMu.RLock()
	}

	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, value)
	}

	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Description route helpers

// SubmitBatchURL returns the URL for submitting a bulk generation batch
func SubmitBatchURL() string {
	return BuildURL(SubmitBatch, nil, nil)
}

// RegenerateURL returns the URL for regenerating a single item
func RegenerateURL() string {
	return BuildURL(Regenerate, nil, nil)
}

// CallbackURL returns the URL for the completion webhook
func CallbackURL(queryParams url.Values) string {
	return BuildURL(Callback, nil, queryParams)
}

// CheckStatusURL returns the URL for a status check
func CheckStatusURL(queryParams url.Values) string {
	return BuildURL(CheckStatus, nil, queryParams)
}

// PreflightURL returns the URL for a preflight check
func PreflightURL(queryParams url.Values) string {
	return BuildURL(Preflight, nil, queryParams)
}

// ApplyURL returns the URL for applying a draft
func ApplyURL() string {
	return BuildURL(Apply, nil, nil)
}

// DeclineURL returns the URL for declining a draft
func DeclineURL() string {
	return BuildURL(Decline, nil, nil)
}

// UndoDeclineURL returns the URL for undoing a decline
func UndoDeclineURL() string {
	return BuildURL(UndoDecline, nil, nil)
}

// ClearRecordURL returns the URL for clearing an item's generation state
func ClearRecordURL(id string) string {
	return BuildURL(ClearRecord, map[string]string{"id": id}, nil)
}
