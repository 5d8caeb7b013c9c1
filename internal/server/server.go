// internal/server/server.go
//
// Read-only local dashboard: publishes the view-model's derived rows as JSON
// so presentation layers can consume {rows, state} tri-states without talking
// to the backend themselves.
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ajmalkv/rollsops/internal/cache"
	"github.com/ajmalkv/rollsops/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Services struct {
	POService    *service.POService
	UsageService *service.UsageService
	Refresher    *cache.Refresher
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(Logger())
	router.Use(Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	dashboard := router.Group("/api/v1/dashboard")
	{
		dashboard.GET("/purchase-orders", getPurchaseOrders(services))
		dashboard.GET("/usage", getUsage(services))
		dashboard.GET("/owners/:id/vehicles", getOwnerVehicles(services))
		dashboard.GET("/districts", getDistricts(services))
		dashboard.POST("/refresh", postRefresh(services))
	}

	return router
}

func getPurchaseOrders(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := intQuery(c, "page", 1)
		limit := intQuery(c, "limit", 25)
		search := c.Query("search")

		rows, err := services.POService.List(c.Request.Context(), page, limit, search)
		if err != nil {
			errorResponse(c, http.StatusBadGateway, "failed to load purchase orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"state": services.Refresher.Status(services.POService.ListKey(page, limit)),
			"rows":  rows,
		})
	}
}

func getUsage(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := services.UsageService.Summary(c.Request.Context(), c.Query("search"))
		if err != nil {
			errorResponse(c, http.StatusBadGateway, "failed to load rolls usage")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"state":  services.Refresher.Status(services.UsageService.SummaryKey()),
			"totals": view.Totals,
			"rows":   view.Owners,
		})
	}
}

func getOwnerVehicles(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "invalid owner id")
			return
		}

		vehicles, err := services.UsageService.Vehicles(c.Request.Context(), ownerID)
		if err != nil {
			errorResponse(c, http.StatusBadGateway, "failed to load vehicle usage")
			return
		}

		c.JSON(http.StatusOK, gin.H{"rows": vehicles})
	}
}

func getDistricts(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"rows": services.POService.Districts(c.Request.Context()),
		})
	}
}

// postRefresh is the window-focus analog: re-fetch every tracked resource
// regardless of staleness.
func postRefresh(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.Refresher.RefreshAll(c.Request.Context())
		c.JSON(http.StatusAccepted, gin.H{"message": "refresh triggered"})
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
