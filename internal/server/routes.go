package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"WellnessTips_V1.0/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/", s.rootHandler)
	e.GET("/health", s.healthHandler)
	e.POST("/tips", s.GenerateTipsHandler)
	e.GET("/cache/stats", s.cacheStatsHandler)

	e.GET("/admin/server", s.monitor.GetServerHealthHandler)
	e.GET("/ws/events", s.eventsSocketHandler)

	s.Echo = e
	return e
}

func (s *Server) rootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":     serviceName,
		"status":      "running",
		"version":     serviceVersion,
		"description": serviceDescription,
		"endpoints": map[string]string{
			"health":      "/health",
			"tips":        "/tips",
			"cache_stats": "/cache/stats",
			"server":      "/admin/server",
			"events":      "/ws/events",
		},
	})
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"service":          serviceShortName,
		"version":          serviceVersion,
		"openai_available": s.engine.ModelEnabled(),
		"uptime_seconds":   utility.Round(time.Since(s.startTime).Seconds(), 2),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

func (s *Server) cacheStatsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Cache().Stats())
}

// eventsSocketHandler streams engine events and periodic stats to the client.
func (s *Server) eventsSocketHandler(c echo.Context) error {
	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	id := s.hub.Register(ws)
	defer s.hub.Unregister(id)

	// We don't expect messages FROM the client, but we must read to keep socket open
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("client_ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		return next(c)
	}
}

// httpErrorHandler keeps client errors as they are and hides the details
// of everything else behind a generic 500 body.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		_ = c.JSON(he.Code, map[string]string{"error": fmt.Sprint(he.Message)})
		return
	}

	utility.GetLogger(c).Error().Err(err).Msg("Unhandled error")
	_ = c.JSON(http.StatusInternalServerError, internalErrorBody())
}

func internalErrorBody() map[string]string {
	return map[string]string{
		"error":     "Internal server error",
		"message":   "An unexpected error occurred while processing your request",
		"timestamp": time.Now().Format(time.RFC3339),
	}
}
