/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the tips
engine, the event hub and the host monitor into the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"WellnessTips_V1.0/internal/admin"
	"WellnessTips_V1.0/internal/config"
	"WellnessTips_V1.0/internal/utility"
	"WellnessTips_V1.0/internal/wellness"
	"github.com/labstack/echo/v4"
)

const (
	serviceName        = "Mental Health Burnout Detection - AI Tips Service"
	serviceShortName   = "AI Tips Service"
	serviceVersion     = "1.0.0"
	serviceDescription = "AI-powered wellness recommendations"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// allowOrigins feeds the CORS middleware.
	allowOrigins []string

	// startTime is used for uptime reporting.
	startTime time.Time

	engine  *wellness.Engine
	hub     *utility.Hub
	monitor *admin.Monitor

	// Echo is the underlying web framework instance.
	*echo.Echo
}

// New builds the Server from its dependencies.
func New(cfg *config.Config, startTime time.Time, engine *wellness.Engine, hub *utility.Hub, monitor *admin.Monitor) *Server {
	return &Server{
		port:         cfg.Port,
		allowOrigins: cfg.AllowOrigins,
		startTime:    startTime,
		engine:       engine,
		hub:          hub,
		monitor:      monitor,
	}
}

// HTTPServer returns a configured *http.Server with production-ready
// network timeouts. WriteTimeout leaves room for a slow model call.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}
