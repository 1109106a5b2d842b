package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/lexdrill/internal/adapter/httpapi"
	"github.com/eslsoft/lexdrill/internal/infrastructure/config"
)

// Server wraps the echo instance and its route registrations.
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	echo   *echo.Echo
}

// NewServer assembles the HTTP server with all API routes mounted under
// /api/v1 behind the authenticator.
func NewServer(
	cfg *config.Config,
	logger *logrus.Logger,
	auth *httpapi.Authenticator,
	reviews *httpapi.ReviewHandler,
	words *httpapi.WordHandler,
	stats *httpapi.StatsHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(RequestLogger(logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1", auth.Middleware())
	reviews.Register(api)
	words.Register(api)
	stats.Register(api)

	return &Server{cfg: cfg, logger: logger, echo: e}
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.cfg.ListenAddr()).Info("http server listening")
	if err := s.echo.Start(s.cfg.ListenAddr()); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
