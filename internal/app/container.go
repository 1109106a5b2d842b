package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/lexdrill/internal/adapter/httpapi"
	"github.com/eslsoft/lexdrill/internal/infrastructure/config"
	"github.com/eslsoft/lexdrill/internal/infrastructure/server"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Logger *logrus.Logger
	Server *server.Server
}

func provideAuthenticator(cfg *config.Config) *httpapi.Authenticator {
	return httpapi.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.DevUserID)
}
