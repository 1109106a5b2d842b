//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/lexdrill/internal/adapter/httpapi"
	"github.com/eslsoft/lexdrill/internal/adapter/repository"
	"github.com/eslsoft/lexdrill/internal/infrastructure/config"
	"github.com/eslsoft/lexdrill/internal/infrastructure/database"
	"github.com/eslsoft/lexdrill/internal/infrastructure/server"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	repository.NewWordRepository,
	repository.NewProgressRepository,
	repository.NewUserRepository,
	repository.NewReviewLogRepository,
	repository.NewDailyStatRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewReviewUsecase,
	usecase.NewWordUsecase,
	usecase.NewStatsUsecase,
)

var handlerSet = wire.NewSet(
	provideAuthenticator,
	httpapi.NewReviewHandler,
	httpapi.NewWordHandler,
	httpapi.NewStatsHandler,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		handlerSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
