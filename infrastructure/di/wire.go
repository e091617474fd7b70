//go:build wireinject
// +build wireinject

package di

import (
	"net/http"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mysre-backend/application/services"
	"mysre-backend/infrastructure/assistant"
	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/infrastructure/storage"
	"mysre-backend/pkg/auth"
)

// Container holds all application dependencies.
type Container struct {
	Config    *config.Config
	Dynamic   *config.DynamicProvider
	Logger    *zap.Logger
	DB        *gorm.DB
	Resolver  auth.SessionResolver
	Users     *repository.UserRepository
	Avatars   storage.AvatarStore
	Assistant *assistant.Client
	Progress  *services.ProgressBroadcaster
	Handler   http.Handler
}

// SuperSet is the main provider set containing all providers.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDynamicProvider,
	ProvideDB,
	ProvideSessionResolver,
	ProvideAvatarStore,
	ProvideAssistantClient,
	ProvideUserRepository,
	ProvideArticleRepository,
	ProvideGraphRepository,
	ProvideDraftRepository,
	ProvideSessionRepository,
	ProvideTelemetryRepository,
	ProvideGraphService,
	ProvideProgressBroadcaster,
	ProvideHandlers,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
