package di

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"mysre-backend/application/services"
	"mysre-backend/infrastructure/assistant"
	"mysre-backend/infrastructure/config"
	"mysre-backend/infrastructure/persistence"
	"mysre-backend/infrastructure/persistence/repository"
	"mysre-backend/infrastructure/storage"
	"mysre-backend/interfaces/http/rest"
	"mysre-backend/interfaces/http/rest/handlers"
	"mysre-backend/interfaces/http/rest/middleware"
	"mysre-backend/pkg/auth"
)

// ProvideLogger creates the process logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// ProvideDynamicProvider loads the runtime-tunable overrides file.
func ProvideDynamicProvider(cfg *config.Config, logger *zap.Logger) (*config.DynamicProvider, error) {
	return config.NewDynamicProvider(cfg.DynamicConfigPath, logger)
}

// ProvideDB opens the database and runs migrations.
func ProvideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return persistence.Open(cfg.DatabaseURL, logger)
}

// ProvideSessionResolver picks the auth backend: Supabase when configured,
// otherwise the locally-validated development JWT.
func ProvideSessionResolver(cfg *config.Config, logger *zap.Logger) (auth.SessionResolver, error) {
	if cfg.SupabaseConfigured() {
		return auth.NewSupabaseResolver(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	}
	logger.Warn("supabase not configured, using development JWT resolver")
	return auth.NewDevResolver(cfg.DevJWTSecret), nil
}

// ProvideAvatarStore picks the avatar backend the same way.
func ProvideAvatarStore(cfg *config.Config, logger *zap.Logger) (storage.AvatarStore, error) {
	if cfg.SupabaseConfigured() {
		return storage.NewSupabaseAvatarStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.AvatarBucket)
	}
	logger.Warn("supabase not configured, storing avatars on local disk")
	return storage.NewLocalAvatarStore("data/avatars")
}

// ProvideAssistantClient creates the AI microservice client.
func ProvideAssistantClient(cfg *config.Config, logger *zap.Logger) *assistant.Client {
	return assistant.NewClient(cfg.PyURL, logger)
}

// ProvideUserRepository creates the user repository.
func ProvideUserRepository(db *gorm.DB) *repository.UserRepository {
	return repository.NewUserRepository(db)
}

// ProvideArticleRepository creates the article repository.
func ProvideArticleRepository(db *gorm.DB) *repository.ArticleRepository {
	return repository.NewArticleRepository(db)
}

// ProvideGraphRepository creates the node/edge repository.
func ProvideGraphRepository(db *gorm.DB) *repository.GraphRepository {
	return repository.NewGraphRepository(db)
}

// ProvideDraftRepository creates the draft repository.
func ProvideDraftRepository(db *gorm.DB) *repository.DraftRepository {
	return repository.NewDraftRepository(db)
}

// ProvideSessionRepository creates the session repository.
func ProvideSessionRepository(db *gorm.DB) *repository.SessionRepository {
	return repository.NewSessionRepository(db)
}

// ProvideTelemetryRepository creates the telemetry repository.
func ProvideTelemetryRepository(db *gorm.DB) *repository.TelemetryRepository {
	return repository.NewTelemetryRepository(db)
}

// ProvideGraphService creates the node-or-article resolution service.
func ProvideGraphService(articles *repository.ArticleRepository, graph *repository.GraphRepository, logger *zap.Logger) *services.GraphService {
	return services.NewGraphService(articles, graph, logger)
}

// ProvideProgressBroadcaster creates the upload progress registry.
func ProvideProgressBroadcaster() *services.ProgressBroadcaster {
	return services.NewProgressBroadcaster()
}

// ProvideHandlers builds every REST handler.
func ProvideHandlers(
	users *repository.UserRepository,
	articles *repository.ArticleRepository,
	graph *repository.GraphRepository,
	drafts *repository.DraftRepository,
	sessions *repository.SessionRepository,
	telemetry *repository.TelemetryRepository,
	graphService *services.GraphService,
	progress *services.ProgressBroadcaster,
	client *assistant.Client,
	avatars storage.AvatarStore,
	dynamic *config.DynamicProvider,
	logger *zap.Logger,
) rest.Handlers {
	return rest.Handlers{
		Articles:      handlers.NewArticleHandler(articles, graph, graphService, logger),
		Graph:         handlers.NewGraphHandler(graph, graphService, logger),
		Drafts:        handlers.NewDraftHandler(drafts, logger),
		Brainstorming: handlers.NewBrainstormingSessionHandler(sessions, logger),
		Writer:        handlers.NewWriterSessionHandler(sessions, logger),
		Profile:       handlers.NewProfileHandler(users, avatars, progress, dynamic, logger),
		Telemetry:     handlers.NewTelemetryHandler(telemetry, logger),
		Assistant:     handlers.NewAssistantHandler(client, articles, dynamic, logger),
		Uploads:       handlers.NewUploadProgressHandler(progress, logger),
	}
}

// ProvideHTTPHandler assembles the router.
func ProvideHTTPHandler(
	cfg *config.Config,
	dynamic *config.DynamicProvider,
	db *gorm.DB,
	resolver auth.SessionResolver,
	users *repository.UserRepository,
	h rest.Handlers,
	logger *zap.Logger,
) http.Handler {
	authenticate := middleware.Authenticate(resolver, users, logger)
	return rest.Setup(cfg, dynamic, db, authenticate, h, logger)
}
