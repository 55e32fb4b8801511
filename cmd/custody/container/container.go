package container

import (
	"github.com/redis/go-redis/v9"

	"github.com/vaultrack/custody/cmd/custody/repository"
	"github.com/vaultrack/custody/cmd/custody/service"
	"github.com/vaultrack/custody/common/bootstrap"
	"github.com/vaultrack/custody/common/cache"
	"github.com/vaultrack/custody/common/ratelimit"
	rediscommon "github.com/vaultrack/custody/common/redis"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client
	RedisRaw   *redis.Client

	// Repositories
	HolderRepo *repository.HolderRepository
	AssetRepo  *repository.AssetRepository
	LedgerRepo *repository.CustodyEventRepository

	// Services
	CredentialService *service.CredentialService
	AssignmentService *service.AssignmentService
	AssetService      *service.AssetService
	HolderService     *service.HolderService
	ScanService       *service.ScanService
	AlertService      *service.AlertService
	ExportService     *service.ExportService

	// Rate limiter, nil when disabled
	RateLimiter *ratelimit.RateLimiter
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	// Create Redis client (raw)
	redisRaw := redis.NewClient(&redis.Options{
		Addr:     components.Config.RedisAddr(),
		Password: components.Config.Redis.Password,
		DB:       components.Config.Redis.DB,
	})

	// Wrap with common redis client for instrumentation and common operations
	redisClient := rediscommon.NewClient(redisRaw, components.Logger)

	// Initialize repositories
	holderRepo := repository.NewHolderRepository(components.DB)
	assetRepo := repository.NewAssetRepository(components.DB)
	ledgerRepo := repository.NewCustodyEventRepository(components.DB)

	// Credential tokens are cached in Redis so every checkpoint sees a
	// re-issued token immediately; a memory cache would go stale per replica.
	var tokenCache cache.Cache
	if components.Config.Credential.CacheEnabled {
		tokenCache = cache.NewRedisCache(redisClient)
	} else {
		tokenCache = cache.NewMemoryCache(components.Logger)
	}

	// Initialize services (bottom-up: dependencies first)
	credentialService := service.NewCredentialService(
		assetRepo,
		holderRepo,
		tokenCache,
		components.Config.Credential.CacheTTL,
		components.Logger,
	)
	assignmentService := service.NewAssignmentService(
		assetRepo,
		holderRepo,
		ledgerRepo,
		credentialService,
		components.Logger,
	)
	assetService := service.NewAssetService(
		assetRepo,
		ledgerRepo,
		assignmentService,
		credentialService,
		components.Logger,
	)
	holderService := service.NewHolderService(holderRepo, assignmentService, components.Logger)
	scanService := service.NewScanService(assetRepo, holderRepo, ledgerRepo, components.Logger)
	alertService := service.NewAlertService(assetRepo, ledgerRepo, components.Logger)
	exportService := service.NewExportService(ledgerRepo, components.Logger)

	var rateLimiter *ratelimit.RateLimiter
	if components.Config.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(redisRaw, components.Logger)
	}

	return &Container{
		Components:        components,
		Redis:             redisClient,
		RedisRaw:          redisRaw,
		HolderRepo:        holderRepo,
		AssetRepo:         assetRepo,
		LedgerRepo:        ledgerRepo,
		CredentialService: credentialService,
		AssignmentService: assignmentService,
		AssetService:      assetService,
		HolderService:     holderService,
		ScanService:       scanService,
		AlertService:      alertService,
		ExportService:     exportService,
		RateLimiter:       rateLimiter,
	}, nil
}
