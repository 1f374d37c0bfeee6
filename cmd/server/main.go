package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ecopulse/ecopulse-backend/internal/cache"
	"github.com/ecopulse/ecopulse-backend/internal/config"
	"github.com/ecopulse/ecopulse-backend/internal/db"
	"github.com/ecopulse/ecopulse-backend/internal/goroutine"
	httpHandlers "github.com/ecopulse/ecopulse-backend/internal/http/handlers"
	"github.com/ecopulse/ecopulse-backend/internal/http/middleware"
	httpRouter "github.com/ecopulse/ecopulse-backend/internal/http/router"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/persistence"
	"github.com/ecopulse/ecopulse-backend/internal/logger"
	"github.com/ecopulse/ecopulse-backend/internal/sensor"
	"github.com/ecopulse/ecopulse-backend/internal/service"
	"github.com/ecopulse/ecopulse-backend/internal/storage"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/complaint"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/problem"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/reward"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/user"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/vote"
	"github.com/ecopulse/ecopulse-backend/internal/ws"
)

const ratingCacheTTL = time.Minute

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка загрузки конфигурации")
	}

	if cfg.IsProduction() {
		logger.Init("info")
	} else {
		logger.Init("debug")
		logger.SetTextFormatter()
	}
	log := logger.WithComponent("main")

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.WithError(err).Fatal("ошибка миграций")
	}

	// Redis необязателен.
	var (
		rdb       *redis.Client
		sharedTTL cache.Cache
	)
	if cfg.Redis.Addr != "" {
		rdb, err = db.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Fatal("ошибка подключения к redis")
		}
		defer rdb.Close()
		sharedTTL = cache.NewRedisCache(rdb, "ecopulse:")
	} else {
		mem := cache.NewMemoryCache(time.Minute)
		defer mem.Close()
		sharedTTL = mem
	}

	limitStore, err := middleware.NewRateLimitStore(rdb)
	if err != nil {
		log.WithError(err).Fatal("не удалось создать хранилище rate limit")
	}

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.WithError(err).Fatal("не удалось подготовить файловое хранилище")
	}

	store := persistence.NewStore(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	goroutine.SafeGo(hub.Run)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(store, tokenManager, cfg.Gamification.ReferralBonus, hub)

	if cfg.SeedDefaultUsers {
		seeder := service.NewSeedService(store, cfg.Sensors.CityName, cfg.Sensors.CityLat, cfg.Sensors.CityLng, cfg.Gamification.ReportReward)
		if _, err := seeder.Seed(ctx, service.DefaultSeedAccounts); err != nil {
			log.WithError(err).Fatal("ошибка начального заполнения")
		}
	}

	rewards := problem.Rewards{
		ReportReward:       cfg.Gamification.ReportReward,
		ReportExperience:   cfg.Gamification.ReportExperience,
		CompleteExperience: cfg.Gamification.CompleteExperience,
	}

	// Показания датчиков.
	sensors := sensor.NewProvider(
		sensor.NewOpenWeatherClient(cfg.Sensors.BaseURL, cfg.Sensors.OpenWeatherAPIKey, cfg.Sensors.Timeout),
		sharedTTL,
		cfg.Sensors.CacheTTL,
	)

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Health: httpHandlers.NewHealthHandler(healthChecks(dbConn, rdb)),
		Auth:   httpHandlers.NewAuthHandler(authService),
		Problem: httpHandlers.NewProblemHandler(httpHandlers.ProblemUseCases{
			Report:   problem.NewReportProblemUseCase(store, rewards, hub),
			Claim:    problem.NewClaimProblemUseCase(store, hub),
			Release:  problem.NewReleaseProblemUseCase(store),
			Complete: problem.NewCompleteProblemUseCase(store, rewards, hub),
			Reject:   problem.NewRejectProblemUseCase(store, hub),
			Delete:   problem.NewDeleteProblemUseCase(store),
			List:     problem.NewListProblemsUseCase(store.Problems()),
			Get:      problem.NewGetProblemUseCase(store),
			Comment:  problem.NewAddCommentUseCase(store),
		}, photoStorage),
		Vote: httpHandlers.NewVoteHandler(vote.NewVoteUseCase(store), vote.NewGetVoteStatusUseCase(store)),
		Complaint: httpHandlers.NewComplaintHandler(
			complaint.NewFileComplaintUseCase(store),
			complaint.NewResolveComplaintUseCase(store),
			complaint.NewListPendingUseCase(store.Complaints()),
		),
		Shop: httpHandlers.NewShopHandler(
			reward.NewPlaceOrderUseCase(store, hub),
			reward.NewUpdateOrderStatusUseCase(store, hub),
			reward.NewListOrdersUseCase(store),
			reward.NewGetBalanceUseCase(store),
			reward.NewAdjustBalanceUseCase(store, hub),
		),
		User: httpHandlers.NewUserHandler(
			user.NewGetProfileUseCase(store.Users()),
			user.NewUpdateProfileUseCase(store),
			user.NewCachedRating(user.NewRatingUseCase(store.Users()), sharedTTL, ratingCacheTTL),
			user.NewListUsersUseCase(store.Users()),
			user.NewToggleRoleUseCase(store),
			photoStorage,
		),
		Sensor:    httpHandlers.NewSensorHandler(sensors, cfg.Sensors.CityLat, cfg.Sensors.CityLng),
		Analytics: httpHandlers.NewAnalyticsHandler(problem.NewAnalyticsUseCase(store.Problems(), store.Users(), cfg.Sensors.CityName)),
		WS:        httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, httpRouter.Deps{
		Tokens:     tokenManager,
		Users:      store.Users(),
		LimitStore: limitStore,
		UploadsDir: photoStorage.Root(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	log.Infof("HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("сервер завершился с ошибкой")
	}
}

func healthChecks(dbConn *sqlx.DB, rdb *redis.Client) map[string]httpHandlers.Pinger {
	checks := map[string]httpHandlers.Pinger{"database": dbConn}
	if rdb != nil {
		checks["redis"] = httpHandlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return checks
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.WithComponent("main").WithError(err).Warn("ошибка закрытия базы")
	}
}
