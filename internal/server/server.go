package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sales-admin/internal/config"
	"sales-admin/internal/database"
	"sales-admin/internal/metrics"
	custommiddleware "sales-admin/internal/middleware"
	"sales-admin/internal/repository"
	"sales-admin/internal/service"
	"sales-admin/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) *Server {
	router := chi.NewRouter()
	location := cfg.Server.Location()

	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware(metrics.NewHTTPMetrics()))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.Server.IsProduction()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Handle("/metrics", promhttp.Handler())

	// Rate limiting is skipped when Redis is not configured
	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiter will fail open", zap.String("addr", addr), zap.Error(err))
		}
		cancel()
	}

	// Initialize repositories
	sqlDB := db.DB()
	userRepo := repository.NewUserRepository(sqlDB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(sqlDB)
	resetRepo := repository.NewPasswordResetRepository(sqlDB)
	customerRepo := repository.NewCustomerRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	statsRepo := repository.NewStatisticsRepository(sqlDB)

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, resetRepo, service.TokenConfig{
		Secret:         cfg.JWT.Secret,
		AccessTTL:      time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		RefreshTTL:     time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
		ResetTTL:       time.Duration(cfg.JWT.PasswordResetExpiry) * time.Minute,
		LogResetTokens: !cfg.Server.IsProduction(),
	}, logger)
	userService := service.NewUserService(userRepo, logger)
	customerService := service.NewCustomerService(customerRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	orderService := service.NewOrderService(orderRepo, customerRepo, userRepo, metrics.NewOrderMetrics(), logger)
	statsService := service.NewStatisticsService(statsRepo, location, time.Now)

	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:auth",
	}, logger)
	mw := transport.Middlewares{
		Auth:      custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger),
		Admin:     custommiddleware.RequireAdmin(logger),
		RateLimit: rateLimit,
	}

	// Register routes
	transport.NewAuthHandler(authService, userService, !cfg.Server.IsProduction(), logger).RegisterRoutes(router, mw)
	transport.NewUserHandler(userService, logger).RegisterRoutes(router, mw)
	transport.NewCustomerHandler(customerService, logger).RegisterRoutes(router, mw)
	transport.NewCategoryHandler(categoryService, logger).RegisterRoutes(router, mw)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, mw)
	transport.NewOrderHandler(orderService, statsService, location, logger).RegisterRoutes(router, mw)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "Route not found")
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
