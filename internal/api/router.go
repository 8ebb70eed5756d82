package api

import (
	"github.com/banksampah/waste-ledger/internal/api/handler"
	"github.com/banksampah/waste-ledger/internal/api/middleware"
	"github.com/banksampah/waste-ledger/internal/api/spec"
	"github.com/banksampah/waste-ledger/internal/config"
	"github.com/banksampah/waste-ledger/internal/idempotency"
	"github.com/banksampah/waste-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Router struct {
	cfg           *config.Config
	logger        *zap.Logger
	db            *pgxpool.Pool
	idemStore     *idempotency.Store
	redis         redis.Cmdable
	depositSvc    *service.DepositService
	withdrawalSvc *service.WithdrawalService
	memberSvc     *service.MemberService
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *pgxpool.Pool,
	idemStore *idempotency.Store,
	redisClient redis.Cmdable,
	depositSvc *service.DepositService,
	withdrawalSvc *service.WithdrawalService,
	memberSvc *service.MemberService,
) *Router {
	return &Router{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		idemStore:     idemStore,
		redis:         redisClient,
		depositSvc:    depositSvc,
		withdrawalSvc: withdrawalSvc,
		memberSvc:     memberSvc,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	depositHandler := handler.NewDepositHandler(api.depositSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(api.withdrawalSvc)
	memberHandler := handler.NewMemberHandler(api.memberSvc)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get("/healthz/live", healthHandler.Live)
		r.Get("/healthz/ready", healthHandler.Ready)
		r.Get("/openapi.yaml", spec.OpenAPIHandler())
	})
	r.Handle("/metrics", promhttp.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Get("/v1/members/{id}/balance", memberHandler.GetBalance)
		r.Get("/v1/members/{id}/statement", memberHandler.GetStatement)

		// Ledger mutations require an Idempotency-Key.
		r.Group(func(r chi.Router) {
			r.Use(middleware.IdempotencyMiddleware(api.idemStore, api.logger))
			r.Post("/v1/deposits", depositHandler.RecordBatch)
			r.Post("/v1/withdrawals", withdrawalHandler.Record)
		})
	})

	return r
}
