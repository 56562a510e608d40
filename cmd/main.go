package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Leganyst/field-booking/internal/auth"
	"github.com/Leganyst/field-booking/internal/config"
	"github.com/Leganyst/field-booking/internal/db"
	"github.com/Leganyst/field-booking/internal/obs"
	"github.com/Leganyst/field-booking/internal/repository"
	"github.com/Leganyst/field-booking/internal/service"
	"github.com/Leganyst/field-booking/internal/transport/grpcapi"
	"github.com/Leganyst/field-booking/internal/transport/httpapi"
)

func main() {
	// 1. Конфиг из env (.env подхватывается, если есть).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.OTLPEndpoint, cfg.Env, logger)
	if err != nil {
		logger.Fatal("init tracer", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("load timezone", zap.Error(err))
	}

	// 2. БД через GORM и миграции.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		logger.Fatal("init db", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("sql DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, gormDB, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	// 3. Репозитории.
	fieldRepo := repository.NewGormFieldRepository(gormDB)
	scheduleRepo := repository.NewGormScheduleRepository(gormDB)
	customerRepo := repository.NewGormCustomerRepository(gormDB)
	packageRepo := repository.NewGormPackageRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	membershipRepo := repository.NewGormMembershipRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	// 4. Сервисы.
	authSvc := service.NewAuthService(userRepo, auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL()), logger)
	if _, err := authSvc.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}

	app := httpapi.NewApp(httpapi.Deps{
		Availability: service.NewAvailabilityService(fieldRepo, scheduleRepo, bookingRepo, membershipRepo, logger),
		Bookings:     service.NewBookingService(gormDB, customerRepo, scheduleRepo, bookingRepo, eventRepo, logger),
		Memberships:  service.NewMembershipService(gormDB, scheduleRepo, membershipRepo, eventRepo, logger),
		Schedules:    service.NewScheduleService(gormDB, fieldRepo, scheduleRepo, eventRepo, logger),
		Catalog:      service.NewCatalogService(fieldRepo, customerRepo, packageRepo, logger),
		Auth:         authSvc,
		Location:     loc,
		Logger:       logger,
	})

	// 5. Служебный gRPC: health + reflection.
	grpcServer := grpcapi.NewServer(sqlDB, logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen grpc", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}
	go grpcServer.Watch(ctx, 15*time.Second)
	go func() {
		logger.Info("gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
			stop()
		}
	}()

	// 6. HTTP API.
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := app.Listen(cfg.HTTPAddr); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("http serve", zap.Error(err))
			stop()
		}
	}()

	// 7. Грейсфул-шатдаун по сигналу.
	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.Shutdown()
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown", zap.Error(err))
	}
}
