package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-reservation/internal/api"
	"github.com/sanosuguru/go-airline-reservation/internal/api/handler"
	"github.com/sanosuguru/go-airline-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-airline-reservation/internal/application"
	"github.com/sanosuguru/go-airline-reservation/internal/config"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/gateway"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/postgres"
	rediscache "github.com/sanosuguru/go-airline-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-airline-reservation/internal/worker"
)

func main() {
	// 設定読み込み
	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(cfg.Env)
	logger.Set(log)
	defer logger.Sync()

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	bookingRepo := postgres.NewBookingRepository(db)
	flightRepo := postgres.NewFlightRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	loyaltyRepo := postgres.NewLoyaltyRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Redisキャッシュ（無効時はnilのまま）
	var cache *rediscache.AvailabilityCache
	if cfg.Redis.Enabled {
		redisClient := rediscache.NewClient(&cfg.Redis)
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rediscache.Ping(ctx, redisClient); err != nil {
			logger.Warn("Redis接続に失敗したためキャッシュなしで起動", zap.Error(err))
		} else {
			cache = rediscache.NewAvailabilityCache(redisClient, cfg.Redis.CacheTTL)
		}
		cancel()
	}

	// Kafkaプロデューサー（無効時はnilのまま)
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
	}

	// 決済ゲートウェイ
	paymentGateway := gateway.NewMockGateway(cfg.Gateway.FailureRate, cfg.Gateway.ProcessingDelay)

	// サービス
	bookingOpts := []application.BookingServiceOption{application.WithBookingMetrics(m)}
	if cache != nil {
		bookingOpts = append(bookingOpts, application.WithAvailabilityCache(cache))
	}
	if producer != nil {
		bookingOpts = append(bookingOpts, application.WithEventProducer(producer))
	}
	bookingService := application.NewBookingService(
		txManager, bookingRepo, flightRepo, seatRepo, passengerRepo, loyaltyRepo,
		bookingOpts...,
	)

	paymentOpts := []application.PaymentServiceOption{application.WithPaymentMetrics(m)}
	if cache != nil {
		paymentOpts = append(paymentOpts, application.WithPaymentCache(cache))
	}
	if producer != nil {
		paymentOpts = append(paymentOpts, application.WithPaymentEventProducer(producer))
	}
	paymentService := application.NewPaymentService(
		txManager, paymentRepo, bookingRepo, flightRepo, seatRepo, loyaltyRepo, paymentGateway,
		paymentOpts...,
	)

	var flightOpts []application.FlightServiceOption
	if cache != nil {
		flightOpts = append(flightOpts, application.WithFlightCache(cache))
	}
	if producer != nil {
		flightOpts = append(flightOpts, application.WithFlightEventProducer(producer))
	}
	flightService := application.NewFlightService(
		txManager, flightRepo, seatRepo, bookingRepo, loyaltyRepo,
		flightOpts...,
	)

	passengerService := application.NewPassengerService(txManager, passengerRepo, loyaltyRepo)

	// Echo インスタンス作成
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Validator = api.NewValidator()

	// ミドルウェア設定
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	flightHandler := handler.NewFlightHandler(flightService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	passengerHandler := handler.NewPassengerHandler(passengerService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/aircraft", flightHandler.CreateAircraft)
	v1.GET("/aircraft", flightHandler.ListAircraft)

	v1.POST("/flights", flightHandler.Create)
	v1.GET("/flights", flightHandler.List)
	v1.GET("/flights/:id", flightHandler.GetByID)
	v1.GET("/flights/:id/seats", flightHandler.GetSeats)
	v1.GET("/flights/:id/availability", flightHandler.GetAvailability)
	v1.POST("/flights/:id/cancel", flightHandler.Cancel)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.GET("/bookings/reference/:reference", bookingHandler.GetByReference)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	v1.POST("/bookings/:id/payment", paymentHandler.Process)
	v1.GET("/bookings/:id/payment", paymentHandler.GetByBooking)

	v1.GET("/payments/:id", paymentHandler.GetByID)
	v1.POST("/payments/:id/refund", paymentHandler.Refund)

	v1.POST("/passengers", passengerHandler.Create)
	v1.GET("/passengers", passengerHandler.List)
	v1.GET("/passengers/:id", passengerHandler.GetByID)
	v1.GET("/passengers/:id/loyalty", passengerHandler.GetLoyaltyAccount)
	v1.GET("/passengers/:passenger_id/bookings", bookingHandler.GetPassengerBookings)

	// Prometheusメトリクスエンドポイント
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(&cfg.Metrics))

	// 滞留予約スイーパー起動
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()

	sweeper := worker.NewStaleBookingSweeper(
		bookingService,
		cfg.Worker.SweepInterval,
		cfg.Worker.ExpireAfter,
		cfg.Worker.BatchSize,
	)
	go sweeper.Start(sweeperCtx)

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
