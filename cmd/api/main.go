package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendance-ledger/internal/config"
	"github.com/attendance-ledger/internal/database"
	"github.com/attendance-ledger/internal/handler"
	"github.com/attendance-ledger/internal/repository"
	"github.com/attendance-ledger/internal/service"
	"gorm.io/gorm"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	// Подключение к хранилищу и миграции
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectAttempts+5)*time.Second)
	db, err := database.Open(ctx, cfg.Database, logger)
	cancel()
	if err != nil {
		logger.Error("failed to open database",
			slog.String("driver", cfg.Database.Driver),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Все команды журнала проходят через одного писателя
	writer := repository.NewWriter(db)
	defer writer.Close()

	// Инициализация репозиториев
	empRepo := repository.NewEmployeeRepository(db, writer)
	attRepo := repository.NewAttendanceRepository(db, writer)

	// Инициализация сервисов
	notifier := service.NewNotifier(16)
	empService := service.NewEmployeeService(empRepo, notifier, service.SystemClock, cfg.Employee.DeleteMode)
	ledgerService := service.NewLedgerService(attRepo, empRepo, service.SystemClock)

	// Инициализация хендлеров
	empHandler := handler.NewEmployeeHandler(empService, logger)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, logger)
	eventsHandler := handler.NewEventsHandler(notifier, logger)

	// Настройка роутера
	router := handler.NewRouter(empHandler, ledgerHandler, eventsHandler, pinger(db), logger)
	httpHandler := router.Setup()

	// Настройка HTTP сервера. baseCtx отменяется при остановке,
	// чтобы SSE-потоки не держали Shutdown.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(stopStreams)

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting",
		slog.String("port", cfg.Server.Port),
		slog.String("driver", cfg.Database.Driver),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

func pinger(db *gorm.DB) handler.HealthChecker {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}
}
