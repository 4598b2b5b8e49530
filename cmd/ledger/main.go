// Package main — точка входа леджера.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"serotonyl.ru/eco-ledger/internal/app"
	"serotonyl.ru/eco-ledger/internal/config"
)

func main() {
	// Настраиваем логирование
	setupLogging()

	log.Info("=== Леджер запускается ===")

	// Загружаем конфигурацию из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	// Устанавливаем уровень логирования и файл логов из конфига
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}
	if cfg.AppLogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.AppLogFile,
			MaxSize:    cfg.AppLogMaxSizeMB,
			MaxBackups: cfg.AppLogMaxBackups,
			Compress:   true,
		}
		defer rotator.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}

	// Контекст отменяется сигналом остановки (Ctrl+C, docker stop)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем приложение (хранилище, леджер, планировщик, метрики)
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}
	defer application.Close()

	// Запускаем планировщик задач (cron)
	if application.Scheduler != nil {
		if err := application.Scheduler.Start(ctx); err != nil {
			log.WithError(err).Fatal("Не удалось запустить планировщик")
		}
		defer application.Scheduler.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return application.ServeMetrics(gctx, cfg.AppShutdownTimeout)
	})

	head := application.Ledger.Head()
	log.WithFields(log.Fields{
		"env":     cfg.AppEnv,
		"backend": cfg.StoreBackend,
		"height":  head.Height,
	}).Info("=== Леджер готов к работе ===")

	// Ждём сигнала остановки или ошибки сервера метрик
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Леджер остановлен с ошибкой")
	}

	log.Info("=== Леджер остановлен ===")
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
