// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт хранилище (PostgreSQL или память),
// применяет миграции, собирает леджер, планировщик и сервер метрик.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/db/postgres"
	"serotonyl.ru/eco-ledger/internal/jobs"
	"serotonyl.ru/eco-ledger/internal/ledger"
	"serotonyl.ru/eco-ledger/internal/metrics"
	"serotonyl.ru/eco-ledger/internal/store"
)

// App содержит все компоненты приложения.
type App struct {
	Ledger    *ledger.Ledger
	Scheduler *jobs.Scheduler // nil, если смена периодов выключена
	Metrics   *http.Server    // nil, если метрики выключены
	DB        *pgxpool.Pool   // nil для STORE_BACKEND=memory
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	// === 1. Хранилище ===
	backend, err := a.openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, backend)
	if err != nil {
		a.Close()
		return nil, err
	}

	// === 2. Метрики ===
	var m *metrics.LedgerMetrics
	if cfg.FeatureMetricsEnabled {
		m = metrics.Ledger()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		a.Metrics = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	// === 3. Леджер ===
	a.Ledger = ledger.New(st, cfg, m)
	if err := a.Ledger.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка инициализации леджера: %w", err)
	}

	// === 4. Планировщик задач ===
	if cfg.FeaturePeriodResetEnabled {
		a.Scheduler = jobs.NewScheduler(a.Ledger, cfg, m)
	}

	return a, nil
}

// openBackend выбирает бэкенд хранилища по STORE_BACKEND.
func (a *App) openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Warn("Состояние хранится в памяти и пропадёт при остановке")
		return store.NewMemory(), nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	a.DB = pool

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	backend := postgres.NewBackend(pool)
	if cfg.FeatureChainAuditEnabled {
		height, err := store.Audit(ctx, backend, 1000)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("проверка журнала: %w", err)
		}
		log.WithField("height", height).Info("Журнал коммитов проверен")
	}
	return backend, nil
}

// ServeMetrics отдаёт метрики до отмены ctx.
func (a *App) ServeMetrics(ctx context.Context, shutdownTimeout time.Duration) error {
	if a.Metrics == nil {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", a.Metrics.Addr).Info("Сервер метрик запущен")
		errCh <- a.Metrics.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("сервер метрик: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Metrics.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера метрик: %w", err)
	}
	log.Info("Сервер метрик остановлен")
	return nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001LedgerCommits},
		{2, migration002LedgerState},
	}

	for _, m := range migrations {
		applied, err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql)
		if err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		if applied {
			log.Infof("Миграция %d применена", m.version)
		}
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001LedgerCommits = `
CREATE TABLE IF NOT EXISTS ledger_commits (
    height BIGINT PRIMARY KEY,
    op VARCHAR(64) NOT NULL,
    prev_digest BYTEA,
    digest BYTEA NOT NULL,
    write_count INTEGER NOT NULL DEFAULT 0,
    committed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_commit_writes (
    height BIGINT NOT NULL REFERENCES ledger_commits(height),
    key TEXT NOT NULL,
    value BYTEA NOT NULL,
    PRIMARY KEY (height, key)
);
`

var migration002LedgerState = `
CREATE TABLE IF NOT EXISTS ledger_state (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    height BIGINT NOT NULL,
    updated_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ledger_state_height ON ledger_state(height);
`
