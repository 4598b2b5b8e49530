// Package config загружает конфигурацию леджера из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// а godotenv — для подгрузки .env при локальном запуске.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Допустимые значения STORE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Ledger ---
	// Единственный администратор, фиксируется при развёртывании.
	// Подтверждает действия, чеканит токены, управляет каталогами и выплатами.
	AdminAccount string `envconfig:"ADMIN_ACCOUNT" required:"true"`
	// Собственный (кастодиальный) счёт леджера, из которого выплачиваются награды.
	CustodyAccount string `envconfig:"LEDGER_CUSTODY_ACCOUNT" default:"ledger.escrow"`
	// Где хранится состояние: postgres или memory (для локальной отладки).
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"ledger"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"eco_ledger"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	// Пустое значение — логи только в stdout.
	AppLogFile         string        `envconfig:"APP_LOG_FILE"`
	AppLogMaxSizeMB    int           `envconfig:"APP_LOG_MAX_SIZE_MB" default:"100"`
	AppLogMaxBackups   int           `envconfig:"APP_LOG_MAX_BACKUPS" default:"5"`
	AppShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	// --- Actions ---
	ActionsMinPoints uint64 `envconfig:"ACTIONS_MIN_POINTS" default:"1"`
	ActionsMaxPoints uint64 `envconfig:"ACTIONS_MAX_POINTS" default:"1000"`

	// --- Jobs ---
	// Смена месячного периода: 1-е число, 00:00
	JobsMonthlyResetSpec string `envconfig:"JOBS_MONTHLY_RESET_SPEC" default:"0 0 1 * *"`
	// Смена годового периода: 1 января, 00:05 (после месячного)
	JobsYearlyResetSpec string `envconfig:"JOBS_YEARLY_RESET_SPEC" default:"5 0 1 1 *"`

	// --- Metrics ---
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// --- Feature Flags ---
	FeaturePeriodResetEnabled bool `envconfig:"FEATURE_PERIOD_RESET_ENABLED" default:"true"`
	FeatureMetricsEnabled     bool `envconfig:"FEATURE_METRICS_ENABLED" default:"true"`
	// Проверять хэш-цепочку журнала при старте (только postgres)
	FeatureChainAuditEnabled bool `envconfig:"FEATURE_CHAIN_AUDIT_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность значений после загрузки.
func (c *Config) Validate() error {
	c.AdminAccount = strings.TrimSpace(c.AdminAccount)
	c.CustodyAccount = strings.TrimSpace(c.CustodyAccount)
	if c.AdminAccount == "" {
		return fmt.Errorf("ADMIN_ACCOUNT не задан")
	}
	if c.CustodyAccount == "" {
		return fmt.Errorf("LEDGER_CUSTODY_ACCOUNT не задан")
	}
	if c.CustodyAccount == c.AdminAccount {
		return fmt.Errorf("LEDGER_CUSTODY_ACCOUNT не может совпадать с ADMIN_ACCOUNT")
	}
	if strings.Contains(c.AdminAccount, "/") || strings.Contains(c.CustodyAccount, "/") {
		return fmt.Errorf("идентификаторы аккаунтов не могут содержать '/'")
	}
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND должен быть %q или %q, получено %q", BackendPostgres, BackendMemory, c.StoreBackend)
	}
	if c.ActionsMinPoints == 0 {
		return fmt.Errorf("ACTIONS_MIN_POINTS должен быть > 0")
	}
	if c.ActionsMinPoints > c.ActionsMaxPoints {
		return fmt.Errorf("ACTIONS_MIN_POINTS (%d) больше ACTIONS_MAX_POINTS (%d)", c.ActionsMinPoints, c.ActionsMaxPoints)
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	if _, err := cron.ParseStandard(c.JobsMonthlyResetSpec); err != nil {
		return fmt.Errorf("JOBS_MONTHLY_RESET_SPEC: %w", err)
	}
	if _, err := cron.ParseStandard(c.JobsYearlyResetSpec); err != nil {
		return fmt.Errorf("JOBS_YEARLY_RESET_SPEC: %w", err)
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения, заполняет структуру Config.
func Load() (*Config, error) {
	// .env необязателен: в Docker всё приходит через окружение
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось прочитать .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
