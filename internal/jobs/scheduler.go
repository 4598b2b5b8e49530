// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: смену месячного и годового периода.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
	"serotonyl.ru/eco-ledger/internal/metrics"
)

// Имена задач для логов и метрик.
const (
	JobMonthlyReset = "monthly_reset"
	JobYearlyReset  = "yearly_reset"
)

// PeriodResetter — операции леджера, которые запускает планировщик.
type PeriodResetter interface {
	ResetMonthly(ctx context.Context, caller string) (reputation.Periods, error)
	ResetYearly(ctx context.Context, caller string) (reputation.Periods, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron    *cron.Cron
	ledger  PeriodResetter
	cfg     *config.Config
	metrics *metrics.LedgerMetrics
}

// NewScheduler создаёт планировщик задач в часовом поясе из конфигурации.
func NewScheduler(ledger PeriodResetter, cfg *config.Config, m *metrics.LedgerMetrics) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC", cfg.AppTimezone)
		loc = time.UTC
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		ledger:  ledger,
		cfg:     cfg,
		metrics: m,
	}
}

// Start регистрирует задачи и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	// Смена периодов от имени администратора: период закрывает сам леджер
	if _, err := s.cron.AddFunc(s.cfg.JobsMonthlyResetSpec, func() {
		s.run(ctx, JobMonthlyReset, s.resetMonthly)
	}); err != nil {
		return fmt.Errorf("расписание %s: %w", JobMonthlyReset, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.JobsYearlyResetSpec, func() {
		s.run(ctx, JobYearlyReset, s.resetYearly)
	}); err != nil {
		return fmt.Errorf("расписание %s: %w", JobYearlyReset, err)
	}

	s.cron.Start()
	log.WithField("timezone", s.cron.Location().String()).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

func (s *Scheduler) resetMonthly(ctx context.Context) error {
	p, err := s.ledger.ResetMonthly(ctx, s.cfg.AdminAccount)
	if err != nil {
		return err
	}
	log.WithField("month", p.Month).Info("[CRON] Открыт новый месячный период")
	return nil
}

func (s *Scheduler) resetYearly(ctx context.Context) error {
	p, err := s.ledger.ResetYearly(ctx, s.cfg.AdminAccount)
	if err != nil {
		return err
	}
	log.WithField("year", p.Year).Info("[CRON] Открыт новый годовой период")
	return nil
}

// run выполняет задачу с идентификатором запуска и перехватом паники.
func (s *Scheduler) run(ctx context.Context, job string, fn func(ctx context.Context) error) {
	runID := uuid.NewString()
	entry := log.WithFields(log.Fields{"job": job, "run_id": runID})
	defer recoverJob(entry, s.metrics, job)

	start := time.Now()
	entry.Debug("[CRON] Запуск задачи")
	if err := fn(ctx); err != nil {
		s.metrics.ObserveJobRun(job, "error")
		entry.WithError(err).Error("[CRON] Ошибка задачи")
		return
	}
	s.metrics.ObserveJobRun(job, "ok")
	entry.WithField("elapsed", time.Since(start)).Debug("[CRON] Задача выполнена")
}
