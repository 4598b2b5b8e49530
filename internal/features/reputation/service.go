// Package reputation — service.go содержит бизнес-логику репутации:
// учёт вклада, начисление очков репутации и смену периодов.
package reputation

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/store"
)

// BadgeEvaluator проверяет пороги значков после изменения очков.
// Реализуется пакетом badges; вызывается в той же транзакции.
type BadgeEvaluator interface {
	EvaluateBadges(tx *store.Tx, account string, totalPoints uint64) error
}

// Service управляет репутацией.
type Service struct {
	repo      *Repository
	admin     string
	evaluator BadgeEvaluator
}

// NewService создаёт сервис репутации.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, admin: cfg.AdminAccount}
}

// SetBadgeEvaluator подключает проверку значков. Без неё очки начисляются
// без проверки порогов.
func (s *Service) SetBadgeEvaluator(e BadgeEvaluator) {
	s.evaluator = e
}

// EnsureProfile создаёт профиль аккаунта, если его ещё нет.
// Возвращает true, если профиль создан в этой транзакции.
func (s *Service) EnsureProfile(tx *store.Tx, account string) (bool, error) {
	if err := common.CheckAccount(account); err != nil {
		return false, err
	}
	_, ok, err := s.repo.GetProfile(tx, account)
	if err != nil || ok {
		return false, err
	}
	periods, err := s.repo.GetPeriods(tx)
	if err != nil {
		return false, err
	}
	p := Profile{
		Month:     periods.Month,
		Year:      periods.Year,
		CreatedAt: tx.Height(),
	}
	if err := s.repo.SaveProfile(tx, account, p); err != nil {
		return false, err
	}
	log.WithField("account", account).Debug("Профиль создан")
	return true, nil
}

// RecordContribution учитывает вклад amount единиц в категорию category.
// Очки = amount × множитель категории; они добавляются к общему, месячному
// и годовому счёту профиля. Вызывать может сам аккаунт или администратор.
func (s *Service) RecordContribution(tx *store.Tx, caller, account string, category uint8, amount uint64) error {
	if caller != account && caller != s.admin {
		return fmt.Errorf("вклад за %q от %q: %w", account, caller, common.ErrNotAuthorized)
	}
	cat, err := LookupCategory(category)
	if err != nil {
		return err
	}
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	score, err := common.MulAmount(amount, cat.Multiplier)
	if err != nil {
		return err
	}
	if _, err := s.EnsureProfile(tx, account); err != nil {
		return err
	}

	p, _, err := s.repo.GetProfile(tx, account)
	if err != nil {
		return err
	}
	if p.TotalScore, err = common.AddAmount(p.TotalScore, score); err != nil {
		return err
	}
	if p.MonthlyScore, err = common.AddAmount(p.MonthlyScore, score); err != nil {
		return err
	}
	if p.YearlyScore, err = common.AddAmount(p.YearlyScore, score); err != nil {
		return err
	}
	p.LastActivity = tx.Height()

	c, err := s.repo.GetContribution(tx, account, category)
	if err != nil {
		return err
	}
	if c.Total, err = common.AddAmount(c.Total, amount); err != nil {
		return err
	}
	if c.Monthly, err = common.AddAmount(c.Monthly, amount); err != nil {
		return err
	}
	if c.Yearly, err = common.AddAmount(c.Yearly, amount); err != nil {
		return err
	}
	c.LastContribution = tx.Height()

	if err := s.repo.SaveProfile(tx, account, p); err != nil {
		return err
	}
	if err := s.repo.SaveContribution(tx, account, category, c); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account":  account,
		"category": cat.Name,
		"amount":   amount,
		"score":    score,
	}).Debug("Вклад учтён")
	return nil
}

// AddReputationPoints начисляет очки за подтверждённое действие категории:
// очки действия × multiplier, +1 к счётчику действий и вес категории к
// надёжности. Затем проверяет пороги значков с новым итогом.
func (s *Service) AddReputationPoints(tx *store.Tx, account string, category uint8, multiplier uint64) error {
	cat, err := LookupCategory(category)
	if err != nil {
		return err
	}
	if multiplier == 0 {
		return fmt.Errorf("нулевой множитель: %w", common.ErrInvalidAmount)
	}
	if err := common.CheckAccount(account); err != nil {
		return err
	}
	points, err := common.MulAmount(cat.ActionPoints, multiplier)
	if err != nil {
		return err
	}

	rec, ok, err := s.repo.GetRecord(tx, account)
	if err != nil {
		return err
	}
	if !ok {
		rec = Record{Reliability: ReliabilityBaseline, CreatedAt: tx.Height()}
	}
	if rec.TotalPoints, err = common.AddAmount(rec.TotalPoints, points); err != nil {
		return err
	}
	rec.VerifiedActions++
	if rec.Reliability, err = common.AddAmount(rec.Reliability, cat.ReliabilityWeight); err != nil {
		return err
	}
	rec.UpdatedAt = tx.Height()

	if err := s.repo.SaveRecord(tx, account, rec); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account": account,
		"points":  points,
		"total":   rec.TotalPoints,
	}).Debug("Очки репутации начислены")

	if s.evaluator == nil {
		return nil
	}
	return s.evaluator.EvaluateBadges(tx, account, rec.TotalPoints)
}

// ResetMonthly переводит леджер в следующий месячный период.
// Месячные поля аккаунтов не обнуляются.
func (s *Service) ResetMonthly(tx *store.Tx, caller string) (Periods, error) {
	return s.advance(tx, caller, func(p *Periods) { p.Month++ })
}

// ResetYearly переводит леджер в следующий годовой период.
// Годовые поля аккаунтов не обнуляются.
func (s *Service) ResetYearly(tx *store.Tx, caller string) (Periods, error) {
	return s.advance(tx, caller, func(p *Periods) { p.Year++ })
}

func (s *Service) advance(tx *store.Tx, caller string, next func(p *Periods)) (Periods, error) {
	if caller != s.admin {
		return Periods{}, fmt.Errorf("смена периода от %q: %w", caller, common.ErrNotAuthorized)
	}
	p, err := s.repo.GetPeriods(tx)
	if err != nil {
		return Periods{}, err
	}
	next(&p)
	if err := s.repo.SavePeriods(tx, p); err != nil {
		return Periods{}, err
	}
	log.WithFields(log.Fields{"month": p.Month, "year": p.Year}).Info("Период сменён")
	return p, nil
}

// Profile возвращает профиль аккаунта или ErrNotFound.
func (s *Service) Profile(tx *store.Tx, account string) (Profile, error) {
	p, ok, err := s.repo.GetProfile(tx, account)
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return Profile{}, fmt.Errorf("профиль %q: %w", account, common.ErrNotFound)
	}
	return p, nil
}

// Contribution возвращает вклад аккаунта в категорию.
func (s *Service) Contribution(tx *store.Tx, account string, category uint8) (Contribution, error) {
	if _, err := LookupCategory(category); err != nil {
		return Contribution{}, err
	}
	return s.repo.GetContribution(tx, account, category)
}

// Reputation возвращает запись репутации или ErrNotFound.
func (s *Service) Reputation(tx *store.Tx, account string) (Record, error) {
	rec, ok, err := s.repo.GetRecord(tx, account)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("репутация %q: %w", account, common.ErrNotFound)
	}
	return rec, nil
}

// Periods возвращает текущие периоды.
func (s *Service) Periods(tx *store.Tx) (Periods, error) {
	return s.repo.GetPeriods(tx)
}
