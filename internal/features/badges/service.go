// Package badges — service.go содержит логику выдачи значков, ведения
// каталогов и прогресса достижений.
package badges

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
	"serotonyl.ru/eco-ledger/internal/store"
)

// PointsGranter начисляет очки репутации за завершённое достижение.
type PointsGranter interface {
	AddReputationPoints(tx *store.Tx, account string, category uint8, multiplier uint64) error
}

// Service управляет значками и достижениями.
type Service struct {
	repo    *Repository
	points  PointsGranter
	admin   string
	onAward func(account string, badgeID uint64)
}

// NewService создаёт сервис значков.
func NewService(repo *Repository, points PointsGranter, cfg *config.Config) *Service {
	return &Service{repo: repo, points: points, admin: cfg.AdminAccount}
}

// SetAwardHook задаёт функцию, которая вызывается после коммита каждой выдачи.
func (s *Service) SetAwardHook(fn func(account string, badgeID uint64)) {
	s.onAward = fn
}

// Seed создаёт пороговые значки 1..4. Повторный вызов ничего не делает.
// Возвращает true, если каталог заполнен в этой транзакции.
func (s *Service) Seed(tx *store.Tx) (bool, error) {
	seeded, err := s.repo.IsSeeded(tx)
	if err != nil || seeded {
		return false, err
	}
	for i, th := range Thresholds {
		b := Badge{
			ID:          th.BadgeID,
			Name:        genesisBadges[i].name,
			Description: genesisBadges[i].description,
			Kind:        RequirePoints,
			Requirement: th.Points,
			Active:      true,
			CreatedAt:   tx.Height(),
		}
		if err := s.repo.SaveBadge(tx, b); err != nil {
			return false, err
		}
	}
	if err := s.repo.MarkSeeded(tx); err != nil {
		return false, err
	}
	log.WithField("badges", len(Thresholds)).Info("Каталог значков заполнен")
	return true, nil
}

// IsSeeded сообщает, выполнен ли генезис каталога.
func (s *Service) IsSeeded(tx *store.Tx) (bool, error) {
	return s.repo.IsSeeded(tx)
}

// EvaluateBadges выдаёт каждый пороговый значок, порог которого не больше
// totalPoints и который аккаунту ещё не выдан. Выключенные и ещё не
// созданные генезисом значки пропускаются. Уже выданные значки не меняются,
// поэтому повторный вызов безопасен.
func (s *Service) EvaluateBadges(tx *store.Tx, account string, totalPoints uint64) error {
	for _, th := range Thresholds {
		if totalPoints < th.Points {
			break
		}
		_, ok, err := s.repo.GetAward(tx, account, th.BadgeID)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		b, ok, err := s.repo.GetBadge(tx, th.BadgeID)
		if err != nil {
			return err
		}
		if !ok || !b.Active {
			continue
		}
		if err := s.grant(tx, account, th.BadgeID, ""); err != nil {
			return err
		}
	}
	return nil
}

// AwardBadge — ручная выдача значка администратором.
func (s *Service) AwardBadge(tx *store.Tx, caller, account string, badgeID uint64) error {
	if caller != s.admin {
		return fmt.Errorf("выдача значка от %q: %w", caller, common.ErrNotAuthorized)
	}
	if err := common.CheckAccount(account); err != nil {
		return err
	}
	if _, err := s.activeBadge(tx, badgeID); err != nil {
		return err
	}
	_, ok, err := s.repo.GetAward(tx, account, badgeID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("значок %d у %q: %w", badgeID, account, common.ErrAlreadyExists)
	}
	return s.grant(tx, account, badgeID, caller)
}

func (s *Service) grant(tx *store.Tx, account string, badgeID uint64, verifiedBy string) error {
	award := Award{BadgeID: badgeID, EarnedAt: tx.Height(), VerifiedBy: verifiedBy}
	if err := s.repo.CreateAward(tx, account, award); err != nil {
		return err
	}
	if s.onAward != nil {
		hook := s.onAward
		tx.AfterCommit(func() { hook(account, badgeID) })
	}
	log.WithFields(log.Fields{
		"account": account,
		"badge":   badgeID,
		"manual":  verifiedBy != "",
	}).Debug("Значок выдан")
	return nil
}

func (s *Service) activeBadge(tx *store.Tx, id uint64) (Badge, error) {
	b, ok, err := s.repo.GetBadge(tx, id)
	if err != nil {
		return Badge{}, err
	}
	if !ok || !b.Active {
		return Badge{}, fmt.Errorf("значок %d: %w", id, common.ErrNotFound)
	}
	return b, nil
}

// CreateBadge добавляет значок в каталог и возвращает его ID.
func (s *Service) CreateBadge(tx *store.Tx, caller, name, description string, kind RequirementKind, requirement uint64) (uint64, error) {
	if caller != s.admin {
		return 0, fmt.Errorf("создание значка от %q: %w", caller, common.ErrNotAuthorized)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("пустое имя значка: %w", common.ErrInvalidInput)
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("вид требования %q: %w", kind, common.ErrInvalidInput)
	}

	id, err := s.repo.NextBadgeID(tx)
	if err != nil {
		return 0, err
	}
	b := Badge{
		ID:          id,
		Name:        name,
		Description: description,
		Kind:        kind,
		Requirement: requirement,
		Active:      true,
		CreatedAt:   tx.Height(),
	}
	if err := s.repo.SaveBadge(tx, b); err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"badge": id, "name": name}).Info("Значок создан")
	return id, nil
}

// SetBadgeActive включает или отключает значок. Отключённый значок нельзя
// выдать вручную; уже выданные значки остаются у владельцев.
func (s *Service) SetBadgeActive(tx *store.Tx, caller string, id uint64, active bool) error {
	if caller != s.admin {
		return fmt.Errorf("изменение значка от %q: %w", caller, common.ErrNotAuthorized)
	}
	b, ok, err := s.repo.GetBadge(tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("значок %d: %w", id, common.ErrNotFound)
	}
	b.Active = active
	return s.repo.SaveBadge(tx, b)
}

// CreateAchievement добавляет достижение в каталог и возвращает его ID.
func (s *Service) CreateAchievement(tx *store.Tx, caller, name string, category uint8, pointReward uint64, requirement string) (uint64, error) {
	if caller != s.admin {
		return 0, fmt.Errorf("создание достижения от %q: %w", caller, common.ErrNotAuthorized)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("пустое имя достижения: %w", common.ErrInvalidInput)
	}
	if _, err := reputation.LookupCategory(category); err != nil {
		return 0, err
	}
	if pointReward == 0 {
		return 0, common.ErrInvalidAmount
	}

	id, err := s.repo.NextAchievementID(tx)
	if err != nil {
		return 0, err
	}
	a := Achievement{
		ID:          id,
		Name:        name,
		Category:    category,
		PointReward: pointReward,
		Requirement: requirement,
		Active:      true,
		CreatedAt:   tx.Height(),
	}
	if err := s.repo.SaveAchievement(tx, a); err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"achievement": id, "name": name}).Info("Достижение создано")
	return id, nil
}

// SetAchievementActive включает или отключает достижение.
func (s *Service) SetAchievementActive(tx *store.Tx, caller string, id uint64, active bool) error {
	if caller != s.admin {
		return fmt.Errorf("изменение достижения от %q: %w", caller, common.ErrNotAuthorized)
	}
	a, ok, err := s.repo.GetAchievement(tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("достижение %d: %w", id, common.ErrNotFound)
	}
	a.Active = active
	return s.repo.SaveAchievement(tx, a)
}

// UpdateAchievementProgress записывает прогресс аккаунта по достижению.
//
// progress >= 100 завершает достижение: прогресс становится 100, фиксируется
// высота завершения и начисляются очки репутации в категории достижения.
// Повторное завершение отклоняется с ErrAlreadyExists. Меньший прогресс
// после завершения сохраняется, но состояние Completed не снимается.
func (s *Service) UpdateAchievementProgress(tx *store.Tx, caller, account string, achievementID uint64, progress uint8) (Progress, error) {
	if caller != s.admin {
		return Progress{}, fmt.Errorf("прогресс от %q: %w", caller, common.ErrNotAuthorized)
	}
	if err := common.CheckAccount(account); err != nil {
		return Progress{}, err
	}
	ach, ok, err := s.repo.GetAchievement(tx, achievementID)
	if err != nil {
		return Progress{}, err
	}
	if !ok || !ach.Active {
		return Progress{}, fmt.Errorf("достижение %d: %w", achievementID, common.ErrNotFound)
	}
	p, err := s.repo.GetProgress(tx, account, achievementID)
	if err != nil {
		return Progress{}, err
	}

	if progress < MaxProgress {
		p.Value = progress
		return p, s.repo.SaveProgress(tx, account, achievementID, p)
	}

	if p.State == Completed {
		return Progress{}, fmt.Errorf("достижение %d у %q: %w", achievementID, account, common.ErrAlreadyExists)
	}
	p = Progress{Value: MaxProgress, State: Completed, CompletedAt: tx.Height()}
	if err := s.repo.SaveProgress(tx, account, achievementID, p); err != nil {
		return Progress{}, err
	}

	cat, err := reputation.LookupCategory(ach.Category)
	if err != nil {
		return Progress{}, err
	}
	multiplier := max(1, ach.PointReward/cat.ActionPoints)
	if err := s.points.AddReputationPoints(tx, account, ach.Category, multiplier); err != nil {
		return Progress{}, err
	}

	log.WithFields(log.Fields{
		"account":     account,
		"achievement": achievementID,
		"multiplier":  multiplier,
	}).Debug("Достижение завершено")
	return p, nil
}

// Badge возвращает значок каталога.
func (s *Service) Badge(tx *store.Tx, id uint64) (Badge, error) {
	b, ok, err := s.repo.GetBadge(tx, id)
	if err != nil {
		return Badge{}, err
	}
	if !ok {
		return Badge{}, fmt.Errorf("значок %d: %w", id, common.ErrNotFound)
	}
	return b, nil
}

// Achievement возвращает достижение каталога.
func (s *Service) Achievement(tx *store.Tx, id uint64) (Achievement, error) {
	a, ok, err := s.repo.GetAchievement(tx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !ok {
		return Achievement{}, fmt.Errorf("достижение %d: %w", id, common.ErrNotFound)
	}
	return a, nil
}

// Badges возвращает выданные аккаунту значки в порядке выдачи.
func (s *Service) Badges(tx *store.Tx, account string) ([]Award, error) {
	owned, err := s.repo.GetOwned(tx, account)
	if err != nil {
		return nil, err
	}
	awards := make([]Award, 0, len(owned))
	for _, id := range owned {
		a, ok, err := s.repo.GetAward(tx, account, id)
		if err != nil {
			return nil, err
		}
		if ok {
			awards = append(awards, a)
		}
	}
	return awards, nil
}

// HasBadge сообщает, выдан ли аккаунту значок.
func (s *Service) HasBadge(tx *store.Tx, account string, badgeID uint64) (bool, error) {
	_, ok, err := s.repo.GetAward(tx, account, badgeID)
	return ok, err
}

// Progress возвращает прогресс аккаунта по достижению.
func (s *Service) Progress(tx *store.Tx, account string, achievementID uint64) (Progress, error) {
	return s.repo.GetProgress(tx, account, achievementID)
}
