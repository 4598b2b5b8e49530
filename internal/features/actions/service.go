// Package actions — service.go содержит логику отправки и подтверждения действий.
package actions

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/store"
)

// Reputation — то, что реестру нужно от движка репутации.
type Reputation interface {
	EnsureProfile(tx *store.Tx, account string) (bool, error)
	AddReputationPoints(tx *store.Tx, account string, category uint8, multiplier uint64) error
}

// RewardMinter чеканит награду за подтверждённое действие.
type RewardMinter interface {
	MintOnVerification(tx *store.Tx, account string, points uint64) error
}

// Service управляет реестром действий.
type Service struct {
	repo      *Repository
	rep       Reputation
	rewards   RewardMinter
	admin     string
	minPoints uint64
	maxPoints uint64
}

// NewService создаёт сервис действий.
func NewService(repo *Repository, rep Reputation, rewards RewardMinter, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		rep:       rep,
		rewards:   rewards,
		admin:     cfg.AdminAccount,
		minPoints: cfg.ActionsMinPoints,
		maxPoints: cfg.ActionsMaxPoints,
	}
}

// SubmitAction сохраняет неподтверждённое действие и возвращает его ID.
func (s *Service) SubmitAction(tx *store.Tx, submitter string, actionType ActionType, points uint64) (uint64, error) {
	if err := common.CheckAccount(submitter); err != nil {
		return 0, err
	}
	if _, ok := actionType.Category(); !ok {
		return 0, fmt.Errorf("тип %q: %w", actionType, common.ErrInvalidAction)
	}
	if points < s.minPoints || points > s.maxPoints {
		return 0, fmt.Errorf("%d вне [%d, %d]: %w", points, s.minPoints, s.maxPoints, common.ErrInvalidPoints)
	}

	if _, err := s.rep.EnsureProfile(tx, submitter); err != nil {
		return 0, err
	}
	id, err := s.repo.NextID(tx)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.Count(tx, submitter)
	if err != nil {
		return 0, err
	}

	a := Action{
		ID:          id,
		Submitter:   submitter,
		Type:        actionType,
		Points:      points,
		SubmittedAt: tx.Height(),
		Status:      Unverified,
	}
	if err := s.repo.Save(tx, a); err != nil {
		return 0, err
	}
	if err := s.repo.SetCount(tx, submitter, count+1); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"submitter": submitter,
		"action":    id,
		"type":      actionType,
		"points":    points,
	}).Debug("Действие отправлено")
	return id, nil
}

// VerifyAction подтверждает действие (submitter, id). В той же транзакции
// начисляет очки репутации в категорию действия и чеканит награду, равную
// очкам действия. Ошибка любого шага отменяет подтверждение целиком.
func (s *Service) VerifyAction(tx *store.Tx, verifier, submitter string, id uint64) (Action, error) {
	if verifier != s.admin {
		return Action{}, fmt.Errorf("подтверждение от %q: %w", verifier, common.ErrNotAuthorized)
	}
	a, ok, err := s.repo.Get(tx, submitter, id)
	if err != nil {
		return Action{}, err
	}
	if !ok {
		return Action{}, fmt.Errorf("действие %d у %q не найдено: %w", id, submitter, common.ErrInvalidAction)
	}
	if a.Status != Unverified {
		return Action{}, fmt.Errorf("действие %d у %q: %w", id, submitter, common.ErrAlreadyVerified)
	}
	category, ok := a.Type.Category()
	if !ok {
		return Action{}, fmt.Errorf("тип %q: %w", a.Type, common.ErrInvalidAction)
	}

	a.Status = Verified
	a.VerifiedBy = verifier
	a.VerifiedAt = tx.Height()
	if err := s.repo.Save(tx, a); err != nil {
		return Action{}, err
	}
	if err := s.rep.AddReputationPoints(tx, submitter, category, 1); err != nil {
		return Action{}, err
	}
	if err := s.rewards.MintOnVerification(tx, submitter, a.Points); err != nil {
		return Action{}, err
	}

	log.WithFields(log.Fields{
		"submitter": submitter,
		"action":    id,
		"points":    a.Points,
	}).Debug("Действие подтверждено")
	return a, nil
}

// Action возвращает действие или ErrNotFound.
func (s *Service) Action(tx *store.Tx, submitter string, id uint64) (Action, error) {
	a, ok, err := s.repo.Get(tx, submitter, id)
	if err != nil {
		return Action{}, err
	}
	if !ok {
		return Action{}, fmt.Errorf("действие %d у %q: %w", id, submitter, common.ErrNotFound)
	}
	return a, nil
}

// ActionCount возвращает число отправленных аккаунтом действий.
func (s *Service) ActionCount(tx *store.Tx, account string) (uint64, error) {
	return s.repo.Count(tx, account)
}
