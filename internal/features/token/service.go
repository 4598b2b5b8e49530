// Package token — service.go содержит бизнес-логику токена:
// чеканку, переводы, разрешения и выплаты с кастодиального счёта.
// Все методы работают внутри транзакции хранилища и либо меняют
// состояние целиком, либо возвращают ошибку до первой записи.
package token

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/store"
)

// Service управляет токеном наград.
type Service struct {
	repo      *Repository
	admin     string // Единственный, кто может чеканить
	custodian string // Собственный счёт леджера (пул наград)
}

// NewService создаёт новый сервис токена.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		admin:     cfg.AdminAccount,
		custodian: cfg.CustodyAccount,
	}
}

// Custodian возвращает кастодиальный счёт леджера.
func (s *Service) Custodian() string {
	return s.custodian
}

// Mint чеканит amount токенов на счёт recipient.
// Только администратор. Повторный вызов чеканит повторно.
func (s *Service) Mint(tx *store.Tx, caller, recipient string, amount uint64) error {
	if caller != s.admin {
		return fmt.Errorf("чеканка от %q: %w", caller, common.ErrNotAuthorized)
	}
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	if err := common.CheckAccount(recipient); err != nil {
		return err
	}

	supply, err := s.repo.GetSupply(tx)
	if err != nil {
		return err
	}
	newSupply, err := common.AddAmount(supply.Total, amount)
	if err != nil {
		return err
	}
	balance, err := s.repo.GetBalance(tx, recipient)
	if err != nil {
		return err
	}
	// Баланс не больше объёма, поэтому переполнение объёма проверено выше
	if err := s.repo.SetBalance(tx, recipient, balance.Amount+amount); err != nil {
		return err
	}
	if err := s.repo.SetSupply(tx, newSupply); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"recipient": recipient,
		"amount":    amount,
		"height":    tx.Height(),
	}).Debug("Чеканка подготовлена")
	return nil
}

// Transfer переводит токены со счёта sender на счёт recipient.
// Переводить может только сам владелец: caller обязан совпадать с sender.
// Общий объём не меняется.
func (s *Service) Transfer(tx *store.Tx, caller, sender, recipient string, amount uint64) error {
	if caller != sender {
		return fmt.Errorf("перевод со счёта %q от %q: %w", sender, caller, common.ErrNotAuthorized)
	}
	// Кастодиальный счёт двигается только через Release
	if sender == s.custodian {
		return fmt.Errorf("перевод с кастодиального счёта: %w", common.ErrNotAuthorized)
	}
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	if err := common.CheckAccount(recipient); err != nil {
		return err
	}
	return s.move(tx, sender, recipient, amount, MoveTransfer)
}

// TransferFrom переводит токены owner → recipient в пределах разрешения,
// выданного owner для spender. Разрешение уменьшается на amount.
func (s *Service) TransferFrom(tx *store.Tx, spender, owner, recipient string, amount uint64) error {
	if owner == s.custodian {
		return fmt.Errorf("списание с кастодиального счёта: %w", common.ErrNotAuthorized)
	}
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	if err := common.CheckAccount(recipient); err != nil {
		return err
	}

	allowance, err := s.repo.GetAllowance(tx, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Amount < amount {
		return fmt.Errorf("нужно %d, разрешено %d: %w", amount, allowance.Amount, common.ErrInsufficientAllowance)
	}
	if err := s.move(tx, owner, recipient, amount, MoveTransferFrom); err != nil {
		return err
	}
	return s.repo.SetAllowance(tx, owner, spender, allowance.Amount-amount)
}

// Approve устанавливает разрешение owner → spender, перезаписывая прежнее.
// Ноль отзывает разрешение.
func (s *Service) Approve(tx *store.Tx, owner, spender string, amount uint64) error {
	if err := common.CheckAccount(owner); err != nil {
		return err
	}
	if err := common.CheckAccount(spender); err != nil {
		return err
	}
	if owner == s.custodian {
		return fmt.Errorf("разрешение с кастодиального счёта: %w", common.ErrNotAuthorized)
	}
	return s.repo.SetAllowance(tx, owner, spender, amount)
}

// Release выплачивает amount с кастодиального счёта на recipient.
// Вызывается распределителем наград при получении накопленной награды.
func (s *Service) Release(tx *store.Tx, recipient string, amount uint64) error {
	if amount == 0 {
		return common.ErrInvalidAmount
	}
	if err := common.CheckAccount(recipient); err != nil {
		return err
	}
	return s.move(tx, s.custodian, recipient, amount, MoveRelease)
}

// move списывает amount с from и зачисляет на to.
func (s *Service) move(tx *store.Tx, from, to string, amount uint64, kind string) error {
	src, err := s.repo.GetBalance(tx, from)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("нужно %d, есть %d: %w", amount, src.Amount, common.ErrInsufficientBalance)
	}
	if from == to {
		return nil
	}

	dst, err := s.repo.GetBalance(tx, to)
	if err != nil {
		return err
	}
	// Сумма балансов не больше общего объёма, переполнения здесь быть не может
	if err := s.repo.SetBalance(tx, from, src.Amount-amount); err != nil {
		return err
	}
	if err := s.repo.SetBalance(tx, to, dst.Amount+amount); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"kind":   kind,
		"from":   from,
		"to":     to,
		"amount": amount,
	}).Debug("Перевод подготовлен")
	return nil
}

// BalanceOf возвращает баланс аккаунта.
func (s *Service) BalanceOf(tx *store.Tx, account string) (uint64, error) {
	b, err := s.repo.GetBalance(tx, account)
	if err != nil {
		return 0, err
	}
	return b.Amount, nil
}

// AllowanceOf возвращает разрешение owner → spender.
func (s *Service) AllowanceOf(tx *store.Tx, owner, spender string) (uint64, error) {
	a, err := s.repo.GetAllowance(tx, owner, spender)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// TotalSupply возвращает общий объём в обращении.
func (s *Service) TotalSupply(tx *store.Tx) (uint64, error) {
	sp, err := s.repo.GetSupply(tx)
	if err != nil {
		return 0, err
	}
	return sp.Total, nil
}
