package ledger

import (
	"context"
	"fmt"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
	"serotonyl.ru/eco-ledger/internal/store"
)

// RegisterAccount явно создаёт профиль аккаунта. Повторный вызов ничего не меняет.
func (l *Ledger) RegisterAccount(ctx context.Context, account string) error {
	return l.apply(ctx, OpRegisterAccount, func(tx *store.Tx) error {
		_, err := l.reputation.EnsureProfile(tx, account)
		return err
	})
}

// RecordContribution учитывает вклад в категорию. Вызывает сам аккаунт или администратор.
func (l *Ledger) RecordContribution(ctx context.Context, caller, account string, category uint8, amount uint64) error {
	return l.apply(ctx, OpRecordContribution, func(tx *store.Tx) error {
		return l.reputation.RecordContribution(tx, caller, account, category, amount)
	})
}

// AddReputationPoints — прямое начисление очков репутации администратором.
// Подтверждение действий и завершение достижений начисляют очки сами.
func (l *Ledger) AddReputationPoints(ctx context.Context, caller, account string, category uint8, multiplier uint64) error {
	return l.apply(ctx, OpAddReputationPoints, func(tx *store.Tx) error {
		if caller != l.admin {
			return fmt.Errorf("начисление очков от %q: %w", caller, common.ErrNotAuthorized)
		}
		return l.reputation.AddReputationPoints(tx, account, category, multiplier)
	})
}

// ResetMonthly открывает следующий месячный период. Только администратор.
func (l *Ledger) ResetMonthly(ctx context.Context, caller string) (reputation.Periods, error) {
	var p reputation.Periods
	err := l.apply(ctx, OpResetMonthly, func(tx *store.Tx) error {
		var err error
		p, err = l.reputation.ResetMonthly(tx, caller)
		return err
	})
	return p, err
}

// ResetYearly открывает следующий годовой период. Только администратор.
func (l *Ledger) ResetYearly(ctx context.Context, caller string) (reputation.Periods, error) {
	var p reputation.Periods
	err := l.apply(ctx, OpResetYearly, func(tx *store.Tx) error {
		var err error
		p, err = l.reputation.ResetYearly(tx, caller)
		return err
	})
	return p, err
}

func (l *Ledger) Profile(ctx context.Context, account string) (reputation.Profile, error) {
	return view(ctx, l.store, func(tx *store.Tx) (reputation.Profile, error) {
		return l.reputation.Profile(tx, account)
	})
}

func (l *Ledger) Contribution(ctx context.Context, account string, category uint8) (reputation.Contribution, error) {
	return view(ctx, l.store, func(tx *store.Tx) (reputation.Contribution, error) {
		return l.reputation.Contribution(tx, account, category)
	})
}

func (l *Ledger) Reputation(ctx context.Context, account string) (reputation.Record, error) {
	return view(ctx, l.store, func(tx *store.Tx) (reputation.Record, error) {
		return l.reputation.Reputation(tx, account)
	})
}

func (l *Ledger) Periods(ctx context.Context) (reputation.Periods, error) {
	return view(ctx, l.store, func(tx *store.Tx) (reputation.Periods, error) {
		return l.reputation.Periods(tx)
	})
}

// Categories возвращает таблицу категорий.
func (l *Ledger) Categories() []reputation.Category {
	return reputation.Categories()
}
