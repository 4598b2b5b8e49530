package ledger

import (
	"context"

	"serotonyl.ru/eco-ledger/internal/features/rewards"
	"serotonyl.ru/eco-ledger/internal/store"
)

// FundPool пополняет пул наград чеканкой на кастодиальный счёт.
func (l *Ledger) FundPool(ctx context.Context, caller string, amount uint64) error {
	return l.apply(ctx, OpFundPool, func(tx *store.Tx) error {
		if err := l.rewards.FundPool(tx, caller, amount); err != nil {
			return err
		}
		return l.trackSupply(tx)
	})
}

// DistributePeriodic делит пул поровну между победителями периода.
func (l *Ledger) DistributePeriodic(ctx context.Context, caller string, winners []string, totalPool uint64) (rewards.Distribution, error) {
	var d rewards.Distribution
	err := l.apply(ctx, OpDistributePeriodic, func(tx *store.Tx) error {
		var err error
		if d, err = l.rewards.DistributePeriodic(tx, caller, winners, totalPool); err != nil {
			return err
		}
		remainder := d.Remainder
		tx.AfterCommit(func() { l.metrics.AddUndistributed(remainder) })
		return nil
	})
	return d, err
}

// ClaimRewards выплачивает накопленную награду аккаунта из пула.
func (l *Ledger) ClaimRewards(ctx context.Context, account string) (uint64, error) {
	var amount uint64
	err := l.apply(ctx, OpClaimRewards, func(tx *store.Tx) error {
		var err error
		amount, err = l.rewards.ClaimRewards(tx, account)
		return err
	})
	return amount, err
}

func (l *Ledger) Accrued(ctx context.Context, account string) (uint64, error) {
	return view(ctx, l.store, func(tx *store.Tx) (uint64, error) {
		return l.rewards.Accrued(tx, account)
	})
}

func (l *Ledger) Claimed(ctx context.Context, account string) (rewards.Claimed, error) {
	return view(ctx, l.store, func(tx *store.Tx) (rewards.Claimed, error) {
		return l.rewards.Claimed(tx, account)
	})
}

func (l *Ledger) Distribution(ctx context.Context, id uint64) (rewards.Distribution, error) {
	return view(ctx, l.store, func(tx *store.Tx) (rewards.Distribution, error) {
		return l.rewards.Distribution(tx, id)
	})
}

// Outstanding возвращает сумму начисленных, но ещё не полученных наград.
func (l *Ledger) Outstanding(ctx context.Context) (uint64, error) {
	return view(ctx, l.store, func(tx *store.Tx) (uint64, error) {
		return l.rewards.Outstanding(tx)
	})
}
