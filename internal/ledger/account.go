package ledger

import (
	"context"
	"errors"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/features/badges"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
	"serotonyl.ru/eco-ledger/internal/store"
)

// AccountSummary — сводка по аккаунту из всех компонентов, прочитанная
// на одной высоте.
type AccountSummary struct {
	Account    string
	Height     uint64
	Profile    *reputation.Profile // nil, если профиль не создан
	Reputation *reputation.Record  // nil, если очков ещё не было
	Actions    uint64
	Balance    uint64
	Accrued    uint64
	Badges     []badges.Award
}

// Account собирает сводку по аккаунту.
func (l *Ledger) Account(ctx context.Context, account string) (AccountSummary, error) {
	return view(ctx, l.store, func(tx *store.Tx) (AccountSummary, error) {
		sum := AccountSummary{Account: account, Height: tx.Height()}

		p, err := l.reputation.Profile(tx, account)
		switch {
		case err == nil:
			sum.Profile = &p
		case !errors.Is(err, common.ErrNotFound):
			return AccountSummary{}, err
		}

		rec, err := l.reputation.Reputation(tx, account)
		switch {
		case err == nil:
			sum.Reputation = &rec
		case !errors.Is(err, common.ErrNotFound):
			return AccountSummary{}, err
		}

		if sum.Actions, err = l.actions.ActionCount(tx, account); err != nil {
			return AccountSummary{}, err
		}
		if sum.Balance, err = l.token.BalanceOf(tx, account); err != nil {
			return AccountSummary{}, err
		}
		if sum.Accrued, err = l.rewards.Accrued(tx, account); err != nil {
			return AccountSummary{}, err
		}
		if sum.Badges, err = l.badges.Badges(tx, account); err != nil {
			return AccountSummary{}, err
		}
		return sum, nil
	})
}
