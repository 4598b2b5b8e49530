package ledger

import (
	"context"

	"serotonyl.ru/eco-ledger/internal/store"
)

// Mint чеканит amount токенов на счёт recipient. Только администратор.
func (l *Ledger) Mint(ctx context.Context, caller, recipient string, amount uint64) error {
	return l.apply(ctx, OpMint, func(tx *store.Tx) error {
		if err := l.token.Mint(tx, caller, recipient, amount); err != nil {
			return err
		}
		return l.trackSupply(tx)
	})
}

// Transfer переводит токены владельца. caller должен совпадать с sender.
func (l *Ledger) Transfer(ctx context.Context, caller, sender, recipient string, amount uint64) error {
	return l.apply(ctx, OpTransfer, func(tx *store.Tx) error {
		return l.token.Transfer(tx, caller, sender, recipient, amount)
	})
}

// TransferFrom переводит токены owner в пределах разрешения для spender.
func (l *Ledger) TransferFrom(ctx context.Context, spender, owner, recipient string, amount uint64) error {
	return l.apply(ctx, OpTransferFrom, func(tx *store.Tx) error {
		return l.token.TransferFrom(tx, spender, owner, recipient, amount)
	})
}

// Approve перезаписывает разрешение owner → spender.
func (l *Ledger) Approve(ctx context.Context, owner, spender string, amount uint64) error {
	return l.apply(ctx, OpApprove, func(tx *store.Tx) error {
		return l.token.Approve(tx, owner, spender, amount)
	})
}

func (l *Ledger) BalanceOf(ctx context.Context, account string) (uint64, error) {
	return view(ctx, l.store, func(tx *store.Tx) (uint64, error) {
		return l.token.BalanceOf(tx, account)
	})
}

func (l *Ledger) AllowanceOf(ctx context.Context, owner, spender string) (uint64, error) {
	return view(ctx, l.store, func(tx *store.Tx) (uint64, error) {
		return l.token.AllowanceOf(tx, owner, spender)
	})
}

func (l *Ledger) TotalSupply(ctx context.Context) (uint64, error) {
	return view(ctx, l.store, func(tx *store.Tx) (uint64, error) {
		return l.token.TotalSupply(tx)
	})
}
