// Package token — repository.go читает и пишет записи токена в хранилище.
// Ключи:
//   - token/balance/<account>
//   - token/allowance/<owner>/<spender>
//   - token/supply
package token

import (
	"serotonyl.ru/eco-ledger/internal/store"
)

// Repository предоставляет методы для работы с балансами и разрешениями.
// Только этот пакет пишет под префиксом token/.
type Repository struct{}

// NewRepository создаёт новый репозиторий токена.
func NewRepository() *Repository {
	return &Repository{}
}

func balanceKey(account string) string {
	return store.Key("token", "balance", account)
}

func allowanceKey(owner, spender string) string {
	return store.Key("token", "allowance", owner, spender)
}

func supplyKey() string {
	return store.Key("token", "supply")
}

// GetBalance возвращает баланс аккаунта. Отсутствующая запись — нулевой баланс.
func (r *Repository) GetBalance(tx *store.Tx, account string) (Balance, error) {
	var b Balance
	if _, err := tx.Get(balanceKey(account), &b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// SetBalance сохраняет баланс аккаунта.
func (r *Repository) SetBalance(tx *store.Tx, account string, amount uint64) error {
	return tx.Put(balanceKey(account), Balance{Amount: amount, UpdatedAt: tx.Height()})
}

// GetAllowance возвращает разрешение owner → spender.
func (r *Repository) GetAllowance(tx *store.Tx, owner, spender string) (Allowance, error) {
	var a Allowance
	if _, err := tx.Get(allowanceKey(owner, spender), &a); err != nil {
		return Allowance{}, err
	}
	return a, nil
}

// SetAllowance перезаписывает разрешение owner → spender.
func (r *Repository) SetAllowance(tx *store.Tx, owner, spender string, amount uint64) error {
	return tx.Put(allowanceKey(owner, spender), Allowance{Amount: amount, UpdatedAt: tx.Height()})
}

// GetSupply возвращает общий объём.
func (r *Repository) GetSupply(tx *store.Tx) (Supply, error) {
	var s Supply
	if _, err := tx.Get(supplyKey(), &s); err != nil {
		return Supply{}, err
	}
	return s, nil
}

// SetSupply сохраняет общий объём.
func (r *Repository) SetSupply(tx *store.Tx, total uint64) error {
	return tx.Put(supplyKey(), Supply{Total: total, UpdatedAt: tx.Height()})
}
