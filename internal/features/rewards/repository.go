// Package rewards — repository.go читает и пишет записи под префиксом rewards/.
package rewards

import (
	"serotonyl.ru/eco-ledger/internal/store"
)

// Repository хранит накопления, выплаты и распределения.
type Repository struct{}

// NewRepository создаёт репозиторий наград.
func NewRepository() *Repository {
	return &Repository{}
}

func accrualKey(account string) string {
	return store.Key("rewards", "accrued", account)
}

func claimedKey(account string) string {
	return store.Key("rewards", "claimed", account)
}

func distributionKey(id uint64) string {
	return store.Key("rewards", "distribution", store.ID(id))
}

// GetAccrual возвращает накопление аккаунта.
func (r *Repository) GetAccrual(tx *store.Tx, account string) (Accrual, error) {
	var a Accrual
	_, err := tx.Get(accrualKey(account), &a)
	return a, err
}

// SetAccrual сохраняет накопление аккаунта.
func (r *Repository) SetAccrual(tx *store.Tx, account string, amount uint64) error {
	return tx.Put(accrualKey(account), Accrual{Amount: amount, UpdatedAt: tx.Height()})
}

// GetClaimed возвращает итог выплат аккаунта.
func (r *Repository) GetClaimed(tx *store.Tx, account string) (Claimed, error) {
	var c Claimed
	_, err := tx.Get(claimedKey(account), &c)
	return c, err
}

// SaveClaimed сохраняет итог выплат.
func (r *Repository) SaveClaimed(tx *store.Tx, account string, c Claimed) error {
	return tx.Put(claimedKey(account), c)
}

// GetOutstanding возвращает сумму начисленных, но ещё не полученных наград.
func (r *Repository) GetOutstanding(tx *store.Tx) (uint64, error) {
	var n uint64
	_, err := tx.Get(store.Key("rewards", "outstanding"), &n)
	return n, err
}

// SetOutstanding сохраняет сумму неполученных наград.
func (r *Repository) SetOutstanding(tx *store.Tx, n uint64) error {
	return tx.Put(store.Key("rewards", "outstanding"), n)
}

// NextDistributionID выдаёт идентификатор распределения. Первый — 1.
func (r *Repository) NextDistributionID(tx *store.Tx) (uint64, error) {
	key := store.Key("rewards", "next-distribution-id")
	next := uint64(1)
	if _, err := tx.Get(key, &next); err != nil {
		return 0, err
	}
	if err := tx.Put(key, next+1); err != nil {
		return 0, err
	}
	return next, nil
}

// GetDistribution возвращает распределение и признак его существования.
func (r *Repository) GetDistribution(tx *store.Tx, id uint64) (Distribution, bool, error) {
	var d Distribution
	ok, err := tx.Get(distributionKey(id), &d)
	return d, ok, err
}

// SaveDistribution сохраняет распределение.
func (r *Repository) SaveDistribution(tx *store.Tx, d Distribution) error {
	return tx.Put(distributionKey(d.ID), d)
}
