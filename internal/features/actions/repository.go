// Package actions — repository.go читает и пишет записи под префиксом actions/.
// Ключи:
//   - actions/next-id — глобальный счётчик идентификаторов
//   - actions/count/<account> — число отправленных действий аккаунта
//   - actions/record/<account>/<id>
package actions

import (
	"serotonyl.ru/eco-ledger/internal/store"
)

// Repository хранит действия и счётчики.
type Repository struct{}

// NewRepository создаёт репозиторий действий.
func NewRepository() *Repository {
	return &Repository{}
}

func recordKey(account string, id uint64) string {
	return store.Key("actions", "record", account, store.ID(id))
}

func countKey(account string) string {
	return store.Key("actions", "count", account)
}

// NextID выдаёт идентификатор нового действия. Первый — 1.
func (r *Repository) NextID(tx *store.Tx) (uint64, error) {
	key := store.Key("actions", "next-id")
	next := uint64(1)
	if _, err := tx.Get(key, &next); err != nil {
		return 0, err
	}
	if err := tx.Put(key, next+1); err != nil {
		return 0, err
	}
	return next, nil
}

// Get возвращает действие и признак его существования.
func (r *Repository) Get(tx *store.Tx, account string, id uint64) (Action, bool, error) {
	var a Action
	ok, err := tx.Get(recordKey(account, id), &a)
	return a, ok, err
}

// Save сохраняет действие.
func (r *Repository) Save(tx *store.Tx, a Action) error {
	return tx.Put(recordKey(a.Submitter, a.ID), a)
}

// Count возвращает число действий аккаунта.
func (r *Repository) Count(tx *store.Tx, account string) (uint64, error) {
	var n uint64
	_, err := tx.Get(countKey(account), &n)
	return n, err
}

// SetCount сохраняет число действий аккаунта.
func (r *Repository) SetCount(tx *store.Tx, account string, n uint64) error {
	return tx.Put(countKey(account), n)
}
