// Package reputation — repository.go читает и пишет записи под префиксом reputation/.
package reputation

import (
	"strconv"

	"serotonyl.ru/eco-ledger/internal/store"
)

// Repository хранит профили, вклады, репутацию и периоды.
type Repository struct{}

// NewRepository создаёт репозиторий репутации.
func NewRepository() *Repository {
	return &Repository{}
}

func profileKey(account string) string {
	return store.Key("reputation", "profile", account)
}

func contributionKey(account string, category uint8) string {
	return store.Key("reputation", "contribution", account, strconv.Itoa(int(category)))
}

func recordKey(account string) string {
	return store.Key("reputation", "record", account)
}

func periodsKey() string {
	return store.Key("reputation", "periods")
}

// GetProfile возвращает профиль и признак его существования.
func (r *Repository) GetProfile(tx *store.Tx, account string) (Profile, bool, error) {
	var p Profile
	ok, err := tx.Get(profileKey(account), &p)
	return p, ok, err
}

// SaveProfile сохраняет профиль.
func (r *Repository) SaveProfile(tx *store.Tx, account string, p Profile) error {
	return tx.Put(profileKey(account), p)
}

// GetContribution возвращает вклад аккаунта в категорию (нулевой, если вклада не было).
func (r *Repository) GetContribution(tx *store.Tx, account string, category uint8) (Contribution, error) {
	var c Contribution
	_, err := tx.Get(contributionKey(account, category), &c)
	return c, err
}

// SaveContribution сохраняет вклад.
func (r *Repository) SaveContribution(tx *store.Tx, account string, category uint8, c Contribution) error {
	return tx.Put(contributionKey(account, category), c)
}

// GetRecord возвращает запись репутации и признак её существования.
func (r *Repository) GetRecord(tx *store.Tx, account string) (Record, bool, error) {
	var rec Record
	ok, err := tx.Get(recordKey(account), &rec)
	return rec, ok, err
}

// SaveRecord сохраняет запись репутации.
func (r *Repository) SaveRecord(tx *store.Tx, account string, rec Record) error {
	return tx.Put(recordKey(account), rec)
}

// GetPeriods возвращает текущие периоды. До первого сброса оба равны 1.
func (r *Repository) GetPeriods(tx *store.Tx) (Periods, error) {
	p := Periods{Month: 1, Year: 1}
	if _, err := tx.Get(periodsKey(), &p); err != nil {
		return Periods{}, err
	}
	return p, nil
}

// SavePeriods сохраняет периоды.
func (r *Repository) SavePeriods(tx *store.Tx, p Periods) error {
	return tx.Put(periodsKey(), p)
}
