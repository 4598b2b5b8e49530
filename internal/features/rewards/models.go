// Package rewards распределяет награды: чеканку за подтверждённые действия
// и периодические выплаты лучшим участникам через накопление и получение.
// models.go описывает накопления, выплаты и записи распределений.
package rewards

// Accrual — накопленная, но ещё не полученная награда аккаунта.
type Accrual struct {
	Amount    uint64 `msgpack:"amount"`
	UpdatedAt uint64 `msgpack:"updated_at"`
}

// Claimed — сколько аккаунт уже получил за всё время.
type Claimed struct {
	Total       uint64 `msgpack:"total"`
	Claims      uint64 `msgpack:"claims"`
	LastClaimAt uint64 `msgpack:"last_claim_at"`
}

// Distribution — запись одного периодического распределения.
// Остаток от целочисленного деления никому не начисляется.
type Distribution struct {
	ID        uint64   `msgpack:"id"`
	Pool      uint64   `msgpack:"pool"`
	Winners   []string `msgpack:"winners"`
	Share     uint64   `msgpack:"share"`
	Remainder uint64   `msgpack:"remainder"`
	Height    uint64   `msgpack:"height"`
}
