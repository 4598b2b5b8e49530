// Package token управляет фунгибельным токеном наград.
// models.go описывает структуры для балансов, разрешений и общего объёма.
package token

// Balance представляет баланс аккаунта.
// Запись появляется при первом начислении и никогда не удаляется.
type Balance struct {
	Amount    uint64 `msgpack:"amount"`     // Текущий баланс (не бывает отрицательным)
	UpdatedAt uint64 `msgpack:"updated_at"` // Высота последнего изменения
}

// Allowance — разрешение spender списывать токены владельца.
// Новое значение перезаписывает старое (не суммируется).
type Allowance struct {
	Amount    uint64 `msgpack:"amount"`
	UpdatedAt uint64 `msgpack:"updated_at"`
}

// Supply — общий объём токенов в обращении.
// Инвариант: Total всегда равен сумме всех балансов.
type Supply struct {
	Total     uint64 `msgpack:"total"`
	UpdatedAt uint64 `msgpack:"updated_at"`
}

// Виды движений токенов — для логов и метрик.
const (
	MoveMint         = "mint"          // Чеканка администратором
	MoveTransfer     = "transfer"      // Перевод владельцем
	MoveTransferFrom = "transfer_from" // Перевод по разрешению
	MoveRelease      = "release"       // Выплата с кастодиального счёта
)
