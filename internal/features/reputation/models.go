// Package reputation накапливает очки и вклад аккаунтов по категориям
// и считает показатель надёжности.
// models.go описывает профиль, вклад по категории и запись репутации.
package reputation

// Profile — профиль аккаунта. Создаётся при первом действии или явной
// регистрации и никогда не удаляется.
//
// Месячные и годовые поля не обнуляются при смене периода. Month и Year
// фиксируются при создании профиля и больше не меняются: это период, с
// которого копятся MonthlyScore и YearlyScore. Если текущий период больше,
// в счёте смешаны закрытые периоды и текущий.
type Profile struct {
	TotalScore   uint64 `msgpack:"total_score"`   // Очки за всё время
	MonthlyScore uint64 `msgpack:"monthly_score"` // Очки начиная с периода Month
	YearlyScore  uint64 `msgpack:"yearly_score"`  // Очки начиная с периода Year
	Month        uint64 `msgpack:"month"`         // Месячный период создания профиля
	Year         uint64 `msgpack:"year"`          // Годовой период создания профиля
	LastActivity uint64 `msgpack:"last_activity"` // Высота последнего вклада
	CreatedAt    uint64 `msgpack:"created_at"`
}

// Contribution — вклад аккаунта в одну категорию (в единицах категории).
type Contribution struct {
	Total            uint64 `msgpack:"total"`
	Monthly          uint64 `msgpack:"monthly"`
	Yearly           uint64 `msgpack:"yearly"`
	LastContribution uint64 `msgpack:"last_contribution"` // Высота последнего вклада
}

// Record — репутация аккаунта.
type Record struct {
	TotalPoints     uint64 `msgpack:"total_points"`
	VerifiedActions uint64 `msgpack:"verified_actions"`
	Reliability     uint64 `msgpack:"reliability"` // Растёт без верхней границы
	CreatedAt       uint64 `msgpack:"created_at"`
	UpdatedAt       uint64 `msgpack:"updated_at"`
}

// Periods — текущие номера периодов. Оба начинаются с 1.
type Periods struct {
	Month uint64 `msgpack:"month"`
	Year  uint64 `msgpack:"year"`
}

// ReliabilityBaseline — надёжность новой записи репутации.
const ReliabilityBaseline uint64 = 100
