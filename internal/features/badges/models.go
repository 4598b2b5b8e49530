// Package badges ведёт каталог значков и достижений и выдаёт их аккаунтам.
// models.go описывает записи каталога, выданные значки и прогресс достижений.
package badges

// RequirementKind — вид требования значка.
type RequirementKind string

const (
	RequirePoints   RequirementKind = "points"   // Порог очков репутации
	RequireActions  RequirementKind = "actions"  // Число подтверждённых действий
	RequireExternal RequirementKind = "external" // Выдаётся администратором вручную
)

// Valid проверяет, что вид требования известен.
func (k RequirementKind) Valid() bool {
	switch k {
	case RequirePoints, RequireActions, RequireExternal:
		return true
	}
	return false
}

// Badge — значок из глобального каталога.
type Badge struct {
	ID          uint64          `msgpack:"id"`
	Name        string          `msgpack:"name"`
	Description string          `msgpack:"description"`
	Kind        RequirementKind `msgpack:"kind"`
	Requirement uint64          `msgpack:"requirement"`
	Active      bool            `msgpack:"active"`
	CreatedAt   uint64          `msgpack:"created_at"`
}

// Award — выданный значок. Наличие записи — единственное доказательство владения.
type Award struct {
	BadgeID    uint64 `msgpack:"badge_id"`
	EarnedAt   uint64 `msgpack:"earned_at"`
	VerifiedBy string `msgpack:"verified_by"` // Пусто для автоматической выдачи
}

// Achievement — достижение из глобального каталога.
type Achievement struct {
	ID          uint64 `msgpack:"id"`
	Name        string `msgpack:"name"`
	Category    uint8  `msgpack:"category"`
	PointReward uint64 `msgpack:"point_reward"`
	Requirement string `msgpack:"requirement"` // Свободное описание условия
	Active      bool   `msgpack:"active"`
	CreatedAt   uint64 `msgpack:"created_at"`
}

// ProgressState — состояние прогресса достижения.
type ProgressState uint8

const (
	InProgress ProgressState = iota
	Completed
)

func (s ProgressState) String() string {
	if s == Completed {
		return "completed"
	}
	return "in_progress"
}

// Progress — прогресс аккаунта по достижению (0..100).
type Progress struct {
	Value       uint8         `msgpack:"value"`
	State       ProgressState `msgpack:"state"`
	CompletedAt uint64        `msgpack:"completed_at"` // 0, пока не завершено
}

// MaxProgress — значение, при котором достижение завершается.
const MaxProgress uint8 = 100

// Threshold — значок, выдаваемый автоматически при достижении порога очков.
type Threshold struct {
	BadgeID uint64
	Points  uint64
}

// Thresholds — пороговые значки по возрастанию. Создаются при генезисе.
var Thresholds = [...]Threshold{
	{BadgeID: 1, Points: 50},
	{BadgeID: 2, Points: 200},
	{BadgeID: 3, Points: 500},
	{BadgeID: 4, Points: 1000},
}

// genesisBadges — описания пороговых значков.
var genesisBadges = [...]struct{ name, description string }{
	{"Eco Starter", "Earn 50 reputation points"},
	{"Eco Enthusiast", "Earn 200 reputation points"},
	{"Eco Champion", "Earn 500 reputation points"},
	{"Eco Legend", "Earn 1000 reputation points"},
}
