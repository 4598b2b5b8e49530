// Package actions ведёт реестр экологических действий и их подтверждение.
// models.go описывает типы действий и запись действия.
package actions

// ActionType — тип действия из фиксированного набора.
type ActionType string

const (
	Recycle      ActionType = "recycle"
	SaveEnergy   ActionType = "save-energy"
	SaveWater    ActionType = "save-water"
	GreenCommute ActionType = "green-commute"
	PlantTree    ActionType = "plant-tree"
)

// actionCategories — категория репутации, в которую идёт каждый тип действия.
var actionCategories = map[ActionType]uint8{
	Recycle:      1,
	SaveEnergy:   2,
	SaveWater:    3,
	GreenCommute: 4,
	PlantTree:    5,
}

// Category возвращает категорию типа действия; false для неизвестного типа.
func (t ActionType) Category() (uint8, bool) {
	c, ok := actionCategories[t]
	return c, ok
}

// Status — состояние действия. Единственный допустимый переход:
// Unverified → Verified.
type Status uint8

const (
	Unverified Status = iota
	Verified
)

func (s Status) String() string {
	if s == Verified {
		return "verified"
	}
	return "unverified"
}

// Action — запись действия. После подтверждения не меняется.
type Action struct {
	ID          uint64     `msgpack:"id"`
	Submitter   string     `msgpack:"submitter"`
	Type        ActionType `msgpack:"type"`
	Points      uint64     `msgpack:"points"`
	SubmittedAt uint64     `msgpack:"submitted_at"` // Высота отправки
	Status      Status     `msgpack:"status"`
	VerifiedBy  string     `msgpack:"verified_by"`
	VerifiedAt  uint64     `msgpack:"verified_at"`
}
