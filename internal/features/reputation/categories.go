// Package reputation — categories.go содержит неизменяемую таблицу категорий.
package reputation

import (
	"fmt"

	"serotonyl.ru/eco-ledger/internal/common"
)

// Category — метаданные категории вклада.
type Category struct {
	ID                uint8
	Name              string // Отображаемое имя
	Unit              string // Единица измерения вклада
	Multiplier        uint64 // Множитель очков за единицу вклада
	ActionPoints      uint64 // Очки репутации за одно подтверждённое действие
	ReliabilityWeight uint64 // Прибавка к надёжности за одно действие
}

// Таблица категорий. Индекс = ID-1.
//
//	1 Переработка       кг      ×2   10 очков  +5
//	2 Энергосбережение  кВт·ч   ×3   15 очков  +10
//	3 Экономия воды     литры   ×1   10 очков  +5
//	4 Зелёный транспорт км      ×2   20 очков  +10
//	5 Посадка деревьев  деревья ×10  25 очков  +15
var categories = [...]Category{
	{ID: 1, Name: "Recycling", Unit: "kg", Multiplier: 2, ActionPoints: 10, ReliabilityWeight: 5},
	{ID: 2, Name: "Energy Saving", Unit: "kWh", Multiplier: 3, ActionPoints: 15, ReliabilityWeight: 10},
	{ID: 3, Name: "Water Conservation", Unit: "liters", Multiplier: 1, ActionPoints: 10, ReliabilityWeight: 5},
	{ID: 4, Name: "Green Transport", Unit: "km", Multiplier: 2, ActionPoints: 20, ReliabilityWeight: 10},
	{ID: 5, Name: "Tree Planting", Unit: "trees", Multiplier: 10, ActionPoints: 25, ReliabilityWeight: 15},
}

// LookupCategory возвращает категорию по ID или ErrInvalidCategory.
func LookupCategory(id uint8) (Category, error) {
	if id < 1 || int(id) > len(categories) {
		return Category{}, fmt.Errorf("категория %d: %w", id, common.ErrInvalidCategory)
	}
	return categories[id-1], nil
}

// Categories возвращает копию таблицы категорий.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}
