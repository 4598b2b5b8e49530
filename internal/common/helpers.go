// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: арифметика сумм с проверкой переполнения, проверка
// идентификаторов аккаунтов и форматирование чисел для логов.
package common

import (
	"fmt"
	"math/bits"
	"strings"
)

// AddAmount складывает две суммы и возвращает ErrAmountOverflow,
// если результат не помещается в uint64.
func AddAmount(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrAmountOverflow)
	}
	return sum, nil
}

// MulAmount перемножает две величины с проверкой переполнения.
// Используется для score = amount * multiplier.
func MulAmount(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%d * %d: %w", a, b, ErrAmountOverflow)
	}
	return lo, nil
}

// CheckAccount проверяет идентификатор аккаунта.
// Пустые идентификаторы и идентификаторы с «/» запрещены:
// «/» — разделитель составных ключей хранилища.
func CheckAccount(account string) error {
	if strings.TrimSpace(account) == "" {
		return ErrInvalidAccount
	}
	if strings.Contains(account, "/") {
		return fmt.Errorf("%q: %w", account, ErrInvalidAccount)
	}
	return nil
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}
