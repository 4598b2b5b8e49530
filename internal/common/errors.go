// Package common — errors.go определяет ошибки, которые используются во всех
// компонентах леджера. Каждая ошибка соответствует одному виду отказа:
// вызывающий код различает их через errors.Is, а сервисы добавляют контекст
// через fmt.Errorf("...: %w", common.ErrX).
package common

import "errors"

// Ошибки доступа
var (
	// ErrNotAuthorized — у вызывающего нет нужных прав (обычно: не администратор)
	ErrNotAuthorized = errors.New("недостаточно прав для операции")
	// ErrInvalidAccount — пустой или некорректный идентификатор аккаунта
	ErrInvalidAccount = errors.New("некорректный идентификатор аккаунта")
)

// Ошибки входных данных
var (
	// ErrInvalidCategory — категория вне фиксированного набора 1..5
	ErrInvalidCategory = errors.New("неизвестная категория")
	// ErrInvalidAction — неизвестный тип действия или действие не найдено
	ErrInvalidAction = errors.New("некорректное действие")
	// ErrInvalidAmount — нулевая или некорректная сумма
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrInvalidPoints — очки вне настроенного диапазона
	ErrInvalidPoints = errors.New("очки вне допустимого диапазона")
	// ErrAmountOverflow — сумма не помещается в uint64
	ErrAmountOverflow = errors.New("переполнение суммы")
	// ErrInvalidInput — некорректная запись каталога (пустое имя, неизвестный вид требования)
	ErrInvalidInput = errors.New("некорректные данные")
)

// Ошибки состояния
var (
	// ErrNotFound — сущность не найдена или неактивна
	ErrNotFound = errors.New("не найдено")
	// ErrAlreadyExists — повторный переход, который допускается только один раз
	ErrAlreadyExists = errors.New("уже существует")
	// ErrAlreadyVerified — действие уже подтверждено
	ErrAlreadyVerified = errors.New("действие уже подтверждено")
)

// Ошибки токенов
var (
	// ErrInsufficientBalance — на счёте недостаточно средств
	ErrInsufficientBalance = errors.New("недостаточно средств на счёте")
	// ErrInsufficientAllowance — разрешение на списание меньше запрошенной суммы
	ErrInsufficientAllowance = errors.New("недостаточно разрешённой суммы")
)

// codes — стабильные имена видов ошибок для меток метрик и логов.
var codes = []struct {
	err  error
	code string
}{
	{ErrNotAuthorized, "not_authorized"},
	{ErrInvalidAccount, "invalid_account"},
	{ErrInvalidCategory, "invalid_category"},
	{ErrInvalidAction, "invalid_action"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInvalidPoints, "invalid_points"},
	{ErrAmountOverflow, "amount_overflow"},
	{ErrInvalidInput, "invalid_input"},
	{ErrNotFound, "not_found"},
	{ErrAlreadyExists, "already_exists"},
	{ErrAlreadyVerified, "already_verified"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrInsufficientAllowance, "insufficient_allowance"},
}

// Code возвращает вид ошибки: "ok" для nil, "internal" для всего,
// что не входит в таксономию (ошибки БД, кодека и т.д.).
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
