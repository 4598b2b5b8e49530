package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Tx — транзакция одной операции. Чтения видят собственные записи
// транзакции поверх зафиксированного состояния.
type Tx struct {
	ctx      context.Context
	backend  Backend
	height   uint64
	readOnly bool
	writes   map[string][]byte
	after    []func()
}

func newTx(ctx context.Context, backend Backend, height uint64, readOnly bool) *Tx {
	return &Tx{
		ctx:      ctx,
		backend:  backend,
		height:   height,
		readOnly: readOnly,
		writes:   make(map[string][]byte),
	}
}

// Height — логический номер операции: высота, на которой она будет
// зафиксирована (для View — высота текущей головы).
func (tx *Tx) Height() uint64 {
	return tx.height
}

// Context возвращает контекст операции.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Get читает значение ключа в out. Возвращает false, если ключа нет.
func (tx *Tx) Get(key string, out any) (bool, error) {
	raw, ok := tx.writes[key]
	if !ok {
		var err error
		raw, ok, err = tx.backend.Load(tx.ctx, key)
		if err != nil {
			return false, fmt.Errorf("store: ошибка чтения %q: %w", key, err)
		}
		if !ok {
			return false, nil
		}
	}
	if out == nil {
		return true, nil
	}
	if err := decode(raw, out); err != nil {
		return false, fmt.Errorf("store: ошибка декодирования %q: %w", key, err)
	}
	return true, nil
}

// Put записывает значение ключа. Запись станет видна другим операциям
// только после успешного коммита.
func (tx *Tx) Put(key string, value any) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	if key == "" {
		return fmt.Errorf("store: пустой ключ")
	}
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("store: ошибка кодирования %q: %w", key, err)
	}
	tx.writes[key] = raw
	return nil
}

// AfterCommit регистрирует fn, которая выполнится после успешного коммита.
// Если операция откатилась, fn не вызывается. fn выполняется под
// блокировкой Store и не должна обращаться к нему.
func (tx *Tx) AfterCommit(fn func()) {
	tx.after = append(tx.after, fn)
}

func (tx *Tx) sortedWrites() []Write {
	keys := make([]string, 0, len(tx.writes))
	for k := range tx.writes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Write, 0, len(keys))
	for _, k := range keys {
		out = append(out, Write{Key: k, Value: tx.writes[k]})
	}
	return out
}

// Key собирает составной ключ: Key("token", "balance", acc) → "token/balance/acc".
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// ID форматирует числовой идентификатор для составного ключа.
func ID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func (tx *Tx) runAfter() {
	for _, fn := range tx.after {
		fn()
	}
}
