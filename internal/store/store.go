// Package store — среда исполнения леджера: атомарные операции над
// key/value-состоянием и монотонный логический счётчик (высота).
//
// Каждая операция выполняется целиком внутри Apply: записи копятся в
// транзакции и уходят в бэкенд одним коммитом, только если операция
// вернула nil. Операции выполняются строго по одной, поэтому компоненты
// леджера не используют собственных блокировок и защищают инварианты
// только проверками в начале операции.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrReadOnly возвращается при попытке записи внутри View.
var ErrReadOnly = errors.New("store: транзакция только для чтения")

// Head — последний зафиксированный коммит.
type Head struct {
	Height uint64 // Высота последнего коммита (0 — пустое состояние)
	Digest []byte // Хэш последнего коммита (nil для пустого состояния)
}

// Write — одна запись коммита.
type Write struct {
	Key   string
	Value []byte
}

// Commit — запись журнала коммитов. Бэкенд сохраняет записи и сам коммит атомарно.
type Commit struct {
	Height      uint64
	Op          string
	PrevDigest  []byte
	Digest      []byte
	Writes      []Write // Отсортированы по ключу
	CommittedAt time.Time
}

// Backend — постоянное хранилище под Store.
type Backend interface {
	// Load возвращает закодированное значение ключа; ok=false, если ключа нет.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Head возвращает последний зафиксированный коммит.
	Head(ctx context.Context) (Head, error)
	// Commit атомарно применяет записи коммита и добавляет его в журнал.
	Commit(ctx context.Context, c *Commit) error
}

// Store выполняет операции леджера поверх бэкенда.
type Store struct {
	backend Backend
	mu      sync.Mutex // Одна операция за раз
	head    Head
	nowFn   func() time.Time
}

// Open загружает голову журнала из бэкенда и возвращает готовый Store.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store: бэкенд не задан")
	}
	head, err := backend.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: ошибка чтения головы журнала: %w", err)
	}
	return &Store{
		backend: backend,
		head:    head,
		nowFn:   time.Now,
	}, nil
}

// SetNowFunc подменяет часы, которыми помечаются коммиты. Нужно в тестах.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	s.nowFn = now
}

// Head возвращает голову журнала.
func (s *Store) Head() Head {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Head{Height: s.head.Height, Digest: append([]byte(nil), s.head.Digest...)}
}

// Apply выполняет операцию op. Если fn вернула ошибку, ни одна запись не
// фиксируется и высота не растёт. Иначе все записи и запись журнала уходят
// в бэкенд одним коммитом на высоте head+1. Операция без записей коммит не
// создаёт: голова не меняется, но хуки AfterCommit выполняются.
func (s *Store) Apply(ctx context.Context, op string, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := newTx(ctx, s.backend, s.head.Height+1, false)
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.writes) == 0 {
		tx.runAfter()
		return nil
	}

	commit := &Commit{
		Height:      tx.height,
		Op:          op,
		PrevDigest:  s.head.Digest,
		Writes:      tx.sortedWrites(),
		CommittedAt: s.nowFn().UTC(),
	}
	commit.Digest = Digest(commit)

	if err := s.backend.Commit(ctx, commit); err != nil {
		return fmt.Errorf("store: ошибка коммита %q на высоте %d: %w", op, commit.Height, err)
	}
	s.head = Head{Height: commit.Height, Digest: commit.Digest}

	tx.runAfter()
	return nil
}

// View выполняет fn над зафиксированным состоянием без права записи.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(newTx(ctx, s.backend, s.head.Height, true))
}
