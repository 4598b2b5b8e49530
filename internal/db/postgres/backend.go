// Package postgres — backend.go хранит состояние леджера и журнал коммитов.
//
// Таблицы:
//   - ledger_state: ключ → закодированное значение (последняя версия)
//   - ledger_commits: журнал коммитов с хэш-цепочкой
//   - ledger_commit_writes: записи каждого коммита (для аудита цепочки)
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-ledger/internal/store"
)

// commitLockID — ключ advisory-блокировки: второй процесс с тем же леджером
// не сможет записать коммит параллельно.
const commitLockID = 0x6c656467 // "ledg"

// Backend реализует store.Backend поверх PostgreSQL.
type Backend struct {
	db *pgxpool.Pool
}

// NewBackend создаёт бэкенд состояния.
func NewBackend(db *pgxpool.Pool) *Backend {
	return &Backend{db: db}
}

// Load возвращает значение ключа из ledger_state.
func (b *Backend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRow(ctx, `SELECT value FROM ledger_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения состояния: %w", err)
	}
	return value, true, nil
}

// Head возвращает последний коммит из журнала.
func (b *Backend) Head(ctx context.Context) (store.Head, error) {
	var head store.Head
	err := b.db.QueryRow(ctx, `
		SELECT height, digest FROM ledger_commits
		ORDER BY height DESC
		LIMIT 1
	`).Scan(&head.Height, &head.Digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Head{}, nil
	}
	if err != nil {
		return store.Head{}, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	return head, nil
}

// Commit применяет записи и добавляет коммит в журнал одной транзакцией БД.
func (b *Backend) Commit(ctx context.Context, c *store.Commit) error {
	tx, err := b.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, commitLockID); err != nil {
		return fmt.Errorf("ошибка блокировки журнала: %w", err)
	}

	// Коммит обязан продолжать цепочку: иначе кто-то писал мимо этого процесса
	var last uint64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(height), 0) FROM ledger_commits`).Scan(&last); err != nil {
		return fmt.Errorf("ошибка чтения высоты: %w", err)
	}
	if last+1 != c.Height {
		return fmt.Errorf("разрыв журнала: последняя высота %d, коммит %d", last, c.Height)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO ledger_commits (height, op, prev_digest, digest, write_count, committed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.Height, c.Op, c.PrevDigest, c.Digest, len(c.Writes), c.CommittedAt)
	for _, w := range c.Writes {
		batch.Queue(`
			INSERT INTO ledger_state (key, value, height, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, height = EXCLUDED.height, updated_at = NOW()
		`, w.Key, w.Value, c.Height)
		batch.Queue(`
			INSERT INTO ledger_commit_writes (height, key, value)
			VALUES ($1, $2, $3)
		`, c.Height, w.Key, w.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка записи коммита %d: %w", c.Height, err)
	}

	return tx.Commit(ctx)
}

// Commits возвращает до limit коммитов, начиная с высоты from (включительно),
// вместе с их записями. Используется для проверки хэш-цепочки.
func (b *Backend) Commits(ctx context.Context, from uint64, limit int) ([]store.Commit, error) {
	rows, err := b.db.Query(ctx, `
		SELECT height, op, prev_digest, digest, committed_at
		FROM ledger_commits
		WHERE height >= $1
		ORDER BY height
		LIMIT $2
	`, from, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	var commits []store.Commit
	for rows.Next() {
		var c store.Commit
		if err := rows.Scan(&c.Height, &c.Op, &c.PrevDigest, &c.Digest, &c.CommittedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования коммита: %w", err)
		}
		commits = append(commits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range commits {
		writes, err := b.commitWrites(ctx, commits[i].Height)
		if err != nil {
			return nil, err
		}
		commits[i].Writes = writes
	}
	return commits, nil
}

func (b *Backend) commitWrites(ctx context.Context, height uint64) ([]store.Write, error) {
	rows, err := b.db.Query(ctx, `
		SELECT key, value FROM ledger_commit_writes
		WHERE height = $1
		ORDER BY key COLLATE "C"
	`, height)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения записей коммита %d: %w", height, err)
	}
	defer rows.Close()

	var writes []store.Write
	for rows.Next() {
		var w store.Write
		if err := rows.Scan(&w.Key, &w.Value); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		writes = append(writes, w)
	}
	return writes, rows.Err()
}
