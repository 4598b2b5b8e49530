package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrBrokenChain — журнал коммитов не сходится с хэш-цепочкой.
var ErrBrokenChain = errors.New("store: хэш-цепочка журнала нарушена")

// CommitSource отдаёт журнал коммитов по страницам, начиная с высоты from.
type CommitSource interface {
	Commits(ctx context.Context, from uint64, limit int) ([]Commit, error)
}

// Audit проверяет весь журнал src страницами по pageSize коммитов.
// Возвращает высоту последнего проверенного коммита.
func Audit(ctx context.Context, src CommitSource, pageSize int) (uint64, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}
	var v ChainVerifier
	for {
		page, err := src.Commits(ctx, v.Height()+1, pageSize)
		if err != nil {
			return v.Height(), err
		}
		for i := range page {
			if !v.Check(&page[i]) {
				return v.Height(), fmt.Errorf("%w: высота %d", ErrBrokenChain, page[i].Height)
			}
		}
		if len(page) < pageSize {
			return v.Height(), nil
		}
	}
}
