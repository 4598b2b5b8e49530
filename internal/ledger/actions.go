package ledger

import (
	"context"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/features/actions"
	"serotonyl.ru/eco-ledger/internal/store"
)

// SubmitAction сохраняет неподтверждённое действие и возвращает его ID.
func (l *Ledger) SubmitAction(ctx context.Context, submitter string, actionType actions.ActionType, points uint64) (uint64, error) {
	var id uint64
	err := l.apply(ctx, OpSubmitAction, func(tx *store.Tx) error {
		var err error
		id, err = l.actions.SubmitAction(tx, submitter, actionType, points)
		return err
	})
	return id, err
}

// VerifyAction подтверждает действие. Очки репутации, проверка значков и
// чеканка награды фиксируются вместе с подтверждением или не фиксируются вовсе.
func (l *Ledger) VerifyAction(ctx context.Context, verifier, submitter string, id uint64) (actions.Action, error) {
	var a actions.Action
	err := l.apply(ctx, OpVerifyAction, func(tx *store.Tx) error {
		var err error
		if a, err = l.actions.VerifyAction(tx, verifier, submitter, id); err != nil {
			return err
		}
		tx.AfterCommit(l.metrics.IncVerified)
		return l.trackSupply(tx)
	})
	if err != nil {
		return actions.Action{}, err
	}

	log.WithFields(log.Fields{
		"submitter": submitter,
		"action":    id,
		"points":    a.Points,
	}).Info("Действие подтверждено")
	return a, nil
}

// Action возвращает действие (submitter, id).
func (l *Ledger) Action(ctx context.Context, submitter string, id uint64) (actions.Action, error) {
	return view(ctx, l.store, func(tx *store.Tx) (actions.Action, error) {
		return l.actions.Action(tx, submitter, id)
	})
}

// ActionCount возвращает число отправленных аккаунтом действий.
func (l *Ledger) ActionCount(ctx context.Context, account string) (uint64, error) {
	return view(ctx, l.store, func(tx *store.Tx) (uint64, error) {
		return l.actions.ActionCount(tx, account)
	})
}
