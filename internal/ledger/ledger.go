// Package ledger собирает компоненты леджера и выполняет каждую публичную
// операцию как одну атомарную транзакцию хранилища.
//
// Изменяющие операции идут через Store.Apply: либо фиксируются все записи
// операции и её вложенных шагов, либо ни одной. Чтения идут через Store.View.
package ledger

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/actions"
	"serotonyl.ru/eco-ledger/internal/features/badges"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
	"serotonyl.ru/eco-ledger/internal/features/rewards"
	"serotonyl.ru/eco-ledger/internal/features/token"
	"serotonyl.ru/eco-ledger/internal/metrics"
	"serotonyl.ru/eco-ledger/internal/store"
)

// Имена операций в журнале коммитов, логах и метриках.
const (
	OpGenesis              = "genesis"
	OpMint                 = "mint"
	OpTransfer             = "transfer"
	OpTransferFrom         = "transfer_from"
	OpApprove              = "approve"
	OpSubmitAction         = "submit_action"
	OpVerifyAction         = "verify_action"
	OpRegisterAccount      = "register_account"
	OpRecordContribution   = "record_contribution"
	OpAddReputationPoints  = "add_reputation_points"
	OpResetMonthly         = "reset_monthly"
	OpResetYearly          = "reset_yearly"
	OpEvaluateBadges       = "evaluate_badges"
	OpAwardBadge           = "award_badge"
	OpCreateBadge          = "create_badge"
	OpSetBadgeActive       = "set_badge_active"
	OpCreateAchievement    = "create_achievement"
	OpSetAchievementActive = "set_achievement_active"
	OpUpdateProgress       = "update_achievement_progress"
	OpFundPool             = "fund_pool"
	OpDistributePeriodic   = "distribute_periodic"
	OpClaimRewards         = "claim_rewards"
)

// Ledger — точка входа во все операции леджера.
type Ledger struct {
	store   *store.Store
	admin   string
	metrics *metrics.LedgerMetrics

	token      *token.Service
	actions    *actions.Service
	reputation *reputation.Service
	badges     *badges.Service
	rewards    *rewards.Service
}

// New связывает компоненты леджера поверх st. m может быть nil.
func New(st *store.Store, cfg *config.Config, m *metrics.LedgerMetrics) *Ledger {
	tok := token.NewService(token.NewRepository(), cfg)
	rep := reputation.NewService(reputation.NewRepository(), cfg)
	bdg := badges.NewService(badges.NewRepository(), rep, cfg)
	rep.SetBadgeEvaluator(bdg)
	rwd := rewards.NewService(rewards.NewRepository(), tok, cfg)
	act := actions.NewService(actions.NewRepository(), rep, rwd, cfg)

	bdg.SetAwardHook(func(account string, badgeID uint64) {
		m.IncBadgeAwarded(badgeID)
		log.WithFields(log.Fields{
			"account": account,
			"badge":   badgeID,
		}).Info("Значок выдан")
	})

	return &Ledger{
		store:      st,
		admin:      cfg.AdminAccount,
		metrics:    m,
		token:      tok,
		actions:    act,
		reputation: rep,
		badges:     bdg,
		rewards:    rwd,
	}
}

// Init выполняет генезис: заполняет каталог пороговых значков.
// Повторный вызов ничего не записывает.
func (l *Ledger) Init(ctx context.Context) error {
	seeded, err := view(ctx, l.store, func(tx *store.Tx) (bool, error) {
		return l.badges.IsSeeded(tx)
	})
	if err != nil {
		return err
	}
	if !seeded {
		if err := l.apply(ctx, OpGenesis, func(tx *store.Tx) error {
			_, err := l.badges.Seed(tx)
			return err
		}); err != nil {
			return fmt.Errorf("ошибка генезиса: %w", err)
		}
	}

	supply, err := l.TotalSupply(ctx)
	if err != nil {
		return err
	}
	head := l.store.Head()
	l.metrics.SetSupply(supply)
	l.metrics.SetHeight(head.Height)

	log.WithFields(log.Fields{
		"height": head.Height,
		"supply": common.FormatNumber(supply),
	}).Info("Леджер готов")
	return nil
}

// Head возвращает голову журнала коммитов.
func (l *Ledger) Head() store.Head {
	return l.store.Head()
}

// apply выполняет изменяющую операцию и учитывает её в логах и метриках.
func (l *Ledger) apply(ctx context.Context, op string, fn func(tx *store.Tx) error) error {
	start := time.Now()
	err := l.store.Apply(ctx, op, fn)
	code := common.Code(err)
	l.metrics.ObserveOperation(op, code, time.Since(start))

	if err != nil {
		entry := log.WithFields(log.Fields{"op": op, "kind": code}).WithError(err)
		if code == "internal" {
			entry.Error("Операция леджера не выполнена")
		} else {
			entry.Debug("Операция леджера отклонена")
		}
		return err
	}
	l.metrics.SetHeight(l.store.Head().Height)
	return nil
}

// trackSupply обновит метрику объёма после коммита.
func (l *Ledger) trackSupply(tx *store.Tx) error {
	supply, err := l.token.TotalSupply(tx)
	if err != nil {
		return err
	}
	tx.AfterCommit(func() { l.metrics.SetSupply(supply) })
	return nil
}

func view[T any](ctx context.Context, st *store.Store, fn func(tx *store.Tx) (T, error)) (T, error) {
	var out T
	err := st.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	return out, err
}
