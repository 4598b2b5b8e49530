package ledger

import (
	"context"

	"serotonyl.ru/eco-ledger/internal/features/badges"
	"serotonyl.ru/eco-ledger/internal/store"
)

// EvaluateBadges проверяет пороговые значки по текущему итогу очков аккаунта.
// Вызывать может кто угодно: проверка только выдаёт заслуженные значки.
func (l *Ledger) EvaluateBadges(ctx context.Context, account string) error {
	return l.apply(ctx, OpEvaluateBadges, func(tx *store.Tx) error {
		rec, err := l.reputation.Reputation(tx, account)
		if err != nil {
			return err
		}
		return l.badges.EvaluateBadges(tx, account, rec.TotalPoints)
	})
}

// AwardBadge — ручная выдача значка администратором.
func (l *Ledger) AwardBadge(ctx context.Context, caller, account string, badgeID uint64) error {
	return l.apply(ctx, OpAwardBadge, func(tx *store.Tx) error {
		return l.badges.AwardBadge(tx, caller, account, badgeID)
	})
}

// CreateBadge добавляет значок в каталог.
func (l *Ledger) CreateBadge(ctx context.Context, caller, name, description string, kind badges.RequirementKind, requirement uint64) (uint64, error) {
	var id uint64
	err := l.apply(ctx, OpCreateBadge, func(tx *store.Tx) error {
		var err error
		id, err = l.badges.CreateBadge(tx, caller, name, description, kind, requirement)
		return err
	})
	return id, err
}

func (l *Ledger) SetBadgeActive(ctx context.Context, caller string, badgeID uint64, active bool) error {
	return l.apply(ctx, OpSetBadgeActive, func(tx *store.Tx) error {
		return l.badges.SetBadgeActive(tx, caller, badgeID, active)
	})
}

// CreateAchievement добавляет достижение в каталог.
func (l *Ledger) CreateAchievement(ctx context.Context, caller, name string, category uint8, pointReward uint64, requirement string) (uint64, error) {
	var id uint64
	err := l.apply(ctx, OpCreateAchievement, func(tx *store.Tx) error {
		var err error
		id, err = l.badges.CreateAchievement(tx, caller, name, category, pointReward, requirement)
		return err
	})
	return id, err
}

func (l *Ledger) SetAchievementActive(ctx context.Context, caller string, achievementID uint64, active bool) error {
	return l.apply(ctx, OpSetAchievementActive, func(tx *store.Tx) error {
		return l.badges.SetAchievementActive(tx, caller, achievementID, active)
	})
}

// UpdateAchievementProgress записывает прогресс по достижению. Только администратор.
func (l *Ledger) UpdateAchievementProgress(ctx context.Context, caller, account string, achievementID uint64, progress uint8) (badges.Progress, error) {
	var p badges.Progress
	err := l.apply(ctx, OpUpdateProgress, func(tx *store.Tx) error {
		var err error
		p, err = l.badges.UpdateAchievementProgress(tx, caller, account, achievementID, progress)
		return err
	})
	return p, err
}

func (l *Ledger) Badge(ctx context.Context, badgeID uint64) (badges.Badge, error) {
	return view(ctx, l.store, func(tx *store.Tx) (badges.Badge, error) {
		return l.badges.Badge(tx, badgeID)
	})
}

func (l *Ledger) Achievement(ctx context.Context, achievementID uint64) (badges.Achievement, error) {
	return view(ctx, l.store, func(tx *store.Tx) (badges.Achievement, error) {
		return l.badges.Achievement(tx, achievementID)
	})
}

// Badges возвращает значки аккаунта в порядке выдачи.
func (l *Ledger) Badges(ctx context.Context, account string) ([]badges.Award, error) {
	return view(ctx, l.store, func(tx *store.Tx) ([]badges.Award, error) {
		return l.badges.Badges(tx, account)
	})
}

func (l *Ledger) HasBadge(ctx context.Context, account string, badgeID uint64) (bool, error) {
	return view(ctx, l.store, func(tx *store.Tx) (bool, error) {
		return l.badges.HasBadge(tx, account, badgeID)
	})
}

func (l *Ledger) Progress(ctx context.Context, account string, achievementID uint64) (badges.Progress, error) {
	return view(ctx, l.store, func(tx *store.Tx) (badges.Progress, error) {
		return l.badges.Progress(tx, account, achievementID)
	})
}
