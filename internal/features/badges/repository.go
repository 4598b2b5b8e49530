// Package badges — repository.go читает и пишет записи под префиксом badges/.
// Ключи:
//   - badges/badge/<id>, badges/next-badge-id
//   - badges/achievement/<id>, badges/next-achievement-id
//   - badges/award/<account>/<badge>, badges/owned/<account>
//   - badges/progress/<account>/<achievement>
//   - badges/genesis
package badges

import (
	"serotonyl.ru/eco-ledger/internal/store"
)

// Repository хранит каталоги, выданные значки и прогресс.
type Repository struct{}

// NewRepository создаёт репозиторий значков.
func NewRepository() *Repository {
	return &Repository{}
}

func badgeKey(id uint64) string {
	return store.Key("badges", "badge", store.ID(id))
}

func achievementKey(id uint64) string {
	return store.Key("badges", "achievement", store.ID(id))
}

func awardKey(account string, badgeID uint64) string {
	return store.Key("badges", "award", account, store.ID(badgeID))
}

func ownedKey(account string) string {
	return store.Key("badges", "owned", account)
}

func progressKey(account string, achievementID uint64) string {
	return store.Key("badges", "progress", account, store.ID(achievementID))
}

// nextID выдаёт очередной идентификатор счётчика key.
// Первый выданный идентификатор — first.
func (r *Repository) nextID(tx *store.Tx, key string, first uint64) (uint64, error) {
	next := first
	if _, err := tx.Get(key, &next); err != nil {
		return 0, err
	}
	if err := tx.Put(key, next+1); err != nil {
		return 0, err
	}
	return next, nil
}

// NextBadgeID выдаёт идентификатор нового значка.
func (r *Repository) NextBadgeID(tx *store.Tx) (uint64, error) {
	return r.nextID(tx, store.Key("badges", "next-badge-id"), uint64(len(Thresholds))+1)
}

// NextAchievementID выдаёт идентификатор нового достижения.
func (r *Repository) NextAchievementID(tx *store.Tx) (uint64, error) {
	return r.nextID(tx, store.Key("badges", "next-achievement-id"), 1)
}

// GetBadge возвращает значок и признак его существования.
func (r *Repository) GetBadge(tx *store.Tx, id uint64) (Badge, bool, error) {
	var b Badge
	ok, err := tx.Get(badgeKey(id), &b)
	return b, ok, err
}

// SaveBadge сохраняет значок.
func (r *Repository) SaveBadge(tx *store.Tx, b Badge) error {
	return tx.Put(badgeKey(b.ID), b)
}

// GetAchievement возвращает достижение и признак его существования.
func (r *Repository) GetAchievement(tx *store.Tx, id uint64) (Achievement, bool, error) {
	var a Achievement
	ok, err := tx.Get(achievementKey(id), &a)
	return a, ok, err
}

// SaveAchievement сохраняет достижение.
func (r *Repository) SaveAchievement(tx *store.Tx, a Achievement) error {
	return tx.Put(achievementKey(a.ID), a)
}

// GetAward возвращает выданный значок и признак его существования.
func (r *Repository) GetAward(tx *store.Tx, account string, badgeID uint64) (Award, bool, error) {
	var a Award
	ok, err := tx.Get(awardKey(account, badgeID), &a)
	return a, ok, err
}

// CreateAward сохраняет выдачу и добавляет значок в список владельца.
func (r *Repository) CreateAward(tx *store.Tx, account string, a Award) error {
	owned, err := r.GetOwned(tx, account)
	if err != nil {
		return err
	}
	if err := tx.Put(awardKey(account, a.BadgeID), a); err != nil {
		return err
	}
	return tx.Put(ownedKey(account), append(owned, a.BadgeID))
}

// GetOwned возвращает идентификаторы значков аккаунта в порядке выдачи.
func (r *Repository) GetOwned(tx *store.Tx, account string) ([]uint64, error) {
	var owned []uint64
	if _, err := tx.Get(ownedKey(account), &owned); err != nil {
		return nil, err
	}
	return owned, nil
}

// GetProgress возвращает прогресс по достижению (нулевой, если его не было).
func (r *Repository) GetProgress(tx *store.Tx, account string, achievementID uint64) (Progress, error) {
	var p Progress
	_, err := tx.Get(progressKey(account, achievementID), &p)
	return p, err
}

// SaveProgress сохраняет прогресс.
func (r *Repository) SaveProgress(tx *store.Tx, account string, achievementID uint64, p Progress) error {
	return tx.Put(progressKey(account, achievementID), p)
}

// IsSeeded сообщает, выполнен ли генезис каталога.
func (r *Repository) IsSeeded(tx *store.Tx) (bool, error) {
	return tx.Get(store.Key("badges", "genesis"), nil)
}

// MarkSeeded отмечает генезис каталога на текущей высоте.
func (r *Repository) MarkSeeded(tx *store.Tx) error {
	return tx.Put(store.Key("badges", "genesis"), tx.Height())
}
