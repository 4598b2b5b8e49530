package badges

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
	"serotonyl.ru/eco-ledger/internal/store"
)

const admin = "admin"

type fixture struct {
	st  *store.Store
	svc *Service
	rep *reputation.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemory())
	require.NoError(t, err)

	cfg := &config.Config{AdminAccount: admin}
	rep := reputation.NewService(reputation.NewRepository(), cfg)
	svc := NewService(NewRepository(), rep, cfg)
	rep.SetBadgeEvaluator(svc)

	f := &fixture{st: st, svc: svc, rep: rep}
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		_, err := svc.Seed(tx)
		return err
	}))
	return f
}

func (f *fixture) apply(fn func(tx *store.Tx) error) error {
	return f.st.Apply(context.Background(), "test", fn)
}

func (f *fixture) owned(t *testing.T, account string) []uint64 {
	t.Helper()
	var ids []uint64
	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		awards, err := f.svc.Badges(tx, account)
		for _, a := range awards {
			ids = append(ids, a.BadgeID)
		}
		return err
	}))
	return ids
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)

	var seeded bool
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		var err error
		seeded, err = f.svc.Seed(tx)
		return err
	}))
	assert.False(t, seeded)

	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		for _, th := range Thresholds {
			b, err := f.svc.Badge(tx, th.BadgeID)
			require.NoError(t, err)
			assert.Equal(t, th.Points, b.Requirement)
			assert.Equal(t, RequirePoints, b.Kind)
		}
		return nil
	}))

	var id uint64
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		var err error
		id, err = f.svc.CreateBadge(tx, admin, "Tree Hugger", "", RequireExternal, 0)
		return err
	}))
	assert.Equal(t, uint64(5), id)
}

func TestEvaluateBadgesThresholds(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.apply(func(tx *store.Tx) error {
		return f.svc.EvaluateBadges(tx, "alice", 250)
	}))
	assert.Equal(t, []uint64{1, 2}, f.owned(t, "alice"))

	require.NoError(t, f.apply(func(tx *store.Tx) error {
		return f.svc.EvaluateBadges(tx, "bob", 49)
	}))
	assert.Empty(t, f.owned(t, "bob"))
}

func TestEvaluateBadgesSkipsInactive(t *testing.T) {
	f := newFixture(t)
	setActive := func(active bool) {
		require.NoError(t, f.apply(func(tx *store.Tx) error {
			return f.svc.SetBadgeActive(tx, admin, 2, active)
		}))
	}
	evaluate := func(total uint64) {
		require.NoError(t, f.apply(func(tx *store.Tx) error {
			return f.svc.EvaluateBadges(tx, "alice", total)
		}))
	}

	setActive(false)
	evaluate(250)
	assert.Equal(t, []uint64{1}, f.owned(t, "alice"))

	setActive(true)
	evaluate(250)
	assert.Equal(t, []uint64{1, 2}, f.owned(t, "alice"))
}

func TestEvaluateBadgesBeforeSeed(t *testing.T) {
	st, err := store.Open(context.Background(), store.NewMemory())
	require.NoError(t, err)
	svc := NewService(NewRepository(), nil, &config.Config{AdminAccount: admin})

	require.NoError(t, st.Apply(context.Background(), "test", func(tx *store.Tx) error {
		return svc.EvaluateBadges(tx, "alice", 5000)
	}))
	require.NoError(t, st.View(context.Background(), func(tx *store.Tx) error {
		awards, err := svc.Badges(tx, "alice")
		assert.Empty(t, awards)
		return err
	}))
}

func TestEvaluateBadgesIsMonotonic(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.apply(func(tx *store.Tx) error {
		return f.svc.EvaluateBadges(tx, "alice", 60)
	}))
	var first Award
	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		var err error
		first, _, err = f.svc.repo.GetAward(tx, "alice", 1)
		return err
	}))

	for _, total := range []uint64{60, 60, 10, 1000} {
		require.NoError(t, f.apply(func(tx *store.Tx) error {
			return f.svc.EvaluateBadges(tx, "alice", total)
		}))
	}
	assert.Equal(t, []uint64{1, 2, 3, 4}, f.owned(t, "alice"))

	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		again, ok, err := f.svc.repo.GetAward(tx, "alice", 1)
		assert.True(t, ok)
		assert.Equal(t, first, again)
		return err
	}))
}

func TestAwardBadge(t *testing.T) {
	f := newFixture(t)

	var id uint64
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		var err error
		id, err = f.svc.CreateBadge(tx, admin, "Volunteer", "Helped at a cleanup", RequireExternal, 0)
		return err
	}))

	err := f.apply(func(tx *store.Tx) error { return f.svc.AwardBadge(tx, "alice", "alice", id) })
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	require.NoError(t, f.apply(func(tx *store.Tx) error { return f.svc.AwardBadge(tx, admin, "alice", id) }))

	err = f.apply(func(tx *store.Tx) error { return f.svc.AwardBadge(tx, admin, "alice", id) })
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	err = f.apply(func(tx *store.Tx) error { return f.svc.AwardBadge(tx, admin, "alice", 99) })
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, f.apply(func(tx *store.Tx) error { return f.svc.SetBadgeActive(tx, admin, id, false) }))
	err = f.apply(func(tx *store.Tx) error { return f.svc.AwardBadge(tx, admin, "bob", id) })
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		awards, err := f.svc.Badges(tx, "alice")
		require.Len(t, awards, 1)
		assert.Equal(t, admin, awards[0].VerifiedBy)
		return err
	}))
}

func TestCreateBadgeRejects(t *testing.T) {
	f := newFixture(t)

	err := f.apply(func(tx *store.Tx) error {
		_, err := f.svc.CreateBadge(tx, admin, "  ", "", RequirePoints, 10)
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = f.apply(func(tx *store.Tx) error {
		_, err := f.svc.CreateBadge(tx, admin, "Odd", "", RequirementKind("streak"), 10)
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAchievementProgress(t *testing.T) {
	f := newFixture(t)

	var id uint64
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		var err error
		id, err = f.svc.CreateAchievement(tx, admin, "Recycler", 1, 50, "Recycle 20 kg")
		return err
	}))

	update := func(progress uint8) (Progress, error) {
		var p Progress
		err := f.apply(func(tx *store.Tx) error {
			var err error
			p, err = f.svc.UpdateAchievementProgress(tx, admin, "alice", id, progress)
			return err
		})
		return p, err
	}

	p, err := update(40)
	require.NoError(t, err)
	assert.Equal(t, Progress{Value: 40, State: InProgress}, p)

	p, err = update(150)
	require.NoError(t, err)
	assert.Equal(t, MaxProgress, p.Value)
	assert.Equal(t, Completed, p.State)
	assert.NotZero(t, p.CompletedAt)

	// 50 / 10 очков категории = множитель 5
	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		rec, err := f.rep.Reputation(tx, "alice")
		assert.Equal(t, uint64(50), rec.TotalPoints)
		return err
	}))
	assert.Equal(t, []uint64{1}, f.owned(t, "alice"))

	_, err = update(100)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	p, err = update(10)
	require.NoError(t, err)
	assert.Equal(t, uint8(10), p.Value)
	assert.Equal(t, Completed, p.State)
}

func TestAchievementRewardBelowActionPoints(t *testing.T) {
	f := newFixture(t)

	var id uint64
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		var err error
		id, err = f.svc.CreateAchievement(tx, admin, "First Tree", 5, 3, "Plant a tree")
		return err
	}))
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		_, err := f.svc.UpdateAchievementProgress(tx, admin, "alice", id, 100)
		return err
	}))

	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		rec, err := f.rep.Reputation(tx, "alice")
		assert.Equal(t, uint64(25), rec.TotalPoints)
		return err
	}))
}

func TestAchievementProgressRejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateAchievementProgress(nil, "alice", "alice", 1, 10)
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	err = f.apply(func(tx *store.Tx) error {
		_, err := f.svc.UpdateAchievementProgress(tx, admin, "alice", 1, 10)
		return err
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	var id uint64
	require.NoError(t, f.apply(func(tx *store.Tx) error {
		var err error
		id, err = f.svc.CreateAchievement(tx, admin, "Saver", 3, 10, "")
		if err != nil {
			return err
		}
		return f.svc.SetAchievementActive(tx, admin, id, false)
	}))
	err = f.apply(func(tx *store.Tx) error {
		_, err := f.svc.UpdateAchievementProgress(tx, admin, "alice", id, 10)
		return err
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = f.apply(func(tx *store.Tx) error {
		_, err := f.svc.CreateAchievement(tx, admin, "Nope", 9, 10, "")
		return err
	})
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}

func TestAwardHookFiresAfterCommit(t *testing.T) {
	f := newFixture(t)

	var hooked []uint64
	f.svc.SetAwardHook(func(_ string, badgeID uint64) { hooked = append(hooked, badgeID) })

	_ = f.apply(func(tx *store.Tx) error {
		if err := f.svc.EvaluateBadges(tx, "alice", 500); err != nil {
			return err
		}
		return common.ErrInvalidAmount
	})
	assert.Empty(t, hooked)
	assert.Empty(t, f.owned(t, "alice"))

	require.NoError(t, f.apply(func(tx *store.Tx) error {
		return f.svc.EvaluateBadges(tx, "alice", 500)
	}))
	assert.Equal(t, []uint64{1, 2, 3}, hooked)
}
