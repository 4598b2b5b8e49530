package ledger

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/actions"
	"serotonyl.ru/eco-ledger/internal/store"
)

const (
	admin  = "admin"
	escrow = "ledger.escrow"
)

func newTestLedger(t *testing.T) (*Ledger, *store.Memory) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	st, err := store.Open(ctx, mem)
	require.NoError(t, err)

	cfg := &config.Config{
		AdminAccount:     admin,
		CustodyAccount:   escrow,
		ActionsMinPoints: 1,
		ActionsMaxPoints: 1000,
	}
	l := New(st, cfg, nil)
	require.NoError(t, l.Init(ctx))
	return l, mem
}

func TestInitIsIdempotent(t *testing.T) {
	l, mem := newTestLedger(t)
	height := l.Head().Height
	commits := len(mem.Commits())

	require.NoError(t, l.Init(context.Background()))
	assert.Equal(t, height, l.Head().Height)
	assert.Len(t, mem.Commits(), commits)

	b, err := l.Badge(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), b.Requirement)
}

func TestRepeatRegisterAccountIsStateNeutral(t *testing.T) {
	ctx := context.Background()
	l, mem := newTestLedger(t)

	require.NoError(t, l.RegisterAccount(ctx, "x"))
	head := l.Head()
	snapshot := mem.Snapshot()
	commits := len(mem.Commits())

	for i := 0; i < 3; i++ {
		require.NoError(t, l.RegisterAccount(ctx, "x"))
	}
	assert.Equal(t, head, l.Head())
	assert.Equal(t, snapshot, mem.Snapshot())
	assert.Len(t, mem.Commits(), commits)

	// Перевод самому себе тоже ничего не записывает
	require.NoError(t, l.Mint(ctx, admin, "x", 5))
	head, snapshot, commits = l.Head(), mem.Snapshot(), len(mem.Commits())
	require.NoError(t, l.Transfer(ctx, "x", "x", "x", 5))
	assert.Equal(t, head, l.Head())
	assert.Equal(t, snapshot, mem.Snapshot())
	assert.Len(t, mem.Commits(), commits)
}

func TestEndToEndRecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	id, err := l.SubmitAction(ctx, "x", actions.Recycle, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	a, err := l.Action(ctx, "x", 1)
	require.NoError(t, err)
	assert.Equal(t, actions.Unverified, a.Status)

	count, err := l.ActionCount(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	supplyBefore, err := l.TotalSupply(ctx)
	require.NoError(t, err)

	a, err = l.VerifyAction(ctx, admin, "x", 1)
	require.NoError(t, err)
	assert.Equal(t, actions.Verified, a.Status)

	supply, err := l.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, supplyBefore+10, supply)

	balance, err := l.BalanceOf(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)

	rec, err := l.Reputation(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.VerifiedActions)
	assert.Equal(t, uint64(10), rec.TotalPoints)

	sum, err := l.Account(ctx, "x")
	require.NoError(t, err)
	require.NotNil(t, sum.Profile)
	require.NotNil(t, sum.Reputation)
	assert.Equal(t, uint64(1), sum.Actions)
	assert.Equal(t, uint64(10), sum.Balance)
	assert.Empty(t, sum.Badges)
}

func TestVerifyActionTwiceLeavesStateIdentical(t *testing.T) {
	ctx := context.Background()
	l, mem := newTestLedger(t)

	_, err := l.SubmitAction(ctx, "x", actions.PlantTree, 100)
	require.NoError(t, err)
	_, err = l.VerifyAction(ctx, admin, "x", 1)
	require.NoError(t, err)

	snapshot := mem.Snapshot()
	head := l.Head()

	_, err = l.VerifyAction(ctx, admin, "x", 1)
	assert.ErrorIs(t, err, common.ErrAlreadyVerified)
	assert.Equal(t, snapshot, mem.Snapshot())
	assert.Equal(t, head, l.Head())
}

func TestVerifyRollsBackWhenMintFails(t *testing.T) {
	ctx := context.Background()
	l, mem := newTestLedger(t)

	require.NoError(t, l.Mint(ctx, admin, "whale", math.MaxUint64-5))
	_, err := l.SubmitAction(ctx, "x", actions.SaveEnergy, 10)
	require.NoError(t, err)

	snapshot := mem.Snapshot()
	_, err = l.VerifyAction(ctx, admin, "x", 1)
	assert.ErrorIs(t, err, common.ErrAmountOverflow)
	assert.Equal(t, snapshot, mem.Snapshot())

	a, err := l.Action(ctx, "x", 1)
	require.NoError(t, err)
	assert.Equal(t, actions.Unverified, a.Status)

	_, err = l.Reputation(ctx, "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestThresholdBadgesAt250Points(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	// Посадка деревьев: 25 очков × 10
	require.NoError(t, l.AddReputationPoints(ctx, admin, "x", 5, 10))

	for id, want := range map[uint64]bool{1: true, 2: true, 3: false, 4: false} {
		has, err := l.HasBadge(ctx, "x", id)
		require.NoError(t, err)
		assert.Equal(t, want, has, "badge %d", id)
	}

	require.NoError(t, l.EvaluateBadges(ctx, "x"))
	awards, err := l.Badges(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, awards, 2)

	err = l.AddReputationPoints(ctx, "x", "x", 5, 10)
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
}

func TestVerificationCrossesThreshold(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	// Зелёный транспорт даёт 20 очков репутации за действие
	for i := 0; i < 3; i++ {
		id, err := l.SubmitAction(ctx, "x", actions.GreenCommute, 5)
		require.NoError(t, err)
		_, err = l.VerifyAction(ctx, admin, "x", id)
		require.NoError(t, err)
	}

	has, err := l.HasBadge(ctx, "x", 1)
	require.NoError(t, err)
	assert.True(t, has)

	awards, err := l.Badges(ctx, "x")
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Empty(t, awards[0].VerifiedBy)
}

func TestPeriodicDistributionAndClaim(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	require.NoError(t, l.FundPool(ctx, admin, 100))
	supply, err := l.TotalSupply(ctx)
	require.NoError(t, err)

	d, err := l.DistributePeriodic(ctx, admin, []string{"a", "b", "c"}, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(33), d.Share)

	after, err := l.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, supply, after)

	_, err = l.ClaimRewards(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	n, err := l.ClaimRewards(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, uint64(33), n)

	_, err = l.ClaimRewards(ctx, "b")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	accrued, err := l.Accrued(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, accrued)

	pool, err := l.BalanceOf(ctx, escrow)
	require.NoError(t, err)
	assert.Equal(t, uint64(67), pool)

	err = l.Transfer(ctx, escrow, escrow, "b", 1)
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
}

func TestUnauthorizedMintLeavesState(t *testing.T) {
	ctx := context.Background()
	l, mem := newTestLedger(t)

	snapshot := mem.Snapshot()
	err := l.Mint(ctx, "x", "x", 100)
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
	assert.Equal(t, snapshot, mem.Snapshot())
}

func TestReadsAfterPeriodReset(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	require.NoError(t, l.RecordContribution(ctx, "x", "x", 1, 4))
	p, err := l.ResetMonthly(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), p.Month)

	profile, err := l.Profile(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), profile.MonthlyScore)

	c, err := l.Contribution(ctx, "x", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), c.Monthly)
}

// Общий объём равен сумме балансов при любом чередовании операций леджера.
func TestLedgerConservation(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	accounts := []string{"a", "b", "c", escrow}
	types := []actions.ActionType{actions.Recycle, actions.SaveEnergy, actions.SaveWater, actions.GreenCommute, actions.PlantTree}
	rng := rand.New(rand.NewSource(7))

	var submitted []struct {
		account string
		id      uint64
	}
	for i := 0; i < 300; i++ {
		acc := accounts[rng.Intn(3)]
		other := accounts[rng.Intn(len(accounts))]
		amount := uint64(rng.Intn(40) + 1)

		switch rng.Intn(6) {
		case 0:
			id, err := l.SubmitAction(ctx, acc, types[rng.Intn(len(types))], amount)
			require.NoError(t, err)
			submitted = append(submitted, struct {
				account string
				id      uint64
			}{acc, id})
		case 1:
			if len(submitted) > 0 {
				s := submitted[rng.Intn(len(submitted))]
				_, _ = l.VerifyAction(ctx, admin, s.account, s.id)
			}
		case 2:
			_ = l.Transfer(ctx, acc, acc, other, amount)
		case 3:
			_ = l.FundPool(ctx, admin, amount)
		case 4:
			_, _ = l.DistributePeriodic(ctx, admin, []string{acc, other}, amount)
		case 5:
			_, _ = l.ClaimRewards(ctx, acc)
		}

		var sum uint64
		for _, a := range accounts {
			b, err := l.BalanceOf(ctx, a)
			require.NoError(t, err)
			sum += b
		}
		supply, err := l.TotalSupply(ctx)
		require.NoError(t, err)
		require.Equal(t, supply, sum, "step %d", i)
	}
}
