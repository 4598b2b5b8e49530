package rewards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-ledger/internal/common"
	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/token"
	"serotonyl.ru/eco-ledger/internal/store"
)

const admin = "admin"

type fixture struct {
	st    *store.Store
	svc   *Service
	token *token.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemory())
	require.NoError(t, err)
	cfg := &config.Config{AdminAccount: admin, CustodyAccount: "ledger.escrow"}
	tok := token.NewService(token.NewRepository(), cfg)
	return &fixture{st: st, svc: NewService(NewRepository(), tok, cfg), token: tok}
}

func (f *fixture) apply(fn func(tx *store.Tx) error) error {
	return f.st.Apply(context.Background(), "test", fn)
}

func (f *fixture) fund(t *testing.T, amount uint64) {
	t.Helper()
	require.NoError(t, f.apply(func(tx *store.Tx) error { return f.svc.FundPool(tx, admin, amount) }))
}

func (f *fixture) distribute(winners []string, pool uint64) (Distribution, error) {
	var d Distribution
	err := f.apply(func(tx *store.Tx) error {
		var err error
		d, err = f.svc.DistributePeriodic(tx, admin, winners, pool)
		return err
	})
	return d, err
}

func (f *fixture) claim(account string) (uint64, error) {
	var n uint64
	err := f.apply(func(tx *store.Tx) error {
		var err error
		n, err = f.svc.ClaimRewards(tx, account)
		return err
	})
	return n, err
}

func (f *fixture) read(t *testing.T, fn func(tx *store.Tx) (uint64, error)) uint64 {
	t.Helper()
	var n uint64
	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		var err error
		n, err = fn(tx)
		return err
	}))
	return n
}

func TestDistributePeriodicRoundingLoss(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 100)

	d, err := f.distribute([]string{"a", "b", "c"}, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(33), d.Share)
	assert.Equal(t, uint64(1), d.Remainder)
	assert.Equal(t, uint64(1), d.ID)

	for _, acc := range []string{"a", "b", "c"} {
		got := f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Accrued(tx, acc) })
		assert.Equal(t, uint64(33), got, acc)
	}
	// Распределение не чеканит: объём равен пополнению пула
	supply := f.read(t, func(tx *store.Tx) (uint64, error) { return f.token.TotalSupply(tx) })
	assert.Equal(t, uint64(100), supply)
	assert.Equal(t, uint64(99), f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Outstanding(tx) }))

	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		stored, err := f.svc.Distribution(tx, 1)
		assert.Equal(t, d, stored)
		return err
	}))
}

func TestDistributePeriodicRejects(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 100)

	err := f.apply(func(tx *store.Tx) error {
		_, err := f.svc.DistributePeriodic(tx, "a", []string{"a"}, 10)
		return err
	})
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	_, err = f.distribute(nil, 10)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = f.distribute([]string{"a", "b", "c"}, 2)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = f.distribute([]string{"a", ""}, 10)
	assert.ErrorIs(t, err, common.ErrInvalidAccount)
}

func TestDistributePeriodicDuplicateWinners(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 30)

	_, err := f.distribute([]string{"a", "a", "b"}, 30)
	require.NoError(t, err)
	got := f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Accrued(tx, "a") })
	assert.Equal(t, uint64(20), got)
}

func TestClaimRewards(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 100)

	_, err := f.claim("a")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	_, err = f.distribute([]string{"a", "b", "c"}, 100)
	require.NoError(t, err)

	n, err := f.claim("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(33), n)

	_, err = f.claim("a")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	assert.Equal(t, uint64(33), f.read(t, func(tx *store.Tx) (uint64, error) { return f.token.BalanceOf(tx, "a") }))
	assert.Equal(t, uint64(67), f.read(t, func(tx *store.Tx) (uint64, error) { return f.token.BalanceOf(tx, "ledger.escrow") }))
	assert.Equal(t, uint64(100), f.read(t, func(tx *store.Tx) (uint64, error) { return f.token.TotalSupply(tx) }))
	assert.Zero(t, f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Accrued(tx, "a") }))
	assert.Equal(t, uint64(66), f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Outstanding(tx) }))

	require.NoError(t, f.st.View(context.Background(), func(tx *store.Tx) error {
		c, err := f.svc.Claimed(tx, "a")
		assert.Equal(t, uint64(33), c.Total)
		assert.Equal(t, uint64(1), c.Claims)
		return err
	}))
}

func TestDistributePeriodicBeyondPoolRejected(t *testing.T) {
	f := newFixture(t)
	f.fund(t, 10)

	_, err := f.distribute([]string{"a", "b"}, 1000)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	for _, acc := range []string{"a", "b"} {
		assert.Zero(t, f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Accrued(tx, acc) }), acc)
	}
	assert.Zero(t, f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Outstanding(tx) }))

	// Начисленное, но не полученное, повторно распределить нельзя
	_, err = f.distribute([]string{"a"}, 8)
	require.NoError(t, err)
	_, err = f.distribute([]string{"b"}, 3)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	_, err = f.distribute([]string{"b"}, 2)
	require.NoError(t, err)

	// Каждое начисление получается ровно один раз
	for acc, want := range map[string]uint64{"a": 8, "b": 2} {
		n, err := f.claim(acc)
		require.NoError(t, err)
		assert.Equal(t, want, n, acc)
		_, err = f.claim(acc)
		assert.ErrorIs(t, err, common.ErrInsufficientBalance, acc)
	}
	assert.Zero(t, f.read(t, func(tx *store.Tx) (uint64, error) { return f.svc.Outstanding(tx) }))
	assert.Zero(t, f.read(t, func(tx *store.Tx) (uint64, error) { return f.token.BalanceOf(tx, "ledger.escrow") }))
}

func TestFundPoolRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	err := f.apply(func(tx *store.Tx) error { return f.svc.FundPool(tx, "a", 10) })
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
}

func TestMintOnVerification(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.apply(func(tx *store.Tx) error { return f.svc.MintOnVerification(tx, "a", 10) }))
	assert.Equal(t, uint64(10), f.read(t, func(tx *store.Tx) (uint64, error) { return f.token.BalanceOf(tx, "a") }))
}
