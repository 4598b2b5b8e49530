package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/features/reputation"
)

type fakeResetter struct {
	callers []string
	periods reputation.Periods
	err     error
}

func (f *fakeResetter) ResetMonthly(_ context.Context, caller string) (reputation.Periods, error) {
	f.callers = append(f.callers, caller)
	f.periods.Month++
	return f.periods, f.err
}

func (f *fakeResetter) ResetYearly(_ context.Context, caller string) (reputation.Periods, error) {
	f.callers = append(f.callers, caller)
	f.periods.Year++
	return f.periods, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		AdminAccount:         "admin",
		AppTimezone:          "UTC",
		JobsMonthlyResetSpec: "0 0 1 * *",
		JobsYearlyResetSpec:  "5 0 1 1 *",
	}
}

func TestResetJobsRunAsAdmin(t *testing.T) {
	r := &fakeResetter{}
	s := NewScheduler(r, testConfig(), nil)

	s.run(context.Background(), JobMonthlyReset, s.resetMonthly)
	s.run(context.Background(), JobYearlyReset, s.resetYearly)

	assert.Equal(t, []string{"admin", "admin"}, r.callers)
	assert.Equal(t, reputation.Periods{Month: 1, Year: 1}, r.periods)
}

func TestRunSurvivesErrorsAndPanics(t *testing.T) {
	s := NewScheduler(&fakeResetter{err: errors.New("db down")}, testConfig(), nil)

	assert.NotPanics(t, func() {
		s.run(context.Background(), JobMonthlyReset, s.resetMonthly)
	})
	assert.NotPanics(t, func() {
		s.run(context.Background(), "boom", func(context.Context) error { panic("boom") })
	})
}

func TestStartRejectsBadSpec(t *testing.T) {
	cfg := testConfig()
	cfg.JobsMonthlyResetSpec = "whenever"
	s := NewScheduler(&fakeResetter{}, cfg, nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&fakeResetter{}, testConfig(), nil)
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := testConfig()
	cfg.AppTimezone = "Mars/Olympus"
	s := NewScheduler(&fakeResetter{}, cfg, nil)
	assert.Equal(t, "UTC", s.cron.Location().String())
}
