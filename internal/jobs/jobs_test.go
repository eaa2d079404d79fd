package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestPurgeResetTokens(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*mockPurger)
		message    string
	}{
		{
			name: "tokens purged",
			setupMocks: func(m *mockPurger) {
				m.On("PurgeExpiredResetTokens", mock.Anything).Return(int64(3), nil)
			},
			message: "expired reset tokens purged",
		},
		{
			name: "nothing to do",
			setupMocks: func(m *mockPurger) {
				m.On("PurgeExpiredResetTokens", mock.Anything).Return(int64(0), nil)
			},
		},
		{
			name: "store failure is logged",
			setupMocks: func(m *mockPurger) {
				m.On("PurgeExpiredResetTokens", mock.Anything).Return(int64(0), errors.New("db gone"))
			},
			message: "reset token purge failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			m := new(mockPurger)
			tt.setupMocks(m)

			PurgeResetTokens(zap.New(core), m)

			m.AssertExpectations(t)
			if tt.message == "" {
				assert.Zero(t, logs.Len())
				return
			}
			assert.Equal(t, 1, logs.FilterMessage(tt.message).Len())
		})
	}
}

func TestScheduler_AddResetTokenPurge(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	assert.NoError(t, s.AddResetTokenPurge("@hourly", new(mockPurger)))
	assert.NoError(t, s.AddResetTokenPurge("*/5 * * * *", new(mockPurger)))
	assert.Error(t, s.AddResetTokenPurge("every tuesday", new(mockPurger)))
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Stop()
}

func TestCronLogger_RecoveredPanicGoesToZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	clog := cronLogger{log: zap.New(core).Sugar()}

	job := cron.NewChain(cron.Recover(clog)).Then(cron.FuncJob(func() { panic("purge exploded") }))
	assert.NotPanics(t, job.Run)

	entries := logs.FilterMessage("cron: panic").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["error"], "purge exploded")
}
