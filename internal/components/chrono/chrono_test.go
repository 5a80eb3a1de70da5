package chrono

import (
	"context"
	"errors"
	"testing"
	"time"

	"playscraper/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStandardTime(t *testing.T) {
	utc := NewStandardTime(time.UTC)
	require.Equal(t, time.UTC, utc.Now().Location())
	require.Equal(t, time.Local, NewStandardTime(nil).Location())
}

func TestStandardCron(t *testing.T) {
	recorder := telemetry.NewRecorder()
	cron := NewStandardCron(NewStandardTime(time.UTC), recorder)

	require.Error(t, cron.Cron("not a schedule", func() {}))

	ran := make(chan struct{}, 1)
	require.NoError(t, cron.Cron("@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("cron job never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, cron.Stop(ctx))
}

func TestCronLogger(t *testing.T) {
	recorder := telemetry.NewRecorder()
	logger := cronLogger{tel: recorder}
	logger.Error(errors.New("boom"), "job failed", "entry", 1, "dangling")
	require.True(t, recorder.HasBroken("cron"))
}
