package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

type analyzerFunc func(ctx context.Context, dataRoomID uint) (string, error)

func (f analyzerFunc) Analyze(ctx context.Context, dataRoomID uint) (string, error) {
	return f(ctx, dataRoomID)
}

func newRecomputeFixture(t *testing.T, name string, analyzer RedFlagAnalyzer) (*recomputeService, AccessService, models.DataRoom) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	runs := repository.NewRecomputeRunRepository(db)

	access := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	svc := NewRecomputeService(runs, access, noopRecorder{}, analyzer, 10*time.Minute, testLogger())

	room := seedRoom(t, db, 1)
	return svc, access, room
}

func TestRecomputeTriggerCompletesRun(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, dataRoomID uint) (string, error) {
		return "No red flags detected.", nil
	})
	svc, _, room := newRecomputeFixture(t, "recompute_completes", analyzer)
	ctx := context.Background()

	accepted, err := svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)
	require.NotEmpty(t, accepted.RunID)
	require.Equal(t, models.RunStatusProcessing, accepted.Status)
	require.Contains(t, accepted.PollURL, accepted.RunID)

	svc.Wait()

	run, err := svc.Get(ctx, room.ID, 1, accepted.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCompleted, run.Status)
	require.Equal(t, "No red flags detected.", run.Summary)
	require.NotNil(t, run.FinishedAt)
}

func TestRecomputeTriggerRecordsFailure(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, dataRoomID uint) (string, error) {
		return "", errors.New("upstream unavailable")
	})
	svc, _, room := newRecomputeFixture(t, "recompute_failure", analyzer)
	ctx := context.Background()

	accepted, err := svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)

	svc.Wait()

	run, err := svc.Get(ctx, room.ID, 1, accepted.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusFailed, run.Status)
	require.Equal(t, "upstream unavailable", run.Error)
}

func TestRecomputeCooldownThrottlesRetrigger(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, dataRoomID uint) (string, error) {
		return "ok", nil
	})
	svc, _, room := newRecomputeFixture(t, "recompute_cooldown", analyzer)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)
	svc.Wait()

	svc.now = func() time.Time { return base.Add(5 * time.Minute) }
	_, err = svc.Trigger(ctx, room.ID, 1, false)
	limited, ok := AsRateLimited(err)
	require.True(t, ok)
	require.Equal(t, 300, limited.RetryAfterSeconds)

	// Force bypasses the cooldown.
	forced, err := svc.Trigger(ctx, room.ID, 1, true)
	require.NoError(t, err)
	require.NotEmpty(t, forced.RunID)
	svc.Wait()

	// The forced run resets the window; a later trigger goes through once
	// the cooldown has elapsed.
	svc.now = func() time.Time { return base.Add(16 * time.Minute) }
	_, err = svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)
	svc.Wait()
}

func TestRecomputeRejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	analyzer := analyzerFunc(func(ctx context.Context, dataRoomID uint) (string, error) {
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	svc, _, room := newRecomputeFixture(t, "recompute_concurrent", analyzer)
	ctx := context.Background()

	accepted, err := svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)

	_, err = svc.Trigger(ctx, room.ID, 1, false)
	require.ErrorIs(t, err, ErrRunInProgress)

	// Even force cannot stack a second run on a processing one.
	_, err = svc.Trigger(ctx, room.ID, 1, true)
	require.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	svc.Wait()

	run, err := svc.Get(ctx, room.ID, 1, accepted.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCompleted, run.Status)
}

func TestRecomputeCancelFinalisesRun(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, dataRoomID uint) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc, _, room := newRecomputeFixture(t, "recompute_cancel", analyzer)
	ctx := context.Background()

	accepted, err := svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, room.ID, 1, accepted.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.FinishedAt)

	svc.Wait()

	// The background goroutine must not overwrite the cancelled row.
	run, err := svc.Get(ctx, room.ID, 1, accepted.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCancelled, run.Status)

	// Cancelling a terminal run is a no-op.
	again, err := svc.Cancel(ctx, room.ID, 1, accepted.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCancelled, again.Status)
}

func TestRecomputeRunScopedToRoom(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, dataRoomID uint) (string, error) {
		return "ok", nil
	})
	svc, _, room := newRecomputeFixture(t, "recompute_scope", analyzer)
	ctx := context.Background()

	_, err := svc.Trigger(ctx, room.ID, 1, false)
	require.NoError(t, err)
	svc.Wait()

	_, err = svc.Get(ctx, room.ID, 1, "not-a-run")
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = svc.Trigger(ctx, room.ID, 2, false)
	require.ErrorIs(t, err, ErrForbidden)
}
