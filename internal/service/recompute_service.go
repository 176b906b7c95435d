package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/observability"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// RedFlagAnalyzer produces the red-flag summary for a data room. The
// expensive part of a recompute run lives behind this interface.
type RedFlagAnalyzer interface {
	Analyze(ctx context.Context, dataRoomID uint) (string, error)
}

// RecomputeService owns the durable run records and the cooldown throttle.
// A trigger responds immediately; the analysis itself runs in a background
// goroutine carrying a cancellable context, and its outcome is persisted so
// any node can answer a poll.
type RecomputeService interface {
	Trigger(ctx context.Context, roomID, userID uint, force bool) (dto.RecomputeAcceptedResponse, error)
	Get(ctx context.Context, roomID, userID uint, runID string) (dto.RecomputeRunResponse, error)
	Cancel(ctx context.Context, roomID, userID uint, runID string) (dto.RecomputeRunResponse, error)
}

type recomputeService struct {
	runs     repository.RecomputeRunRepository
	access   AccessChecker
	activity ActivityRecorder
	analyzer RedFlagAnalyzer
	cooldown time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRecomputeService builds the recompute service.
func NewRecomputeService(runs repository.RecomputeRunRepository, access AccessChecker, activity ActivityRecorder, analyzer RedFlagAnalyzer, cooldown time.Duration, logger zerolog.Logger) *recomputeService {
	if cooldown <= 0 {
		cooldown = 10 * time.Minute
	}
	return &recomputeService{
		runs:     runs,
		access:   access,
		activity: activity,
		analyzer: analyzer,
		cooldown: cooldown,
		logger:   logger.With().Str("component", "recompute_service").Logger(),
		tracer:   otel.Tracer("github.com/oppspot/oppspot-api/internal/service/recompute"),
		now:      time.Now,
		cancels:  make(map[string]context.CancelFunc),
	}
}

func (s *recomputeService) Trigger(ctx context.Context, roomID, userID uint, force bool) (dto.RecomputeAcceptedResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.RecomputeAcceptedResponse{}, err
	}

	now := s.now()

	latest, err := s.runs.LatestByRoom(ctx, roomID, models.RunKindRedFlags)
	switch {
	case err == nil:
		if latest.Status == models.RunStatusProcessing {
			return dto.RecomputeAcceptedResponse{}, ErrRunInProgress
		}
		if !force {
			elapsed := now.Sub(latest.StartedAt)
			if elapsed < s.cooldown {
				remaining := s.cooldown - elapsed
				observability.RecomputeThrottled().Inc()
				return dto.RecomputeAcceptedResponse{}, &RateLimitedError{
					RetryAfterSeconds: int(math.Ceil(remaining.Seconds())),
				}
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First run for this room.
	default:
		return dto.RecomputeAcceptedResponse{}, err
	}

	run := models.RecomputeRun{
		ID:          uuid.NewString(),
		DataRoomID:  roomID,
		Kind:        models.RunKindRedFlags,
		Status:      models.RunStatusProcessing,
		TriggeredBy: userID,
		StartedAt:   now,
	}

	if err := s.runs.Create(ctx, &run); err != nil {
		return dto.RecomputeAcceptedResponse{}, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(runCtx, run)

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "recompute_run",
		ActorID:      userID,
		Action:       "red_flags.recompute_started",
		Detail:       map[string]interface{}{"run_id": run.ID, "forced": force},
	})

	return dto.RecomputeAcceptedResponse{
		RunID:   run.ID,
		Status:  run.Status,
		PollURL: pollURL(roomID, run.ID),
	}, nil
}

func (s *recomputeService) Get(ctx context.Context, roomID, userID uint, runID string) (dto.RecomputeRunResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.RecomputeRunResponse{}, err
	}

	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecomputeRunResponse{}, ErrRunNotFound
		}
		return dto.RecomputeRunResponse{}, err
	}
	if run.DataRoomID != roomID {
		return dto.RecomputeRunResponse{}, ErrRunNotFound
	}

	return dto.NewRecomputeRunResponse(run), nil
}

// Cancel signals the run's context and marks the row cancelled. Cancelling a
// terminal run returns its current state unchanged.
func (s *recomputeService) Cancel(ctx context.Context, roomID, userID uint, runID string) (dto.RecomputeRunResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.RecomputeRunResponse{}, err
	}

	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecomputeRunResponse{}, ErrRunNotFound
		}
		return dto.RecomputeRunResponse{}, err
	}
	if run.DataRoomID != roomID {
		return dto.RecomputeRunResponse{}, ErrRunNotFound
	}

	if run.Terminal() {
		return dto.NewRecomputeRunResponse(run), nil
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[runID]; ok {
		cancel()
	}
	s.mu.Unlock()

	finished := s.now()
	run.Status = models.RunStatusCancelled
	run.FinishedAt = &finished
	if err := s.runs.Update(ctx, &run); err != nil {
		return dto.RecomputeRunResponse{}, err
	}

	observability.RecomputeRuns().WithLabelValues(models.RunStatusCancelled).Inc()
	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "recompute_run",
		ActorID:      userID,
		Action:       "red_flags.recompute_cancelled",
		Detail:       map[string]interface{}{"run_id": runID},
	})

	return dto.NewRecomputeRunResponse(run), nil
}

// Wait blocks until all in-flight runs have drained. Used on shutdown and
// in tests.
func (s *recomputeService) Wait() {
	s.wg.Wait()
}

func (s *recomputeService) execute(ctx context.Context, run models.RecomputeRun) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, run.ID)
		s.mu.Unlock()
	}()

	ctx, span := s.tracer.Start(ctx, "recompute.red_flags", trace.WithAttributes(
		attribute.String("run.id", run.ID),
		attribute.Int64("run.data_room_id", int64(run.DataRoomID)),
	))
	defer span.End()

	summary, err := s.analyzer.Analyze(ctx, run.DataRoomID)

	// A cancelled run was already finalised by Cancel; leave its row alone.
	stored, loadErr := s.runs.GetByID(context.Background(), run.ID)
	if loadErr != nil {
		s.logger.Error().Err(loadErr).Str("run_id", run.ID).Msg("failed to reload recompute run")
		return
	}
	if stored.Terminal() {
		return
	}

	finished := s.now()
	stored.FinishedAt = &finished

	if err != nil {
		span.RecordError(err)
		stored.Status = models.RunStatusFailed
		stored.Error = err.Error()
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("recompute run failed")
	} else {
		stored.Status = models.RunStatusCompleted
		stored.Summary = summary
	}

	if err := s.runs.Update(context.Background(), &stored); err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to finalise recompute run")
		return
	}

	observability.RecomputeRuns().WithLabelValues(stored.Status).Inc()
}

func pollURL(roomID uint, runID string) string {
	return fmt.Sprintf("/api/v1/data-rooms/%d/red-flags/runs/%s", roomID, runID)
}
