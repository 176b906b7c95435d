package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/observability"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit record.
type ActivityEntry struct {
	DataRoomID   uint
	ResourceType string
	ResourceID   *uint
	ActorID      uint
	Action       string
	Detail       map[string]interface{}
}

// ActivityRecorder appends audit records. Record never returns an error:
// audit persistence failures are logged and counted, not surfaced, so a
// mutation that already committed is not rolled back over its audit row.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// FeedPublisher pushes recorded entries to live feed subscribers.
type FeedPublisher interface {
	PublishActivity(ctx context.Context, entry dto.ActivityResponse)
}

// ActivityService exposes query and export operations over the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, dataRoomID uint, filter repository.ActivityLogFilter) (dto.ActivityListResponse, error)
	ExportCSV(ctx context.Context, dataRoomID uint) ([]byte, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	feed      FeedPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewActivityService constructs the activity service. feed may be nil.
func NewActivityService(repo repository.ActivityLogRepository, feed FeedPublisher, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		feed:      feed,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	resourceType := strings.ToLower(strings.TrimSpace(entry.ResourceType))
	if action == "" || resourceType == "" {
		s.logger.Warn().Uint("data_room_id", entry.DataRoomID).Msg("activity entry missing action or resource type, dropped")
		observability.AuditEntriesDropped().WithLabelValues("invalid").Inc()
		return
	}

	model := models.ActivityLog{
		DataRoomID:   entry.DataRoomID,
		ResourceType: resourceType,
		ResourceID:   entry.ResourceID,
		ActorID:      entry.ActorID,
		Action:       action,
		Detail:       s.sanitizeDetail(entry.Detail),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).
			Uint("data_room_id", entry.DataRoomID).
			Str("action", action).
			Msg("failed to persist activity entry")
		observability.AuditEntriesDropped().WithLabelValues("store").Inc()
		return
	}

	observability.AuditEntriesRecorded().Inc()

	if s.feed != nil {
		s.feed.PublishActivity(ctx, dto.NewActivityResponse(model))
	}
}

func (s *activityService) List(ctx context.Context, dataRoomID uint, filter repository.ActivityLogFilter) (dto.ActivityListResponse, error) {
	entries, total, err := s.repo.List(ctx, dataRoomID, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	window := filter.Pagination.Normalize()
	return dto.ActivityListResponse{
		Items:      dto.NewActivityResponseSlice(entries),
		Pagination: dto.NewPaginationMeta(window.Page, window.PageSize, total),
	}, nil
}

// ExportCSV serializes the container's complete audit history, oldest first.
// Column order mirrors the table so a re-parse reproduces every row.
func (s *activityService) ExportCSV(ctx context.Context, dataRoomID uint) ([]byte, error) {
	entries, err := s.repo.ListChronological(ctx, dataRoomID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	header := []string{"id", "actor_id", "action", "resource_type", "resource_id", "detail", "created_at"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		resourceID := ""
		if entry.ResourceID != nil {
			resourceID = strconv.FormatUint(uint64(*entry.ResourceID), 10)
		}

		detail := ""
		if len(entry.Detail) > 0 {
			encoded, err := json.Marshal(entry.Detail)
			if err != nil {
				return nil, fmt.Errorf("failed to encode detail for entry %d: %w", entry.ID, err)
			}
			detail = string(encoded)
		}

		record := []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			strconv.FormatUint(uint64(entry.ActorID), 10),
			entry.Action,
			entry.ResourceType,
			resourceID,
			detail,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	observability.ActivityExportsTotal().Inc()

	return []byte(buf.String()), nil
}

func (s *activityService) sanitizeDetail(detail map[string]interface{}) datatypes.JSONMap {
	if detail == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range detail {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		if text, ok := value.(string); ok {
			sanitized[key] = s.sanitizer.Sanitize(text)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
