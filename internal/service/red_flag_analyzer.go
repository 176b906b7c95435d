package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/pkg/ai"
)

// redFlagAnalyzer derives the red-flag summary from the room's live state.
// When a language model is configured it rewrites the findings into prose;
// otherwise the raw findings are joined as-is.
type redFlagAnalyzer struct {
	tasks      repository.TaskRepository
	approvals  repository.ApprovalRepository
	documents  repository.DocumentRepository
	summarizer ai.Summarizer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRedFlagAnalyzer builds the default analyzer. summarizer may be nil.
func NewRedFlagAnalyzer(tasks repository.TaskRepository, approvals repository.ApprovalRepository, documents repository.DocumentRepository, summarizer ai.Summarizer, logger zerolog.Logger) RedFlagAnalyzer {
	return &redFlagAnalyzer{
		tasks:      tasks,
		approvals:  approvals,
		documents:  documents,
		summarizer: summarizer,
		logger:     logger.With().Str("component", "red_flag_analyzer").Logger(),
		now:        time.Now,
	}
}

func (a *redFlagAnalyzer) Analyze(ctx context.Context, dataRoomID uint) (string, error) {
	var findings []string

	openTasks, err := a.tasks.CountOpenByRoom(ctx, dataRoomID)
	if err != nil {
		return "", fmt.Errorf("count open tasks: %w", err)
	}
	if openTasks > 0 {
		findings = append(findings, fmt.Sprintf("%d unresolved tasks", openTasks))
	}

	pending, err := a.approvals.CountPendingByRoom(ctx, dataRoomID)
	if err != nil {
		return "", fmt.Errorf("count pending approvals: %w", err)
	}
	if pending > 0 {
		findings = append(findings, fmt.Sprintf("%d approvals awaiting a decision", pending))
	}

	docs, err := a.documents.CountByRoom(ctx, dataRoomID)
	if err != nil {
		return "", fmt.Errorf("count documents: %w", err)
	}
	if docs == 0 {
		findings = append(findings, "no documents have been uploaded")
	}

	if len(findings) == 0 {
		return "No red flags detected.", nil
	}

	raw := strings.Join(findings, "; ")

	if a.summarizer != nil {
		summary, err := a.summarizer.Summarize(ctx, raw)
		if err != nil {
			// The model is best-effort; fall back to the raw findings.
			a.logger.Warn().Err(err).Uint("data_room_id", dataRoomID).Msg("summarizer unavailable, using raw findings")
			return raw, nil
		}
		return summary, nil
	}

	return raw, nil
}
