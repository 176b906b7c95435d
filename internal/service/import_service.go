package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/observability"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// ErrEmptyImport is returned when the uploaded CSV contains no data rows.
var ErrEmptyImport = errors.New("import file contains no rows")

// companyImportHeader is the required CSV header, in order.
var companyImportHeader = []string{"name", "registration_no", "domain", "sector", "country"}

// ImportService ingests company CSV uploads. Each upload creates a durable
// job row updated as rows are processed, so progress survives restarts and
// can be polled from any node.
type ImportService interface {
	StartImport(ctx context.Context, userID uint, filename string, r io.Reader) (dto.ImportAcceptedResponse, error)
	GetJob(ctx context.Context, userID uint, jobID string) (dto.ImportJobResponse, error)
	ListCompanies(ctx context.Context, filter repository.CompanyFilter) (dto.CompanyListResponse, error)
	PurgeFinished(ctx context.Context, retention time.Duration) (int64, error)
}

type importService struct {
	jobs      repository.ImportJobRepository
	companies repository.CompanyRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewImportService builds the import service.
func NewImportService(jobs repository.ImportJobRepository, companies repository.CompanyRepository, logger zerolog.Logger) *importService {
	return &importService{
		jobs:      jobs,
		companies: companies,
		logger:    logger.With().Str("component", "import_service").Logger(),
		now:       time.Now,
	}
}

// StartImport reads the full CSV up front, records the job, then processes
// rows in a background goroutine. Header validation happens synchronously so
// malformed files fail before a job is created.
func (s *importService) StartImport(ctx context.Context, userID uint, filename string, r io.Reader) (dto.ImportAcceptedResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportAcceptedResponse{}, ErrEmptyImport
		}
		return dto.ImportAcceptedResponse{}, fmt.Errorf("read csv header: %w", err)
	}
	if err := validateImportHeader(header); err != nil {
		return dto.ImportAcceptedResponse{}, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return dto.ImportAcceptedResponse{}, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) == 0 {
		return dto.ImportAcceptedResponse{}, ErrEmptyImport
	}

	job := models.ImportJob{
		ID:        uuid.NewString(),
		CreatedBy: userID,
		FileName:  filename,
		Status:    models.ImportStatusPending,
		TotalRows: len(rows),
		RowErrors: datatypes.JSONMap{},
	}
	if err := s.jobs.Create(ctx, &job); err != nil {
		return dto.ImportAcceptedResponse{}, err
	}

	go s.process(context.Background(), job, rows)

	return dto.ImportAcceptedResponse{
		JobID:   job.ID,
		Status:  job.Status,
		PollURL: "/api/v1/imports/" + job.ID,
	}, nil
}

func (s *importService) GetJob(ctx context.Context, userID uint, jobID string) (dto.ImportJobResponse, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ImportJobResponse{}, ErrImportJobNotFound
		}
		return dto.ImportJobResponse{}, err
	}
	if job.CreatedBy != userID {
		return dto.ImportJobResponse{}, ErrImportJobNotFound
	}
	return dto.NewImportJobResponse(job), nil
}

func (s *importService) ListCompanies(ctx context.Context, filter repository.CompanyFilter) (dto.CompanyListResponse, error) {
	window := filter.Pagination.Normalize()
	companies, total, err := s.companies.List(ctx, filter)
	if err != nil {
		return dto.CompanyListResponse{}, err
	}
	return dto.CompanyListResponse{
		Items:      dto.NewCompanyResponseSlice(companies),
		Pagination: dto.NewPaginationMeta(window.Page, window.PageSize, total),
	}, nil
}

// PurgeFinished deletes terminal jobs older than the retention window.
func (s *importService) PurgeFinished(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	purged, err := s.jobs.PurgeFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("purged finished import jobs")
	}
	return purged, nil
}

func (s *importService) process(ctx context.Context, job models.ImportJob, rows [][]string) {
	job.Status = models.ImportStatusRunning
	if err := s.jobs.Update(ctx, &job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark import job running")
		return
	}

	for i, row := range rows {
		company, err := parseCompanyRow(row)
		if err == nil {
			company.ImportJobID = job.ID
			err = s.companies.Upsert(ctx, &company)
		}

		if err != nil {
			job.FailedRows++
			// Rows are 1-based from the user's point of view, after the header.
			job.RowErrors[fmt.Sprintf("row_%d", i+2)] = err.Error()
			observability.ImportRowsFailed().Inc()
		} else {
			observability.ImportRowsProcessed().Inc()
		}
		job.ProcessedRows++

		// Persist progress periodically so polls see movement on large files.
		if job.ProcessedRows%100 == 0 {
			if err := s.jobs.Update(ctx, &job); err != nil {
				s.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to persist import progress")
			}
		}
	}

	finished := s.now()
	job.FinishedAt = &finished
	if job.FailedRows == job.TotalRows {
		job.Status = models.ImportStatusFailed
	} else {
		job.Status = models.ImportStatusCompleted
	}

	if err := s.jobs.Update(ctx, &job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to finalise import job")
		return
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Int("total", job.TotalRows).
		Int("failed", job.FailedRows).
		Msg("import job finished")
}

func validateImportHeader(header []string) error {
	if len(header) != len(companyImportHeader) {
		return fmt.Errorf("csv header must be %q", strings.Join(companyImportHeader, ","))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), companyImportHeader[i]) {
			return fmt.Errorf("csv header must be %q", strings.Join(companyImportHeader, ","))
		}
	}
	return nil
}

func parseCompanyRow(row []string) (models.Company, error) {
	if len(row) != len(companyImportHeader) {
		return models.Company{}, fmt.Errorf("expected %d columns, got %d", len(companyImportHeader), len(row))
	}
	name := strings.TrimSpace(row[0])
	regNo := strings.TrimSpace(row[1])
	if name == "" {
		return models.Company{}, errors.New("name is required")
	}
	if regNo == "" {
		return models.Company{}, errors.New("registration_no is required")
	}
	return models.Company{
		Name:           name,
		RegistrationNo: regNo,
		Domain:         strings.TrimSpace(row[2]),
		Sector:         strings.TrimSpace(row[3]),
		Country:        strings.TrimSpace(row[4]),
	}, nil
}
