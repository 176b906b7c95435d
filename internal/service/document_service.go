package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

var (
	// ErrFileTooLarge indicates the upload exceeded the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrFileTypeNotAllowed indicates the sniffed MIME type is not permitted.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	// ErrStorageUnavailable indicates no blob store is configured for uploads.
	ErrStorageUnavailable = errors.New("document storage is not configured")
)

// Sniffed MIME types accepted for data room documents.
var allowedDocumentTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
	"application/msword":       {},
	"application/vnd.ms-excel": {},
	"text/csv":                 {},
	"text/plain":               {},
	"image/png":                {},
	"image/jpeg":               {},
}

// FileStorage abstracts the blob store documents are written to.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentService exposes document use cases for a data room.
type DocumentService interface {
	List(ctx context.Context, roomID, userID uint, filter repository.DocumentFilter) (dto.DocumentListResponse, error)
	Get(ctx context.Context, roomID, userID, documentID uint) (dto.DocumentResponse, error)
	Create(ctx context.Context, roomID, userID uint, payload dto.DocumentCreateRequest, file *multipart.FileHeader) (dto.DocumentResponse, error)
	Update(ctx context.Context, roomID, userID, documentID uint, payload dto.DocumentUpdateRequest) (dto.DocumentResponse, error)
	Delete(ctx context.Context, roomID, userID, documentID uint) error
}

type documentService struct {
	repo      repository.DocumentRepository
	access    AccessChecker
	activity  ActivityRecorder
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
	maxSize   int64
	tracer    trace.Tracer
	now       func() time.Time
}

// NewDocumentService builds the document service.
func NewDocumentService(repo repository.DocumentRepository, access AccessChecker, activity ActivityRecorder, storage FileStorage, maxSizeMB int, validate *validator.Validate, logger zerolog.Logger) DocumentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	return &documentService{
		repo:      repo,
		access:    access,
		activity:  activity,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "document_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		tracer:    otel.Tracer("github.com/oppspot/oppspot-api/internal/service/document"),
		now:       time.Now,
	}
}

func (s *documentService) List(ctx context.Context, roomID, userID uint, filter repository.DocumentFilter) (dto.DocumentListResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.DocumentListResponse{}, err
	}

	documents, total, err := s.repo.List(ctx, roomID, filter)
	if err != nil {
		return dto.DocumentListResponse{}, err
	}

	window := filter.Pagination.Normalize()
	return dto.DocumentListResponse{
		Items:      dto.NewDocumentResponseSlice(documents),
		Pagination: dto.NewPaginationMeta(window.Page, window.PageSize, total),
	}, nil
}

func (s *documentService) Get(ctx context.Context, roomID, userID, documentID uint) (dto.DocumentResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.DocumentResponse{}, err
	}

	document, err := s.getInRoom(ctx, roomID, documentID)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Create(ctx context.Context, roomID, userID uint, payload dto.DocumentCreateRequest, file *multipart.FileHeader) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.DocumentResponse{}, err
	}

	// Storage is an optional dependency at startup, same as the summarizer.
	if s.storage == nil {
		return dto.DocumentResponse{}, ErrStorageUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "document.upload")
	defer span.End()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.DocumentResponse{}, err
	}

	span.SetAttributes(
		attribute.String("document.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("document.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		span.RecordError(ErrFileTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.DocumentResponse{}, ErrFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.DocumentResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.DocumentResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		span.RecordError(ErrFileTooLarge)
		return dto.DocumentResponse{}, ErrFileTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	baseType := strings.Split(detected.String(), ";")[0]
	if _, ok := allowedDocumentTypes[baseType]; !ok {
		span.RecordError(ErrFileTypeNotAllowed)
		span.SetStatus(codes.Error, "type rejected")
		return dto.DocumentResponse{}, ErrFileTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.DocumentResponse{}, err
	}

	document := models.Document{
		DataRoomID: roomID,
		UploaderID: userID,
		Name:       payload.Name,
		Category:   payload.Category,
		MimeType:   baseType,
		SizeBytes:  int64(buf.Len()),
		FileURL:    url,
		Status:     models.DocumentStatusActive,
	}

	if err := s.repo.Create(ctx, &document); err != nil {
		span.RecordError(err)
		return dto.DocumentResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "document",
		ResourceID:   &document.ID,
		ActorID:      userID,
		Action:       "document.uploaded",
		Detail: map[string]interface{}{
			"name":       document.Name,
			"mime_type":  document.MimeType,
			"size_bytes": document.SizeBytes,
		},
	})

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Update(ctx context.Context, roomID, userID, documentID uint, payload dto.DocumentUpdateRequest) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.DocumentResponse{}, err
	}

	document, err := s.getInRoom(ctx, roomID, documentID)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	if payload.Name != nil {
		document.Name = *payload.Name
	}
	if payload.Category != nil {
		document.Category = *payload.Category
	}
	if payload.Status != nil {
		document.Status = *payload.Status
	}

	if err := s.repo.Update(ctx, &document); err != nil {
		return dto.DocumentResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "document",
		ResourceID:   &document.ID,
		ActorID:      userID,
		Action:       "document.updated",
		Detail:       map[string]interface{}{"name": document.Name},
	})

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Delete(ctx context.Context, roomID, userID, documentID uint) error {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, roomID, documentID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "document",
		ResourceID:   &documentID,
		ActorID:      userID,
		Action:       "document.deleted",
	})

	return nil
}

func (s *documentService) getInRoom(ctx context.Context, roomID, documentID uint) (models.Document, error) {
	document, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Document{}, ErrDocumentNotFound
		}
		return models.Document{}, err
	}
	if document.DataRoomID != roomID {
		return models.Document{}, ErrDocumentNotFound
	}
	return document, nil
}
