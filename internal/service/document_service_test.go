package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

type memoryStorage struct{}

func (memoryStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "mem://" + name, nil
}

func newDocumentFixture(t *testing.T, name string, maxSizeMB int) (DocumentService, AccessService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	documents := repository.NewDocumentRepository(db)

	access := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	svc := NewDocumentService(documents, access, noopRecorder{}, memoryStorage{}, maxSizeMB, testValidator(), testLogger())
	return svc, access, db
}

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestDocumentUpload(t *testing.T) {
	svc, _, db := newDocumentFixture(t, "document_upload", 25)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	file := multipartFile(t, "summary.txt", []byte("quarterly revenue summary\n"))
	created, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{
		Name:     "Q2 summary",
		Category: "financials",
	}, file)
	require.NoError(t, err)
	require.Equal(t, "text/plain", created.MimeType)
	require.Equal(t, "mem://summary.txt", created.FileURL)
	require.Equal(t, models.DocumentStatusActive, created.Status)

	got, err := svc.Get(ctx, room.ID, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Q2 summary", got.Name)
}

func TestDocumentUploadRejectsDisallowedType(t *testing.T) {
	svc, _, db := newDocumentFixture(t, "document_mime", 25)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	// A zip archive is sniffed regardless of its file extension.
	zipMagic := append([]byte("PK\x03\x04"), make([]byte, 64)...)
	file := multipartFile(t, "payload.txt", zipMagic)
	_, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{Name: "Archive"}, file)
	require.ErrorIs(t, err, ErrFileTypeNotAllowed)
}

func TestDocumentUploadRejectsOversizedFile(t *testing.T) {
	svc, _, db := newDocumentFixture(t, "document_size", 1)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	big := bytes.Repeat([]byte("a"), 1<<20+1)
	file := multipartFile(t, "big.txt", big)
	_, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{Name: "Too big"}, file)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDocumentUploadWithoutStorageConfigured(t *testing.T) {
	db := openTestDB(t, "document_no_storage")
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	documents := repository.NewDocumentRepository(db)

	access := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	svc := NewDocumentService(documents, access, noopRecorder{}, nil, 25, testValidator(), testLogger())

	ctx := context.Background()
	room := seedRoom(t, db, 1)

	file := multipartFile(t, "summary.txt", []byte("quarterly revenue summary\n"))
	_, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{Name: "Q2 summary"}, file)
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestDocumentViewerCannotUpload(t *testing.T) {
	svc, access, db := newDocumentFixture(t, "document_viewer", 25)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	_, err := access.Grant(ctx, room.ID, 1, dto.AccessGrantCreateRequest{
		UserID: 2,
		Level:  string(models.PermissionViewer),
	})
	require.NoError(t, err)

	file := multipartFile(t, "notes.txt", []byte("reading notes\n"))
	_, err = svc.Create(ctx, room.ID, 2, dto.DocumentCreateRequest{Name: "Notes"}, file)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDocumentGetScopedToRoom(t *testing.T) {
	svc, _, db := newDocumentFixture(t, "document_scope", 25)
	ctx := context.Background()
	room := seedRoom(t, db, 1)
	other := seedRoom(t, db, 1)

	file := multipartFile(t, "deck.txt", []byte("board deck\n"))
	created, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{Name: "Deck"}, file)
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, 1, created.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentDeleteIsIdempotent(t *testing.T) {
	svc, _, db := newDocumentFixture(t, "document_delete", 25)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	file := multipartFile(t, "drop.txt", []byte("to be removed\n"))
	created, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{Name: "Drop"}, file)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, room.ID, 1, created.ID))
	require.NoError(t, svc.Delete(ctx, room.ID, 1, created.ID))

	_, err = svc.Get(ctx, room.ID, 1, created.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)

	// A delete against a room the document never belonged to is not found.
	require.ErrorIs(t, svc.Delete(ctx, room.ID, 1, created.ID+100), ErrDocumentNotFound)
}

func TestDocumentListClampsPageSize(t *testing.T) {
	svc, _, db := newDocumentFixture(t, "document_clamp", 25)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	for i := 0; i < 3; i++ {
		file := multipartFile(t, fmt.Sprintf("file-%d.txt", i), []byte("content\n"))
		_, err := svc.Create(ctx, room.ID, 1, dto.DocumentCreateRequest{Name: fmt.Sprintf("File %d", i)}, file)
		require.NoError(t, err)
	}

	listing, err := svc.List(ctx, room.ID, 1, repository.DocumentFilter{
		Pagination: repository.Pagination{Page: 1, PageSize: 1000},
	})
	require.NoError(t, err)
	require.Equal(t, repository.MaxPageSize, listing.Pagination.PageSize)
	require.Equal(t, int64(3), listing.Pagination.TotalItems)
}
