package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

func newTaskFixture(t *testing.T, name string) (TaskService, AccessService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	tasks := repository.NewTaskRepository(db)

	access := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	svc := NewTaskService(tasks, access, noopRecorder{}, testValidator(), testLogger())
	return svc, access, db
}

func TestTaskCompletionStampsCompletedAt(t *testing.T) {
	svc, _, db := newTaskFixture(t, "task_complete")
	room := seedRoom(t, db, 1)
	ctx := context.Background()

	task, err := svc.Create(ctx, room.ID, 1, dto.TaskCreateRequest{Title: "Review financials"})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)

	completed := models.TaskStatusCompleted
	updated, err := svc.Update(ctx, room.ID, 1, task.ID, dto.TaskUpdateRequest{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)

	// Reopening clears the stamp.
	open := models.TaskStatusOpen
	reopened, err := svc.Update(ctx, room.ID, 1, task.ID, dto.TaskUpdateRequest{Status: &open})
	require.NoError(t, err)
	require.Nil(t, reopened.CompletedAt)
}

func TestTaskViewerCannotMutate(t *testing.T) {
	svc, _, db := newTaskFixture(t, "task_viewer")
	room := seedRoom(t, db, 1)
	grant := models.AccessGrant{DataRoomID: room.ID, UserID: 2, Level: models.PermissionViewer, GrantedBy: 1}
	require.NoError(t, db.Create(&grant).Error)

	ctx := context.Background()

	_, err := svc.Create(ctx, room.ID, 2, dto.TaskCreateRequest{Title: "Not allowed"})
	require.ErrorIs(t, err, ErrForbidden)

	// Reads are fine.
	list, err := svc.List(ctx, room.ID, 2, repository.TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, list.Items)
}

func TestTaskRejectsMalformedDueDate(t *testing.T) {
	svc, _, db := newTaskFixture(t, "task_due_date")
	room := seedRoom(t, db, 1)
	ctx := context.Background()

	badDate := "next tuesday"
	_, err := svc.Create(ctx, room.ID, 1, dto.TaskCreateRequest{Title: "Review leases", DueDate: &badDate})
	require.Error(t, err)

	var tagErrs validator.ValidationErrors
	require.ErrorAs(t, err, &tagErrs)
}

func TestTaskDeleteIsIdempotent(t *testing.T) {
	svc, _, db := newTaskFixture(t, "task_delete")
	room := seedRoom(t, db, 1)
	ctx := context.Background()

	task, err := svc.Create(ctx, room.ID, 1, dto.TaskCreateRequest{Title: "Collect contracts"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, room.ID, 1, task.ID))
	require.NoError(t, svc.Delete(ctx, room.ID, 1, task.ID))

	_, err = svc.Get(ctx, room.ID, 1, task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskListClampsPageSize(t *testing.T) {
	svc, _, db := newTaskFixture(t, "task_clamp")
	room := seedRoom(t, db, 1)
	ctx := context.Background()

	list, err := svc.List(ctx, room.ID, 1, repository.TaskFilter{
		Pagination: repository.Pagination{Page: 1, PageSize: 1000},
	})
	require.NoError(t, err)
	require.Equal(t, repository.MaxPageSize, list.Pagination.PageSize)
}
