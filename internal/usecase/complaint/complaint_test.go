package complaint_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/domain/valueobject"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/complaint"
)

type fixture struct {
	store    *memory.Store
	reporter *entity.User
	admin    *entity.User
	problem  *entity.Problem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	reporter, err := entity.NewUser("reporter", "reporter@eco.test", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, reporter))

	admin, err := entity.NewUser("admin", "admin@eco.test", "hash")
	require.NoError(t, err)
	admin.IsAdmin = true
	require.NoError(t, store.Users().Create(ctx, admin))

	p, err := entity.NewProblem(reporter.ID, "Фейк", "", valueobject.Coordinates{Lat: 1, Lng: 1},
		valueobject.CategoryOther, valueobject.DefaultSeverity, 15, nil)
	require.NoError(t, err)
	require.NoError(t, store.Problems().Create(ctx, p))

	return &fixture{store: store, reporter: reporter, admin: admin, problem: p}
}

func (f *fixture) file(t *testing.T) *entity.Complaint {
	t.Helper()
	c, err := complaint.NewFileComplaintUseCase(f.store).Execute(context.Background(), f.problem.ID, f.reporter.ID, "fake", "это неправда")
	require.NoError(t, err)
	return c
}

func TestFileComplaint(t *testing.T) {
	f := newFixture(t)
	uc := complaint.NewFileComplaintUseCase(f.store)

	_, err := uc.Execute(context.Background(), f.problem.ID, f.reporter.ID, "boring", "")
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), uuid.New(), f.reporter.ID, "spam", "")
	assert.True(t, apperror.IsNotFound(err))

	c := f.file(t)
	assert.Equal(t, valueobject.ComplaintStatusPending, c.Status)

	pending, err := complaint.NewListPendingUseCase(f.store.Complaints()).Execute(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestResolveComplaint_DeleteContent(t *testing.T) {
	f := newFixture(t)
	c := f.file(t)
	ctx := context.Background()

	res, err := complaint.NewResolveComplaintUseCase(f.store).Execute(ctx, complaint.ResolveInput{
		ComplaintID: c.ID,
		AdminID:     f.admin.ID,
		Action:      "delete_content",
		Comment:     "удалено",
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	require.NotNil(t, res.DeletedProblemID)
	assert.Equal(t, f.problem.ID, *res.DeletedProblemID)

	stored, err := f.store.Complaints().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ComplaintStatusResolved, stored.Status)
	assert.Nil(t, stored.ProblemID)
	require.NotNil(t, stored.ActionTaken)
	assert.Equal(t, valueobject.ActionTakenProblemDeleted, *stored.ActionTaken)
	require.NotNil(t, stored.ResolvedBy)
	assert.Equal(t, f.admin.ID, *stored.ResolvedBy)

	_, err = f.store.Problems().FindByID(ctx, f.problem.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestResolveComplaint_RejectKeepsProblem(t *testing.T) {
	f := newFixture(t)
	c := f.file(t)
	ctx := context.Background()

	res, err := complaint.NewResolveComplaintUseCase(f.store).Execute(ctx, complaint.ResolveInput{
		ComplaintID: c.ID,
		AdminID:     f.admin.ID,
		Action:      "reject_complaint",
	})
	require.NoError(t, err)
	assert.Nil(t, res.DeletedProblemID)
	require.NotNil(t, res.Complaint.ActionTaken)
	assert.Equal(t, valueobject.ActionTakenComplaintRejected, *res.Complaint.ActionTaken)

	_, err = f.store.Problems().FindByID(ctx, f.problem.ID)
	assert.NoError(t, err)
}

func TestResolveComplaint_ClosedIsNoop(t *testing.T) {
	f := newFixture(t)
	c := f.file(t)
	ctx := context.Background()
	uc := complaint.NewResolveComplaintUseCase(f.store)

	_, err := uc.Execute(ctx, complaint.ResolveInput{ComplaintID: c.ID, AdminID: f.admin.ID, Action: "reject_complaint"})
	require.NoError(t, err)

	res, err := uc.Execute(ctx, complaint.ResolveInput{
		ComplaintID:   c.ID,
		AdminID:       f.admin.ID,
		Action:        "delete_content",
		DeleteProblem: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.DeletedProblemID)
	assert.Equal(t, valueobject.ActionTakenComplaintRejected, *res.Complaint.ActionTaken)

	_, err = f.store.Problems().FindByID(ctx, f.problem.ID)
	assert.NoError(t, err)
}

func TestResolveComplaint_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	c := f.file(t)

	_, err := complaint.NewResolveComplaintUseCase(f.store).Execute(context.Background(), complaint.ResolveInput{
		ComplaintID: c.ID,
		AdminID:     f.reporter.ID,
		Action:      "delete_content",
	})
	assert.True(t, apperror.IsForbidden(err))

	stored, err := f.store.Complaints().FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ComplaintStatusPending, stored.Status)
}
