package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/identity"
	"github.com/mailriver/backend/internal/domain/shared"
)

type workspaceFixture struct {
	svc           *WorkspaceService
	workspaceRepo *MockWorkspaceRepository
}

func newWorkspaceFixture(t *testing.T) *workspaceFixture {
	t.Helper()
	workspaceRepo := new(MockWorkspaceRepository)
	return &workspaceFixture{
		svc:           NewWorkspaceService(workspaceRepo, zap.NewNop()),
		workspaceRepo: workspaceRepo,
	}
}

func newWorkspace(t *testing.T) *identity.Workspace {
	t.Helper()
	workspace, err := identity.NewWorkspace("Acme Mail", "acme-mail")
	require.NoError(t, err)
	return workspace
}

func TestRenameWorkspace_Success(t *testing.T) {
	f := newWorkspaceFixture(t)
	workspace := newWorkspace(t)

	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)
	f.workspaceRepo.On("Save", mock.Anything, workspace).Return(nil)

	renamed, err := f.svc.RenameWorkspace(context.Background(), workspace.ID, "  Acme Mailroom  ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Mailroom", renamed.Name)
	assert.Equal(t, "acme-mail", renamed.Slug)
	assert.Equal(t, 2, renamed.Version)
}

func TestRenameWorkspace_EmptyNameRejected(t *testing.T) {
	f := newWorkspaceFixture(t)
	workspace := newWorkspace(t)
	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)

	_, err := f.svc.RenameWorkspace(context.Background(), workspace.ID, "   ")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_NAME", de.Code)
	f.workspaceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSuspendWorkspace_ThenActivate(t *testing.T) {
	f := newWorkspaceFixture(t)
	workspace := newWorkspace(t)

	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)
	f.workspaceRepo.On("Save", mock.Anything, workspace).Return(nil)

	suspended, err := f.svc.SuspendWorkspace(context.Background(), workspace.ID)
	require.NoError(t, err)
	assert.False(t, suspended.IsActive())

	activated, err := f.svc.ActivateWorkspace(context.Background(), workspace.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive())
}

func TestSuspendWorkspace_DeletedRejected(t *testing.T) {
	f := newWorkspaceFixture(t)
	workspace := newWorkspace(t)
	require.NoError(t, workspace.SoftDelete())

	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)

	_, err := f.svc.SuspendWorkspace(context.Background(), workspace.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	f.workspaceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDeleteWorkspace_TwiceRejected(t *testing.T) {
	f := newWorkspaceFixture(t)
	workspace := newWorkspace(t)

	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)
	f.workspaceRepo.On("Save", mock.Anything, workspace).Return(nil).Once()

	require.NoError(t, f.svc.DeleteWorkspace(context.Background(), workspace.ID))

	err := f.svc.DeleteWorkspace(context.Background(), workspace.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_DELETED", de.Code)
}

func TestGetWorkspaceBySlug_NotFound(t *testing.T) {
	f := newWorkspaceFixture(t)
	f.workspaceRepo.On("FindBySlug", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

	_, err := f.svc.GetWorkspaceBySlug(context.Background(), "ghost")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestGetWorkspace_Found(t *testing.T) {
	f := newWorkspaceFixture(t)
	workspace := newWorkspace(t)
	f.workspaceRepo.On("FindByID", mock.Anything, workspace.ID).Return(workspace, nil)

	got, err := f.svc.GetWorkspace(context.Background(), workspace.ID)
	require.NoError(t, err)
	assert.Same(t, workspace, got)
}
