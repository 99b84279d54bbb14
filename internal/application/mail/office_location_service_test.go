package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/mail"
	"github.com/mailriver/backend/internal/domain/shared"
)

func newLocationService(repo *MockOfficeLocationRepository) *OfficeLocationService {
	return NewOfficeLocationService(repo, zap.NewNop())
}

func pdxLocationInput() LocationInput {
	return LocationInput{
		Code:    "pdx-1",
		Name:    "Portland Downtown",
		Street1: "100 River Rd",
		City:    "Portland",
		State:   "OR",
		Zip:     "97209",
		Country: "US",
	}
}

func TestCreateLocation_Success(t *testing.T) {
	repo := new(MockOfficeLocationRepository)
	service := newLocationService(repo)

	repo.On("ExistsByCode", mock.Anything, "PDX-1").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*mail.OfficeLocation")).Return(nil)

	location, err := service.CreateLocation(context.Background(), pdxLocationInput())

	require.NoError(t, err)
	assert.Equal(t, "PDX-1", location.Code)
	assert.True(t, location.Active)
	repo.AssertExpectations(t)
}

func TestCreateLocation_DuplicateCode(t *testing.T) {
	repo := new(MockOfficeLocationRepository)
	service := newLocationService(repo)

	repo.On("ExistsByCode", mock.Anything, "PDX-1").Return(true, nil)

	_, err := service.CreateLocation(context.Background(), pdxLocationInput())

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSetActive_Deactivates(t *testing.T) {
	repo := new(MockOfficeLocationRepository)
	service := newLocationService(repo)
	location := newOfficeLocation(t)

	repo.On("FindByID", mock.Anything, location.ID).Return(location, nil)
	repo.On("Save", mock.Anything, location).Return(nil)

	updated, err := service.SetActive(context.Background(), location.ID, false)

	require.NoError(t, err)
	assert.False(t, updated.Active)
}

func TestUpdateLocation_ReplacesAddress(t *testing.T) {
	repo := new(MockOfficeLocationRepository)
	service := newLocationService(repo)
	location := newOfficeLocation(t)

	repo.On("FindByID", mock.Anything, location.ID).Return(location, nil)
	repo.On("Save", mock.Anything, location).Return(nil)

	input := pdxLocationInput()
	input.Name = "Portland Pearl District"
	input.Street1 = "800 NW Lovejoy St"
	updated, err := service.UpdateLocation(context.Background(), location.ID, input)

	require.NoError(t, err)
	assert.Equal(t, "Portland Pearl District", updated.Name)
	assert.Equal(t, "800 NW Lovejoy St", updated.Address.Street1())
}

func TestDeleteLocation_DeletedLocationHidden(t *testing.T) {
	repo := new(MockOfficeLocationRepository)
	service := newLocationService(repo)
	location := newOfficeLocation(t)
	require.NoError(t, location.SoftDelete())

	repo.On("FindByID", mock.Anything, location.ID).Return(location, nil)

	err := service.DeleteLocation(context.Background(), location.ID)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestListLocations_Paginates(t *testing.T) {
	repo := new(MockOfficeLocationRepository)
	service := newLocationService(repo)
	location := newOfficeLocation(t)
	filter := shared.DefaultFilter()

	repo.On("FindAll", mock.Anything, filter).Return([]mail.OfficeLocation{*location}, int64(1), nil)

	page, err := service.ListLocations(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, location.Code, page.Items[0].Code)
}
