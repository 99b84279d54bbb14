package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailriver/backend/internal/domain/catalog"
	"github.com/mailriver/backend/internal/domain/shared"
)

type planFixture struct {
	svc             *PlanService
	planRepo        *MockPlanRepository
	featureRepo     *MockFeatureRepository
	planFeatureRepo *MockPlanFeatureRepository
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	planRepo := new(MockPlanRepository)
	featureRepo := new(MockFeatureRepository)
	planFeatureRepo := new(MockPlanFeatureRepository)
	return &planFixture{
		svc:             NewPlanService(planRepo, featureRepo, planFeatureRepo, zap.NewNop()),
		planRepo:        planRepo,
		featureRepo:     featureRepo,
		planFeatureRepo: planFeatureRepo,
	}
}

func newPlan(t *testing.T) *catalog.Plan {
	t.Helper()
	plan, err := catalog.NewPlan("starter", "Starter", 999)
	require.NoError(t, err)
	return plan
}

func newFeature(t *testing.T) *catalog.Feature {
	t.Helper()
	feature, err := catalog.NewFeature(catalog.FeatureCodeMailScans, "Mail scans")
	require.NoError(t, err)
	return feature
}

func TestCreatePlan_Success(t *testing.T) {
	f := newPlanFixture(t)

	f.planRepo.On("ExistsByCode", mock.Anything, "starter").Return(false, nil)
	f.planRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Plan")).Return(nil)

	plan, err := f.svc.CreatePlan(context.Background(), PlanInput{
		Code:          " Starter ",
		Name:          "Starter",
		Description:   "Entry tier",
		MonthlyPrice:  999,
		StripePriceID: "price_123",
	})
	require.NoError(t, err)
	assert.Equal(t, "starter", plan.Code)
	assert.Equal(t, int64(999), plan.MonthlyPrice)
	assert.Equal(t, "price_123", plan.StripePriceID)
	assert.True(t, plan.Active)
}

func TestCreatePlan_DuplicateCode(t *testing.T) {
	f := newPlanFixture(t)
	f.planRepo.On("ExistsByCode", mock.Anything, "starter").Return(true, nil)

	_, err := f.svc.CreatePlan(context.Background(), PlanInput{Code: "starter", Name: "Starter", MonthlyPrice: 999})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
}

func TestCreatePlan_NegativePriceRejected(t *testing.T) {
	f := newPlanFixture(t)

	_, err := f.svc.CreatePlan(context.Background(), PlanInput{Code: "starter", Name: "Starter", MonthlyPrice: -1})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRICE", de.Code)
	f.planRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdatePlan_Success(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)

	f.planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	f.planRepo.On("Save", mock.Anything, plan).Return(nil)

	updated, err := f.svc.UpdatePlan(context.Background(), plan.ID, PlanInput{
		Name:         "Starter Plus",
		Description:  "More of everything",
		MonthlyPrice: 1499,
	})
	require.NoError(t, err)
	assert.Equal(t, "Starter Plus", updated.Name)
	assert.Equal(t, int64(1499), updated.MonthlyPrice)
	assert.Equal(t, 2, updated.Version)
}

func TestDeletePlan_DeletedPlanHidden(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)
	require.NoError(t, plan.SoftDelete())

	f.planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)

	err := f.svc.DeletePlan(context.Background(), plan.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestAssignFeature_Success(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)
	feature := newFeature(t)
	limit := int64(30)

	f.planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	f.featureRepo.On("FindByID", mock.Anything, feature.ID).Return(feature, nil)
	f.planFeatureRepo.On("FindByPlanAndFeature", mock.Anything, plan.ID, feature.ID).Return(nil, shared.ErrNotFound)
	f.planFeatureRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.PlanFeature")).Return(nil)

	assignment, err := f.svc.AssignFeature(context.Background(), AssignFeatureInput{
		PlanID:    plan.ID,
		FeatureID: feature.ID,
		Limit:     &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, plan.ID, assignment.PlanID)
	require.NotNil(t, assignment.Limit)
	assert.Equal(t, int64(30), *assignment.Limit)
	assert.False(t, assignment.Unlimited())
}

func TestAssignFeature_ExistingGrantUpdatesLimit(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)
	feature := newFeature(t)
	oldLimit := int64(30)
	existing, err := catalog.NewPlanFeature(plan.ID, feature.ID, &oldLimit)
	require.NoError(t, err)

	f.planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	f.featureRepo.On("FindByID", mock.Anything, feature.ID).Return(feature, nil)
	f.planFeatureRepo.On("FindByPlanAndFeature", mock.Anything, plan.ID, feature.ID).Return(existing, nil)
	f.planFeatureRepo.On("Save", mock.Anything, existing).Return(nil)

	assignment, err := f.svc.AssignFeature(context.Background(), AssignFeatureInput{
		PlanID:    plan.ID,
		FeatureID: feature.ID,
		Limit:     nil,
	})
	require.NoError(t, err)
	assert.True(t, assignment.Unlimited())
}

func TestAssignFeature_DeletedFeatureRejected(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)
	feature := newFeature(t)
	require.NoError(t, feature.SoftDelete())

	f.planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	f.featureRepo.On("FindByID", mock.Anything, feature.ID).Return(feature, nil)

	_, err := f.svc.AssignFeature(context.Background(), AssignFeatureInput{PlanID: plan.ID, FeatureID: feature.ID})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	f.planFeatureRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRemoveFeature_NotAssigned(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)
	feature := newFeature(t)

	f.planFeatureRepo.On("FindByPlanAndFeature", mock.Anything, plan.ID, feature.ID).Return(nil, shared.ErrNotFound)

	err := f.svc.RemoveFeature(context.Background(), plan.ID, feature.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestListPlanFeatures_SkipsDeletedFeatures(t *testing.T) {
	f := newPlanFixture(t)
	plan := newPlan(t)
	feature := newFeature(t)
	assignment, err := catalog.NewPlanFeature(plan.ID, feature.ID, nil)
	require.NoError(t, err)
	ghost, err := catalog.NewPlanFeature(plan.ID, feature.ID, nil)
	require.NoError(t, err)

	f.planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	f.planFeatureRepo.On("FindByPlan", mock.Anything, plan.ID).
		Return([]catalog.PlanFeature{*assignment, *ghost}, nil)
	f.featureRepo.On("FindByID", mock.Anything, assignment.FeatureID).Return(feature, nil).Once()
	f.featureRepo.On("FindByID", mock.Anything, ghost.FeatureID).Return(nil, shared.ErrNotFound).Once()

	views, err := f.svc.ListPlanFeatures(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, catalog.FeatureCodeMailScans, views[0].Feature.Code)
}
