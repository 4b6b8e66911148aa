package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/model/dto"
	"github.com/qs3c/brand_go_server/internal/repository"
	"github.com/qs3c/brand_go_server/internal/testutil"
)

func setupBrandService(t *testing.T) (*BrandService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewBrandService(repository.NewBrandRepository(db), repository.NewSubscriptionRepository(db)), db
}

func strPtr(s string) *string { return &s }

func TestBrandService_Get(t *testing.T) {
	svc, db := setupBrandService(t)
	brand := testutil.TestBrand(t, db, testutil.WithSubdomain("acme123456"))
	testutil.TestOffer(t, db, brand.ID, "Spring sale")

	got, err := svc.Get(brand.ID)
	require.NoError(t, err)
	assert.Len(t, got.Offers, 1)

	got, err = svc.GetBySubdomain("ACME123456")
	require.NoError(t, err)
	assert.Equal(t, brand.ID, got.ID)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrBrandNotFound)

	_, err = svc.GetBySubdomain("missing")
	assert.ErrorIs(t, err, ErrBrandNotFound)
}

func TestBrandService_UpdateConfig(t *testing.T) {
	svc, db := setupBrandService(t)
	brand := testutil.TestBrand(t, db)
	other := testutil.TestBrand(t, db, testutil.WithCompanyName("Taken Inc"), testutil.WithBrandEmail("taken@example.com"))

	t.Run("success", func(t *testing.T) {
		got, err := svc.UpdateConfig(brand.ID, brand.ID, &dto.UpdateBrandConfigRequest{
			CompanyName: strPtr("  New Name  "),
			Email:       strPtr("NEW@Example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.CompanyName)
		assert.Equal(t, "new@example.com", got.Email)
	})

	t.Run("same values keep working", func(t *testing.T) {
		_, err := svc.UpdateConfig(brand.ID, brand.ID, &dto.UpdateBrandConfigRequest{
			CompanyName: strPtr("New Name"),
		})
		assert.NoError(t, err)
	})

	t.Run("company taken", func(t *testing.T) {
		_, err := svc.UpdateConfig(brand.ID, brand.ID, &dto.UpdateBrandConfigRequest{
			CompanyName: strPtr(other.CompanyName),
		})
		assert.ErrorIs(t, err, ErrCompanyExists)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := svc.UpdateConfig(brand.ID, brand.ID, &dto.UpdateBrandConfigRequest{
			Email: strPtr(other.Email),
		})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("other brand forbidden", func(t *testing.T) {
		_, err := svc.UpdateConfig(other.ID, brand.ID, &dto.UpdateBrandConfigRequest{
			CompanyName: strPtr("Hijack"),
		})
		assert.ErrorIs(t, err, ErrBrandForbidden)
	})

	t.Run("missing brand", func(t *testing.T) {
		_, err := svc.UpdateConfig("missing", brand.ID, &dto.UpdateBrandConfigRequest{})
		assert.ErrorIs(t, err, ErrBrandNotFound)
	})
}

func TestBrandService_UpdateAppConfig(t *testing.T) {
	svc, db := setupBrandService(t)
	brand := testutil.TestBrand(t, db)

	got, err := svc.UpdateAppConfig(brand.ID, brand.ID, &dto.UpdateBrandAppConfigRequest{
		AppName:      strPtr("Acme App"),
		PrimaryColor: strPtr("#112233"),
	})
	require.NoError(t, err)
	require.NotNil(t, got.AppName)
	assert.Equal(t, "Acme App", *got.AppName)
	assert.Equal(t, "#112233", *got.PrimaryColor)
	assert.Nil(t, got.SecondaryColor)

	_, err = svc.UpdateAppConfig(brand.ID, "someone-else", &dto.UpdateBrandAppConfigRequest{})
	assert.ErrorIs(t, err, ErrBrandForbidden)
}

func TestBrandService_GenerateAppConfig(t *testing.T) {
	svc, db := setupBrandService(t)
	brand := testutil.TestBrand(t, db)

	cfg, err := svc.GenerateAppConfig(brand.ID)
	require.NoError(t, err)
	assert.Equal(t, brand.CompanyName, cfg.Brand.CompanyName)
	assert.Nil(t, cfg.Plan)
	assert.Equal(t, []string{}, cfg.Modules.Brand)
	assert.Equal(t, []string{}, cfg.Modules.Ambassador)

	plan := testutil.TestPlan(t, db, model.PlanTypePro, 199, testutil.WithFeatures(model.PlanFeatures{
		Ambassador: []string{"Chat"},
		Brand:      []string{"Campaign management"},
	}))
	testutil.TestSubscription(t, db, brand.ID, plan.ID)

	cfg, err = svc.GenerateAppConfig(brand.ID)
	require.NoError(t, err)
	require.NotNil(t, cfg.Plan)
	assert.Equal(t, model.PlanTypePro, cfg.Plan.Type)
	assert.Equal(t, []string{"Chat"}, cfg.Modules.Ambassador)
	assert.Equal(t, []string{"Campaign management"}, cfg.Modules.Brand)

	_, err = svc.GenerateAppConfig("missing")
	assert.ErrorIs(t, err, ErrBrandNotFound)
}

func TestBrandService_HasFeature(t *testing.T) {
	svc, db := setupBrandService(t)
	brand := testutil.TestBrand(t, db)
	plan := testutil.TestPlan(t, db, model.PlanTypeStarter, 99)

	ok, err := svc.HasFeature(brand.ID, model.FeatureRoleBrand, "Offer creation")
	require.NoError(t, err)
	assert.False(t, ok)

	testutil.TestSubscription(t, db, brand.ID, plan.ID, testutil.WithSubscriptionStatus(model.SubscriptionStatusPastDue))
	ok, err = svc.HasFeature(brand.ID, model.FeatureRoleBrand, "Offer creation")
	require.NoError(t, err)
	assert.False(t, ok, "past_due subscription grants nothing")

	testutil.TestSubscription(t, db, brand.ID, plan.ID)
	ok, err = svc.HasFeature(brand.ID, model.FeatureRoleBrand, "Offer creation")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasFeature(brand.ID, model.FeatureRoleAmbassador, "Offer creation")
	require.NoError(t, err)
	assert.False(t, ok)
}
