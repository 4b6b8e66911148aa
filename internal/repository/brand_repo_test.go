package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/brand_go_server/internal/model"
	"github.com/qs3c/brand_go_server/internal/testutil"
)

func TestBrandRepository_CreateWithUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBrandRepository(db)

	brand := &model.Brand{
		CompanyName:  "Acme",
		Email:        "acme@example.com",
		PasswordHash: "hash",
		Subdomain:    "acmeabc123",
		IsActive:     true,
	}
	user := &model.User{Email: "acme@example.com", PasswordHash: "hash"}

	require.NoError(t, repo.CreateWithUser(brand, user))
	assert.NotEmpty(t, brand.ID)
	assert.Equal(t, brand.ID, user.BrandID)
}

func TestBrandRepository_CreateWithUser_RollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBrandRepository(db)
	existing := testutil.TestBrand(t, db)
	require.NoError(t, db.Create(&model.User{Email: "taken@example.com", PasswordHash: "hash", BrandID: existing.ID}).Error)

	brand := &model.Brand{CompanyName: "Other", Email: "other@example.com", PasswordHash: "hash", Subdomain: "other123456"}
	err := repo.CreateWithUser(brand, &model.User{Email: "taken@example.com", PasswordHash: "hash"})
	assert.Error(t, err)

	exists, err := repo.ExistsByCompanyName("Other")
	require.NoError(t, err)
	assert.False(t, exists, "brand insert should be rolled back")
}

func TestBrandRepository_GetByID_WithRelations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBrandRepository(db)
	brand := testutil.TestBrand(t, db)
	plan := testutil.TestPlan(t, db, model.PlanTypePro, 199)
	testutil.TestSubscription(t, db, brand.ID, plan.ID)
	testutil.TestOffer(t, db, brand.ID, "Summer")

	found, err := repo.GetByID(brand.ID)
	require.NoError(t, err)
	require.Len(t, found.Subscriptions, 1)
	require.NotNil(t, found.Subscriptions[0].Plan)
	assert.Equal(t, model.PlanTypePro, found.Subscriptions[0].Plan.Type)
	require.Len(t, found.Offers, 1)
	assert.Equal(t, "Summer", found.Offers[0].Title)
	assert.NotNil(t, found.ActiveSubscription())
}

func TestBrandRepository_GetBySubdomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBrandRepository(db)
	brand := testutil.TestBrand(t, db, testutil.WithSubdomain("acmexyz"))

	found, err := repo.GetBySubdomain("acmexyz")
	require.NoError(t, err)
	assert.Equal(t, brand.ID, found.ID)

	_, err = repo.GetBySubdomain("missing")
	assert.Error(t, err)
}

func TestBrandRepository_ExistsOtherAndUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBrandRepository(db)
	a := testutil.TestBrand(t, db, testutil.WithBrandEmail("a@example.com"))
	b := testutil.TestBrand(t, db, testutil.WithBrandEmail("b@example.com"))

	exists, err := repo.ExistsOther(a.ID, "email", "b@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsOther(a.ID, "email", "a@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.UpdateFields(b.ID, map[string]interface{}{"app_name": "B App"}))
	found, err := repo.GetBasic(b.ID)
	require.NoError(t, err)
	require.NotNil(t, found.AppName)
	assert.Equal(t, "B App", *found.AppName)
}
