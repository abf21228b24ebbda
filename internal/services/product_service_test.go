// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/models"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	products *ProductService
	patient  *models.User
	company  *models.User
	admin    *models.User
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.products = NewProductService(suite.db)
	suite.patient = createTestUser(suite.T(), suite.db, "patient1", models.UserTypePatient)
	suite.company = createTestUser(suite.T(), suite.db, "acme", models.UserTypeEnterprise)
	suite.admin = createTestUser(suite.T(), suite.db, "admin1", models.UserTypeAdmin)
}

func (suite *ProductServiceTestSuite) TestSubmitDerivesProvenanceFromRole() {
	product, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     "Chamomile Blend",
		Category: "herbal_tea",
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProvenanceGrassroots, product.Provenance)
	assert.Equal(suite.T(), models.ProductStatePending, product.State)

	product, err = suite.products.Submit(suite.company.ID, &SubmitProductRequest{
		Name:     "Sleep Support Capsules",
		Category: "supplement",
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProvenanceEnterprisePending, product.Provenance)
}

func (suite *ProductServiceTestSuite) TestEnterpriseSubmissionStartsPending() {
	// Enterprise submitters cannot skip review.
	product, err := suite.products.Submit(suite.company.ID, &SubmitProductRequest{
		Name:       "Valerian Drops",
		Category:   "supplement",
		Provenance: models.ProvenanceEnterprisePending,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProductStatePending, product.State)
	assert.Nil(suite.T(), product.DecidedAt)
}

func (suite *ProductServiceTestSuite) TestSubmitRejectsMismatchedProvenance() {
	_, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:       "Mislabeled",
		Category:   "supplement",
		Provenance: models.ProvenanceEnterprisePending,
	})
	assert.Error(suite.T(), err)
}

func (suite *ProductServiceTestSuite) TestSubmitRejectsAdmin() {
	_, err := suite.products.Submit(suite.admin.ID, &SubmitProductRequest{
		Name:     "Admin Product",
		Category: "supplement",
	})
	assert.Error(suite.T(), err)
}

func (suite *ProductServiceTestSuite) TestEnrichAssignsMonotonicSequence() {
	product, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     "Lavender Oil",
		Category: "aromatherapy",
	})
	require.NoError(suite.T(), err)

	first, err := suite.products.Enrich(product.ID, suite.patient.ID, &EnrichProductRequest{Note: "calming before sleep"})
	require.NoError(suite.T(), err)
	second, err := suite.products.Enrich(product.ID, suite.company.ID, &EnrichProductRequest{Note: "batch tested"})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 1, first.Sequence)
	assert.Equal(suite.T(), 2, second.Sequence)

	loaded, err := suite.products.Get(product.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), loaded.Enrichment, 2)
	assert.Equal(suite.T(), "calming before sleep", loaded.Enrichment[0].Note)
}

func (suite *ProductServiceTestSuite) TestEnrichRejectedProductFails() {
	product, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     "Recalled Tea",
		Category: "herbal_tea",
	})
	require.NoError(suite.T(), err)

	_, err = suite.products.transition(suite.db, product.ID, suite.admin.ID, models.ProductStateRejected, "unsafe")
	require.NoError(suite.T(), err)

	_, err = suite.products.Enrich(product.ID, suite.patient.ID, &EnrichProductRequest{Note: "still good?"})
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *ProductServiceTestSuite) TestTransitionSingleWinner() {
	product, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     "Contested Product",
		Category: "supplement",
	})
	require.NoError(suite.T(), err)

	decided, err := suite.products.transition(suite.db, product.ID, suite.admin.ID, models.ProductStateAuthorized, "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProductStateAuthorized, decided.State)
	require.NotNil(suite.T(), decided.DecidedBy)
	assert.Equal(suite.T(), suite.admin.ID, *decided.DecidedBy)

	// A second decision loses regardless of direction.
	_, err = suite.products.transition(suite.db, product.ID, suite.admin.ID, models.ProductStateRejected, "changed my mind")
	assert.ErrorIs(suite.T(), err, apperrors.ErrAlreadyDecided)

	// The first decision sticks.
	reloaded, err := suite.products.Get(product.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProductStateAuthorized, reloaded.State)
}

func (suite *ProductServiceTestSuite) TestTransitionUnknownProduct() {
	_, err := suite.products.transition(suite.db, uuid.New(), suite.admin.ID, models.ProductStateRejected, "n/a")
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *ProductServiceTestSuite) TestSearchDefaultsToAuthorized() {
	pending, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     "Pending Tea",
		Category: "herbal_tea",
	})
	require.NoError(suite.T(), err)

	approved, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     "Approved Tea",
		Category: "herbal_tea",
	})
	require.NoError(suite.T(), err)
	_, err = suite.products.transition(suite.db, approved.ID, suite.admin.ID, models.ProductStateAuthorized, "")
	require.NoError(suite.T(), err)

	results, total, err := suite.products.Search(ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), total)
	require.Len(suite.T(), results, 1)
	assert.Equal(suite.T(), approved.ID, results[0].ID)

	// Explicit state filter still reaches pending records.
	state := models.ProductStatePending
	results, _, err = suite.products.Search(ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"},
		State:            &state,
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), results, 1)
	assert.Equal(suite.T(), pending.ID, results[0].ID)
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
