// internal/services/review_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/models"
	"github.com/verdantcare/wellness-backend/internal/seal"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	products *ProductService
	reviews  *ReviewService
	storage  *StorageService
	patient  *models.User
	admin    *models.User
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.products = NewProductService(suite.db)

	storage, err := NewStorageService(testConfig(suite.T()))
	require.NoError(suite.T(), err)
	suite.storage = storage

	encoder := seal.NewEncoder(seal.DefaultConfig())
	suite.reviews = NewReviewService(suite.db, suite.products, encoder, storage)

	suite.patient = createTestUser(suite.T(), suite.db, "patient1", models.UserTypePatient)
	suite.admin = createTestUser(suite.T(), suite.db, "admin1", models.UserTypeAdmin)
}

func (suite *ReviewServiceTestSuite) submitProduct(name string) *models.Product {
	product, err := suite.products.Submit(suite.patient.ID, &SubmitProductRequest{
		Name:     name,
		Category: "supplement",
	})
	require.NoError(suite.T(), err)
	return product
}

func (suite *ReviewServiceTestSuite) TestApproveGeneratesSeal() {
	product := suite.submitProduct("Approvable Tea")

	decided, err := suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.ProductStateAuthorized, decided.State)
	assert.Len(suite.T(), decided.SealPayloadHash, 64)
	assert.NotEmpty(suite.T(), decided.SealImagePath)
	assert.Equal(suite.T(), seal.PayloadHash(product.ID), decided.SealPayloadHash)

	// The artifact was actually written.
	png, err := suite.storage.ReadSeal(decided.SealImagePath)
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), png)
}

func (suite *ReviewServiceTestSuite) TestRejectRecordsReason() {
	product := suite.submitProduct("Rejectable Tea")

	decided, err := suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionReject,
		Reason:   "undisclosed ingredients",
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.ProductStateRejected, decided.State)
	assert.Equal(suite.T(), "undisclosed ingredients", decided.RejectionReason)
	assert.Empty(suite.T(), decided.SealPayloadHash)
}

func (suite *ReviewServiceTestSuite) TestSecondDecisionLoses() {
	product := suite.submitProduct("Contested Tea")

	_, err := suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	require.NoError(suite.T(), err)

	_, err = suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionReject,
		Reason:   "too late",
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrAlreadyDecided)
}

func (suite *ReviewServiceTestSuite) TestNonAdminCannotDecide() {
	product := suite.submitProduct("Guarded Tea")

	_, err := suite.reviews.Decide(product.ID, suite.patient.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	assert.Error(suite.T(), err)

	reloaded, err := suite.products.Get(product.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProductStatePending, reloaded.State)
}

func (suite *ReviewServiceTestSuite) TestEncodingFailureRollsBackApproval() {
	// A silhouette this small cannot hold the code's structural modules, so
	// every Encode call fails.
	cfg := seal.DefaultConfig()
	cfg.SilhouetteScale = 0.5
	failing := NewReviewService(suite.db, suite.products, seal.NewEncoder(cfg), suite.storage)

	product := suite.submitProduct("Unsealable Tea")

	_, err := failing.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	assert.ErrorIs(suite.T(), err, apperrors.ErrEncodingFailure)

	// The transition rolled back; the product is still decidable.
	reloaded, err := suite.products.Get(product.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProductStatePending, reloaded.State)
	assert.Empty(suite.T(), reloaded.SealPayloadHash)

	decided, err := suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ProductStateAuthorized, decided.State)
}

func (suite *ReviewServiceTestSuite) TestListIsFIFO() {
	base := time.Now().UTC().Add(-time.Hour)
	names := []string{"first", "second", "third"}
	for i, name := range names {
		product := suite.submitProduct(name)
		// Space out submission times to make the expected order unambiguous.
		require.NoError(suite.T(), suite.db.Model(product).
			Update("submitted_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	listed, total, err := suite.reviews.List(ReviewListParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), total)
	require.Len(suite.T(), listed, 3)
	for i, name := range names {
		assert.Equal(suite.T(), name, listed[i].Name)
	}
}

func (suite *ReviewServiceTestSuite) TestVerifySeal() {
	product := suite.submitProduct("Verifiable Tea")
	decided, err := suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	require.NoError(suite.T(), err)

	verified, err := suite.reviews.VerifySeal(decided.SealPayloadHash)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), product.ID, verified.ID)

	_, err = suite.reviews.VerifySeal("0000000000000000000000000000000000000000000000000000000000000000")
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *ReviewServiceTestSuite) TestDecideWritesAuditLog() {
	product := suite.submitProduct("Audited Tea")
	_, err := suite.reviews.Decide(product.ID, suite.admin.ID, &DecideRequest{
		Decision: models.ReviewDecisionApprove,
	})
	require.NoError(suite.T(), err)

	var logs []models.AuditLog
	require.NoError(suite.T(), suite.db.Where("resource_type = ?", "product").Find(&logs).Error)
	require.Len(suite.T(), logs, 1)
	assert.Equal(suite.T(), "REVIEW_approve", logs[0].Action)
	require.NotNil(suite.T(), logs[0].ResourceID)
	assert.Equal(suite.T(), product.ID, *logs[0].ResourceID)
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
