// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/models"
	"github.com/verdantcare/wellness-backend/internal/seal"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

// ReviewService is the admin-facing view over pending products. It holds no
// state of its own: listing reads the registry, deciding forwards to the
// registry's transition and runs the seal encoder inside the same
// transaction, so callers observe either a fully sealed product or a
// reported failure, never the intermediate state.
type ReviewService struct {
	db       *gorm.DB
	products *ProductService
	encoder  *seal.Encoder
	storage  *StorageService
}

type ReviewListParams struct {
	utils.PaginationParams
	Provenance *models.Provenance `json:"provenance,omitempty"`
}

type DecideRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string                `json:"reason,omitempty"`
}

type DashboardStats struct {
	PendingProducts    int64 `json:"pending_products"`
	AuthorizedProducts int64 `json:"authorized_products"`
	RejectedProducts   int64 `json:"rejected_products"`
	GrassrootsPending  int64 `json:"grassroots_pending"`
	TotalPatients      int64 `json:"total_patients"`
	TotalCheckins      int64 `json:"total_checkins"`
}

func NewReviewService(db *gorm.DB, products *ProductService, encoder *seal.Encoder, storage *StorageService) *ReviewService {
	return &ReviewService{
		db:       db,
		products: products,
		encoder:  encoder,
		storage:  storage,
	}
}

// List returns pending products in strict FIFO order: submission time
// ascending, ties broken by id, so pagination is deterministic.
func (s *ReviewService) List(params ReviewListParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("state = ?", models.ProductStatePending)

	if params.Provenance != nil {
		query = query.Where("provenance = ?", *params.Provenance)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count review queue: %w", err)
	}

	query = query.Order("submitted_at ASC, id ASC")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Preload("Submitter").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch review queue: %w", err)
	}

	return products, total, nil
}

// Decide applies an admin decision. On approve the seal is generated and
// stored before the transaction commits; an encoding failure rolls the
// state transition back so the product stays pending.
func (s *ReviewService) Decide(productID, adminID uuid.UUID, req *DecideRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var admin models.User
	if err := s.db.First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin %s", apperrors.ErrNotFound, adminID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if admin.UserType != models.UserTypeAdmin {
		return nil, errors.New("only admins can decide reviews")
	}

	target := models.ProductStateRejected
	if req.Decision == models.ReviewDecisionApprove {
		target = models.ProductStateAuthorized
	}

	var decided *models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.products.transition(tx, productID, adminID, target, req.Reason)
		if err != nil {
			return err
		}

		if target == models.ProductStateAuthorized {
			artifact, err := s.encoder.Encode(productID)
			if err != nil {
				// Rolls the transition back; the product stays pending.
				return err
			}

			// The blob write happens inside the transaction window. The
			// artifact is content-addressed, so an orphan from a later
			// rollback is harmless and overwritten on retry.
			path, err := s.storage.StoreSeal(artifact.PayloadHash, artifact.PNG)
			if err != nil {
				return fmt.Errorf("failed to store seal artifact: %w", err)
			}

			if err := tx.Model(product).Updates(map[string]interface{}{
				"seal_payload_hash": artifact.PayloadHash,
				"seal_image_path":   path,
			}).Error; err != nil {
				return fmt.Errorf("failed to attach seal: %w", err)
			}
			product.SealPayloadHash = artifact.PayloadHash
			product.SealImagePath = path
		}

		auditLog := &models.AuditLog{
			UserID:       &adminID,
			Action:       "REVIEW_" + string(req.Decision),
			ResourceType: "product",
			ResourceID:   &productID,
			NewValues:    models.JSONB{"state": target, "reason": req.Reason},
		}
		if err := tx.Create(auditLog).Error; err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		decided = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decided, nil
}

// VerifySeal is the public tamper check: it re-derives the payload hash for
// the product a stored hash claims to identify.
func (s *ReviewService) VerifySeal(payloadHash string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("seal_payload_hash = ?", payloadHash).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no product carries seal %s", apperrors.ErrNotFound, payloadHash)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.State != models.ProductStateAuthorized {
		return nil, fmt.Errorf("%w: sealed product is not authorized", apperrors.ErrInvalidState)
	}

	// Recompute from identity; a mismatch means the stored artifact was
	// tampered with.
	if seal.PayloadHash(product.ID) != payloadHash {
		return nil, fmt.Errorf("%w: seal hash does not match product identity", apperrors.ErrInvalidState)
	}

	return &product, nil
}

func (s *ReviewService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	s.db.Model(&models.Product{}).Where("state = ?", models.ProductStatePending).Count(&stats.PendingProducts)
	s.db.Model(&models.Product{}).Where("state = ?", models.ProductStateAuthorized).Count(&stats.AuthorizedProducts)
	s.db.Model(&models.Product{}).Where("state = ?", models.ProductStateRejected).Count(&stats.RejectedProducts)
	s.db.Model(&models.Product{}).
		Where("state = ? AND provenance = ?", models.ProductStatePending, models.ProvenanceGrassroots).
		Count(&stats.GrassrootsPending)
	s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypePatient).Count(&stats.TotalPatients)
	s.db.Model(&models.CheckinRecord{}).Count(&stats.TotalCheckins)

	return stats, nil
}
