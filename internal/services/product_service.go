// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/models"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

// ProductService owns product records and their review lifecycle. Every
// submission starts pending; only an admin decision moves it anywhere else.
type ProductService struct {
	db *gorm.DB
}

type SubmitProductRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Category string `json:"category" validate:"required,max=100"`
	Notes    string `json:"notes,omitempty"`
	// Provenance may be supplied explicitly; when empty it is derived from
	// the submitter's role. An explicit value must match the role.
	Provenance models.Provenance `json:"provenance,omitempty"`
}

type EnrichProductRequest struct {
	Note   string `json:"note" validate:"required,min=1"`
	Rating *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	State      *models.ProductState `json:"state,omitempty"`
	Provenance *models.Provenance   `json:"provenance,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// Submit creates a product record in the pending state. Enterprise
// submitters are trusted actors, but authorization is an exclusively
// administrative capability: nothing here can produce an authorized record.
func (s *ProductService) Submit(submitterID uuid.UUID, req *SubmitProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var submitter models.User
	if err := s.db.First(&submitter, submitterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: submitter %s", apperrors.ErrNotFound, submitterID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if submitter.Status != models.UserStatusActive {
		return nil, errors.New("submitter account is not active")
	}

	provenance, err := provenanceForSubmitter(&submitter, req.Provenance)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Notes:       req.Notes,
		Provenance:  provenance,
		State:       models.ProductStatePending,
		SubmittedBy: submitterID,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func provenanceForSubmitter(submitter *models.User, requested models.Provenance) (models.Provenance, error) {
	var derived models.Provenance
	switch submitter.UserType {
	case models.UserTypePatient:
		derived = models.ProvenanceGrassroots
	case models.UserTypeEnterprise:
		derived = models.ProvenanceEnterprisePending
	default:
		return "", errors.New("only patients and enterprises can submit products")
	}

	if requested != "" && requested != derived {
		return "", fmt.Errorf("provenance %q does not match submitter role %q", requested, submitter.UserType)
	}
	return derived, nil
}

func (s *ProductService) Get(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Enrichment", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC")
	}).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// Enrich appends one community note to a product. Pending and authorized
// products accept enrichment; rejected products do not.
func (s *ProductService) Enrich(productID, contributorID uuid.UUID, req *EnrichProductRequest) (*models.EnrichmentNote, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var note *models.EnrichmentNote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if product.State == models.ProductStateRejected {
			return fmt.Errorf("%w: rejected products cannot be enriched", apperrors.ErrInvalidState)
		}

		var maxSeq int
		if err := tx.Model(&models.EnrichmentNote{}).
			Where("product_id = ?", productID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("failed to determine enrichment sequence: %w", err)
		}

		note = &models.EnrichmentNote{
			ProductID:     productID,
			Sequence:      maxSeq + 1,
			ContributorID: contributorID,
			Note:          req.Note,
			Rating:        req.Rating,
		}
		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("failed to append enrichment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// Search lists products for the patient-facing catalog. Without an explicit
// state filter only authorized products are returned.
func (s *ProductService) Search(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	} else {
		query = query.Where("state = ?", models.ProductStateAuthorized)
	}

	if params.Provenance != nil {
		query = query.Where("provenance = ?", *params.Provenance)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(notes) LIKE ?", searchTerm, searchTerm)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "submitted_at", "name", "category"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// transition moves a pending product into a terminal state. The guard is a
// single conditional UPDATE on state=pending, so concurrent decisions on one
// product resolve to exactly one winner; the loser sees ErrAlreadyDecided.
func (s *ProductService) transition(tx *gorm.DB, productID, adminID uuid.UUID, to models.ProductState, reason string) (*models.Product, error) {
	if !to.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot transition to %q", apperrors.ErrInvalidState, to)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"state":      to,
		"decided_by": adminID,
		"decided_at": now,
	}
	if to == models.ProductStateRejected {
		updates["rejection_reason"] = reason
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND state = ?", productID, models.ProductStatePending).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product state: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var existing models.Product
		if err := tx.First(&existing, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return nil, fmt.Errorf("%w: product %s is %s", apperrors.ErrAlreadyDecided, productID, existing.State)
	}

	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	return &product, nil
}
