// internal/services/checkin_service.go
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
	"github.com/verdantcare/wellness-backend/internal/scoring"
)

// CheckinService is the append-only ledger of patient self-reports. Records
// are never updated after creation; each append must carry a timestamp
// strictly after the patient's latest record.
type CheckinService struct {
	db *gorm.DB
}

func NewCheckinService(db *gorm.DB) *CheckinService {
	return &CheckinService{db: db}
}

type AttributionSelection struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Weight    float64   `json:"weight" validate:"min=0,max=1"`
}

type AppendCheckinRequest struct {
	Sliders      map[string]int         `json:"sliders" validate:"required"`
	QolDelta     float64                `json:"qol_delta" validate:"min=-10,max=10"`
	Attributions []AttributionSelection `json:"attributions,omitempty"`
	Notes        string                 `json:"notes,omitempty"`

	// RecordedAt overrides the append timestamp. Zero means now.
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// CheckinResult is an appended or fetched record together with the derived
// per-dimension feedback against the previous record.
type CheckinResult struct {
	Record     *models.CheckinRecord    `json:"record"`
	ScoreDelta scoring.Delta            `json:"score_delta"`
	Trend      scoring.Trend            `json:"trend"`
	Feedback   map[string]scoring.Trend `json:"feedback,omitempty"`
}

// Append validates, scores, and persists one check-in. Attribution targets
// are resolved before the transaction opens; the strictly-increasing
// timestamp invariant is enforced inside it.
func (s *CheckinService) Append(patientID uuid.UUID, req *AppendCheckinRequest) (*CheckinResult, error) {
	if err := scoring.ValidateSliders(req.Sliders); err != nil {
		return nil, err
	}
	if req.QolDelta < -10 || req.QolDelta > 10 {
		return nil, errors.New("qol_delta must be between -10 and 10")
	}

	var patient models.User
	if err := s.db.First(&patient, patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: patient %s", apperrors.ErrNotFound, patientID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if patient.UserType != models.UserTypePatient {
		return nil, errors.New("only patients can record check-ins")
	}
	if patient.Status != models.UserStatusActive {
		return nil, errors.New("account is not active")
	}

	selections := make([]scoring.Selection, 0, len(req.Attributions))
	for _, a := range req.Attributions {
		if err := s.checkAttributionTarget(a.ProductID); err != nil {
			return nil, err
		}
		selections = append(selections, scoring.Selection{ProductID: a.ProductID, Weight: a.Weight})
	}

	resolution, err := scoring.Resolve(req.QolDelta, selections)
	if err != nil {
		return nil, err
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	record := &models.CheckinRecord{
		PatientID:    patientID,
		RecordedAt:   recordedAt,
		Discomfort:   req.Sliders[models.DimensionDiscomfort],
		Mood:         req.Sliders[models.DimensionMood],
		Energy:       req.Sliders[models.DimensionEnergy],
		Clarity:      req.Sliders[models.DimensionClarity],
		Appetite:     req.Sliders[models.DimensionAppetite],
		Score:        scoring.ComputeScore(req.Sliders),
		QolDelta:     req.QolDelta,
		Unattributed: resolution.Unattributed,
		NotesText:    req.Notes,
	}

	var previous *models.CheckinRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var latest models.CheckinRecord
		err := tx.Where("patient_id = ?", patientID).
			Order("recorded_at DESC").
			First(&latest).Error
		switch {
		case err == nil:
			if !recordedAt.After(latest.RecordedAt) {
				return fmt.Errorf("%w: record at %s is not after latest %s",
					apperrors.ErrStaleWrite, recordedAt.Format(time.RFC3339), latest.RecordedAt.Format(time.RFC3339))
			}
			previous = &latest
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First record for this patient.
		default:
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Create(record).Error; err != nil {
			// The unique index on (patient_id, recorded_at) backstops the
			// check above against a concurrent append.
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: concurrent record at %s", apperrors.ErrStaleWrite, recordedAt.Format(time.RFC3339))
			}
			return fmt.Errorf("failed to create check-in: %w", err)
		}

		for productID, credited := range resolution.Credits {
			attribution := &models.Attribution{
				CheckinID:     record.ID,
				ProductID:     productID,
				Weight:        weightFor(req.Attributions, productID),
				CreditedDelta: credited,
			}
			if err := tx.Create(attribution).Error; err != nil {
				return fmt.Errorf("failed to create attribution: %w", err)
			}
			record.Attributions = append(record.Attributions, *attribution)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildResult(record, previous), nil
}

// Latest returns the patient's most recent record, or nil when the ledger
// is empty for them.
func (s *CheckinService) Latest(patientID uuid.UUID) (*CheckinResult, error) {
	var latest models.CheckinRecord
	err := s.db.Where("patient_id = ?", patientID).
		Order("recorded_at DESC").
		Preload("Attributions").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var prev models.CheckinRecord
	err = s.db.Where("patient_id = ? AND recorded_at < ?", patientID, latest.RecordedAt).
		Order("recorded_at DESC").
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.buildResult(&latest, nil), nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.buildResult(&latest, &prev), nil
}

type HistoryParams struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// History returns the patient's records oldest first, optionally bounded by
// an inclusive date range.
func (s *CheckinService) History(patientID uuid.UUID, params HistoryParams) ([]models.CheckinRecord, error) {
	query := s.db.Where("patient_id = ?", patientID)
	if params.From != nil {
		query = query.Where("recorded_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("recorded_at <= ?", *params.To)
	}
	query = query.Order("recorded_at ASC").Preload("Attributions")
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}

	var records []models.CheckinRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch check-in history: %w", err)
	}
	return records, nil
}

func (s *CheckinService) buildResult(record, previous *models.CheckinRecord) *CheckinResult {
	result := &CheckinResult{Record: record}
	if previous != nil {
		prevScore := float64(previous.Score)
		result.ScoreDelta = scoring.ComputeDelta(float64(record.Score), &prevScore)
		result.Feedback = scoring.Compare(record.Sliders(), previous.Sliders())
	} else {
		result.ScoreDelta = scoring.ComputeDelta(float64(record.Score), nil)
	}
	result.Trend = scoring.Classify(result.ScoreDelta)
	return result
}

// checkAttributionTarget verifies the product exists; any referenced
// product is a valid target regardless of approval state, since patients
// report on what they actually used.
func (s *CheckinService) checkAttributionTarget(productID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: unknown product %s", apperrors.ErrInvalidAttribution, productID)
	}
	return nil
}

func weightFor(selections []AttributionSelection, productID uuid.UUID) float64 {
	for _, s := range selections {
		if s.ProductID == productID {
			return s.Weight
		}
	}
	return 0
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
