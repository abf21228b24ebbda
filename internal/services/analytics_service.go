// internal/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/models"
)

// AnalyticsService exposes read-only derived views over the check-in
// ledger and attribution rows. It never writes.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// seriesBatchSize is the keyset page size for score series iteration.
const seriesBatchSize = 200

// SeriesPoint is one (time, score) sample in a patient's score series.
type SeriesPoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	Score      int       `json:"score"`
	QolDelta   float64   `json:"qol_delta"`
}

// SeriesIterator walks a patient's score series oldest first without
// loading the whole stream. Batches are fetched by keyset on recorded_at,
// so the iterator stays correct across concurrent appends (new records
// land strictly after the cursor). Reset rewinds to the start.
type SeriesIterator struct {
	db        *gorm.DB
	patientID uuid.UUID
	from      *time.Time
	to        *time.Time

	batch  []SeriesPoint
	idx    int
	cursor time.Time
	primed bool
	done   bool
	err    error
}

// Series returns a lazy iterator over the patient's check-in scores,
// optionally bounded by an inclusive time range.
func (s *AnalyticsService) Series(patientID uuid.UUID, from, to *time.Time) *SeriesIterator {
	return &SeriesIterator{
		db:        s.db,
		patientID: patientID,
		from:      from,
		to:        to,
	}
}

// Next advances the iterator and reports whether a point is available.
func (it *SeriesIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.idx++
	if it.idx < len(it.batch) {
		return true
	}
	if it.done {
		return false
	}
	return it.fetch()
}

// Point returns the current sample. Only valid after Next returns true.
func (it *SeriesIterator) Point() SeriesPoint {
	return it.batch[it.idx]
}

// Err reports the first database error encountered, if any.
func (it *SeriesIterator) Err() error {
	return it.err
}

// Reset rewinds the iterator so the series can be walked again from the
// beginning.
func (it *SeriesIterator) Reset() {
	it.batch = nil
	it.idx = 0
	it.cursor = time.Time{}
	it.primed = false
	it.done = false
	it.err = nil
}

func (it *SeriesIterator) fetch() bool {
	query := it.db.Model(&models.CheckinRecord{}).
		Where("patient_id = ?", it.patientID)
	if it.primed {
		query = query.Where("recorded_at > ?", it.cursor)
	} else if it.from != nil {
		query = query.Where("recorded_at >= ?", *it.from)
	}
	if it.to != nil {
		query = query.Where("recorded_at <= ?", *it.to)
	}

	var rows []models.CheckinRecord
	if err := query.Order("recorded_at ASC").Limit(seriesBatchSize).Find(&rows).Error; err != nil {
		it.err = fmt.Errorf("failed to fetch score series: %w", err)
		return false
	}

	if len(rows) == 0 {
		it.done = true
		return false
	}
	if len(rows) < seriesBatchSize {
		it.done = true
	}

	it.batch = it.batch[:0]
	for _, r := range rows {
		it.batch = append(it.batch, SeriesPoint{
			RecordedAt: r.RecordedAt,
			Score:      r.Score,
			QolDelta:   r.QolDelta,
		})
	}
	it.cursor = rows[len(rows)-1].RecordedAt
	it.primed = true
	it.idx = 0
	return true
}

// ProductRollup aggregates attribution rows for one product.
type ProductRollup struct {
	ProductID            uuid.UUID `json:"product_id"`
	UsageCount           int64     `json:"usage_count"`
	DistinctPatients     int64     `json:"distinct_patients"`
	TotalCreditedDelta   float64   `json:"total_credited_delta"`
	AverageCreditedDelta float64   `json:"average_credited_delta"`
	PositiveVotes        int64     `json:"positive_votes"`
	NegativeVotes        int64     `json:"negative_votes"`
}

// Rollup aggregates every attribution the product has received. Unknown
// products report ErrNotFound rather than an empty rollup so callers can
// tell "never used" from "does not exist".
func (s *AnalyticsService) Rollup(productID uuid.UUID) (*ProductRollup, error) {
	var count int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}

	rollup := &ProductRollup{ProductID: productID}

	type aggRow struct {
		UsageCount int64
		Total      float64
	}
	var agg aggRow
	err := s.db.Model(&models.Attribution{}).
		Select("COUNT(*) AS usage_count, COALESCE(SUM(credited_delta), 0) AS total").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attributions: %w", err)
	}
	rollup.UsageCount = agg.UsageCount
	rollup.TotalCreditedDelta = agg.Total
	if agg.UsageCount > 0 {
		rollup.AverageCreditedDelta = agg.Total / float64(agg.UsageCount)
	}

	err = s.db.Model(&models.Attribution{}).
		Joins("JOIN checkin_records ON checkin_records.id = attributions.checkin_id").
		Where("attributions.product_id = ?", productID).
		Select("COUNT(DISTINCT checkin_records.patient_id)").
		Scan(&rollup.DistinctPatients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count distinct patients: %w", err)
	}

	if err := s.db.Model(&models.Attribution{}).
		Where("product_id = ? AND credited_delta > 0", productID).
		Count(&rollup.PositiveVotes).Error; err != nil {
		return nil, fmt.Errorf("failed to count positive votes: %w", err)
	}
	if err := s.db.Model(&models.Attribution{}).
		Where("product_id = ? AND credited_delta < 0", productID).
		Count(&rollup.NegativeVotes).Error; err != nil {
		return nil, fmt.Errorf("failed to count negative votes: %w", err)
	}

	return rollup, nil
}
