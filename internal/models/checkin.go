// internal/models/checkin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Slider dimension keys. Discomfort is the inverted dimension: a high value
// means the patient feels worse, so scoring flips it before summing.
const (
	DimensionDiscomfort = "discomfort"
	DimensionMood       = "mood"
	DimensionEnergy     = "energy"
	DimensionClarity    = "clarity"
	DimensionAppetite   = "appetite"
)

// SliderDimensions lists every check-in dimension in canonical order.
var SliderDimensions = []string{
	DimensionDiscomfort,
	DimensionMood,
	DimensionEnergy,
	DimensionClarity,
	DimensionAppetite,
}

// CheckinRecord is one immutable patient self-report. Rows are created once
// on submission and never updated; a patient's stream is ordered by
// RecordedAt, which is strictly increasing per patient.
type CheckinRecord struct {
	BaseModel
	PatientID  uuid.UUID `json:"patient_id" gorm:"type:uuid;not null;uniqueIndex:idx_checkin_patient_time,priority:1"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null;uniqueIndex:idx_checkin_patient_time,priority:2"`

	Discomfort int `json:"discomfort" gorm:"not null"`
	Mood       int `json:"mood" gorm:"not null"`
	Energy     int `json:"energy" gorm:"not null"`
	Clarity    int `json:"clarity" gorm:"not null"`
	Appetite   int `json:"appetite" gorm:"not null"`

	// Score is derived from the sliders and stored for audit immutability;
	// recomputation must reproduce it.
	Score int `json:"score" gorm:"not null"`

	// QolDelta is the dedicated quality-of-life slider, [-10,10], expressed
	// on a percentage scale.
	QolDelta float64 `json:"qol_delta" gorm:"not null"`

	// Unattributed is the share of QolDelta not credited to any product.
	Unattributed float64 `json:"unattributed" gorm:"not null"`

	NotesText string `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Patient      User          `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Attributions []Attribution `json:"attributions,omitempty" gorm:"foreignKey:CheckinID"`
}

// Sliders returns the record's slider values keyed by dimension.
func (c *CheckinRecord) Sliders() map[string]int {
	return map[string]int{
		DimensionDiscomfort: c.Discomfort,
		DimensionMood:       c.Mood,
		DimensionEnergy:     c.Energy,
		DimensionClarity:    c.Clarity,
		DimensionAppetite:   c.Appetite,
	}
}

// Attribution credits a slice of a check-in's QoL delta to one product.
type Attribution struct {
	BaseModel
	CheckinID     uuid.UUID `json:"checkin_id" gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Weight        float64   `json:"weight" gorm:"not null"`
	CreditedDelta float64   `json:"credited_delta" gorm:"not null"`

	// Relationships
	Checkin CheckinRecord `json:"checkin,omitempty" gorm:"foreignKey:CheckinID"`
	Product Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
