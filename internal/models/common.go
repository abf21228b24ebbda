// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// IDs are assigned application-side so the same models work against
// postgres in production and sqlite in tests.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL (stored as plain JSON text elsewhere)
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, sok := value.(string); sok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypePatient    UserType = "patient"
	UserTypeEnterprise UserType = "enterprise"
	UserTypeAdmin      UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

// Provenance records where a product submission originated. Set at creation,
// immutable afterward.
type Provenance string

const (
	ProvenanceGrassroots        Provenance = "grassroots"
	ProvenanceEnterprisePending Provenance = "enterprise_pending"
)

// ProductState is the review lifecycle. Pending is the only initial state;
// authorized and rejected are terminal.
type ProductState string

const (
	ProductStatePending    ProductState = "pending"
	ProductStateAuthorized ProductState = "authorized"
	ProductStateRejected   ProductState = "rejected"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ProductState) IsTerminal() bool {
	return s == ProductStateAuthorized || s == ProductStateRejected
}

type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "approve"
	ReviewDecisionReject  ReviewDecision = "reject"
)
