// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	Name        string       `json:"name" gorm:"size:255;not null"`
	Category    string       `json:"category" gorm:"size:100;index"`
	Notes       string       `json:"notes" gorm:"type:text"`
	Provenance  Provenance   `json:"provenance" gorm:"type:varchar(30);not null;index"`
	State       ProductState `json:"state" gorm:"type:varchar(20);default:'pending';index"`
	SubmittedBy uuid.UUID    `json:"submitted_by" gorm:"type:uuid;not null;index"`
	SubmittedAt time.Time    `json:"submitted_at" gorm:"not null;index"`

	// Decision audit fields, written exactly once by the winning transition.
	DecidedBy       *uuid.UUID `json:"decided_by,omitempty" gorm:"type:uuid"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	// Seal artifact; non-null iff State == authorized.
	SealPayloadHash string `json:"seal_payload_hash,omitempty" gorm:"size:64;index"`
	SealImagePath   string `json:"seal_image_path,omitempty" gorm:"size:512"`

	// Relationships
	Submitter  User             `json:"submitter,omitempty" gorm:"foreignKey:SubmittedBy"`
	Enrichment []EnrichmentNote `json:"enrichment,omitempty" gorm:"foreignKey:ProductID"`
}

// Sealed reports whether the product carries a seal artifact.
func (p *Product) Sealed() bool {
	return p.SealPayloadHash != "" && p.SealImagePath != ""
}

// EnrichmentNote is one community-contributed note or rating on a product.
// Rows are append-only; ordering is by sequence within a product.
type EnrichmentNote struct {
	BaseModel
	ProductID     uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index:idx_enrichment_product_seq,priority:1"`
	Sequence      int       `json:"sequence" gorm:"not null;index:idx_enrichment_product_seq,priority:2"`
	ContributorID uuid.UUID `json:"contributor_id" gorm:"type:uuid;not null;index"`
	Note          string    `json:"note" gorm:"type:text;not null"`
	Rating        *int      `json:"rating,omitempty"`

	// Relationships
	Contributor User `json:"contributor,omitempty" gorm:"foreignKey:ContributorID"`
}
