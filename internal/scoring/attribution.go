// internal/scoring/attribution.go
package scoring

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
)

// weightEpsilon absorbs float accumulation noise when weights are meant to
// sum to exactly 1.0.
const weightEpsilon = 1e-9

// Selection is one patient-picked product and the share of the QoL change
// credited to it.
type Selection struct {
	ProductID uuid.UUID `json:"product_id"`
	Weight    float64   `json:"weight"`
}

// AttributionResult distributes a QoL delta across selected products. The
// unattributed remainder is kept, never dropped, so it stays auditable.
type AttributionResult struct {
	Credits      map[uuid.UUID]float64 `json:"credits"`
	Unattributed float64               `json:"unattributed"`
}

// Resolve distributes qolDelta across the selections by weight. It fails
// before computing anything when a weight is negative, a product appears
// twice, or the weights sum past 1.0.
func Resolve(qolDelta float64, selections []Selection) (*AttributionResult, error) {
	totalWeight := 0.0
	seen := make(map[uuid.UUID]bool, len(selections))
	for _, sel := range selections {
		if sel.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: selection has no product id", apperrors.ErrInvalidAttribution)
		}
		if seen[sel.ProductID] {
			return nil, fmt.Errorf("%w: product %s selected twice", apperrors.ErrInvalidAttribution, sel.ProductID)
		}
		seen[sel.ProductID] = true
		if sel.Weight < 0 {
			return nil, fmt.Errorf("%w: negative weight %.4f for product %s", apperrors.ErrInvalidAttribution, sel.Weight, sel.ProductID)
		}
		totalWeight += sel.Weight
	}
	if totalWeight > 1.0+weightEpsilon {
		return nil, fmt.Errorf("%w: weights sum to %.4f, exceeding 1.0", apperrors.ErrInvalidAttribution, totalWeight)
	}

	result := &AttributionResult{
		Credits: make(map[uuid.UUID]float64, len(selections)),
	}
	for _, sel := range selections {
		result.Credits[sel.ProductID] = qolDelta * sel.Weight
	}

	remainder := 1.0 - totalWeight
	if remainder < 0 {
		remainder = 0
	}
	result.Unattributed = qolDelta * remainder

	return result, nil
}
