// internal/handlers/verification.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/i18n"
	"github.com/verdantcare/wellness-backend/internal/services"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

// VerificationHandler serves the public seal check. No authentication: the
// seal is printed on packaging and anyone may scan it.
type VerificationHandler struct {
	reviewService *services.ReviewService
}

func NewVerificationHandler(reviewService *services.ReviewService) *VerificationHandler {
	return &VerificationHandler{
		reviewService: reviewService,
	}
}

// GET /verify/:hash
func (h *VerificationHandler) VerifySeal(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	payloadHash := c.Param("hash")
	if payloadHash == "" {
		utils.BadRequestResponse(c, "Missing seal hash", nil)
		return
	}

	product, err := h.reviewService.VerifySeal(payloadHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.NotFoundResponse(c, i18n.KeyProductSealInvalid)
			return
		}
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductSealValid),
		"valid":   true,
		"product": gin.H{
			"id":         product.ID,
			"name":       product.Name,
			"category":   product.Category,
			"provenance": product.Provenance,
			"state":      product.State,
			"decided_at": product.DecidedAt,
		},
	})
}
