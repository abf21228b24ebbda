// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/verdantcare/wellness-backend/internal/i18n"
	"github.com/verdantcare/wellness-backend/internal/models"
	"github.com/verdantcare/wellness-backend/internal/services"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

type AdminHandler struct {
	reviewService *services.ReviewService
}

func NewAdminHandler(reviewService *services.ReviewService) *AdminHandler {
	return &AdminHandler{
		reviewService: reviewService,
	}
}

// GET /admin/review
func (h *AdminHandler) ListReviewQueue(c *gin.Context) {
	params := services.ReviewListParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if provenance := c.Query("provenance"); provenance != "" {
		p := models.Provenance(provenance)
		params.Provenance = &p
	}

	products, total, err := h.reviewService.List(params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params.PaginationParams))
}

// POST /admin/review/:id/decide
func (h *AdminHandler) Decide(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.reviewService.Decide(productID, adminID, &req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDecided),
		"product": product,
	})
}

// GET /admin/dashboard/stats
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.reviewService.GetDashboardStats()
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}
