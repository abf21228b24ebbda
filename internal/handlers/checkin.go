// internal/handlers/checkin.go
package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/i18n"
	"github.com/verdantcare/wellness-backend/internal/services"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

type CheckinHandler struct {
	checkinService   *services.CheckinService
	analyticsService *services.AnalyticsService
}

func NewCheckinHandler(checkinService *services.CheckinService, analyticsService *services.AnalyticsService) *CheckinHandler {
	return &CheckinHandler{
		checkinService:   checkinService,
		analyticsService: analyticsService,
	}
}

// POST /checkins
func (h *CheckinHandler) Append(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.AppendCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	// The append timestamp is server-assigned.
	req.RecordedAt = time.Time{}

	result, err := h.checkinService.Append(userID, &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaleWrite) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckinStale))
			return
		}
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyCheckinRecorded),
		"checkin":     result.Record,
		"score_delta": result.ScoreDelta,
		"trend":       result.Trend,
		"feedback":    result.Feedback,
	})
}

// GET /checkins/latest
func (h *CheckinHandler) Latest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	result, err := h.checkinService.Latest(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	if result == nil {
		utils.SuccessResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyCheckinNoneRecorded),
			"checkin": nil,
		})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"checkin":     result.Record,
		"score_delta": result.ScoreDelta,
		"trend":       result.Trend,
		"feedback":    result.Feedback,
	})
}

// GET /checkins/history
func (h *CheckinHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params, err := historyParams(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	records, err := h.checkinService.History(userID, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"checkins": records})
}

// GET /checkins/series
func (h *CheckinHandler) Series(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params, err := historyParams(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	it := h.analyticsService.Series(userID, params.From, params.To)
	points := make([]services.SeriesPoint, 0)
	for it.Next() {
		points = append(points, it.Point())
	}
	if err := it.Err(); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"series": points})
}

func historyParams(c *gin.Context) (services.HistoryParams, error) {
	var params services.HistoryParams

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return params, err
		}
		params.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return params, err
		}
		params.To = &t
	}

	return params, nil
}
