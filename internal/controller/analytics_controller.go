package controller

import (
	"survey_insight_backend/internal/service"
	"survey_insight_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 问卷统计分析
// @Description 逐题分布/均分/文本摘要，外加按日趋势与方向判定
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/surveys/{id}/analytics [get]
func (c *AnalyticsController) GetSurveyAnalytics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	analytics, err := c.AnalyticsService.GetSurveyAnalytics(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Success(ctx, analytics)
}
