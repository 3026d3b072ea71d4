package controller

import (
	"errors"
	"survey_insight_backend/internal/service"
	"survey_insight_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService *service.SurveyService
}

func NewSurveyController(surveyService *service.SurveyService) *SurveyController {
	return &SurveyController{SurveyService: surveyService}
}

// mapSurveyError 服务层哨兵错误映射到 HTTP 状态码
func mapSurveyError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSurveyNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrSurveyNotOwned):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidInput):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 创建问卷
// @Tags 问卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateSurveyInput true "问卷定义"
// @Success 201 {object} util.Response
// @Router /api/surveys [post]
func (c *SurveyController) CreateSurvey(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.CreateSurveyInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.CreateSurvey(user.UserID, &in)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Created(ctx, survey)
}

// @Summary 问卷列表
// @Tags 问卷
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/surveys [get]
func (c *SurveyController) ListSurveys(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := util.ParsePageQuery(ctx.DefaultQuery("page", "1"), ctx.DefaultQuery("limit", "20"))
	surveys, total, err := c.SurveyService.ListSurveys(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: surveys, Total: total, Page: page, Limit: limit})
}

// @Summary 问卷详情
// @Tags 问卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/surveys/{id} [get]
func (c *SurveyController) GetSurvey(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	survey, err := c.SurveyService.GetOwnedSurvey(ctx.Param("id"), user.UserID)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Success(ctx, survey)
}

// @Summary 公开问卷详情
// @Description 答题端拉取已发布问卷
// @Tags 问卷
// @Produce json
// @Param id path string true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/public/surveys/{id} [get]
func (c *SurveyController) GetPublicSurvey(ctx *gin.Context) {
	survey, err := c.SurveyService.GetSurvey(ctx.Param("id"))
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}
	if !survey.IsPublished {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, survey)
}

// @Summary 更新问卷
// @Tags 问卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/surveys/{id} [put]
func (c *SurveyController) UpdateSurvey(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.UpdateSurveyInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.UpdateSurvey(ctx.Param("id"), user.UserID, &in)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Success(ctx, survey)
}

// @Summary 删除问卷
// @Tags 问卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/surveys/{id} [delete]
func (c *SurveyController) DeleteSurvey(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.SurveyService.DeleteSurvey(ctx.Param("id"), user.UserID); err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 追加动态题目
// @Description 会话中生成的追问（如 AI 建议）挂到问卷末尾
// @Tags 问卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Param body body service.QuestionInput true "题目定义"
// @Success 201 {object} util.Response
// @Router /api/surveys/{id}/questions/dynamic [post]
func (c *SurveyController) AddDynamicQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.SurveyService.AddDynamicQuestion(ctx.Param("id"), user.UserID, &in)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Created(ctx, question)
}
