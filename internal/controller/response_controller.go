package controller

import (
	"errors"
	"survey_insight_backend/internal/service"
	"survey_insight_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResponseController struct {
	ResponseService *service.ResponseService
}

func NewResponseController(responseService *service.ResponseService) *ResponseController {
	return &ResponseController{ResponseService: responseService}
}

// @Summary 提交问卷作答
// @Description 公开接口，支持匿名提交
// @Tags 作答
// @Accept json
// @Produce json
// @Param id path string true "问卷ID"
// @Param body body service.SubmitResponseInput true "作答内容"
// @Success 201 {object} util.Response
// @Router /api/public/surveys/{id}/responses [post]
func (c *ResponseController) SubmitResponse(ctx *gin.Context) {
	var in service.SubmitResponseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	response, err := c.ResponseService.Submit(ctx.Param("id"), &in)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSurveyNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrRatingOutOfRange):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": response.ID, "submittedAt": response.SubmittedAt})
}

// @Summary 问卷作答列表
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/surveys/{id}/responses [get]
func (c *ResponseController) ListResponses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	responses, err := c.ResponseService.ListBySurvey(ctx.Param("id"), user.UserID)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Success(ctx, responses)
}
