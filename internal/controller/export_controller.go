package controller

import (
	"fmt"
	"net/http"
	"survey_insight_backend/internal/service"
	"survey_insight_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
}

func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

// @Summary 导出问卷响应
// @Description 生成 CSV 或 JSON 文档并以附件下发
// @Tags 导出
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Param format query string false "导出格式 csv|json" default(csv)
// @Success 200 {file} binary
// @Router /api/surveys/{id}/export [get]
func (c *ExportController) ExportResponses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	format := ctx.DefaultQuery("format", service.FormatCSV)
	// 格式大小写敏感，非法值是调用方错误
	if format != service.FormatCSV && format != service.FormatJSON {
		util.BadRequest(ctx, "format must be csv or json")
		return
	}

	result, err := c.ExportService.ExportSurvey(ctx.Param("id"), user.UserID, format)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	// filename 兜底 + RFC 5987 filename*，非 ASCII 标题两端都能还原
	ctx.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, result.Filename, result.FilenameStar))
	ctx.Data(http.StatusOK, result.ContentType, result.Data)
}

// @Summary 归档导出文档
// @Description 序列化后写入对象存储，返回归档地址
// @Tags 导出
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问卷ID"
// @Param format query string false "导出格式 csv|json" default(csv)
// @Success 200 {object} util.Response
// @Router /api/surveys/{id}/export/archive [post]
func (c *ExportController) ArchiveExport(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	format := ctx.DefaultQuery("format", service.FormatCSV)
	if format != service.FormatCSV && format != service.FormatJSON {
		util.BadRequest(ctx, "format must be csv or json")
		return
	}

	url, err := c.ExportService.ArchiveExport(ctx.Request.Context(), ctx.Param("id"), user.UserID, format)
	if err != nil {
		mapSurveyError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
