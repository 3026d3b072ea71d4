package app

import (
	"survey_insight_backend/internal/config"
	"survey_insight_backend/internal/middleware"
	"survey_insight_backend/internal/model"
	"survey_insight_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 答题端公开接口：拉取已发布问卷、匿名提交作答
	publicAPI := router.Group("/api/public")
	publicAPI.Use(middleware.TryAuthMiddleware(cfg))
	{
		publicAPI.GET("/surveys/:id", c.survey.GetPublicSurvey)
		publicAPI.POST("/surveys/:id/responses", c.response.SubmitResponse)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
	}

	// 问卷管理、分析与导出：creator 及以上（admin 直接放行）
	manage := authGroup.Group("")
	manage.Use(middleware.RoleMiddleware(model.Creator))
	{
		manage.POST("/surveys", c.survey.CreateSurvey)
		manage.GET("/surveys", c.survey.ListSurveys)
		manage.GET("/surveys/:id", c.survey.GetSurvey)
		manage.PUT("/surveys/:id", c.survey.UpdateSurvey)
		manage.DELETE("/surveys/:id", c.survey.DeleteSurvey)
		manage.POST("/surveys/:id/questions/dynamic", c.survey.AddDynamicQuestion)

		manage.GET("/surveys/:id/responses", c.response.ListResponses)

		// 分析
		manage.GET("/surveys/:id/analytics", c.analytics.GetSurveyAnalytics)

		// 导出
		manage.GET("/surveys/:id/export", c.export.ExportResponses)
		manage.POST("/surveys/:id/export/archive", c.export.ArchiveExport)
	}
}
