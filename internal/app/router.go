package app

import (
	"github.com/Mouaaaaadddd/quizmaster/docs"
	"github.com/Mouaaaaadddd/quizmaster/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.POST("/documents", c.session.Upload)

		sessions := api.Group("/sessions")
		{
			sessions.GET("", c.session.List)

			// 作答和返回动作隐式作用于当前选中的会话
			sessions.POST("/active/answers", c.quiz.RecordAnswer)
			sessions.POST("/active/deselect", c.session.Deselect)

			sessions.GET("/:id", c.session.Get)
			sessions.DELETE("/:id", c.session.Delete)
			sessions.POST("/:id/select", c.session.Select)
			sessions.PUT("/:id/config", c.quiz.Configure)
			sessions.POST("/:id/generate", c.quiz.Generate)
			sessions.POST("/:id/submit", c.quiz.Submit)
			sessions.POST("/:id/retake", c.quiz.Retake)
			sessions.POST("/:id/improve", c.quiz.ImproveWeakTopics)
			sessions.POST("/:id/error/ack", c.quiz.AcknowledgeError)
		}
	}
}
