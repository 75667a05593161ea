package controller

import (
	"net/http"

	"github.com/Mouaaaaadddd/quizmaster/internal/service"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Service *service.SessionService
	Driver  string
}

func NewHealthController(svc *service.SessionService, driver string) *HealthController {
	return &HealthController{Service: svc, Driver: driver}
}

// @Summary 健康检查
// @Description 检查服务与快照后端状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	if err := c.Service.Ping(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "snapshot backend unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"snapshot": gin.H{
				"driver": c.Driver,
				"status": "up",
			},
		},
	})
}
