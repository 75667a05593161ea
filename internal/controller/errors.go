package controller

import (
	"errors"

	"github.com/Mouaaaaadddd/quizmaster/internal/service"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射到HTTP语义：
// 状态守卫被拒是 409，输入问题是 400，找不到是 404，其余 500。
func respondError(ctx *gin.Context, err error) {
	var ingestion *service.IngestionError

	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrInvalidState), errors.Is(err, util.ErrQuizIncomplete):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidQuizType),
		errors.Is(err, util.ErrEmptyContent),
		errors.Is(err, util.ErrQuestionUnknown):
		util.BadRequest(ctx, err.Error())
	case errors.As(err, &ingestion):
		util.BadRequest(ctx, ingestion.Message)
	default:
		util.LogInternalError(ctx, err)
	}
}
