package controller

import (
	"github.com/Mouaaaaadddd/quizmaster/internal/model"
	"github.com/Mouaaaaadddd/quizmaster/internal/service"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.SessionService
}

func NewQuizController(svc *service.SessionService) *QuizController {
	return &QuizController{Service: svc}
}

type ConfigureRequest struct {
	QuizType     model.QuizType `json:"quizType" binding:"required"`
	NumQuestions int            `json:"numQuestions" binding:"required"`
}

// @Summary 配置组卷参数
// @Description 仅在 CONFIGURING_QUIZ 状态下允许；题目数量服务端钳制
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body ConfigureRequest true "组卷参数"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{id}/config [put]
func (c *QuizController) Configure(ctx *gin.Context) {
	var req ConfigureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Service.Configure(ctx.Request.Context(), ctx.Param("id"), req.QuizType, req.NumQuestions)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 生成测验
// @Description CONFIGURING_QUIZ -> GENERATING_QUIZ -> TAKING_QUIZ 或 ERROR；
// @Description 生成失败不报HTTP错误，体现在返回会话的 state/error 字段
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{id}/generate [post]
func (c *QuizController) Generate(ctx *gin.Context) {
	session, err := c.Service.Generate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

type AnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	OptionText string `json:"optionText" binding:"required"`
}

// @Summary 记录作答
// @Description 作用于当前选中的会话；没有选中会话时是 no-op。
// @Description 单选题整组替换，多选题按选项翻转。
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body AnswerRequest true "作答"
// @Success 200 {object} util.Response
// @Router /api/sessions/active/answers [post]
func (c *QuizController) RecordAnswer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Service.RecordAnswer(ctx.Request.Context(), req.QuestionID, req.OptionText)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 交卷批改
// @Description 每道题都有作答才允许提交；TAKING_QUIZ -> SUBMITTING_QUIZ -> REVIEWING_QUIZ 或 ERROR
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/sessions/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	session, err := c.Service.Submit(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 重新开始测验
// @Description REVIEWING_QUIZ -> CONFIGURING_QUIZ，清空题目/作答/批改/薄弱知识点
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/retake [post]
func (c *QuizController) Retake(ctx *gin.Context) {
	session, err := c.Service.Retake(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 薄弱知识点强化
// @Description REVIEWING_QUIZ -> CONFIGURING_QUIZ，保留 weakTopics 供下一轮出题
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/improve [post]
func (c *QuizController) ImproveWeakTopics(ctx *gin.Context) {
	session, err := c.Service.ImproveWeakTopics(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 确认错误
// @Description ERROR -> CONFIGURING_QUIZ，清掉错误信息和上一轮残留
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/error/ack [post]
func (c *QuizController) AcknowledgeError(ctx *gin.Context) {
	session, err := c.Service.AcknowledgeError(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}
