package controller

import (
	"io"

	"github.com/Mouaaaaadddd/quizmaster/internal/service"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.SessionService
}

func NewSessionController(svc *service.SessionService) *SessionController {
	return &SessionController{Service: svc}
}

// @Summary 上传文档并创建会话
// @Description 摄取文本类文档，成功后进入 CONFIGURING_QUIZ 状态并选中该会话
// @Tags 会话
// @Accept mpfd
// @Produce json
// @Param file formData file true "文本文档"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/documents [post]
func (c *SessionController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, "文件无法读取")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		util.BadRequest(ctx, "文件无法读取")
		return
	}

	session, err := c.Service.CreateFromUpload(ctx.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 会话列表
// @Description 按最近访问时间倒序
// @Tags 会话
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/sessions [get]
func (c *SessionController) List(ctx *gin.Context) {
	util.Success(ctx, c.Service.List())
}

// @Summary 会话详情
// @Tags 会话
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	session, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 删除会话
// @Description 不可逆；若会话处于选中状态则同时取消选中
// @Tags 会话
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id} [delete]
func (c *SessionController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 选中会话
// @Tags 会话
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/select [post]
func (c *SessionController) Select(ctx *gin.Context) {
	session, err := c.Service.Select(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 取消选中（返回列表）
// @Description 仅取消选中，不删除也不改变会话状态
// @Tags 会话
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/sessions/active/deselect [post]
func (c *SessionController) Deselect(ctx *gin.Context) {
	c.Service.Deselect()
	util.Success(ctx, nil)
}
