package util

import "errors"

var (
	ErrSessionNotFound = errors.New("会话不存在")
	ErrInvalidState    = errors.New("当前状态不允许该操作")
	ErrQuizIncomplete  = errors.New("还有题目未作答")
	ErrEmptyContent    = errors.New("文档内容为空")
	ErrInvalidQuizType = errors.New("invalid quiz type")
	ErrQuestionUnknown = errors.New("题目不存在")
	ErrStoreNotLoaded  = errors.New("session store not loaded")
)
