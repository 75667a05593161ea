package service

import "fmt"

// IngestionError 文件不可读或非文本内容。只作为一次性提示返回，
// 不会写进任何会话状态（失败的上传不创建会话）。
type IngestionError struct {
	Message string
	Err     error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *IngestionError) Unwrap() error { return e.Err }

// GenerationError 出题协作方调用失败或返回不可用结果，
// Message 会原样写入会话的 error 字段
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GradingError 批改协作方调用失败或返回不可解析结果
type GradingError struct {
	Message string
	Err     error
}

func (e *GradingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GradingError) Unwrap() error { return e.Err }
