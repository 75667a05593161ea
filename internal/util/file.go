package util

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// 可接受的文本类 MIME 类型前缀或完整类型
var textMimeTypes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/x-ndjson",
}

// DetectTextContent 深度校验上传内容是否为文本类。
// 返回探测到的 MIME 类型；非文本内容返回错误，调用方不应为其创建会话。
func DetectTextContent(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty file")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)

	for _, allowed := range textMimeTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	// DetectContentType 对无 BOM 的 UTF-8 纯文本有时给出 octet-stream，
	// 这里再做一次 UTF-8 校验兜底
	if mimeType == "application/octet-stream" && utf8.Valid(data) {
		return "text/plain; charset=utf-8", nil
	}

	return mimeType, errors.New("unsupported file type: " + mimeType)
}
