package service

import (
	"encoding/json"
	"strconv"
	"strings"
)

// stripCodeFences 去掉模型经常包在 JSON 外层的 markdown 代码块标记
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// ```json 这类语言标记占第一行
	if idx := strings.Index(s, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "json" || firstLine == "JSON" || firstLine == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// flexibleID 容忍模型把 id 输出成数字或字符串
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		*f = flexibleID(unquoted)
		return nil
	}
	// 数字id直接用字面量
	*f = flexibleID(s)
	return nil
}

// unwrapArray 宽松解包：payload 可能是裸数组，也可能被包在
// 信封对象里（{"questions": [...]} 等）。返回数组的原始 JSON。
func unwrapArray(payload string, envelopeKeys []string) (json.RawMessage, bool) {
	payload = strings.TrimSpace(payload)

	if strings.HasPrefix(payload, "[") {
		return json.RawMessage(payload), true
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, false
	}

	for _, key := range envelopeKeys {
		if raw, ok := envelope[key]; ok {
			if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
				return raw, true
			}
		}
	}

	// 已知键都没有，退而找信封里第一个数组值
	for _, raw := range envelope {
		if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
			return raw, true
		}
	}

	return nil, false
}
