package util

import (
	"strings"
	"testing"
)

func TestDetectTextContent(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"plain text", []byte("hello world"), false},
		{"markdown", []byte("# 标题\n\n正文段落。"), false},
		{"json", []byte(`{"key": "value"}`), false},
		{"xml with decl", []byte(`<?xml version="1.0"?><root/>`), false},
		{"html", []byte("<!DOCTYPE html><html><body>ok</body></html>"), false},
		{"utf8 without ascii lead", []byte("中文开头的纯文本内容"), false},
		{"empty", nil, true},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), true},
		{"pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3"), true},
		{"zip", []byte("PK\x03\x04\x14\x00\x00\x00"), true},
		{"invalid utf8 binary", []byte{0x00, 0xff, 0xfe, 0x01, 0x02}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, err := DetectTextContent(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected rejection, got mime %q", mimeType)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
			if mimeType == "" {
				t.Error("expected detected mime type")
			}
		})
	}
}

func TestDetectTextContentLargeFileOnlyChecksHead(t *testing.T) {
	data := []byte(strings.Repeat("文档内容。", 10000))
	if _, err := DetectTextContent(data); err != nil {
		t.Fatalf("large text rejected: %v", err)
	}
}
