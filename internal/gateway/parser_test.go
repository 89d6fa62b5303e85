// Package gateway - Test ParseDownloadPayload với các shape payload khác nhau của UAZAPI.
package gateway

import (
	"encoding/base64"
	"testing"
)

func TestParseDownloadPayload_KeyBase64ChuanVaMimetype(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))
	result, err := ParseDownloadPayload([]byte(`{"base64":"` + raw + `","mimetype":"image/jpeg"}`))
	if err != nil {
		t.Fatalf("parse thất bại: %v", err)
	}
	if string(result.Data) != "hello" {
		t.Errorf("data = %q, muốn %q", result.Data, "hello")
	}
	if result.MimeType != "image/jpeg" {
		t.Errorf("mimeType = %q, muốn image/jpeg", result.MimeType)
	}
	if result.FileSize != 5 {
		t.Errorf("fileSize = %d, muốn 5", result.FileSize)
	}
}

func TestParseDownloadPayload_CacKeyThayThe(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("x"))
	for _, key := range []string{"data", "file", "mediaBase64", "fileBase64"} {
		body := []byte(`{"` + key + `":"` + raw + `"}`)
		result, err := ParseDownloadPayload(body)
		if err != nil {
			t.Errorf("key %q: parse thất bại: %v", key, err)
			continue
		}
		if string(result.Data) != "x" {
			t.Errorf("key %q: data sai", key)
		}
	}
}

func TestParseDownloadPayload_BocTrongMessage(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("inner"))
	result, err := ParseDownloadPayload([]byte(`{"message":{"base64":"` + raw + `","mimeType":"audio/ogg"}}`))
	if err != nil {
		t.Fatalf("parse thất bại với payload bọc trong message: %v", err)
	}
	if string(result.Data) != "inner" {
		t.Errorf("data = %q, muốn %q", result.Data, "inner")
	}
	if result.MimeType != "audio/ogg" {
		t.Errorf("mimeType = %q, muốn audio/ogg", result.MimeType)
	}
}

func TestParseDownloadPayload_DataURI(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	result, err := ParseDownloadPayload([]byte(`{"base64":"data:image/png;base64,` + raw + `"}`))
	if err != nil {
		t.Fatalf("parse thất bại với data URI: %v", err)
	}
	if string(result.Data) != "png-bytes" {
		t.Errorf("data URI prefix phải được cắt trước khi decode")
	}
}

func TestParseDownloadPayload_ThieuPayload(t *testing.T) {
	if _, err := ParseDownloadPayload([]byte(`{"status":"ok"}`)); err == nil {
		t.Error("payload không có base64 phải trả lỗi")
	}
}

func TestParseDownloadPayload_JSONHong(t *testing.T) {
	if _, err := ParseDownloadPayload([]byte(`not-json`)); err == nil {
		t.Error("body không phải JSON phải trả lỗi")
	}
}

func TestParseDownloadPayload_Base64Hong(t *testing.T) {
	if _, err := ParseDownloadPayload([]byte(`{"base64":"!!!không-phải-base64!!!"}`)); err == nil {
		t.Error("base64 hỏng phải trả lỗi decode")
	}
}
