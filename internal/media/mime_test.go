// Package media - Test NormalizeMime: sticker ép webp, document suy từ tên file.
package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMime_StickerLuonLaWebp(t *testing.T) {
	info := NormalizeMime("sticker", "", "image/png", "image/png")
	assert.Equal(t, "image/webp", info.DisplayMime, "sticker phải ép về image/webp")
	assert.Equal(t, "image/webp", info.StorageMime)
	assert.Equal(t, "webp", info.Extension)
}

func TestNormalizeMime_DocumentTheoTenFile(t *testing.T) {
	cases := []struct {
		fileName    string
		displayMime string
		storageMime string
		extension   string
	}{
		{"report.pdf", "application/pdf", "application/pdf", "pdf"},
		{"bang-luong.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
		{"data.csv", "text/csv", "application/octet-stream", "csv"},
		{"ghi-chu.txt", "text/plain", "application/octet-stream", "txt"},
		{"trang.html", "text/html", "application/octet-stream", "html"},
		{"file.xyz", "application/octet-stream", "application/octet-stream", "xyz"},
		{"khong-extension", "application/octet-stream", "application/octet-stream", "bin"},
	}
	for _, c := range cases {
		info := NormalizeMime("document", c.fileName, "", "")
		assert.Equal(t, c.displayMime, info.DisplayMime, "display MIME sai cho %s", c.fileName)
		assert.Equal(t, c.storageMime, info.StorageMime, "storage MIME sai cho %s (text-like phải là octet-stream)", c.fileName)
		assert.Equal(t, c.extension, info.Extension, "extension sai cho %s", c.fileName)
	}
}

func TestNormalizeMime_AudioTheoGateway(t *testing.T) {
	info := NormalizeMime("audio", "", "", "audio/ogg; codecs=opus")
	assert.Equal(t, "audio/ogg", info.DisplayMime, "MIME phải cắt tham số codecs")
	assert.Equal(t, "ogg", info.Extension)
}

func TestNormalizeMime_DefaultTheoKind(t *testing.T) {
	cases := []struct {
		kind string
		mime string
		ext  string
	}{
		{"image", "image/jpeg", "jpg"},
		{"video", "video/mp4", "mp4"},
		{"audio", "audio/ogg", "ogg"},
	}
	for _, c := range cases {
		info := NormalizeMime(c.kind, "", "", "")
		assert.Equal(t, c.mime, info.DisplayMime, "default MIME sai cho kind %s", c.kind)
		assert.Equal(t, c.ext, info.Extension, "default extension sai cho kind %s", c.kind)
	}
}

func TestNormalizeMime_UuTienMimeGatewayBao(t *testing.T) {
	info := NormalizeMime("image", "", "image/jpeg", "image/png")
	assert.Equal(t, "image/png", info.DisplayMime, "MIME gateway báo về phải thắng declared MIME")
	assert.Equal(t, "png", info.Extension)
}
