package media

import (
	"path/filepath"
	"strings"
)

// documentMimeByExt là bảng extension → MIME cho media kind "document".
// Gateway thường không báo MIME đáng tin cho document nên suy từ tên file.
var documentMimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".zip":  "application/zip",
	".rar":  "application/vnd.rar",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "text/xml",
	".html": "text/html",
}

// extByMime map ngược lại cho các MIME phổ biến gateway báo về
var extByMime = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/3gpp":      "3gp",
	"audio/ogg":       "ogg",
	"audio/mpeg":      "mp3",
	"audio/mp4":       "m4a",
	"audio/aac":       "aac",
	"application/pdf": "pdf",
}

// textLikeMimes là các MIME mà object store render inline thay vì download —
// khi lưu document các type này thì upload dưới application/octet-stream
var textLikeMimes = map[string]bool{
	"text/plain": true,
	"text/csv":   true,
	"text/html":  true,
	"text/xml":   true,
}

// MimeInfo là kết quả chuẩn hóa MIME cho một media artifact.
// DisplayMime là MIME lưu vào message record, StorageMime là Content-Type lúc upload
// (khác nhau với document text-like).
type MimeInfo struct {
	DisplayMime string
	StorageMime string
	Extension   string
}

// NormalizeMime xác định MIME và extension chuẩn theo media kind.
// Sticker luôn ép về image/webp, document suy từ tên file khai báo,
// các kind còn lại tin MIME gateway báo về.
func NormalizeMime(mediaKind string, declaredFileName string, declaredMimeType string, downloadedMimeType string) MimeInfo {
	switch mediaKind {
	case "sticker":
		return MimeInfo{DisplayMime: "image/webp", StorageMime: "image/webp", Extension: "webp"}

	case "document":
		ext := strings.ToLower(filepath.Ext(declaredFileName))
		mime, ok := documentMimeByExt[ext]
		if !ok {
			mime = firstNonEmpty(declaredMimeType, downloadedMimeType, "application/octet-stream")
		}
		storageMime := mime
		if textLikeMimes[mime] {
			storageMime = "application/octet-stream"
		}
		extension := strings.TrimPrefix(ext, ".")
		if extension == "" {
			extension = "bin"
		}
		return MimeInfo{DisplayMime: mime, StorageMime: storageMime, Extension: extension}

	default:
		mime := firstNonEmpty(downloadedMimeType, declaredMimeType, defaultMimeForKind(mediaKind))
		// MIME có thể kèm tham số ("audio/ogg; codecs=opus") — cắt trước khi tra extension
		base := mime
		if idx := strings.Index(base, ";"); idx >= 0 {
			base = strings.TrimSpace(base[:idx])
		}
		extension, ok := extByMime[base]
		if !ok {
			extension = defaultExtForKind(mediaKind)
		}
		return MimeInfo{DisplayMime: base, StorageMime: base, Extension: extension}
	}
}

func defaultMimeForKind(mediaKind string) string {
	switch mediaKind {
	case "image":
		return "image/jpeg"
	case "video":
		return "video/mp4"
	case "audio":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

func defaultExtForKind(mediaKind string) string {
	switch mediaKind {
	case "image":
		return "jpg"
	case "video":
		return "mp4"
	case "audio":
		return "ogg"
	default:
		return "bin"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
