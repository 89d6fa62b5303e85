package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/gateway"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/logger"
)

const downloadMaxAttempts = 3

// ErrDownloadExhausted là message lỗi ghi vào message record khi cả 3 attempt download đều fail
const ErrDownloadExhausted = "Download failed from UAZAPI after 3 attempts"

// Downloader tải media bytes từ messaging gateway
type Downloader interface {
	DownloadMedia(ctx context.Context, externalMessageID string, instanceToken string) (*gateway.DownloadResult, error)
}

// Uploader ghi object lên storage và trả về public URL
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// MessageMarker cập nhật trạng thái media của message record
type MessageMarker interface {
	MarkMediaDelivered(ctx context.Context, id primitive.ObjectID, mediaURL, mimeType string, metadata map[string]interface{}) error
	MarkMediaFailed(ctx context.Context, id primitive.ObjectID, reason string) error
}

// Processor xử lý một media job: download từ gateway, chuẩn hóa MIME,
// upload lên storage và publish kết quả vào message record
type Processor struct {
	downloader Downloader
	uploader   Uploader
	messages   MessageMarker
	log        *logrus.Logger

	// sleep và now inject được để test không phải chờ backoff thật
	sleep func(time.Duration)
	now   func() time.Time
}

func NewProcessor(downloader Downloader, uploader Uploader, messages MessageMarker) *Processor {
	return &Processor{
		downloader: downloader,
		uploader:   uploader,
		messages:   messages,
		log:        logger.GetAppLogger(),
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Process chạy toàn bộ pipeline media cho một job.
// Trả error khi job cần retry/DLQ bookkeeping ở orchestrator; upload fail là
// permanent cho message record nhưng vẫn trả error để orchestrator đếm attempt.
func (p *Processor) Process(ctx context.Context, job queuemodels.MediaJob) error {
	p.log.Infof("🎬 [MEDIA] Bắt đầu xử lý media %s (message=%s)", job.MediaKind, job.MessageRecordID.Hex())

	result, err := p.downloadWithRetry(ctx, job)
	if err != nil {
		p.log.Errorf("🎬 [MEDIA] Download thất bại sau %d lần: %v", downloadMaxAttempts, err)
		if markErr := p.messages.MarkMediaFailed(ctx, job.MessageRecordID, ErrDownloadExhausted); markErr != nil {
			p.log.Errorf("🎬 [MEDIA] Không cập nhật được message record: %v", markErr)
		}
		return fmt.Errorf("%s: %w", ErrDownloadExhausted, err)
	}

	mime := NormalizeMime(job.MediaKind, job.DeclaredFileName, job.DeclaredMimeType, result.MimeType)
	fileName := p.buildFileName(job.MediaKind, mime.Extension)
	path := p.buildStoragePath(job, fileName)

	publicURL, err := p.uploader.Upload(ctx, path, result.Data, mime.StorageMime)
	if err != nil {
		// Bytes đã có trong tay mà upload fail thì coi là permanent cho record này
		p.log.Errorf("🎬 [MEDIA] Upload storage thất bại: %v", err)
		if markErr := p.messages.MarkMediaFailed(ctx, job.MessageRecordID, fmt.Sprintf("Upload to storage failed: %v", err)); markErr != nil {
			p.log.Errorf("🎬 [MEDIA] Không cập nhật được message record: %v", markErr)
		}
		return fmt.Errorf("upload storage thất bại: %w", err)
	}

	metadata := map[string]interface{}{
		"fileName":         fileName,
		"storagePath":      path,
		"fileSize":         result.FileSize,
		"processedAt":      p.now().Unix(),
		"processedByQueue": true,
	}
	if err := p.messages.MarkMediaDelivered(ctx, job.MessageRecordID, publicURL, mime.DisplayMime, metadata); err != nil {
		return fmt.Errorf("không cập nhật được message record sau upload: %w", err)
	}

	p.log.Infof("🎬 [MEDIA] Publish thành công: %s", path)
	return nil
}

// downloadWithRetry gọi gateway tối đa 3 lần, backoff 2s × số thứ tự attempt
func (p *Processor) downloadWithRetry(ctx context.Context, job queuemodels.MediaJob) (*gateway.DownloadResult, error) {
	var lastErr error
	for attempt := 1; attempt <= downloadMaxAttempts; attempt++ {
		result, err := p.downloader.DownloadMedia(ctx, job.ExternalMessageID, job.InstanceToken)
		if err == nil && len(result.Data) > 0 {
			return result, nil
		}
		if err == nil {
			err = fmt.Errorf("gateway trả về payload rỗng")
		}
		lastErr = err
		p.log.Warnf("🎬 [MEDIA] Download attempt %d/%d thất bại: %v", attempt, downloadMaxAttempts, err)
		if attempt < downloadMaxAttempts {
			p.sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	return nil, lastErr
}

func (p *Processor) buildStoragePath(job queuemodels.MediaJob, fileName string) string {
	yearMonth := p.now().UTC().Format("2006-01")
	return fmt.Sprintf("%s/%s/%s/%s", job.CompanyID.Hex(), job.ConnectionID.Hex(), yearMonth, fileName)
}

// buildFileName build tên object: {mediaKind}_{epochMillis}_{rand6}.{ext}
func (p *Processor) buildFileName(mediaKind string, ext string) string {
	rand6 := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s_%d_%s.%s", mediaKind, p.now().UnixMilli(), rand6, ext)
}
