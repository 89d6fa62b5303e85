// Package media - Test Processor: retry download, hard failure sau 3 lần, publish thành công.
package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	queuemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/queue/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/gateway"
)

type fakeDownloader struct {
	calls   int
	results []*gateway.DownloadResult
	errs    []error
}

func (f *fakeDownloader) DownloadMedia(ctx context.Context, externalMessageID string, token string) (*gateway.DownloadResult, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], f.errs[i]
}

type fakeUploader struct {
	calls int
	path  string
	mime  string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	f.calls++
	f.path = path
	f.mime = contentType
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.example.com/" + path, nil
}

type fakeMarker struct {
	deliveredID  primitive.ObjectID
	deliveredURL string
	metadata     map[string]interface{}
	failedID     primitive.ObjectID
	failedReason string
}

func (f *fakeMarker) MarkMediaDelivered(ctx context.Context, id primitive.ObjectID, mediaURL, mimeType string, metadata map[string]interface{}) error {
	f.deliveredID = id
	f.deliveredURL = mediaURL
	f.metadata = metadata
	return nil
}

func (f *fakeMarker) MarkMediaFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	f.failedID = id
	f.failedReason = reason
	return nil
}

func newTestProcessor(d Downloader, u Uploader, m MessageMarker) *Processor {
	p := NewProcessor(d, u, m)
	p.sleep = func(time.Duration) {} // không chờ backoff thật trong test
	return p
}

func sampleJob() queuemodels.MediaJob {
	return queuemodels.MediaJob{
		MessageRecordID:   primitive.NewObjectID(),
		ExternalMessageID: "ext-123",
		MediaKind:         "image",
		CompanyID:         primitive.NewObjectID(),
		ConnectionID:      primitive.NewObjectID(),
		InstanceToken:     "token-abc",
	}
}

func TestProcessor_BaLanDownloadFailKhongUpload(t *testing.T) {
	downloader := &fakeDownloader{
		results: []*gateway.DownloadResult{nil, nil, nil},
		errs:    []error{errors.New("status 500"), errors.New("status 502"), errors.New("status 503")},
	}
	uploader := &fakeUploader{}
	marker := &fakeMarker{}
	p := newTestProcessor(downloader, uploader, marker)

	job := sampleJob()
	err := p.Process(context.Background(), job)
	if err == nil {
		t.Fatal("Process phải trả lỗi khi cả 3 lần download đều fail")
	}
	if downloader.calls != 3 {
		t.Errorf("phải download đúng 3 lần, đã gọi %d lần", downloader.calls)
	}
	if uploader.calls != 0 {
		t.Errorf("không được upload khi download fail, đã gọi %d lần", uploader.calls)
	}
	if marker.failedID != job.MessageRecordID {
		t.Error("message record phải được đánh dấu failed")
	}
	if marker.failedReason != ErrDownloadExhausted {
		t.Errorf("error message phải là %q, nhận được %q", ErrDownloadExhausted, marker.failedReason)
	}
}

func TestProcessor_ThanhCongSauRetry(t *testing.T) {
	data := []byte("image-bytes")
	downloader := &fakeDownloader{
		results: []*gateway.DownloadResult{nil, {Data: data, MimeType: "image/jpeg", FileSize: int64(len(data))}},
		errs:    []error{errors.New("status 500"), nil},
	}
	uploader := &fakeUploader{}
	marker := &fakeMarker{}
	p := newTestProcessor(downloader, uploader, marker)

	job := sampleJob()
	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("Process phải thành công sau retry: %v", err)
	}
	if downloader.calls != 2 {
		t.Errorf("phải dừng download sau khi thành công, đã gọi %d lần", downloader.calls)
	}
	if uploader.calls != 1 {
		t.Fatalf("phải upload đúng 1 lần, đã gọi %d lần", uploader.calls)
	}
	if marker.deliveredID != job.MessageRecordID {
		t.Error("message record phải được đánh dấu delivered")
	}
	if marker.metadata["processedByQueue"] != true {
		t.Error("metadata phải có processedByQueue=true")
	}
	if marker.metadata["storagePath"] != uploader.path {
		t.Errorf("metadata.storagePath (%v) phải khớp path đã upload (%s)", marker.metadata["storagePath"], uploader.path)
	}
}

func TestProcessor_StoragePathDungDinhDang(t *testing.T) {
	data := []byte("x")
	downloader := &fakeDownloader{
		results: []*gateway.DownloadResult{{Data: data, MimeType: "image/png"}},
		errs:    []error{nil},
	}
	uploader := &fakeUploader{}
	p := newTestProcessor(downloader, uploader, &fakeMarker{})

	job := sampleJob()
	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("Process thất bại: %v", err)
	}

	// Path: {companyId}/{connectionId}/{yyyy-mm}/{mediaKind}_{epochMillis}_{rand6}.{ext}
	parts := strings.Split(uploader.path, "/")
	if len(parts) != 4 {
		t.Fatalf("path phải có 4 phần, nhận được %q", uploader.path)
	}
	if parts[0] != job.CompanyID.Hex() || parts[1] != job.ConnectionID.Hex() {
		t.Errorf("path phải bắt đầu bằng companyId/connectionId, nhận được %q", uploader.path)
	}
	if len(parts[2]) != 7 || parts[2][4] != '-' {
		t.Errorf("phần thứ 3 phải là yyyy-mm, nhận được %q", parts[2])
	}
	if !strings.HasPrefix(parts[3], "image_") || !strings.HasSuffix(parts[3], ".png") {
		t.Errorf("tên file phải dạng image_<millis>_<rand6>.png, nhận được %q", parts[3])
	}
}

func TestProcessor_UploadFailDanhDauFailed(t *testing.T) {
	data := []byte("video-bytes")
	downloader := &fakeDownloader{
		results: []*gateway.DownloadResult{{Data: data, MimeType: "video/mp4"}},
		errs:    []error{nil},
	}
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}
	marker := &fakeMarker{}
	p := newTestProcessor(downloader, uploader, marker)

	job := sampleJob()
	if err := p.Process(context.Background(), job); err == nil {
		t.Fatal("Process phải trả lỗi khi upload fail")
	}
	if marker.failedID != job.MessageRecordID {
		t.Error("message record phải được đánh dấu failed sau khi upload fail")
	}
	if !strings.Contains(marker.failedReason, "Upload to storage failed") {
		t.Errorf("error message phải nói upload fail, nhận được %q", marker.failedReason)
	}
}
