package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
)

// Client là HTTP client gọi UAZAPI gateway (download media, gửi text/voice).
// Mỗi connection có instance token riêng nên token truyền theo từng request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient tạo client với timeout mặc định 30 giây
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DownloadMedia tải media của một message từ gateway và parse payload base64.
// Một attempt duy nhất — retry policy nằm ở tầng media processor.
func (c *Client) DownloadMedia(ctx context.Context, externalMessageID string, instanceToken string) (*DownloadResult, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"id": externalMessageID,
	})
	if err != nil {
		return nil, fmt.Errorf("không tạo được request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message/download", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("không tạo được request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", instanceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrGatewayDown, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("không đọc được response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download media thất bại, status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return ParseDownloadPayload(body)
}

// SendText gửi một tin nhắn text tới số điện thoại, trả về external message id (nếu gateway báo)
func (c *Client) SendText(ctx context.Context, phone string, text string, instanceToken string) (string, error) {
	return c.send(ctx, "/send/text", map[string]interface{}{
		"number": phone,
		"text":   text,
	}, instanceToken)
}

// SendVoice gửi một audio message (PTT) theo URL đã upload lên storage
func (c *Client) SendVoice(ctx context.Context, phone string, audioURL string, instanceToken string) (string, error) {
	return c.send(ctx, "/send/media", map[string]interface{}{
		"number": phone,
		"type":   "ptt",
		"file":   audioURL,
	}, instanceToken)
}

func (c *Client) send(ctx context.Context, path string, payload map[string]interface{}, instanceToken string) (string, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("không tạo được request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("không tạo được request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", instanceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrGatewayDown, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("không đọc được response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gửi message thất bại, status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	// Gateway trả id dưới vài shape khác nhau — best effort, id rỗng vẫn coi là thành công
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err == nil {
		for _, key := range []string{"id", "messageid", "messageId"} {
			if id, ok := result[key].(string); ok && id != "" {
				return id, nil
			}
		}
		if msg, ok := result["message"].(map[string]interface{}); ok {
			if id, ok := msg["id"].(string); ok {
				return id, nil
			}
		}
	}
	return "", nil
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
