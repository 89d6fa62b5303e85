package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SynthesizeRequest là tham số của một lần text-to-speech.
// Voice/speed/temperature/language lấy từ delivery hints của AI agent.
type SynthesizeRequest struct {
	Text         string  `json:"text"`
	VoiceName    string  `json:"voiceName,omitempty"`
	Speed        float64 `json:"speed,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	LanguageCode string  `json:"languageCode,omitempty"`
}

// Client gọi speech service để synthesize audio từ text
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL string, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Synthesize gọi TTS và trả về URL của audio đã generate.
// Lỗi ở đây không fatal — caller fallback về gửi text.
func (c *Client) Synthesize(ctx context.Context, req SynthesizeRequest) (string, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("không tạo được request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/synthesize", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("không tạo được request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gọi speech service thất bại: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("không đọc được response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > 200 {
			body = body[:200]
		}
		return "", fmt.Errorf("speech service trả status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("không parse được response: %w", err)
	}
	if result.AudioURL == "" {
		return "", fmt.Errorf("speech service không trả audioUrl")
	}

	return result.AudioURL, nil
}
