package aiagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GenerateOutcome là kết quả phân loại của một lần gọi generation service
type GenerateOutcome string

const (
	OutcomeSkip    GenerateOutcome = "skip"    // Agent từ chối trả lời (disabled, không match trigger)
	OutcomeSuccess GenerateOutcome = "success" // Có response text để gửi
)

// BatchInput là một message trong batch gửi cho generation service
type BatchInput struct {
	Content   string `json:"content"`
	MediaType string `json:"mediaType,omitempty"`
}

// GenerateRequest là input của một lần generate reply
type GenerateRequest struct {
	ConversationID string       `json:"conversationId"`
	ConnectionID   string       `json:"connectionId"`
	Messages       []BatchInput `json:"messages"`
	ContactName    string       `json:"contactName,omitempty"`
	ContactPhone   string       `json:"contactPhone,omitempty"`
}

// GenerateResult gom response text và các delivery hint của agent
type GenerateResult struct {
	Outcome      GenerateOutcome
	SkipReason   string
	ResponseText string

	// Delivery hints
	DelaySeconds        float64
	VoiceName           string
	SpeechSpeed         float64
	AudioTemperature    float64
	LanguageCode        string
	ShouldGenerateAudio bool
}

// Generator gọi AI agent service để generate reply cho một batch message
type Generator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGenerator tạo generator với timeout 60 giây (generation chậm hơn các call khác)
func NewGenerator(baseURL string, apiKey string) *Generator {
	return &Generator{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate gọi generation service. Ba kết cục: skip (nil error, Outcome=skip),
// error (err != nil — caller đếm vào retry/DLQ bookkeeping), success.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("không tạo được request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/generate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("không tạo được request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gọi generation service thất bại: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("không đọc được response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generation service trả status %d: %s", resp.StatusCode, truncateBody(body, 200))
	}

	var payload struct {
		Skip                bool    `json:"skip"`
		Reason              string  `json:"reason"`
		ResponseText        string  `json:"responseText"`
		DelaySeconds        float64 `json:"delaySeconds"`
		VoiceName           string  `json:"voiceName"`
		SpeechSpeed         float64 `json:"speechSpeed"`
		AudioTemperature    float64 `json:"audioTemperature"`
		LanguageCode        string  `json:"languageCode"`
		ShouldGenerateAudio bool    `json:"shouldGenerateAudio"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("không parse được response của generation service: %w", err)
	}

	if payload.Skip {
		return &GenerateResult{Outcome: OutcomeSkip, SkipReason: payload.Reason}, nil
	}
	if payload.ResponseText == "" {
		// Không skip mà cũng không có text thì coi là lỗi của service
		return nil, fmt.Errorf("generation service không trả responseText")
	}

	return &GenerateResult{
		Outcome:             OutcomeSuccess,
		ResponseText:        payload.ResponseText,
		DelaySeconds:        payload.DelaySeconds,
		VoiceName:           payload.VoiceName,
		SpeechSpeed:         payload.SpeechSpeed,
		AudioTemperature:    payload.AudioTemperature,
		LanguageCode:        payload.LanguageCode,
		ShouldGenerateAudio: payload.ShouldGenerateAudio,
	}, nil
}

func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
