// Package aiagent - Test Sender: thứ tự chunk, pacing delay, audio fallback, provenance metadata.
package aiagent

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	agentmodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/agent/models"
	messagemodels "github.com/oFelixJpedro/connectflow-pro-sub003/internal/api/message/models"
	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/speech"
)

type fakeGatewaySender struct {
	texts     []string
	voiceURLs []string
	textErr   error
	voiceErr  error
}

func (f *fakeGatewaySender) SendText(ctx context.Context, phone, text, token string) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	f.texts = append(f.texts, text)
	return "ext-text", nil
}

func (f *fakeGatewaySender) SendVoice(ctx context.Context, phone, audioURL, token string) (string, error) {
	if f.voiceErr != nil {
		return "", f.voiceErr
	}
	f.voiceURLs = append(f.voiceURLs, audioURL)
	return "ext-voice", nil
}

type fakeSynthesizer struct {
	texts []string
	err   error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req speech.SynthesizeRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.texts = append(f.texts, req.Text)
	return "https://storage.example.com/tts/audio.ogg", nil
}

type fakeOutboundStore struct {
	records []messagemodels.MessageRecord
}

func (f *fakeOutboundStore) InsertOutbound(ctx context.Context, record messagemodels.MessageRecord) (messagemodels.MessageRecord, error) {
	f.records = append(f.records, record)
	return record, nil
}

type fakeBumper struct {
	bumped []primitive.ObjectID
}

func (f *fakeBumper) BumpLastMessageAt(ctx context.Context, id primitive.ObjectID) error {
	f.bumped = append(f.bumped, id)
	return nil
}

func newTestSender(gw MessageSender, syn Synthesizer, store OutboundStore, bumper ConversationBumper) (*Sender, *[]time.Duration) {
	s := NewSender(gw, syn, store, bumper, 0)
	var sleeps []time.Duration
	s.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return s, &sleeps
}

func sampleTarget() DeliveryTarget {
	return DeliveryTarget{
		ConversationID: primitive.NewObjectID(),
		ConnectionID:   primitive.NewObjectID(),
		CompanyID:      primitive.NewObjectID(),
		ContactPhone:   "84901234567",
		InstanceToken:  "token",
	}
}

func splitEnabledConfig() *agentmodels.AIAgentConfig {
	return &agentmodels.AIAgentConfig{
		ID:                   primitive.NewObjectID(),
		AgentName:            "Trợ lý",
		Enabled:              true,
		SplitResponseEnabled: true,
	}
}

func TestSender_GuiChunkTheoThuTuVoiDelay(t *testing.T) {
	gw := &fakeGatewaySender{}
	store := &fakeOutboundStore{}
	bumper := &fakeBumper{}
	s, sleeps := newTestSender(gw, &fakeSynthesizer{}, store, bumper)

	target := sampleTarget()
	result := &GenerateResult{Outcome: OutcomeSuccess, ResponseText: "Chào bạn. Bạn cần gì? Cảm ơn."}
	if err := s.SendReply(context.Background(), target, result, splitEnabledConfig()); err != nil {
		t.Fatalf("SendReply thất bại: %v", err)
	}

	if len(gw.texts) != 3 {
		t.Fatalf("phải gửi 3 chunk, đã gửi %d: %v", len(gw.texts), gw.texts)
	}
	if gw.texts[0] != "Chào bạn." || gw.texts[1] != "Bạn cần gì?" || gw.texts[2] != "Cảm ơn." {
		t.Errorf("chunk sai thứ tự hoặc nội dung: %v", gw.texts)
	}
	// Chunk 0 không delay, chunk 1 và 2 mỗi chunk 2 giây (default)
	if len(*sleeps) != 2 {
		t.Fatalf("phải sleep 2 lần, đã sleep %d lần", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != 2*time.Second {
			t.Errorf("delay mặc định phải là 2s, nhận được %v", d)
		}
	}
	if len(bumper.bumped) != 1 || bumper.bumped[0] != target.ConversationID {
		t.Error("lastMessageAt phải được bump đúng 1 lần sau khi gửi hết chunk")
	}
}

func TestSender_DelayLayTuDeploymentDefaultKhiConfigKhongSet(t *testing.T) {
	gw := &fakeGatewaySender{}
	s := NewSender(gw, &fakeSynthesizer{}, &fakeOutboundStore{}, &fakeBumper{}, 1.5)
	var sleeps []time.Duration
	s.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	// Config connection không set SplitDelaySeconds → dùng default 1.5s của deployment
	result := &GenerateResult{Outcome: OutcomeSuccess, ResponseText: "Một. Hai."}
	if err := s.SendReply(context.Background(), sampleTarget(), result, splitEnabledConfig()); err != nil {
		t.Fatalf("SendReply thất bại: %v", err)
	}

	if len(sleeps) != 1 {
		t.Fatalf("phải sleep 1 lần giữa 2 chunk, đã sleep %d lần", len(sleeps))
	}
	if sleeps[0] != 1500*time.Millisecond {
		t.Errorf("delay phải lấy từ default của deployment (1.5s), nhận được %v", sleeps[0])
	}
}

func TestSender_DelayCuaConnectionThangDeploymentDefault(t *testing.T) {
	gw := &fakeGatewaySender{}
	s := NewSender(gw, &fakeSynthesizer{}, &fakeOutboundStore{}, &fakeBumper{}, 1.5)
	var sleeps []time.Duration
	s.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	cfg := splitEnabledConfig()
	cfg.SplitDelaySeconds = 3
	result := &GenerateResult{Outcome: OutcomeSuccess, ResponseText: "Một. Hai."}
	if err := s.SendReply(context.Background(), sampleTarget(), result, cfg); err != nil {
		t.Fatalf("SendReply thất bại: %v", err)
	}

	if len(sleeps) != 1 || sleeps[0] != 3*time.Second {
		t.Errorf("delay của connection phải thắng default, nhận được %v", sleeps)
	}
}

func TestSender_MetadataProvenance(t *testing.T) {
	gw := &fakeGatewaySender{}
	store := &fakeOutboundStore{}
	s, _ := newTestSender(gw, &fakeSynthesizer{}, store, &fakeBumper{})

	cfg := splitEnabledConfig()
	result := &GenerateResult{Outcome: OutcomeSuccess, ResponseText: "Một. Hai?"}
	if err := s.SendReply(context.Background(), sampleTarget(), result, cfg); err != nil {
		t.Fatalf("SendReply thất bại: %v", err)
	}

	if len(store.records) != 2 {
		t.Fatalf("phải lưu 2 outbound record, nhận được %d", len(store.records))
	}
	for i, record := range store.records {
		if record.Metadata["sentByAIAgent"] != true {
			t.Errorf("record %d thiếu sentByAIAgent", i)
		}
		if record.Metadata["partIndex"] != i {
			t.Errorf("record %d có partIndex=%v, muốn %d", i, record.Metadata["partIndex"], i)
		}
		if record.Metadata["totalParts"] != 2 {
			t.Errorf("record %d có totalParts=%v, muốn 2", i, record.Metadata["totalParts"])
		}
		if record.Metadata["agentName"] != cfg.AgentName {
			t.Errorf("record %d thiếu agentName", i)
		}
	}
}

func TestSender_AudioTrenToanBoText(t *testing.T) {
	gw := &fakeGatewaySender{}
	syn := &fakeSynthesizer{}
	s, _ := newTestSender(gw, syn, &fakeOutboundStore{}, &fakeBumper{})

	result := &GenerateResult{
		Outcome:             OutcomeSuccess,
		ResponseText:        "Câu một. Câu hai? Câu ba.",
		ShouldGenerateAudio: true,
		VoiceName:           "vi-female",
	}
	if err := s.SendReply(context.Background(), sampleTarget(), result, splitEnabledConfig()); err != nil {
		t.Fatalf("SendReply thất bại: %v", err)
	}

	// Audio được yêu cầu → không split, chỉ 1 voice message trên full text
	if len(syn.texts) != 1 || syn.texts[0] != result.ResponseText {
		t.Errorf("phải synthesize đúng 1 lần trên toàn bộ text chưa tách, nhận được %v", syn.texts)
	}
	if len(gw.voiceURLs) != 1 {
		t.Errorf("phải gửi đúng 1 voice message, nhận được %d", len(gw.voiceURLs))
	}
	if len(gw.texts) != 0 {
		t.Errorf("không được gửi text khi voice thành công, đã gửi %v", gw.texts)
	}
}

func TestSender_AudioFailFallbackText(t *testing.T) {
	gw := &fakeGatewaySender{}
	syn := &fakeSynthesizer{err: errors.New("tts unavailable")}
	store := &fakeOutboundStore{}
	s, _ := newTestSender(gw, syn, store, &fakeBumper{})

	result := &GenerateResult{
		Outcome:             OutcomeSuccess,
		ResponseText:        "Nội dung trả lời.",
		ShouldGenerateAudio: true,
	}
	if err := s.SendReply(context.Background(), sampleTarget(), result, splitEnabledConfig()); err != nil {
		t.Fatalf("SendReply phải fallback text thay vì trả lỗi: %v", err)
	}

	if len(gw.voiceURLs) != 0 {
		t.Error("voice không được gửi khi synthesis fail")
	}
	if len(gw.texts) != 1 || gw.texts[0] != "Nội dung trả lời." {
		t.Errorf("phải fallback gửi text, nhận được %v", gw.texts)
	}
	if len(store.records) != 1 || store.records[0].Metadata["audioUsed"] != false {
		t.Error("record fallback phải ghi audioUsed=false")
	}
}
