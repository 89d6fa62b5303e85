// Package aiagent - Test SplitResponse: tách câu, câu hỏi đứng riêng, giới hạn 300 ký tự.
package aiagent

import (
	"strings"
	"testing"
)

func TestSplitResponse_CauHoiDungRieng(t *testing.T) {
	chunks := SplitResponse("Hello. How can I help? Thanks.")
	expected := []string{"Hello.", "How can I help?", "Thanks."}
	if len(chunks) != len(expected) {
		t.Fatalf("SplitResponse trả về %d chunk, muốn %d: %v", len(chunks), len(expected), chunks)
	}
	for i := range expected {
		if chunks[i] != expected[i] {
			t.Errorf("chunk %d = %q, muốn %q", i, chunks[i], expected[i])
		}
	}
}

func TestSplitResponse_GomCauNganThanhMotChunk(t *testing.T) {
	chunks := SplitResponse("Xin chào. Tôi là trợ lý ảo. Rất vui được hỗ trợ bạn.")
	if len(chunks) != 1 {
		t.Fatalf("Các câu ngắn không có câu hỏi phải gom thành 1 chunk, nhận được %d: %v", len(chunks), chunks)
	}
}

func TestSplitResponse_KhongVuotQua300KyTu(t *testing.T) {
	sentence := strings.Repeat("a", 150) + ". "
	text := strings.Repeat(sentence, 4)
	chunks := SplitResponse(text)
	if len(chunks) < 2 {
		t.Fatalf("Text dài phải tách thành nhiều chunk, nhận được %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 300 {
			t.Errorf("chunk %d dài %d ký tự, vượt giới hạn 300", i, len(chunk))
		}
	}
}

func TestSplitResponse_KhongBaoGioTraVeRong(t *testing.T) {
	cases := []string{"", "   ", "không có dấu kết câu", "?!."}
	for _, input := range cases {
		chunks := SplitResponse(input)
		if len(chunks) == 0 {
			t.Errorf("SplitResponse(%q) trả về danh sách rỗng", input)
		}
	}
}

func TestSplitResponse_KhongMatNoiDung(t *testing.T) {
	text := "Phần một. Phần hai có nội dung quan trọng! Bạn cần gì? Phần cuối."
	chunks := SplitResponse(text)
	joined := strings.Join(chunks, " ")
	for _, fragment := range []string{"Phần một", "nội dung quan trọng", "Bạn cần gì", "Phần cuối"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("nội dung %q bị mất sau khi split, chunks: %v", fragment, chunks)
		}
	}
}

func TestSplitResponse_CauHoiDauTien(t *testing.T) {
	chunks := SplitResponse("Bạn khỏe không? Tôi có thể giúp gì.")
	if len(chunks) != 2 {
		t.Fatalf("muốn 2 chunk, nhận được %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "Bạn khỏe không?" {
		t.Errorf("câu hỏi đầu tiên phải là chunk riêng, nhận được %q", chunks[0])
	}
}
