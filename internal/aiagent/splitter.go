package aiagent

import (
	"strings"
	"unicode"
)

// maxChunkLength là độ dài tối đa của một chunk khi gửi tách câu
const maxChunkLength = 300

// SplitResponse tách một câu trả lời dài thành nhiều chunk gửi lần lượt,
// mô phỏng cách người thật nhắn tin. Tách theo ranh giới câu (. ! ? + whitespace);
// câu hỏi luôn đứng riêng một message; chunk không vượt quá 300 ký tự.
// Luôn trả về ít nhất một chunk — không bao giờ drop nội dung.
func SplitResponse(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{text}
	}

	sentences := splitSentences(trimmed)
	if len(sentences) == 0 {
		return []string{trimmed}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range sentences {
		isQuestion := strings.Contains(sentence, "?")

		// Câu hỏi đứng riêng: flush phần đã gom trước khi xử lý câu hỏi
		if isQuestion {
			flush()
			chunks = append(chunks, sentence)
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChunkLength {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	flush()

	if len(chunks) == 0 {
		return []string{trimmed}
	}
	return chunks
}

// splitSentences cắt text thành các câu tại . ! ? theo sau bởi whitespace
// (hoặc cuối chuỗi). Phần đuôi không có dấu kết câu vẫn thành một câu.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}
