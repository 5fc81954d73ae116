package deepgram

import "strings"

// transcript collects Deepgram results for one utterance. Interim text is
// kept only as a fallback when no final result arrives.
type transcript struct {
	finals     []string
	lastSpoken string
}

func (t *transcript) add(text string, final bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t.lastSpoken = text
	if final {
		t.finals = append(t.finals, text)
	}
}

func (t *transcript) text() string {
	joined := strings.TrimSpace(strings.Join(t.finals, " "))
	if joined == "" {
		return t.lastSpoken
	}
	if t.lastSpoken == "" || strings.HasSuffix(joined, t.lastSpoken) {
		return joined
	}
	if len(t.lastSpoken) > len(joined) {
		return strings.TrimSpace(joined + " " + t.lastSpoken)
	}
	return joined
}
