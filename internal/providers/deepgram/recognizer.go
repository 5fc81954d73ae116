package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"translatoroverlay/internal/ports"
	"translatoroverlay/internal/providers/recognizer"
)

const (
	providerName = "Deepgram"
	sendChunk    = 8192
)

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

// Recognizer streams a recorded utterance over Deepgram's live websocket
// and returns the aggregated final transcript.
type Recognizer struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{cfg: cfg, dialer: websocket.DefaultDialer, logger: logger}
}

func (r *Recognizer) Name() string {
	return providerName
}

func (r *Recognizer) Recognize(ctx context.Context, audio ports.Audio, language string) (string, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return "", recognizer.NewRequestError(providerName, errors.New("DEEPGRAM_API_KEY is not configured"))
	}
	if len(audio.Data) == 0 {
		return "", recognizer.ErrUnknownValue
	}

	wsURL, err := buildListenURL(r.cfg, language, audio.SampleRate)
	if err != nil {
		return "", err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.cfg.APIKey)

	conn, _, err := r.dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return "", recognizer.NewRequestError(providerName, fmt.Errorf("failed to connect to Deepgram websocket: %w", err))
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	s := &session{conn: conn}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.send(audio.Data)
	}()
	s.read()
	_ = conn.Close()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := s.transcript.text()
	if text != "" {
		r.logger.Debug("speech recognized", "provider", providerName, "language", language, "chars", len(text))
		return text, nil
	}
	if err := s.waitErr(); err != nil {
		return "", recognizer.NewRequestError(providerName, err)
	}
	return "", recognizer.ErrUnknownValue
}

type session struct {
	conn *websocket.Conn

	// transcript is only touched by read.
	transcript transcript

	errMu sync.Mutex
	err   error
}

func (s *session) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *session) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *session) send(data []byte) {
	for start := 0; start < len(data); start += sendChunk {
		end := start + sendChunk
		if end > len(data) {
			end = len(data)
		}
		if err := s.conn.WriteMessage(websocket.BinaryMessage, data[start:end]); err != nil {
			s.setErr(fmt.Errorf("failed to send audio: %w", err))
			return
		}
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		s.setErr(fmt.Errorf("failed to close stream: %w", err))
	}
}

// read consumes results until the server closes the stream or sends the
// trailing Metadata message that follows CloseStream.
func (s *session) read() {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read provider event: %w", err))
			return
		}

		var response deepgramResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		switch {
		case strings.EqualFold(response.Type, "Error"):
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			s.setErr(errors.New(message))
			return
		case strings.EqualFold(response.Type, "Metadata"):
			return
		}

		s.transcript.add(extractTranscript(response), response.IsFinal || response.SpeechFinal)
	}
}

type deepgramResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func extractTranscript(response deepgramResponse) string {
	if len(response.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(response.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(response.Results.Channels) > 0 && len(response.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(response.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

func buildListenURL(cfg Config, language string, sampleRate int) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		base = "https://api.deepgram.com/v1"
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	if sampleRate <= 0 {
		sampleRate = 16000
	}
	query := listenURL.Query()
	query.Set("model", cfg.Model)
	query.Set("encoding", "linear16")
	query.Set("sample_rate", fmt.Sprintf("%d", sampleRate))
	query.Set("channels", "1")
	query.Set("interim_results", "false")
	query.Set("smart_format", fmt.Sprintf("%t", cfg.SmartFormat))
	if language != "" {
		query.Set("language", language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
