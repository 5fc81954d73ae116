package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"translatoroverlay/internal/ports"
	"translatoroverlay/internal/providers/recognizer"
)

const providerName = "Google"

// Config selects credentials and model for Cloud Speech-to-Text.
type Config struct {
	APIKey          string
	CredentialsFile string
	Model           string
}

// speechClient is the subset of *speech.Client the recognizer needs.
type speechClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// Recognizer calls the synchronous Recognize RPC with LINEAR16 audio.
// The gRPC client is created lazily on first use.
type Recognizer struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	client    speechClient
	newClient func(ctx context.Context) (speechClient, error)
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recognizer{cfg: cfg, logger: logger}
	r.newClient = func(ctx context.Context) (speechClient, error) {
		return speech.NewClient(ctx, clientOptions(cfg)...)
	}
	return r
}

func clientOptions(cfg Config) []option.ClientOption {
	var opts []option.ClientOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	return opts
}

func (r *Recognizer) Name() string {
	return providerName
}

func (r *Recognizer) Recognize(ctx context.Context, audio ports.Audio, language string) (string, error) {
	if len(audio.Data) == 0 {
		return "", recognizer.ErrUnknownValue
	}
	if audio.SampleWidth != 2 {
		return "", fmt.Errorf("unsupported sample width %d", audio.SampleWidth)
	}

	client, err := r.ensureClient(ctx)
	if err != nil {
		return "", recognizer.NewRequestError(providerName, err)
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(audio.SampleRate),
			LanguageCode:    language,
			Model:           r.cfg.Model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.Data},
		},
	}
	resp, err := client.Recognize(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", recognizer.NewRequestError(providerName, err)
	}

	text := bestTranscript(resp)
	if text == "" {
		return "", recognizer.ErrUnknownValue
	}
	r.logger.Debug("speech recognized", "provider", providerName, "language", language, "chars", len(text))
	return text, nil
}

// Close releases the gRPC connection if one was opened.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *Recognizer) ensureClient(ctx context.Context) (speechClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	client, err := r.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	r.client = client
	return client, nil
}

// bestTranscript joins the top alternative of every result.
func bestTranscript(resp *speechpb.RecognizeResponse) string {
	if resp == nil {
		return ""
	}
	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
