package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"translatoroverlay/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 256
)

// ErrEmptyTranslation means the server answered 200 without translatedText.
var ErrEmptyTranslation = fmt.Errorf("%w: no translatedText", ports.ErrMalformedTranslation)

// StatusError is a non-200 answer from the translation server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("translation server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("translation server returned %d: %s", e.StatusCode, e.Body)
}

// Language is one entry of the server's /languages listing.
type Language struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets,omitempty"`
}

// Client talks to a LibreTranslate-compatible /translate endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(url string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{url: strings.TrimSpace(url), httpClient: httpClient, logger: logger}
}

// URL is the configured translate endpoint.
func (c *Client) URL() string {
	return c.url
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (c *Client) Translate(ctx context.Context, text string, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(translateRequest{Q: text, Source: sourceLang, Target: targetLang})
	if err != nil {
		return "", fmt.Errorf("encode translation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrMalformedTranslation, err)
	}
	if decoded.TranslatedText == "" {
		return "", ErrEmptyTranslation
	}
	c.logger.Debug("text translated", "source", sourceLang, "target", targetLang, "chars", len(decoded.TranslatedText))
	return decoded.TranslatedText, nil
}

// Languages lists the languages served next to the configured endpoint,
// which doubles as a reachability check.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	endpoint, err := languagesURL(c.url)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build languages request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languages request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var langs []Language
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("decode languages response: %w", err)
	}
	return langs, nil
}

// languagesURL swaps a trailing /translate for /languages.
func languagesURL(translateURL string) (string, error) {
	if !strings.HasPrefix(translateURL, "http://") && !strings.HasPrefix(translateURL, "https://") {
		return "", fmt.Errorf("invalid translator url %q", translateURL)
	}
	base := strings.TrimRight(translateURL, "/")
	base = strings.TrimSuffix(base, "/translate")
	return base + "/languages", nil
}

func statusError(resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
}
