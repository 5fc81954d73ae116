package libretranslate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranslatePostsQuerySourceTarget(t *testing.T) {
	t.Parallel()

	var got translateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			http.Error(w, "unexpected route", http.StatusNotFound)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "json only", http.StatusUnsupportedMediaType)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"translatedText":"Good morning"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/translate", nil, nil)
	text, err := c.Translate(context.Background(), "Dzień dobry", "pl", "en")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if text != "Good morning" {
		t.Fatalf("unexpected translation: %q", text)
	}
	if got != (translateRequest{Q: "Dzień dobry", Source: "pl", Target: "en"}) {
		t.Fatalf("unexpected request payload: %+v", got)
	}
}

func TestTranslateNon200IsStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"pl is not supported"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, nil).Translate(context.Background(), "x", "pl", "xx")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadRequest || statusErr.Body != `{"error":"pl is not supported"}` {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestTranslateEmptyAndMalformedResponses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/html" {
			_, _ = w.Write([]byte(`<html>`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, nil, nil).Translate(context.Background(), "x", "en", "pl"); !errors.Is(err, ErrEmptyTranslation) {
		t.Fatalf("expected empty translation error, got %v", err)
	}
	if _, err := NewClient(srv.URL+"/html", nil, nil).Translate(context.Background(), "x", "en", "pl"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTranslateUnreachableServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewClient(url, nil, nil).Translate(context.Background(), "x", "en", "pl"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestTranslateHonorsTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, &http.Client{Timeout: 50 * time.Millisecond}, nil)
	if _, err := c.Translate(context.Background(), "x", "en", "pl"); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/languages" {
			http.Error(w, "unexpected route", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"code":"en","name":"English","targets":["pl"]},{"code":"pl","name":"Polish"}]`))
	}))
	defer srv.Close()

	langs, err := NewClient(srv.URL+"/translate/", nil, nil).Languages(context.Background())
	if err != nil {
		t.Fatalf("languages failed: %v", err)
	}
	if len(langs) != 2 || langs[0].Code != "en" || langs[1].Name != "Polish" {
		t.Fatalf("unexpected languages: %+v", langs)
	}
}

func TestLanguagesURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"http://localhost:5000/translate":   "http://localhost:5000/languages",
		"https://lt.example.com/translate/": "https://lt.example.com/languages",
		"http://localhost:5000":             "http://localhost:5000/languages",
	}
	for in, want := range cases {
		got, err := languagesURL(in)
		if err != nil || got != want {
			t.Fatalf("languagesURL(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := languagesURL("localhost:5000"); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}
