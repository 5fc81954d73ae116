package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Runtime stores environment-driven configuration that is not part of the
// user-editable settings file.
type Runtime struct {
	SettingsPath string
	LogLevel     slog.Level
	Google       GoogleConfig
	Deepgram     DeepgramConfig
	Audio        AudioConfig
	Session      SessionConfig
}

type GoogleConfig struct {
	APIKey          string
	CredentialsFile string
	Model           string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

type AudioConfig struct {
	Backend         string
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SessionConfig struct {
	ChunkSize           int
	CalibrationDuration time.Duration
	RecognitionTimeout  time.Duration
	TranslationTimeout  time.Duration
	PromptInterval      time.Duration
}

const (
	AudioBackendFFMPEG    = "ffmpeg"
	AudioBackendPortAudio = "portaudio"
)

// LoadRuntime resolves runtime configuration from .env files, environment
// variables and sensible defaults.
func LoadRuntime() (Runtime, error) {
	dir := ConfigDir()
	loadDotEnv(".env", filepath.Join(dir, ".env"))

	settingsPath := strings.TrimSpace(os.Getenv("TRANSLATOR_SETTINGS_FILE"))
	if settingsPath == "" && dir != "" {
		settingsPath = filepath.Join(dir, "settings.json")
	}

	cfg := Runtime{
		SettingsPath: settingsPath,
		LogLevel:     parseLevel(os.Getenv("TRANSLATOR_LOG_LEVEL")),
		Google: GoogleConfig{
			APIKey:          strings.TrimSpace(os.Getenv("GOOGLE_SPEECH_API_KEY")),
			CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
			Model:           strings.TrimSpace(os.Getenv("GOOGLE_SPEECH_MODEL")),
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			Backend:         strings.ToLower(envOrDefault("TRANSLATOR_AUDIO_BACKEND", AudioBackendFFMPEG)),
			RecorderCommand: envOrDefault("TRANSLATOR_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("TRANSLATOR_AUDIO_INPUT_FORMAT", defaultInputFormat()),
			InputDevice:     envOrDefault("TRANSLATOR_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("TRANSLATOR_SAMPLE_RATE", 16000),
			Channels:        1,
		},
		Session: SessionConfig{
			ChunkSize:           envOrDefaultInt("TRANSLATOR_AUDIO_CHUNK_SIZE", 2048),
			CalibrationDuration: envOrDefaultDuration("TRANSLATOR_CALIBRATION_MS", time.Second),
			RecognitionTimeout:  envOrDefaultDuration("TRANSLATOR_RECOGNITION_TIMEOUT_MS", 30*time.Second),
			TranslationTimeout:  envOrDefaultDuration("TRANSLATOR_TRANSLATION_TIMEOUT_MS", 10*time.Second),
			PromptInterval:      4500 * time.Millisecond,
		},
	}

	if cfg.Audio.Backend != AudioBackendFFMPEG && cfg.Audio.Backend != AudioBackendPortAudio {
		cfg.Audio.Backend = AudioBackendFFMPEG
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 2048
	}

	return cfg, nil
}

// ConfigDir returns the per-user settings directory, creating it if needed.
// It falls back to ./TranslatorOverlay and returns "" when neither can be created.
func ConfigDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		dir := filepath.Join(base, AppName)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	dir := filepath.Join(".", AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return dir
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		// Variables already present in the environment win.
		_ = godotenv.Load(p)
	}
}

func defaultInputFormat() string {
	switch runtime.GOOS {
	case "windows":
		return "dshow"
	case "darwin":
		return "avfoundation"
	default:
		return "pulse"
	}
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	ms := envOrDefaultInt(key, -1)
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
