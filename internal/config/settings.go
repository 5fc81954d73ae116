package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

const (
	DefaultHotkeyTranslate       = "ctrl+m"
	DefaultHotkeyCopy            = "ctrl+shift+c"
	DefaultOverlayPosition       = "top_center"
	DefaultTargetLanguage        = "en"
	DefaultSourceLanguage        = "pl-PL"
	DefaultLibreTranslateURL     = "http://localhost:5000/translate"
	DefaultPhraseTimeLimit       = 30
	DefaultOverlayDisplayTime    = 15
	DefaultInitialSilenceTimeout = 4.0
	// SegmentSilenceTimeout is the wait for a follow-up phrase. It is not user tunable.
	SegmentSilenceTimeout = 0.20
)

// Settings is the persisted settings record. JSON names are the file format.
type Settings struct {
	HotkeyTranslate   string `json:"hotkey_translate"`
	HotkeyCopy        string `json:"hotkey_copy"`
	OverlayPosition   string `json:"overlay_position"`
	TargetLanguage    string `json:"target_language"`
	RecognizerEngine  string `json:"recognizer_engine"`
	TranslatorEngine  string `json:"translator_engine"`
	LibreTranslateURL string `json:"libretranslate_url"`
	SourceLanguage    string `json:"source_language"`

	FontSize                  int    `json:"font_size"`
	TextColor                 string `json:"text_color"`
	BackgroundColor           string `json:"background_color"`
	Padding                   int    `json:"padding"`
	OverlayMinWidth           int    `json:"overlay_min_width"`
	OverlayMaxWidth           int    `json:"overlay_max_width"`
	OverlayMinHeight          int    `json:"overlay_min_height"`
	OverlayMaxHeight          int    `json:"overlay_max_height"`
	OverlayShortTextMinHeight int    `json:"overlay_short_text_min_height"`
	OverlayShortTextMaxHeight int    `json:"overlay_short_text_max_height"`
	OverlayDisplayTime        int    `json:"overlay_display_time"`

	PhraseTimeLimit       int     `json:"phrase_time_limit"`
	InitialSilenceTimeout float64 `json:"initial_silence_timeout"`
	SilenceTimeout        float64 `json:"silence_timeout"`

	CaptureDumpDir string `json:"capture_dump_dir"`
}

// Defaults returns the built-in settings record.
func Defaults() Settings {
	return Settings{
		HotkeyTranslate:   DefaultHotkeyTranslate,
		HotkeyCopy:        DefaultHotkeyCopy,
		OverlayPosition:   DefaultOverlayPosition,
		TargetLanguage:    DefaultTargetLanguage,
		RecognizerEngine:  EngineGoogle,
		TranslatorEngine:  TranslatorLibreTranslateLocal,
		LibreTranslateURL: DefaultLibreTranslateURL,
		SourceLanguage:    DefaultSourceLanguage,

		FontSize:                  18,
		TextColor:                 "white",
		BackgroundColor:           "rgba(0, 0, 0, 150)",
		Padding:                   10,
		OverlayMinWidth:           250,
		OverlayMaxWidth:           800,
		OverlayMinHeight:          50,
		OverlayMaxHeight:          300,
		OverlayShortTextMinHeight: 50,
		OverlayShortTextMaxHeight: 70,
		OverlayDisplayTime:        DefaultOverlayDisplayTime,

		PhraseTimeLimit:       DefaultPhraseTimeLimit,
		InitialSilenceTimeout: DefaultInitialSilenceTimeout,
		SilenceTimeout:        SegmentSilenceTimeout,
	}
}

// Load reads the settings file. A missing or corrupt file yields defaults;
// only keys that decode into the right type override the defaults.
func Load(path string, logger *slog.Logger) Settings {
	if logger == nil {
		logger = slog.Default()
	}
	settings := Defaults()
	if strings.TrimSpace(path) == "" {
		logger.Warn("settings path unavailable, using defaults")
		return settings
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to read settings, using defaults", "path", path, "err", err)
		} else {
			logger.Info("settings file does not exist, using defaults", "path", path)
		}
		return settings
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(contents, &raw); err != nil {
		logger.Warn("settings file is corrupted, using defaults", "path", path, "err", err)
		return settings
	}

	fields := settings.fields()
	defaults := Defaults()
	defaultFields := defaults.fields()
	for _, key := range Keys() {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, fields[key]); err != nil {
			logger.Warn("settings key has wrong type, using default", "key", key, "err", err)
			reflect.ValueOf(fields[key]).Elem().Set(reflect.ValueOf(defaultFields[key]).Elem())
		}
	}

	settings.Normalize()
	return settings
}

// Save writes settings as indented JSON, replacing the file atomically.
func Save(path string, settings Settings) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("settings path is not available")
	}
	settings.Normalize()

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file %q: %w", path, err)
	}
	return nil
}

// Normalize clamps numeric fields into their accepted ranges and replaces
// unknown enumerations with defaults.
func (s *Settings) Normalize() {
	d := Defaults()

	s.HotkeyTranslate = strings.ToLower(strings.TrimSpace(s.HotkeyTranslate))
	s.HotkeyCopy = strings.ToLower(strings.TrimSpace(s.HotkeyCopy))
	if s.HotkeyTranslate == "" {
		s.HotkeyTranslate = d.HotkeyTranslate
	}
	if s.HotkeyCopy == "" {
		s.HotkeyCopy = d.HotkeyCopy
	}

	if !Has(OverlayPositions, s.OverlayPosition) {
		s.OverlayPosition = d.OverlayPosition
	}
	if !Has(TargetLanguages, s.TargetLanguage) {
		s.TargetLanguage = d.TargetLanguage
	}
	if !Has(SourceLanguages, s.SourceLanguage) {
		s.SourceLanguage = d.SourceLanguage
	}
	if !Has(RecognizerEngines, s.RecognizerEngine) {
		s.RecognizerEngine = d.RecognizerEngine
	}
	if !Has(TranslatorEngines, s.TranslatorEngine) {
		s.TranslatorEngine = d.TranslatorEngine
	}
	s.LibreTranslateURL = strings.TrimSpace(s.LibreTranslateURL)
	if !ValidURL(s.LibreTranslateURL) {
		s.LibreTranslateURL = d.LibreTranslateURL
	}

	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if strings.TrimSpace(s.TextColor) == "" {
		s.TextColor = d.TextColor
	}
	if strings.TrimSpace(s.BackgroundColor) == "" {
		s.BackgroundColor = d.BackgroundColor
	}
	if s.Padding < 0 {
		s.Padding = d.Padding
	}
	if s.OverlayMinWidth <= 0 {
		s.OverlayMinWidth = d.OverlayMinWidth
	}
	if s.OverlayMaxWidth < s.OverlayMinWidth {
		s.OverlayMaxWidth = s.OverlayMinWidth
	}
	if s.OverlayMinHeight <= 0 {
		s.OverlayMinHeight = d.OverlayMinHeight
	}
	if s.OverlayMaxHeight < s.OverlayMinHeight {
		s.OverlayMaxHeight = s.OverlayMinHeight
	}
	if s.OverlayShortTextMinHeight <= 0 {
		s.OverlayShortTextMinHeight = d.OverlayShortTextMinHeight
	}
	if s.OverlayShortTextMaxHeight < s.OverlayShortTextMinHeight {
		s.OverlayShortTextMaxHeight = s.OverlayShortTextMinHeight
	}

	s.OverlayDisplayTime = clampInt(s.OverlayDisplayTime, 5, 60)
	s.PhraseTimeLimit = clampInt(s.PhraseTimeLimit, 10, 120)
	if s.InitialSilenceTimeout <= 0 {
		s.InitialSilenceTimeout = d.InitialSilenceTimeout
	}
	s.InitialSilenceTimeout = clampFloat(s.InitialSilenceTimeout, 1.5, 8.0)
	s.SilenceTimeout = SegmentSilenceTimeout

	s.CaptureDumpDir = strings.TrimSpace(s.CaptureDumpDir)
}

// ValidURL reports whether raw looks like an http(s) endpoint.
func ValidURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// Keys returns every settings key in file order.
func Keys() []string {
	t := reflect.TypeOf(Settings{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		keys = append(keys, jsonName(t.Field(i)))
	}
	return keys
}

// Diff lists the keys whose values differ between a and b, in file order.
func Diff(a, b Settings) []string {
	af := a.fields()
	bf := b.fields()
	var changed []string
	for _, key := range Keys() {
		if !reflect.DeepEqual(reflect.ValueOf(af[key]).Elem().Interface(), reflect.ValueOf(bf[key]).Elem().Interface()) {
			changed = append(changed, key)
		}
	}
	return changed
}

var friendlyNames = map[string]string{
	"hotkey_translate":        "Translation hotkey",
	"hotkey_copy":             "Copy hotkey",
	"overlay_position":        "Overlay position",
	"target_language":         "Target language",
	"source_language":         "Source language",
	"overlay_display_time":    "Overlay display time",
	"phrase_time_limit":       "Max recording time",
	"libretranslate_url":      "LibreTranslate URL",
	"initial_silence_timeout": "Initial silence timeout",
	"recognizer_engine":       "Speech recognition engine",
}

// FriendlyName returns the settings-panel label for key.
func FriendlyName(key string) string {
	if name, ok := friendlyNames[key]; ok {
		return name
	}
	return key
}

func (s *Settings) fields() map[string]any {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	fields := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields[jsonName(t.Field(i))] = v.Field(i).Addr().Interface()
	}
	return fields
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return name
}

func clampInt(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func clampFloat(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
