package config

// Option is one selectable value shown in the settings panel.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

const (
	AppName    = "TranslatorOverlay"
	AppVersion = "2509-go-w1"
)

const (
	EngineGoogle   = "google"
	EngineDeepgram = "deepgram"

	TranslatorLibreTranslateLocal = "libretranslate_local"
)

// OverlayPositions lists overlay anchors in menu order.
var OverlayPositions = []Option{
	{Code: "top_left", Label: "Top Left"},
	{Code: "top_center", Label: "Top Center"},
	{Code: "top_right", Label: "Top Right"},
	{Code: "bottom_left", Label: "Bottom Left"},
	{Code: "bottom_center", Label: "Bottom Center"},
	{Code: "bottom_right", Label: "Bottom Right"},
}

// TargetLanguages are the LibreTranslate target codes offered to the user.
var TargetLanguages = []Option{
	{Code: "en", Label: "English"},
	{Code: "pl", Label: "Polish"},
	{Code: "de", Label: "German"},
	{Code: "es", Label: "Spanish"},
	{Code: "it", Label: "Italian"},
	{Code: "ru", Label: "Russian"},
	{Code: "nl", Label: "Dutch"},
	{Code: "cs", Label: "Czech"},
	{Code: "pt", Label: "Portuguese"},
}

// SourceLanguages are BCP-47 codes accepted by the speech recognizers.
var SourceLanguages = []Option{
	{Code: "pl-PL", Label: "Polish"},
	{Code: "en-US", Label: "English (US)"},
	{Code: "de-DE", Label: "German"},
	{Code: "es-ES", Label: "Spanish"},
	{Code: "it-IT", Label: "Italian"},
	{Code: "ru-RU", Label: "Russian"},
	{Code: "nl-NL", Label: "Dutch"},
	{Code: "cs-CZ", Label: "Czech"},
	{Code: "pt-PT", Label: "Portuguese"},
}

var RecognizerEngines = []Option{
	{Code: EngineGoogle, Label: "Google"},
	{Code: EngineDeepgram, Label: "Deepgram"},
}

var TranslatorEngines = []Option{
	{Code: TranslatorLibreTranslateLocal, Label: "LibreTranslate (Local)"},
}

// Catalog bundles every option list for the frontend.
type Catalog struct {
	OverlayPositions  []Option `json:"overlayPositions"`
	TargetLanguages   []Option `json:"targetLanguages"`
	SourceLanguages   []Option `json:"sourceLanguages"`
	RecognizerEngines []Option `json:"recognizerEngines"`
	TranslatorEngines []Option `json:"translatorEngines"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		OverlayPositions:  OverlayPositions,
		TargetLanguages:   TargetLanguages,
		SourceLanguages:   SourceLanguages,
		RecognizerEngines: RecognizerEngines,
		TranslatorEngines: TranslatorEngines,
	}
}

// Label returns the label for code, or "Unknown".
func Label(options []Option, code string) string {
	for _, option := range options {
		if option.Code == code {
			return option.Label
		}
	}
	return "Unknown"
}

// Has reports whether code is one of options.
func Has(options []Option, code string) bool {
	for _, option := range options {
		if option.Code == code {
			return true
		}
	}
	return false
}
