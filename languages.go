package polyglot

import "strings"

// Language is a supported language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the supported languages in display order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "ar", Name: "Arabic"},
	{Code: "hi", Name: "Hindi"},
	{Code: "bn", Name: "Bengali"},
	{Code: "nl", Name: "Dutch"},
	{Code: "tr", Name: "Turkish"},
	{Code: "pl", Name: "Polish"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "th", Name: "Thai"},
	{Code: "sv", Name: "Swedish"},
	{Code: "uk", Name: "Ukrainian"},
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

var languageNames = func() map[string]string {
	m := make(map[string]string, len(Languages))
	for _, l := range Languages {
		m[l.Code] = l.Name
	}
	return m
}()

// LanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// DisplayName is LanguageName with the AutoDetect sentinel mapped to its label.
func DisplayName(code string) string {
	if code == AutoDetect {
		return AutoDetectLabel
	}
	return LanguageName(code)
}

// LanguageCode returns the code for a language name, or "" if unknown.
func LanguageCode(name string) string {
	for _, l := range Languages {
		if l.Name == name {
			return l.Code
		}
	}
	return ""
}

// IsSupported reports whether code is in the language table.
func IsSupported(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	// Regional variants ("ar-EG", "ar_SA") share the base direction
	base := strings.FieldsFunc(code, func(r rune) bool { return r == '-' || r == '_' })
	if len(base) == 0 {
		return "ltr"
	}
	if RTLLanguages[strings.ToLower(base[0])] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}
