package subtrans

import "strings"

// LanguageNames maps language codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	"zh":    "Chinese (Simplified)",
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
	"en":    "English",
	"ja":    "Japanese",
	"ko":    "Korean",
	"fr":    "French",
	"de":    "German",
	"es":    "Spanish",
	"ru":    "Russian",
	"pt":    "Portuguese",
	"it":    "Italian",
	"ar":    "Arabic",
	"hi":    "Hindi",
}

// aliasToCode canonicalizes common spelled-out language names.
var aliasToCode = map[string]string{
	"chinese":    "zh",
	"english":    "en",
	"japanese":   "ja",
	"korean":     "ko",
	"french":     "fr",
	"german":     "de",
	"spanish":    "es",
	"russian":    "ru",
	"portuguese": "pt",
	"italian":    "it",
	"arabic":     "ar",
	"hindi":      "hi",
}

// NormalizeLanguage canonicalizes a language code or spelled-out name
// ("Chinese" → "zh", "EN" → "en"). Unknown inputs pass through unchanged
// apart from lowercasing of the base tag.
func NormalizeLanguage(lang string) string {
	if lang == "" {
		return lang
	}
	lower := strings.ToLower(strings.TrimSpace(lang))
	if code, ok := aliasToCode[lower]; ok {
		return code
	}
	// Preserve region subtags with canonical case ("ZH-cn" → "zh-CN").
	if base, region, ok := strings.Cut(lower, "-"); ok {
		return base + "-" + strings.ToUpper(region)
	}
	return lower
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(lang string) string {
	if name, ok := LanguageNames[NormalizeLanguage(lang)]; ok {
		return name
	}
	return lang
}

// IsChinese reports whether the language is a Chinese variant.
func IsChinese(lang string) bool {
	return baseLang(lang) == "zh"
}

// baseLang extracts the base tag ("zh" from "zh-CN").
func baseLang(lang string) string {
	base, _, _ := strings.Cut(NormalizeLanguage(lang), "-")
	return base
}
