package subtrans

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector picks the bilingual target language for a request by
// detecting the dominant source language of the subtitle lines: Chinese
// sources pair with English subtitles, everything else pairs with Chinese.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// detectableLanguages limits detection to the languages the product ships
// subtitles for. A smaller set keeps detection fast and more accurate.
var detectableLanguages = []lingua.Language{
	lingua.Chinese,
	lingua.English,
	lingua.Japanese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Russian,
}

// NewLanguageDetector builds a detector over the supported language set.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			Build(),
	}
}

// DetectTargetLanguage returns the target language code for a request,
// based on a sample of its source texts. Chinese sources yield "en";
// all other sources (and undetectable input) yield "zh".
func (d *LanguageDetector) DetectTargetLanguage(samples []string) string {
	sample := strings.TrimSpace(strings.Join(samples, " "))
	if sample == "" {
		return "zh"
	}

	language, ok := d.detector.DetectLanguageOf(sample)
	if ok && language == lingua.Chinese {
		return "en"
	}
	return "zh"
}

// DetectSourceLanguage returns the detected source language code of the
// sample texts, or "" when detection is inconclusive.
func (d *LanguageDetector) DetectSourceLanguage(samples []string) string {
	sample := strings.TrimSpace(strings.Join(samples, " "))
	if sample == "" {
		return ""
	}

	language, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
