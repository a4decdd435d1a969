package subtrans

import "strings"

// LocalFallback is the zero-dependency terminal translation path. It
// answers from a bounded English→Chinese dictionary and phrase table, and
// degrades to a deterministic marker that embeds the original text so
// downstream consumers never lose content. No network, no randomness,
// no error path.
type LocalFallback struct {
	words   map[string]string
	phrases map[string]string
}

// NewLocalFallback creates a fallback translator with the built-in dictionary.
func NewLocalFallback() *LocalFallback {
	return &LocalFallback{
		words:   fallbackWords,
		phrases: fallbackPhrases,
	}
}

// Translate resolves text using, in order: the phrase table, the word
// dictionary, word-by-word substitution for short sentences, and finally
// a marker wrapping the original text. Lookup is case-insensitive on
// trimmed input. Same input always yields the same output.
func (f *LocalFallback) Translate(text, targetLang string) string {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return text
	}

	if IsChinese(targetLang) {
		lower := strings.ToLower(trimmed)

		if phrase, ok := f.phrases[lower]; ok {
			return phrase
		}
		if word, ok := f.words[lower]; ok {
			return word
		}
		if translated, ok := f.translateWords(trimmed); ok {
			return translated
		}
	}

	return f.marker(trimmed, targetLang)
}

// translateWords substitutes dictionary words inside short sentences.
// Longer sentences skip straight to the marker; word salad on a full
// paragraph reads worse than a visible untranslated line.
func (f *LocalFallback) translateWords(text string) (string, bool) {
	words := strings.Fields(text)
	if len(words) > 5 {
		return "", false
	}

	out := make([]string, len(words))
	matched := false
	for i, word := range words {
		clean := strings.ToLower(strings.Trim(word, `.,!?;:"()[]{}`))
		if zh, ok := f.words[clean]; ok {
			out[i] = zh
			matched = true
		} else {
			out[i] = word
		}
	}

	if !matched {
		return "", false
	}
	return strings.Join(out, " "), true
}

// marker wraps untranslated text in a visible language tag.
func (f *LocalFallback) marker(text, targetLang string) string {
	if IsChinese(targetLang) {
		return "[中译] " + text
	}
	return "[" + NormalizeLanguage(targetLang) + "] " + text
}

// fallbackPhrases maps common English phrases to Chinese.
var fallbackPhrases = map[string]string{
	"how are you":          "你好吗",
	"how are you?":         "你好吗？",
	"good morning":         "早上好",
	"good afternoon":       "下午好",
	"good evening":         "晚上好",
	"good night":           "晚安",
	"nice to meet you":     "很高兴见到你",
	"thank you":            "谢谢",
	"thank you very much":  "非常感谢",
	"thanks a lot":         "非常感谢",
	"i am sorry":           "对不起",
	"excuse me":            "打扰一下",
	"you are welcome":      "不客气",
	"i love you":           "我爱你",
	"see you later":        "再见",
	"have a good day":      "祝你今天愉快",
	"have a nice day":      "祝你今天愉快",
	"what is your name":    "你叫什么名字",
	"what is your name?":   "你叫什么名字？",
	"how old are you":      "你多大了",
	"how old are you?":     "你多大了？",
	"where are you from":   "你来自哪里",
	"where are you from?":  "你来自哪里？",
}

// fallbackWords maps high-frequency English words to Chinese.
var fallbackWords = map[string]string{
	"hello": "你好", "hi": "嗨", "world": "世界", "thanks": "谢谢",
	"goodbye": "再见", "bye": "再见", "yes": "是", "no": "不",
	"please": "请", "sorry": "对不起", "welcome": "欢迎",
	"good": "好", "bad": "坏", "great": "很棒", "nice": "不错",
	"beautiful": "美丽", "wonderful": "精彩", "amazing": "惊人",

	"is": "是", "are": "是", "have": "有", "has": "有",
	"will": "将", "would": "会", "can": "能", "could": "能",
	"should": "应该", "must": "必须", "may": "可能",
	"go": "去", "come": "来", "see": "看", "look": "看",
	"get": "得到", "take": "拿", "give": "给", "make": "做",
	"know": "知道", "think": "想", "say": "说", "tell": "告诉",

	"time": "时间", "day": "天", "week": "周", "month": "月", "year": "年",
	"today": "今天", "tomorrow": "明天", "yesterday": "昨天",
	"morning": "早上", "afternoon": "下午", "evening": "晚上", "night": "夜晚",
	"water": "水", "food": "食物", "money": "钱", "work": "工作",
	"home": "家", "school": "学校", "company": "公司", "friend": "朋友",

	"i": "我", "you": "你", "he": "他", "she": "她", "it": "它",
	"we": "我们", "they": "他们", "this": "这", "that": "那",
	"here": "这里", "there": "那里",

	"one": "一", "two": "二", "three": "三", "four": "四", "five": "五",
	"six": "六", "seven": "七", "eight": "八", "nine": "九", "ten": "十",
	"first": "第一", "second": "第二", "third": "第三", "last": "最后",

	"big": "大", "small": "小", "new": "新", "old": "老",
	"hot": "热", "cold": "冷", "fast": "快", "slow": "慢",
	"easy": "容易", "difficult": "困难", "important": "重要",
	"different": "不同", "same": "相同", "right": "对", "wrong": "错",

	"and": "和", "or": "或", "but": "但是", "because": "因为",
	"if": "如果", "when": "当", "where": "哪里", "how": "如何",
	"what": "什么", "who": "谁", "why": "为什么", "which": "哪个",
}

// Verify LocalFallback implements FallbackTranslator
var _ FallbackTranslator = (*LocalFallback)(nil)
