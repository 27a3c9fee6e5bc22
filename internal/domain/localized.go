package domain

import (
	"sort"

	"golang.org/x/text/language"
)

// PlaceholderText is returned when a localized field has no content in any
// language.
const PlaceholderText = "(untranslated)"

// LocalizedText maps a BCP-47 language code to a translated string. English
// ("en") is the authoring language and is expected to always be present,
// though Resolve degrades gracefully when it is not.
type LocalizedText map[string]string

// Resolve returns the best translation for the requested language.
// Fallback order: exact code, closest BCP-47 match, English, the
// lexicographically first available language, PlaceholderText.
func (t LocalizedText) Resolve(lang string) string {
	if len(t) == 0 {
		return PlaceholderText
	}
	if v, ok := t[lang]; ok && v != "" {
		return v
	}

	if matched := t.match(lang); matched != "" {
		return matched
	}

	if v, ok := t["en"]; ok && v != "" {
		return v
	}

	codes := make([]string, 0, len(t))
	for code, v := range t {
		if v != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return PlaceholderText
	}
	sort.Strings(codes)
	return t[codes[0]]
}

// match runs the requested language through a BCP-47 matcher over the
// available codes, so "zh-TW" can resolve to "zh-Hant" and similar.
func (t LocalizedText) match(lang string) string {
	want, err := language.Parse(lang)
	if err != nil {
		return ""
	}

	codes := make([]string, 0, len(t))
	for code, v := range t {
		if v == "" {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)

	tags := make([]language.Tag, 0, len(codes))
	valid := make([]string, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		valid = append(valid, code)
	}
	if len(tags) == 0 {
		return ""
	}

	matcher := language.NewMatcher(tags)
	_, idx, conf := matcher.Match(want)
	if conf == language.No {
		return ""
	}
	return t[valid[idx]]
}

// Languages returns the sorted language codes that have content.
func (t LocalizedText) Languages() []string {
	codes := make([]string, 0, len(t))
	for code, v := range t {
		if v != "" {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
