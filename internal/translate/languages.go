package translate

import (
	"errors"
	"strings"
)

var errEmptyTranslation = errors.New("backend returned an empty translation")

var languageNames = map[string]string{
	"ar": "Arabic",
	"bn": "Bengali",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"ta": "Tamil",
	"te": "Telugu",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// LanguageName maps an ISO 639-1 code (optionally with a region, e.g.
// "pt_BR" or "pt-BR") to an English display name. Unknown codes are
// returned unchanged so free-form options still reach the backend.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	base := strings.ToLower(code)
	if i := strings.IndexAny(base, "_-"); i > 0 {
		base = base[:i]
	}
	if name, ok := languageNames[base]; ok {
		return name
	}
	return code
}
