// Package language lists the spoken languages the transcription API accepts.
package language

import (
	"sort"
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// names maps ISO-639-1 codes to English names. An empty code means auto-detect.
var names = map[string]string{
	"af": "Afrikaans",
	"ar": "Arabic",
	"az": "Azerbaijani",
	"be": "Belarusian",
	"bg": "Bulgarian",
	"bs": "Bosnian",
	"ca": "Catalan",
	"cs": "Czech",
	"cy": "Welsh",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"gl": "Galician",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"hy": "Armenian",
	"id": "Indonesian",
	"is": "Icelandic",
	"it": "Italian",
	"ja": "Japanese",
	"kk": "Kazakh",
	"kn": "Kannada",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"mi": "Maori",
	"mk": "Macedonian",
	"mr": "Marathi",
	"ms": "Malay",
	"ne": "Nepali",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sr": "Serbian",
	"sv": "Swedish",
	"sw": "Swahili",
	"ta": "Tamil",
	"th": "Thai",
	"tl": "Tagalog",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// Normalize lowercases and trims a user-supplied code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func IsValidCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := names[code]
	return ok
}

// Name returns the English name, "Auto-detect" for the empty code and the
// code itself when unknown.
func Name(code string) string {
	if code == "" {
		return "Auto-detect"
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

// Codes returns every known code sorted by language name.
func Codes() []string {
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return names[codes[i]] < names[codes[j]] })
	return codes
}

// Native returns the language's own name for itself, e.g. "Deutsch" for
// "de", or "" when the code is empty or unknown.
func Native(code string) string {
	if _, ok := names[code]; !ok {
		return ""
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return ""
	}
	return display.Self.Name(tag)
}

// Label formats a code for pickers: "German / Deutsch (de)".
func Label(code string) string {
	name := Name(code)
	if code == "" {
		return name
	}
	if native := Native(code); native != "" && !strings.EqualFold(native, name) {
		name += " / " + native
	}
	return name + " (" + code + ")"
}
