package corpus

import (
	"strings"

	wl "github.com/abadojack/whatlanggo"
)

// minReliableConfidence below this whatlanggo's guess is treated as unknown.
const minReliableConfidence = 0.5

// DetectLanguage returns the lowercase ISO 639-3 code of text ("ind", "eng",
// ...), or "" when the detection is not reliable.
func DetectLanguage(text string) string {
	info := wl.Detect(text)
	if info.Confidence < minReliableConfidence {
		return ""
	}
	return strings.ToLower(wl.LangToString(info.Lang))
}
