package nlu

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// disallowedChars matches everything that is not a letter, digit, underscore or whitespace.
// \p{L} covers the Turkish letters (ç ğ ı ö ş ü) as well as ASCII.
var disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// substitutions maps common ASCII spellings to their Turkish forms. Values must already be
// normalized and must not appear as keys, otherwise Normalize stops being idempotent.
var substitutions = map[string]string{
	"cay":         "çay",
	"caylar":      "çaylar",
	"cayi":        "çayı",
	"cok":         "çok",
	"sicak":       "sıcak",
	"soguk":       "soğuk",
	"tatli":       "tatlı",
	"sut":         "süt",
	"sekerli":     "şekerli",
	"sekersiz":    "şekersiz",
	"uc":          "üç",
	"dort":        "dört",
	"bes":         "beş",
	"alti":        "altı",
	"tesekkurler": "teşekkürler",
	"hesabi":      "hesabı",
}

// Normalize canonicalizes free text for matching: Turkish lower-casing, punctuation
// stripping, compression of stretched characters ("çaaay" -> "çay"), whitespace
// collapsing and ASCII-to-Turkish word substitutions. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := norm.NFC.String(text)
	s = cases.Lower(language.Turkish).String(s)
	s = disallowedChars.ReplaceAllString(s, "")
	s = compressRepeats(s)
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	words := strings.Split(s, " ")
	for i, w := range words {
		if sub, ok := substitutions[w]; ok {
			words[i] = sub
		}
	}
	return strings.Join(words, " ")
}

// compressRepeats collapses every run of three or more identical runes down to one.
// Runs of two are kept, so "saat" stays "saat".
func compressRepeats(s string) string {
	runes := []rune(s)
	if len(runes) < 3 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= 3 {
			b.WriteRune(runes[i])
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(runes[k])
			}
		}
		i = j
	}
	return b.String()
}
