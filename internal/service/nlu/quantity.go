package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// numberWords are the Turkish number words from one to ten, in normalized form.
var numberWords = map[string]int{
	"bir":   1,
	"iki":   2,
	"üç":    3,
	"dört":  4,
	"beş":   5,
	"altı":  6,
	"yedi":  7,
	"sekiz": 8,
	"dokuz": 9,
	"on":    10,
}

// ExtractQuantity returns the order quantity mentioned in text, or 1 when there is none.
// Digits win over number words; the first digit run is used and clamped to at least 1.
func ExtractQuantity(text string) int {
	if text == "" {
		return 1
	}

	if run := digitRun.FindString(text); run != "" {
		n, err := strconv.Atoi(run)
		if err != nil || n < 1 {
			return 1
		}
		return n
	}

	for _, word := range strings.Fields(Normalize(text)) {
		if n, ok := numberWords[word]; ok {
			return n
		}
	}
	return 1
}
