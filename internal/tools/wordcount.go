package tools

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MikhailRaia/utility-suite/internal/model"
)

const wordsPerMinute = 200

var (
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)
	spaceStripper = strings.NewReplacer(" ", "", "\n", "", "\t", "")
)

// CountWords measures text. Blank text yields zero sentences and paragraphs;
// non-blank text always has at least one of each.
func CountWords(text string) model.WordCountResponse {
	blank := strings.TrimSpace(text) == ""
	words := len(strings.Fields(text))

	sentences := len(reSentenceEnd.FindAllStringIndex(text, -1))
	if sentences == 0 && !blank {
		sentences = 1
	}

	paragraphs := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	if paragraphs == 0 && !blank {
		paragraphs = 1
	}

	return model.WordCountResponse{
		Characters:         utf8.RuneCountInString(text),
		CharactersNoSpaces: utf8.RuneCountInString(spaceStripper.Replace(text)),
		Words:              words,
		Sentences:          sentences,
		Paragraphs:         paragraphs,
		ReadingTimeMinutes: readingTime(words),
	}
}

// readingTime rounds words/wordsPerMinute to two decimals from its exact
// binary value, so 3 words give 0.01 rather than 0.02.
func readingTime(words int) float64 {
	minutes, _ := strconv.ParseFloat(strconv.FormatFloat(float64(words)/wordsPerMinute, 'f', 2, 64), 64)
	return minutes
}
