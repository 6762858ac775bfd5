// Package textstats computes descriptive metrics of a document text.
package textstats

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"textsummarizer/internal/domain"
)

const wordsPerMinute = 200.0

var sentenceTerminatorRe = regexp.MustCompile(`[.!?]+`)

// Compute derives the metrics of text. It is pure and cheap, so callers
// recompute it on every display instead of keeping the result around.
func Compute(text string) domain.Metrics {
	words := Words(text)

	return domain.Metrics{
		Chars:      Chars(text),
		Words:      words,
		Sentences:  Sentences(text),
		ReadingMin: ReadingMinutes(words),
	}
}

// Chars counts characters including whitespace.
func Chars(text string) int {
	return utf8.RuneCountInString(text)
}

func Words(text string) int {
	return len(strings.Fields(text))
}

// Sentences counts non-blank segments between runs of '.', '!' and '?'.
func Sentences(text string) int {
	count := 0
	for _, segment := range sentenceTerminatorRe.Split(text, -1) {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}

	return count
}

func ReadingMinutes(words int) float64 {
	if words <= 0 {
		return 0
	}

	return round2(float64(words) / wordsPerMinute)
}

// round2 rounds the exact binary value to two decimals, so 0.015 (stored as
// 0.01499...) becomes 0.01 and 0.025 (stored as 0.02500...1) becomes 0.03.
func round2(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}

	return rounded
}
