package grading

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

// ErrNothingToCompare is returned when an instance has no free-text answer.
var ErrNothingToCompare = validation.Newf("nothing to compare")

// FreeTextSeparator joins free-text answers before hashing.
const FreeTextSeparator = " | "

// Similarity maps text to a reproducible percent in [8, 48] and its band.
// It is a placeholder heuristic, not a similarity detector.
func Similarity(text string) (int, Level, error) {
	if strings.TrimSpace(text) == "" {
		return 0, "", ErrNothingToCompare
	}
	percent := 8 + int(hashText(text)%41)
	return percent, band(percent), nil
}

func band(percent int) Level {
	switch {
	case percent >= 30:
		return LevelHigh
	case percent >= 18:
		return LevelMedium
	default:
		return LevelLow
	}
}

// hashText is h = h*31 + c over UTF-16 code units, modulo 2^32.
func hashText(s string) uint32 {
	var h uint32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(c)
	}
	return h
}

// CombineFreeText joins the answers to short, long and open questions in
// question order. Blank answers keep their slot. It fails when every such
// answer is blank.
func CombineFreeText(qs []question.Question, answers quiz.Answers) (string, error) {
	parts := make([]string, 0, len(qs))
	blank := true
	for _, q := range qs {
		if !q.Type().IsFreeText() {
			continue
		}
		s := answerText(answers[q.ID])
		if strings.TrimSpace(s) != "" {
			blank = false
		}
		parts = append(parts, s)
	}
	if blank {
		return "", ErrNothingToCompare
	}
	return strings.TrimSpace(strings.Join(parts, FreeTextSeparator)), nil
}

func answerText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
