package question

import (
	"regexp"
	"strings"
)

// Type identifies a question variant on the wire.
type Type string

const (
	TypeSingleChoice Type = "multiple_choice"
	TypeTrueFalse    Type = "true_false"
	TypeMultiSelect  Type = "multi_select"
	TypeMatching     Type = "matching"
	TypeOrdering     Type = "ordering"
	TypeFillBlank    Type = "fill_blank"
	TypeCalculation  Type = "calculation"
	TypeHotspot      Type = "hotspot"
	TypeCodeOutput   Type = "code_runner"
	TypeShortAnswer  Type = "short_answer"
	TypeLongAnswer   Type = "long_answer"
	TypeOpenEnded    Type = "open_ended"
	TypeFileUpload   Type = "file_upload"
)

// Types lists every known variant in a stable order.
var Types = []Type{
	TypeSingleChoice, TypeTrueFalse, TypeMultiSelect, TypeMatching,
	TypeOrdering, TypeFillBlank, TypeCalculation, TypeHotspot,
	TypeCodeOutput, TypeShortAnswer, TypeLongAnswer, TypeOpenEnded,
	TypeFileUpload,
}

var spaceRun = regexp.MustCompile(`\s+`)

// Normalize folds loose spellings ("Open-Ended", "open ended") into the
// canonical wire form.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaceRun.ReplaceAllString(s, "_")
	return strings.ReplaceAll(s, "-", "_")
}

// ParseType normalizes s and reports whether it names a known variant.
func ParseType(s string) (Type, bool) {
	t := Type(Normalize(s))
	for _, k := range Types {
		if k == t {
			return t, true
		}
	}
	return t, false
}

// IsManual reports whether answers of this type need a human reviewer.
func (t Type) IsManual() bool {
	switch t {
	case TypeShortAnswer, TypeLongAnswer, TypeOpenEnded, TypeFileUpload:
		return true
	}
	return false
}

// IsFreeText reports whether the answer is learner-written prose.
func (t Type) IsFreeText() bool {
	switch t {
	case TypeShortAnswer, TypeLongAnswer, TypeOpenEnded:
		return true
	}
	return false
}

func (t Type) IsObjective() bool { return !t.IsManual() }
