// Package exchange is the portable bank interchange format: a versioned JSON
// document carrying a question set for backup or transfer.
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

const FormatVersion = "2.1"

type Document struct {
	FormatVersion string              `json:"formatVersion"`
	ExportedAt    string              `json:"exportedAt"`
	QuizID        string              `json:"quizId"`
	CourseID      string              `json:"courseId"`
	Questions     []question.Question `json:"questions"`
}

// Export wraps a deep copy of qs in a document stamped with at.
func Export(quizID, courseID string, qs []question.Question, at time.Time) Document {
	out := question.CloneAll(qs)
	if out == nil {
		out = []question.Question{}
	}
	return Document{
		FormatVersion: FormatVersion,
		ExportedAt:    at.UTC().Format(time.RFC3339Nano),
		QuizID:        quizID,
		CourseID:      courseID,
		Questions:     out,
	}
}

// Encode renders d as indented JSON.
func Encode(d Document) ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode exchange document")
	}
	return b, nil
}

// Decode parses and checks an exchange document. Unknown top-level and
// question fields are ignored or preserved, never rejected. Any failure is a
// *validation.ValidationError.
func Decode(b []byte) (Document, error) {
	var raw struct {
		FormatVersion json.RawMessage `json:"formatVersion"`
		ExportedAt    json.RawMessage `json:"exportedAt"`
		QuizID        json.RawMessage `json:"quizId"`
		CourseID      json.RawMessage `json:"courseId"`
		Questions     json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Document{}, validation.New(errors.Wrap(err, "malformed exchange document"))
	}

	var (
		d    Document
		flds []validation.FieldError
	)
	version, ok := rawString(raw.FormatVersion)
	switch {
	case !ok:
		flds = append(flds, validation.FieldError{Field: "formatVersion", Error: "required"})
	case version != FormatVersion:
		flds = append(flds, validation.FieldError{Field: "formatVersion", Error: fmt.Sprintf("unsupported version %q, want %q", version, FormatVersion)})
	}
	d.FormatVersion = version

	d.CourseID, ok = rawString(raw.CourseID)
	if !ok || strings.TrimSpace(d.CourseID) == "" {
		flds = append(flds, validation.FieldError{Field: "courseId", Error: "required"})
	}
	d.ExportedAt, _ = rawString(raw.ExportedAt)
	d.QuizID, _ = rawString(raw.QuizID)

	qs, qflds := decodeQuestions(raw.Questions)
	d.Questions = qs
	flds = append(flds, qflds...)

	if len(flds) > 0 {
		return Document{}, validation.New(errors.New("invalid exchange document"), flds...)
	}
	return d, nil
}

func decodeQuestions(msg json.RawMessage) ([]question.Question, []validation.FieldError) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, []validation.FieldError{{Field: "questions", Error: "must be an array"}}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, []validation.FieldError{{Field: "questions", Error: "must be an array"}}
	}

	var flds []validation.FieldError
	out := make([]question.Question, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for i, e := range elems {
		field := fmt.Sprintf("questions[%d]", i)
		if t := bytes.TrimSpace(e); len(t) == 0 || t[0] != '{' {
			flds = append(flds, validation.FieldError{Field: field, Error: "must be an object"})
			continue
		}
		var q question.Question
		if err := json.Unmarshal(e, &q); err != nil {
			flds = append(flds, validation.FieldError{Field: field, Error: errors.Cause(err).Error()})
			continue
		}
		if q.ID == "" {
			flds = append(flds, validation.FieldError{Field: field + ".id", Error: "required"})
			continue
		}
		if _, dup := seen[q.ID]; dup {
			flds = append(flds, validation.FieldError{Field: field + ".id", Error: "duplicate id " + q.ID})
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out, flds
}

// rawString reports the value of a JSON string. Absent, null and non-string
// values report false.
func rawString(msg json.RawMessage) (string, bool) {
	if len(msg) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return "", false
	}
	return s, true
}
