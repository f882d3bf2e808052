package question

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

type header struct {
	Text   string  `json:"text" validate:"required"`
	Points float64 `json:"points" validate:"gt=0"`
}

// Validate checks that q is well formed for insertion into a bank: positive
// points, non-empty text, a known type, and a payload whose answer key
// indexes stay inside its option lists.
func Validate(q Question) error {
	var flds []FieldErr
	v := validatorInstance()

	if err := v.Struct(header{Text: strings.TrimSpace(q.Text), Points: q.Points}); err != nil {
		flds = append(flds, fieldErrors(err)...)
	}

	switch p := q.Payload.(type) {
	case nil, Unknown:
		flds = append(flds, FieldErr{Field: "type", Error: fmt.Sprintf("unknown question type %q", q.Type())})
	case OpenEnded:
	default:
		if err := v.Struct(p); err != nil {
			flds = append(flds, fieldErrors(err)...)
		}
		flds = append(flds, crossCheck(p)...)
	}

	if len(flds) == 0 {
		return nil
	}
	return validation.New(errors.New("invalid question"), flds...)
}

// FieldErr is an alias kept short for readability in this file.
type FieldErr = validation.FieldError

func fieldErrors(err error) []FieldErr {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldErr{{Field: "question", Error: err.Error()}}
	}
	out := make([]FieldErr, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if ns := fe.Namespace(); ns != "" {
			if i := strings.Index(ns, "."); i >= 0 {
				field = ns[i+1:]
			}
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, FieldErr{Field: field, Error: "failed " + msg})
	}
	return out
}

func crossCheck(p Payload) []FieldErr {
	var out []FieldErr
	bad := func(field, format string, args ...interface{}) {
		out = append(out, FieldErr{Field: field, Error: fmt.Sprintf(format, args...)})
	}
	switch p := p.(type) {
	case SingleChoice:
		if p.Correct != nil && *p.Correct >= len(p.Options) {
			bad("correctOption", "index %d out of range", *p.Correct)
		}
	case MultiSelect:
		seen := map[int]bool{}
		for _, c := range p.Correct {
			if c >= len(p.Options) {
				bad("correctOptions", "index %d out of range", c)
			}
			if seen[c] {
				bad("correctOptions", "duplicate index %d", c)
			}
			seen[c] = true
		}
	case Matching:
		for l, r := range p.CorrectMap {
			if l < 0 || l >= len(p.Left) {
				bad("correctMap", "left index %d out of range", l)
			}
			if r < 0 || r >= len(p.Right) {
				bad("correctMap", "right index %d out of range", r)
			}
		}
		if len(p.CorrectMap) != len(p.Left) {
			bad("correctMap", "expected %d pairs, got %d", len(p.Left), len(p.CorrectMap))
		}
	case Ordering:
		if !isPermutation(p.Correct, len(p.Items)) {
			bad("correctOrder", "must be a permutation of %d item indexes", len(p.Items))
		}
	case Hotspot:
		if p.Rect != nil && p.ImageWidth > 0 && p.ImageHeight > 0 &&
			(p.Rect.X < 0 || p.Rect.Y < 0 || p.Rect.X+p.Rect.W > p.ImageWidth || p.Rect.Y+p.Rect.H > p.ImageHeight) {
			bad("correctRect", "rectangle exceeds the %gx%g image", p.ImageWidth, p.ImageHeight)
		}
	}
	return out
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}
