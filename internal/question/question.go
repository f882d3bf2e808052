package question

import "encoding/json"

// Question is an immutable bank entry. The payload carries exactly the
// fields its type's grading rule needs.
type Question struct {
	ID       string
	Text     string
	Points   float64
	RubricID string
	Payload  Payload
}

// Type reports the question variant, derived from its payload.
func (q Question) Type() Type {
	if q.Payload == nil {
		return Type("")
	}
	return q.Payload.Kind()
}

// Clone returns a deep copy; callers that snapshot questions own the result.
func (q Question) Clone() Question {
	if q.Payload != nil {
		q.Payload = q.Payload.clone()
	}
	return q
}

// CloneAll deep copies a question list.
func CloneAll(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// Payload is the closed set of per-type question bodies.
type Payload interface {
	Kind() Type
	clone() Payload
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w" validate:"gt=0"`
	H float64 `json:"h" validate:"gt=0"`
}

// Contains reports whether (x, y) lies in the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

type SingleChoice struct {
	Options []string `json:"options" validate:"min=2,dive,required"`
	Correct *int     `json:"correctOption" validate:"required,gte=0"`
}

type TrueFalse struct {
	Correct *bool `json:"correctBoolean" validate:"required"`
}

type MultiSelect struct {
	Options []string `json:"options" validate:"min=2,dive,required"`
	Correct []int    `json:"correctOptions" validate:"required,min=1,dive,gte=0"`
}

type Matching struct {
	Left       []string    `json:"left" validate:"min=1,dive,required"`
	Right      []string    `json:"right" validate:"min=1,dive,required"`
	CorrectMap map[int]int `json:"correctMap" validate:"required"`
}

type Ordering struct {
	Items   []string `json:"items" validate:"min=2,dive,required"`
	Correct []int    `json:"correctOrder" validate:"required"`
}

type FillBlank struct {
	Template string `json:"fillText"`
	Correct  string `json:"correct" validate:"required"`
}

type Calculation struct {
	Correct   *float64 `json:"correctNumber" validate:"required"`
	Tolerance float64  `json:"tolerance" validate:"gte=0"`
}

type Hotspot struct {
	ImageWidth  float64 `json:"imageWidth" validate:"gte=0"`
	ImageHeight float64 `json:"imageHeight" validate:"gte=0"`
	Rect        *Rect   `json:"correctRect" validate:"required"`
}

type CodeOutput struct {
	Starter        string `json:"starter"`
	ExpectedOutput string `json:"expectedOutput" validate:"required"`
}

type ShortAnswer struct {
	Accepted []string `json:"accepted"`
}

type LongAnswer struct {
	Prompt string `json:"prompt"`
}

type OpenEnded struct{}

type FileUpload struct {
	Allowed string `json:"allowed"`
}

// Unknown holds a question whose type is not recognised. Its raw fields are
// kept so it survives an exchange round trip.
type Unknown struct {
	Name   string
	Fields map[string]json.RawMessage
}

func (SingleChoice) Kind() Type { return TypeSingleChoice }
func (TrueFalse) Kind() Type    { return TypeTrueFalse }
func (MultiSelect) Kind() Type  { return TypeMultiSelect }
func (Matching) Kind() Type     { return TypeMatching }
func (Ordering) Kind() Type     { return TypeOrdering }
func (FillBlank) Kind() Type    { return TypeFillBlank }
func (Calculation) Kind() Type  { return TypeCalculation }
func (Hotspot) Kind() Type      { return TypeHotspot }
func (CodeOutput) Kind() Type   { return TypeCodeOutput }
func (ShortAnswer) Kind() Type  { return TypeShortAnswer }
func (LongAnswer) Kind() Type   { return TypeLongAnswer }
func (OpenEnded) Kind() Type    { return TypeOpenEnded }
func (FileUpload) Kind() Type   { return TypeFileUpload }
func (u Unknown) Kind() Type    { return Type(u.Name) }

func (p SingleChoice) clone() Payload {
	p.Options = cloneSlice(p.Options)
	p.Correct = clonePtr(p.Correct)
	return p
}

func (p TrueFalse) clone() Payload {
	p.Correct = clonePtr(p.Correct)
	return p
}

func (p MultiSelect) clone() Payload {
	p.Options = cloneSlice(p.Options)
	p.Correct = cloneSlice(p.Correct)
	return p
}

func (p Matching) clone() Payload {
	p.Left = cloneSlice(p.Left)
	p.Right = cloneSlice(p.Right)
	if p.CorrectMap != nil {
		m := make(map[int]int, len(p.CorrectMap))
		for k, v := range p.CorrectMap {
			m[k] = v
		}
		p.CorrectMap = m
	}
	return p
}

func (p Ordering) clone() Payload {
	p.Items = cloneSlice(p.Items)
	p.Correct = cloneSlice(p.Correct)
	return p
}

func (p FillBlank) clone() Payload { return p }

func (p Calculation) clone() Payload {
	p.Correct = clonePtr(p.Correct)
	return p
}

func (p Hotspot) clone() Payload {
	p.Rect = clonePtr(p.Rect)
	return p
}

func (p CodeOutput) clone() Payload { return p }

func (p ShortAnswer) clone() Payload {
	p.Accepted = cloneSlice(p.Accepted)
	return p
}

func (p LongAnswer) clone() Payload { return p }
func (p OpenEnded) clone() Payload  { return p }
func (p FileUpload) clone() Payload { return p }

func (p Unknown) clone() Payload {
	if p.Fields != nil {
		m := make(map[string]json.RawMessage, len(p.Fields))
		for k, v := range p.Fields {
			m[k] = cloneSlice(v)
		}
		p.Fields = m
	}
	return p
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a small helper for building payloads with optional keys.
func Ptr[T any](v T) *T { return &v }
