package question

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// wireQuestion is the flat JSON shape shared by the bank store, quiz
// instances, grade records and exchange documents. Key fields are pointers
// so that an absent key stays distinguishable from a zero value.
type wireQuestion struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Text     string  `json:"text"`
	Points   float64 `json:"points"`
	RubricID string  `json:"rubricId,omitempty"`

	Options        *[]string    `json:"options,omitempty"`
	CorrectOption  *int         `json:"correctOption,omitempty"`
	CorrectBoolean *bool        `json:"correctBoolean,omitempty"`
	CorrectOptions *[]int       `json:"correctOptions,omitempty"`
	Left           *[]string    `json:"left,omitempty"`
	Right          *[]string    `json:"right,omitempty"`
	CorrectMap     *map[int]int `json:"correctMap,omitempty"`
	Items          *[]string    `json:"items,omitempty"`
	CorrectOrder   *[]int       `json:"correctOrder,omitempty"`
	FillText       *string      `json:"fillText,omitempty"`
	Correct        *string      `json:"correct,omitempty"`
	Accepted       *[]string    `json:"accepted,omitempty"`
	Prompt         *string      `json:"prompt,omitempty"`
	Allowed        *string      `json:"allowed,omitempty"`
	CorrectNumber  *float64     `json:"correctNumber,omitempty"`
	Tolerance      *float64     `json:"tolerance,omitempty"`
	ImageWidth     *float64     `json:"imageWidth,omitempty"`
	ImageHeight    *float64     `json:"imageHeight,omitempty"`
	CorrectRect    *Rect        `json:"correctRect,omitempty"`
	Starter        *string      `json:"starter,omitempty"`
	ExpectedOutput *string      `json:"expectedOutput,omitempty"`
}

var headerKeys = map[string]struct{}{
	"id": {}, "type": {}, "text": {}, "points": {}, "rubricId": {},
}

func (q Question) MarshalJSON() ([]byte, error) {
	if u, ok := q.Payload.(Unknown); ok || q.Payload == nil {
		return marshalUnknown(q, u)
	}
	w := Visit[wireQuestion](q, wireEncoder{})
	w.ID, w.Type, w.Text, w.Points, w.RubricID = q.ID, string(q.Type()), q.Text, q.Points, q.RubricID
	return json.Marshal(w)
}

func marshalUnknown(q Question, u Unknown) ([]byte, error) {
	out := make(map[string]interface{}, len(u.Fields)+5)
	for k, v := range u.Fields {
		if _, hdr := headerKeys[k]; !hdr {
			out[k] = v
		}
	}
	out["id"] = q.ID
	out["type"] = u.Name
	out["text"] = q.Text
	out["points"] = q.Points
	if q.RubricID != "" {
		out["rubricId"] = q.RubricID
	}
	return json.Marshal(out)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var w wireQuestion
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "decode question")
	}
	q.ID, q.Text, q.Points, q.RubricID = w.ID, w.Text, w.Points, w.RubricID

	t, known := ParseType(w.Type)
	if !known {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return errors.Wrap(err, "decode question")
		}
		for k := range headerKeys {
			delete(raw, k)
		}
		if len(raw) == 0 {
			raw = nil
		}
		q.Payload = Unknown{Name: string(t), Fields: raw}
		return nil
	}

	switch t {
	case TypeSingleChoice:
		q.Payload = SingleChoice{Options: deref(w.Options), Correct: w.CorrectOption}
	case TypeTrueFalse:
		q.Payload = TrueFalse{Correct: w.CorrectBoolean}
	case TypeMultiSelect:
		q.Payload = MultiSelect{Options: deref(w.Options), Correct: deref(w.CorrectOptions)}
	case TypeMatching:
		q.Payload = Matching{Left: deref(w.Left), Right: deref(w.Right), CorrectMap: deref(w.CorrectMap)}
	case TypeOrdering:
		q.Payload = Ordering{Items: deref(w.Items), Correct: deref(w.CorrectOrder)}
	case TypeFillBlank:
		q.Payload = FillBlank{Template: deref(w.FillText), Correct: deref(w.Correct)}
	case TypeCalculation:
		q.Payload = Calculation{Correct: w.CorrectNumber, Tolerance: deref(w.Tolerance)}
	case TypeHotspot:
		q.Payload = Hotspot{ImageWidth: deref(w.ImageWidth), ImageHeight: deref(w.ImageHeight), Rect: w.CorrectRect}
	case TypeCodeOutput:
		q.Payload = CodeOutput{Starter: deref(w.Starter), ExpectedOutput: deref(w.ExpectedOutput)}
	case TypeShortAnswer:
		q.Payload = ShortAnswer{Accepted: deref(w.Accepted)}
	case TypeLongAnswer:
		q.Payload = LongAnswer{Prompt: deref(w.Prompt)}
	case TypeOpenEnded:
		q.Payload = OpenEnded{}
	case TypeFileUpload:
		q.Payload = FileUpload{Allowed: deref(w.Allowed)}
	}
	return nil
}

// wireEncoder flattens a payload into the wire struct.
type wireEncoder struct{}

func (wireEncoder) SingleChoice(_ Question, p SingleChoice) wireQuestion {
	return wireQuestion{Options: ref(p.Options), CorrectOption: p.Correct}
}

func (wireEncoder) TrueFalse(_ Question, p TrueFalse) wireQuestion {
	return wireQuestion{CorrectBoolean: p.Correct}
}

func (wireEncoder) MultiSelect(_ Question, p MultiSelect) wireQuestion {
	return wireQuestion{Options: ref(p.Options), CorrectOptions: ref(p.Correct)}
}

func (wireEncoder) Matching(_ Question, p Matching) wireQuestion {
	w := wireQuestion{Left: ref(p.Left), Right: ref(p.Right)}
	if p.CorrectMap != nil {
		w.CorrectMap = &p.CorrectMap
	}
	return w
}

func (wireEncoder) Ordering(_ Question, p Ordering) wireQuestion {
	return wireQuestion{Items: ref(p.Items), CorrectOrder: ref(p.Correct)}
}

func (wireEncoder) FillBlank(_ Question, p FillBlank) wireQuestion {
	return wireQuestion{FillText: &p.Template, Correct: &p.Correct}
}

func (wireEncoder) Calculation(_ Question, p Calculation) wireQuestion {
	return wireQuestion{CorrectNumber: p.Correct, Tolerance: &p.Tolerance}
}

func (wireEncoder) Hotspot(_ Question, p Hotspot) wireQuestion {
	return wireQuestion{ImageWidth: &p.ImageWidth, ImageHeight: &p.ImageHeight, CorrectRect: p.Rect}
}

func (wireEncoder) CodeOutput(_ Question, p CodeOutput) wireQuestion {
	return wireQuestion{Starter: &p.Starter, ExpectedOutput: &p.ExpectedOutput}
}

func (wireEncoder) ShortAnswer(_ Question, p ShortAnswer) wireQuestion {
	return wireQuestion{Accepted: ref(p.Accepted)}
}

func (wireEncoder) LongAnswer(_ Question, p LongAnswer) wireQuestion {
	return wireQuestion{Prompt: &p.Prompt}
}

func (wireEncoder) OpenEnded(Question, OpenEnded) wireQuestion { return wireQuestion{} }

func (wireEncoder) FileUpload(_ Question, p FileUpload) wireQuestion {
	return wireQuestion{Allowed: &p.Allowed}
}

func (wireEncoder) Unknown(Question, Unknown) wireQuestion { return wireQuestion{} }

func ref[T any](s []T) *[]T {
	if s == nil {
		return nil
	}
	return &s
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
