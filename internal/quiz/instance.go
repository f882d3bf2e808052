package quiz

import (
	"encoding/json"
	"time"

	"github.com/mind-engage/mindengage-assessment/internal/question"
)

// Instance is one sampled attempt. Questions is a snapshot taken at sampling
// time and is never edited afterwards except by an exchange import.
type Instance struct {
	ID          string              `json:"id"`
	CourseID    string              `json:"courseId"`
	Questions   []question.Question `json:"questions"`
	Answers     Answers             `json:"answers"`
	StartedAt   time.Time           `json:"startedAt"`
	SubmittedAt *time.Time          `json:"submittedAt,omitempty"`
}

func (in Instance) Submitted() bool { return in.SubmittedAt != nil }

// Question returns the snapshot entry with id.
func (in Instance) Question(id string) (question.Question, bool) {
	for _, q := range in.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}

// Clone deep copies the instance.
func (in Instance) Clone() Instance {
	out := in
	out.Questions = question.CloneAll(in.Questions)
	out.Answers = CloneAnswers(in.Answers)
	if in.SubmittedAt != nil {
		t := *in.SubmittedAt
		out.SubmittedAt = &t
	}
	return out
}

// UnmarshalJSON restores canonical answer shapes, which decode from JSON as
// generic maps and float64s.
func (in *Instance) UnmarshalJSON(b []byte) error {
	type plain Instance
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	p.Answers = NormalizeAll(p.Questions, p.Answers)
	*in = Instance(p)
	return nil
}
