package grading

import (
	"encoding/json"
	"time"

	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
)

type Status string

const (
	StatusAuto          Status = "auto"
	StatusPendingReview Status = "pending_review"
	StatusGraded        Status = "graded"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Record is the grade of one submitted instance. It owns deep copies of the
// graded questions and answers so later bank edits never reach it.
type Record struct {
	QuizID          string              `json:"quizId"`
	CourseID        string              `json:"courseId"`
	Date            time.Time           `json:"date"`
	ObjectiveScore  float64             `json:"objectiveScore"`
	ObjectiveTotal  float64             `json:"objectiveTotal"`
	ManualScore     float64             `json:"manualScore"`
	ManualTotal     float64             `json:"manualTotal"`
	ManualBreakdown map[string]float64  `json:"manualBreakdown"`
	Hints           map[string]float64  `json:"hints,omitempty"`
	Answers         quiz.Answers        `json:"answers"`
	Questions       []question.Question `json:"questions"`
	Status          Status              `json:"status"`

	PlagiarismPercent *int  `json:"plagiarismPercent,omitempty"`
	PlagiarismLevel   Level `json:"plagiarismLevel,omitempty"`
}

func (r Record) Score() float64 { return r.ObjectiveScore + r.ManualScore }
func (r Record) Total() float64 { return r.ObjectiveTotal + r.ManualTotal }

// ManualQuestions lists the questions that need reviewer scoring.
func (r Record) ManualQuestions() []question.Question {
	var out []question.Question
	for _, q := range r.Questions {
		if q.Type().IsManual() {
			out = append(out, q)
		}
	}
	return out
}

func (r Record) Clone() Record {
	out := r
	out.ManualBreakdown = cloneScores(r.ManualBreakdown)
	out.Hints = cloneScores(r.Hints)
	out.Answers = quiz.CloneAnswers(r.Answers)
	out.Questions = question.CloneAll(r.Questions)
	if r.PlagiarismPercent != nil {
		p := *r.PlagiarismPercent
		out.PlagiarismPercent = &p
	}
	return out
}

func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	p.Answers = quiz.NormalizeAll(p.Questions, p.Answers)
	if p.ManualBreakdown == nil {
		p.ManualBreakdown = map[string]float64{}
	}
	*r = Record(p)
	return nil
}

func cloneScores(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
