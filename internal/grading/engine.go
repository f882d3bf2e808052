// Package grading scores submitted quiz instances: a pure per-type grader,
// the orchestrator that turns an instance into a grade record, rubric review
// of manual answers and the similarity heuristic.
package grading

import (
	"fmt"
	"math"
	"strings"

	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
)

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints  float64  // points awarded automatically
	MaxPoints   float64  // the question's max points
	NeedsManual bool     // true if reviewer scoring is required
	Suggested   float64  // advisory reviewer score, never counted
	Feedback    []string // optional notes
}

// Grader applies one rule per question type. It is pure: the same question
// and answer always produce the same Result, and it never fails. Missing key
// fields and malformed answers score 0.
type Grader struct {
	cfg config
}

type Option func(*config)

type config struct {
	MaxEditDistance int // per keyword, for the short-answer hint
}

func WithMaxEditDistance(n int) Option { return func(c *config) { c.MaxEditDistance = n } }

func NewGrader(opts ...Option) *Grader {
	cfg := config{MaxEditDistance: 1}
	for _, o := range opts {
		o(&cfg)
	}
	return &Grader{cfg: cfg}
}

// Grade scores answer against q. AutoPoints always lies in [0, q.Points].
func (g *Grader) Grade(q question.Question, answer interface{}) Result {
	max := q.Points
	if max < 0 || math.IsNaN(max) {
		max = 0
	}
	res := question.Visit[Result](q, rules{
		cfg:    g.cfg,
		max:    max,
		answer: quiz.Normalize(q, answer),
	})
	res.MaxPoints = max
	res.AutoPoints = clamp(res.AutoPoints, 0, max)
	return res
}

// Points is Grade reduced to the awarded points.
func (g *Grader) Points(q question.Question, answer interface{}) float64 {
	return g.Grade(q, answer).AutoPoints
}

type rules struct {
	cfg    config
	max    float64
	answer interface{}
}

func (r rules) full(ok bool) Result {
	if ok {
		return Result{AutoPoints: r.max}
	}
	return Result{}
}

func (r rules) SingleChoice(_ question.Question, p question.SingleChoice) Result {
	got, ok := r.answer.(int)
	return r.full(ok && p.Correct != nil && got == *p.Correct)
}

func (r rules) TrueFalse(_ question.Question, p question.TrueFalse) Result {
	got, ok := r.answer.(bool)
	return r.full(ok && p.Correct != nil && got == *p.Correct)
}

func (r rules) MultiSelect(_ question.Question, p question.MultiSelect) Result {
	got, ok := r.answer.([]int)
	if !ok || len(p.Correct) == 0 {
		return Result{}
	}
	return r.full(setEqual(toSet(got), toSet(p.Correct)))
}

func (r rules) Matching(_ question.Question, p question.Matching) Result {
	got, ok := r.answer.(map[int]int)
	if !ok || len(p.Left) == 0 || len(p.CorrectMap) == 0 {
		return Result{}
	}
	hits := 0
	for i := range p.Left {
		want, hasKey := p.CorrectMap[i]
		ans, answered := got[i]
		if hasKey && answered && ans == want {
			hits++
		}
	}
	res := Result{AutoPoints: r.max * float64(hits) / float64(len(p.Left))}
	res.Feedback = append(res.Feedback, fmt.Sprintf("pairs: %d/%d", hits, len(p.Left)))
	return res
}

func (r rules) Ordering(_ question.Question, p question.Ordering) Result {
	got, ok := r.answer.([]int)
	if !ok || len(p.Correct) == 0 || len(got) != len(p.Correct) {
		return Result{}
	}
	for i := range got {
		if got[i] != p.Correct[i] {
			return Result{}
		}
	}
	return Result{AutoPoints: r.max}
}

func (r rules) FillBlank(_ question.Question, p question.FillBlank) Result {
	got, ok := r.answer.(string)
	want := strings.TrimSpace(p.Correct)
	return r.full(ok && want != "" && strings.EqualFold(strings.TrimSpace(got), want))
}

func (r rules) Calculation(_ question.Question, p question.Calculation) Result {
	got, ok := r.answer.(float64)
	return r.full(ok && p.Correct != nil && withinTolerance(got, *p.Correct, p.Tolerance))
}

func (r rules) Hotspot(_ question.Question, p question.Hotspot) Result {
	got, ok := r.answer.(quiz.Point)
	return r.full(ok && p.Rect != nil && p.Rect.Contains(got.X, got.Y))
}

// CodeOutput compares the recorded output only; code is never executed here.
func (r rules) CodeOutput(_ question.Question, p question.CodeOutput) Result {
	got, ok := r.answer.(quiz.CodeRun)
	want := strings.TrimSpace(p.ExpectedOutput)
	return r.full(ok && want != "" && strings.TrimSpace(got.Output) == want)
}

func (r rules) ShortAnswer(_ question.Question, p question.ShortAnswer) Result {
	res := r.manual()
	text, _ := r.answer.(string)
	if len(p.Accepted) > 0 {
		score, fb := keywordHeuristic(text, p.Accepted, r.max, r.cfg.MaxEditDistance)
		res.Suggested = score
		res.Feedback = append(res.Feedback, fb...)
	}
	return res
}

func (r rules) LongAnswer(question.Question, question.LongAnswer) Result { return r.manual() }
func (r rules) OpenEnded(question.Question, question.OpenEnded) Result   { return r.manual() }
func (r rules) FileUpload(question.Question, question.FileUpload) Result { return r.manual() }

func (r rules) Unknown(q question.Question, _ question.Unknown) Result {
	return Result{Feedback: []string{fmt.Sprintf("no rule for type %q", q.Type())}}
}

func (r rules) manual() Result {
	return Result{NeedsManual: true, Feedback: []string{"manual grading required"}}
}

// --- helpers ---

func toSet(arr []int) map[int]struct{} {
	m := make(map[int]struct{}, len(arr))
	for _, v := range arr {
		m[v] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// keywordHeuristic scores text by the share of keywords it contains. A
// keyword hits when it appears as a phrase, or, for single words, when some
// word of text is within maxEdit edits of it.
func keywordHeuristic(text string, keywords []string, max float64, maxEdit int) (float64, []string) {
	norm := normalize(text)
	if strings.TrimSpace(norm) == "" {
		return 0, []string{"no answer text"}
	}
	words := strings.Fields(norm)
	found, total := 0, 0
	for _, k := range keywords {
		nk := normalize(k)
		if nk == "" {
			continue
		}
		total++
		if strings.Contains(" "+norm+" ", " "+nk+" ") {
			found++
			continue
		}
		if maxEdit > 0 && !strings.Contains(nk, " ") {
			for _, w := range words {
				if levenshtein(w, nk) <= maxEdit {
					found++
					break
				}
			}
		}
	}
	if total == 0 {
		return 0, []string{"no keywords"}
	}
	score := max * (float64(found) / float64(total))
	return score, []string{fmt.Sprintf("keyword hits: %d/%d", found, total)}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
