package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/mindengage-assessment/internal/grading"
	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
)

func TestGradeTable(t *testing.T) {
	g := grading.NewGrader()

	cases := []struct {
		name  string
		q     question.Question
		right interface{}
		wrong interface{}
	}{
		{"single choice",
			question.Question{Points: 2, Payload: question.SingleChoice{Options: []string{"a", "b", "c"}, Correct: question.Ptr(1)}},
			1, 2},
		{"true false",
			question.Question{Points: 1, Payload: question.TrueFalse{Correct: question.Ptr(false)}},
			false, true},
		{"multi select",
			question.Question{Points: 3, Payload: question.MultiSelect{Options: []string{"a", "b", "c"}, Correct: []int{0, 2}}},
			[]int{2, 0}, []int{0}},
		{"matching",
			question.Question{Points: 4, Payload: question.Matching{Left: []string{"a", "b"}, Right: []string{"1", "2"}, CorrectMap: map[int]int{0: 1, 1: 0}}},
			map[int]int{0: 1, 1: 0}, map[int]int{0: 0, 1: 1}},
		{"ordering",
			question.Question{Points: 2, Payload: question.Ordering{Items: []string{"a", "b", "c"}, Correct: []int{2, 0, 1}}},
			[]int{2, 0, 1}, []int{2, 1, 0}},
		{"fill blank",
			question.Question{Points: 1, Payload: question.FillBlank{Correct: "Default"}},
			"  default ", "defaults"},
		{"calculation",
			question.Question{Points: 5, Payload: question.Calculation{Correct: question.Ptr(42.0), Tolerance: 0.5}},
			"42.4", 42.6},
		{"hotspot",
			question.Question{Points: 1, Payload: question.Hotspot{Rect: &question.Rect{X: 120, Y: 60, W: 80, H: 50}}},
			quiz.Point{X: 200, Y: 110}, quiz.Point{X: 200.5, Y: 110}},
		{"code output",
			question.Question{Points: 2, Payload: question.CodeOutput{ExpectedOutput: "hello"}},
			quiz.CodeRun{Code: "x", Output: "hello\n"}, quiz.CodeRun{Code: "x", Output: "Hello"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.q.Points, g.Points(tc.q, tc.right))
			assert.Equal(t, 0.0, g.Points(tc.q, tc.wrong))
			assert.Equal(t, 0.0, g.Points(tc.q, nil))
			assert.False(t, g.Grade(tc.q, tc.right).NeedsManual)
		})
	}
}

func TestManualTypesAreNotAutoGraded(t *testing.T) {
	g := grading.NewGrader()
	for _, p := range []question.Payload{
		question.ShortAnswer{Accepted: []string{"x"}},
		question.LongAnswer{},
		question.OpenEnded{},
		question.FileUpload{},
	} {
		q := question.Question{Points: 2, Payload: p}
		res := g.Grade(q, "x")
		assert.True(t, res.NeedsManual, string(q.Type()))
		assert.Equal(t, 0.0, res.AutoPoints)
		assert.Equal(t, 2.0, res.MaxPoints)
	}
}

func TestMatchingPartialCredit(t *testing.T) {
	g := grading.NewGrader()
	q := question.Question{Points: 8, Payload: question.Matching{
		Left:       []string{"a", "b", "c", "d"},
		Right:      []string{"1", "2", "3", "4"},
		CorrectMap: map[int]int{0: 0, 1: 1, 2: 2, 3: 3},
	}}
	assert.Equal(t, 6.0, g.Points(q, map[int]int{0: 0, 1: 1, 2: 2, 3: 0}))

	q = question.Question{Points: 9, Payload: question.Matching{
		Left:       []string{"a", "b", "c"},
		Right:      []string{"1", "2", "3"},
		CorrectMap: map[int]int{0: 2, 1: 0, 2: 1},
	}}
	assert.Equal(t, 6.0, g.Points(q, map[string]interface{}{"0": float64(2), "1": float64(0)}))
}

func TestMultiSelectHasNoPartialCredit(t *testing.T) {
	g := grading.NewGrader()
	q := question.Question{Points: 3, Payload: question.MultiSelect{Options: []string{"a", "b", "c"}, Correct: []int{0, 1}}}
	assert.Equal(t, 0.0, g.Points(q, []int{0, 1, 2}))
	assert.Equal(t, 0.0, g.Points(q, []int{1}))
	assert.Equal(t, 3.0, g.Points(q, []interface{}{float64(1), float64(0), float64(1)}))
}

func TestListAnswersWithJunkElementsScoreZero(t *testing.T) {
	g := grading.NewGrader()
	order := question.Question{Points: 2, Payload: question.Ordering{Items: []string{"a", "b"}, Correct: []int{0, 1}}}
	assert.Equal(t, 0.0, g.Points(order, []interface{}{float64(0), "x", float64(1)}))
	assert.Equal(t, 2.0, g.Points(order, []interface{}{float64(0), float64(1)}))

	set := question.Question{Points: 3, Payload: question.MultiSelect{Options: []string{"a", "b", "c"}, Correct: []int{0, 2}}}
	assert.Equal(t, 0.0, g.Points(set, []interface{}{float64(0), 1.5, float64(2)}))
	assert.Equal(t, 0.0, g.Points(set, []interface{}{float64(0), nil, float64(2)}))
	assert.Equal(t, 3.0, g.Points(set, []interface{}{float64(2), float64(0)}))
}

func TestFillBlankAcceptsNumericReply(t *testing.T) {
	g := grading.NewGrader()
	q := question.Question{Points: 1, Payload: question.FillBlank{Template: "100 - 20 = ___", Correct: "80"}}
	assert.Equal(t, 1.0, g.Points(q, float64(80)))
	assert.Equal(t, 0.0, g.Points(q, float64(81)))
}

func TestMalformedPayloadsScoreZero(t *testing.T) {
	g := grading.NewGrader()
	cases := []question.Question{
		{Points: 1, Payload: question.SingleChoice{Options: []string{"a"}}},
		{Points: 1, Payload: question.TrueFalse{}},
		{Points: 1, Payload: question.MultiSelect{}},
		{Points: 1, Payload: question.Matching{Left: []string{"a"}}},
		{Points: 1, Payload: question.Ordering{}},
		{Points: 1, Payload: question.FillBlank{}},
		{Points: 1, Payload: question.Calculation{}},
		{Points: 1, Payload: question.Hotspot{}},
		{Points: 1, Payload: question.CodeOutput{}},
		{Points: 1, Payload: question.Unknown{Name: "drawing"}},
		{Points: 1},
	}
	answers := []interface{}{0, true, []int{}, map[int]int{0: 0}, []int{}, "", 1.0, quiz.Point{}, quiz.CodeRun{}, "x", "x"}
	for i, q := range cases {
		assert.NotPanics(t, func() {
			res := g.Grade(q, answers[i])
			assert.Equal(t, 0.0, res.AutoPoints, "case %d", i)
			assert.False(t, res.NeedsManual, "case %d", i)
		})
	}
}

func TestCalculationTolerance(t *testing.T) {
	g := grading.NewGrader()
	exact := question.Question{Points: 1, Payload: question.Calculation{Correct: question.Ptr(0.3)}}
	assert.Equal(t, 1.0, g.Points(exact, 0.1+0.2))
	assert.Equal(t, 0.0, g.Points(exact, 0.31))
	assert.Equal(t, 0.0, g.Points(exact, "abc"))

	tol := question.Question{Points: 1, Payload: question.Calculation{Correct: question.Ptr(10.0), Tolerance: 1}}
	assert.Equal(t, 1.0, g.Points(tol, 9))
	assert.Equal(t, 1.0, g.Points(tol, 11))
	assert.Equal(t, 0.0, g.Points(tol, 11.01))
}

func TestHotspotEdgesInclusive(t *testing.T) {
	g := grading.NewGrader()
	q := question.Question{Points: 1, Payload: question.Hotspot{Rect: &question.Rect{X: 10, Y: 10, W: 5, H: 5}}}
	assert.Equal(t, 1.0, g.Points(q, quiz.Point{X: 10, Y: 10}))
	assert.Equal(t, 1.0, g.Points(q, quiz.Point{X: 15, Y: 15}))
	assert.Equal(t, 0.0, g.Points(q, quiz.Point{X: 9.99, Y: 12}))
}

func TestShortAnswerHint(t *testing.T) {
	g := grading.NewGrader()
	q := question.Question{Points: 4, Payload: question.ShortAnswer{Accepted: []string{"photosynthesis", "chlorophyll"}}}

	res := g.Grade(q, "Plants use photosynthesys, really!")
	assert.True(t, res.NeedsManual)
	assert.Equal(t, 0.0, res.AutoPoints)
	assert.Equal(t, 2.0, res.Suggested)
	assert.Contains(t, res.Feedback, "keyword hits: 1/2")

	strict := grading.NewGrader(grading.WithMaxEditDistance(0))
	assert.Equal(t, 0.0, strict.Grade(q, "Plants use photosynthesys").Suggested)
}
