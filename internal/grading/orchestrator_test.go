package grading_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-assessment/internal/bank"
	"github.com/mind-engage/mindengage-assessment/internal/exchange"
	"github.com/mind-engage/mindengage-assessment/internal/grading"
	"github.com/mind-engage/mindengage-assessment/internal/kv"
	"github.com/mind-engage/mindengage-assessment/internal/metrics"
	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
	"github.com/mind-engage/mindengage-assessment/internal/syncx"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

type recorder struct{ types []string }

func (r *recorder) Append(_ context.Context, e syncx.Event) error {
	r.types = append(r.types, e.Type)
	return nil
}

type fixture struct {
	bank    *bank.Store
	quizzes *quiz.Service
	grades  *grading.Service
	events  *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	events := &recorder{}
	now := func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }
	b := bank.New(store)
	quizzes := quiz.NewService(store, b, quiz.NewSampler(11), quiz.WithClock(now))
	grades := grading.NewService(store, quizzes,
		grading.WithRecorder(events),
		grading.WithMetrics(metrics.New(nil)),
		grading.WithClock(now))
	return fixture{bank: b, quizzes: quizzes, grades: grades, events: events}
}

func singleChoice(text string) question.Question {
	return question.Question{Text: text, Points: 1, Payload: question.SingleChoice{Options: []string{"wrong", "right"}, Correct: question.Ptr(1)}}
}

func TestSubmitAndReviewScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, text := range []string{"a", "b", "c"} {
		_, err := f.bank.Add(ctx, "c1", singleChoice(text))
		require.NoError(t, err)
	}
	long, err := f.bank.Add(ctx, "c1", question.Question{Text: "explain", Points: 2, Payload: question.LongAnswer{}})
	require.NoError(t, err)

	in, err := f.quizzes.Start(ctx, "c1", 4)
	require.NoError(t, err)
	require.Len(t, in.Questions, 4)
	for _, q := range in.Questions {
		if q.Type() == question.TypeSingleChoice {
			_, err := f.quizzes.Answer(ctx, in.ID, q.ID, 1)
			require.NoError(t, err)
		}
	}

	rec, err := f.grades.Submit(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, rec.ObjectiveScore)
	assert.Equal(t, 3.0, rec.ObjectiveTotal)
	assert.Equal(t, 2.0, rec.ManualTotal)
	assert.Equal(t, 0.0, rec.ManualScore)
	assert.Equal(t, grading.StatusPendingReview, rec.Status)

	_, err = f.grades.Submit(ctx, in.ID)
	assert.ErrorIs(t, err, quiz.ErrAlreadySubmitted)

	rec, err = f.grades.SubmitRubricScores(ctx, in.ID, map[string]float64{long.ID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.ManualScore)
	assert.Equal(t, grading.StatusGraded, rec.Status)
	assert.Equal(t, map[string]float64{long.ID: 1}, rec.ManualBreakdown)
	assert.Equal(t, 4.0, rec.Score())
	assert.Equal(t, 5.0, rec.Total())

	list, err := f.grades.Records(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, grading.StatusGraded, list[0].Status)

	assert.Equal(t, []string{syncx.GradeRecorded, syncx.RubricReviewed}, f.events.types)
}

func TestSubmitAutoStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.bank.Add(ctx, "c1", singleChoice("only"))
	require.NoError(t, err)

	in, err := f.quizzes.Start(ctx, "c1", 1)
	require.NoError(t, err)
	rec, err := f.grades.Submit(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, grading.StatusAuto, rec.Status)
	assert.Equal(t, 0.0, rec.ObjectiveScore)
	assert.Equal(t, 1.0, rec.ObjectiveTotal)

	_, err = f.grades.SubmitRubricScores(ctx, in.ID, map[string]float64{})
	assert.ErrorIs(t, err, grading.ErrNoManualQuestions)
}

func TestRecordIsASnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	q, err := f.bank.Add(ctx, "c1", singleChoice("first wording"))
	require.NoError(t, err)

	in, err := f.quizzes.Start(ctx, "c1", 1)
	require.NoError(t, err)
	_, err = f.quizzes.Answer(ctx, in.ID, q.ID, 1)
	require.NoError(t, err)
	_, err = f.grades.Submit(ctx, in.ID)
	require.NoError(t, err)

	require.NoError(t, f.bank.Remove(ctx, "c1", q.ID))
	_, err = f.bank.Add(ctx, "c1", singleChoice("replacement"))
	require.NoError(t, err)

	rec, err := f.grades.Record(ctx, in.ID)
	require.NoError(t, err)
	require.Len(t, rec.Questions, 1)
	assert.Equal(t, "first wording", rec.Questions[0].Text)
	assert.Equal(t, 1, rec.Answers[q.ID])
	assert.Equal(t, 1.0, rec.ObjectiveScore)
}

func TestEvaluateIsPure(t *testing.T) {
	g := grading.NewGrader()
	qs := []question.Question{
		{ID: "a", Points: 1, Payload: question.SingleChoice{Options: []string{"x", "y"}, Correct: question.Ptr(0)}},
		{ID: "b", Points: 3, Payload: question.Matching{Left: []string{"1", "2", "3"}, Right: []string{"1", "2", "3"}, CorrectMap: map[int]int{0: 0, 1: 1, 2: 2}}},
		{ID: "c", Points: 2, Payload: question.OpenEnded{}},
	}
	answers := quiz.Answers{"a": 0, "b": map[int]int{0: 0}}
	sub := grading.Submission{QuizID: "q", CourseID: "c", Questions: qs, Answers: answers}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := grading.Evaluate(g, sub, at)
	assert.Equal(t, 2.0, rec.ObjectiveScore)
	assert.Equal(t, 4.0, rec.ObjectiveTotal)
	assert.Equal(t, 2.0, rec.ManualTotal)
	assert.Equal(t, grading.StatusPendingReview, rec.Status)
	assert.Empty(t, rec.ManualBreakdown)
	assert.Equal(t, at, rec.Date)

	qs[0].Text = "mutated"
	answers["a"] = 1
	assert.Empty(t, rec.Questions[0].Text)
	assert.Equal(t, 0, rec.Answers["a"])
	assert.Equal(t, rec, grading.Evaluate(g, grading.Submission{QuizID: "q", CourseID: "c", Questions: rec.Questions, Answers: rec.Answers}, at))
}

func TestEvaluateRoundsObjectiveScore(t *testing.T) {
	g := grading.NewGrader()
	qs := []question.Question{
		{ID: "m", Points: 1, Payload: question.Matching{Left: []string{"1", "2", "3"}, Right: []string{"1", "2", "3"}, CorrectMap: map[int]int{0: 0, 1: 1, 2: 2}}},
	}
	rec := grading.Evaluate(g, grading.Submission{QuizID: "q", CourseID: "c", Questions: qs, Answers: quiz.Answers{"m": map[int]int{0: 0}}}, time.Now())
	assert.Equal(t, 0.33, rec.ObjectiveScore)
}

func TestServiceEvaluateValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.grades.Evaluate(grading.Submission{})
	require.Error(t, err)
	var ve *validation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	g := grading.NewGrader()
	qs := []question.Question{
		{ID: "h", Text: "h", Points: 1, Payload: question.Hotspot{Rect: &question.Rect{W: 5, H: 5}}},
		{ID: "s", Text: "s", Points: 1, Payload: question.ShortAnswer{Accepted: []string{"cat"}}},
	}
	rec := grading.Evaluate(g, grading.Submission{QuizID: "q", CourseID: "c", Questions: qs,
		Answers: quiz.Answers{"h": quiz.Point{X: 1, Y: 1}, "s": "a cat"}}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	var out grading.Record
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, rec, out)
	assert.Equal(t, map[string]float64{"s": 1}, out.Hints)
}

func TestImportCannotStrandPendingRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	long, err := f.bank.Add(ctx, "c1", question.Question{Text: "explain", Points: 2, Payload: question.LongAnswer{}})
	require.NoError(t, err)
	in, err := f.quizzes.Start(ctx, "c1", 1)
	require.NoError(t, err)
	_, err = f.grades.Submit(ctx, in.ID)
	require.NoError(t, err)

	xchg := exchange.NewService(f.bank, f.quizzes)
	doc, err := exchange.Encode(exchange.Export("", "c2", []question.Question{singleChoice("moved")}, time.Now()))
	require.NoError(t, err)
	_, err = xchg.ImportInstance(ctx, in.ID, doc)
	assert.ErrorIs(t, err, quiz.ErrAlreadySubmitted)

	rec, err := f.grades.SubmitRubricScores(ctx, in.ID, map[string]float64{long.ID: 2})
	require.NoError(t, err)
	assert.Equal(t, grading.StatusGraded, rec.Status)
	assert.Equal(t, "c1", rec.CourseID)
}

// failingStore rejects writes to keys with the given prefix while armed.
type failingStore struct {
	kv.Store
	prefix string
	armed  bool
}

func (s *failingStore) Set(ctx context.Context, key string, doc []byte) error {
	if s.armed && strings.HasPrefix(key, s.prefix) {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, doc)
}

func TestSubmitWritesNothingWhenInstanceWriteFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemoryStore(), prefix: kv.InstanceKey("")}
	b := bank.New(store)
	quizzes := quiz.NewService(store, b, quiz.NewSampler(3))
	grades := grading.NewService(store, quizzes)
	_, err := b.Add(ctx, "c1", singleChoice("a"))
	require.NoError(t, err)
	in, err := quizzes.Start(ctx, "c1", 1)
	require.NoError(t, err)

	store.armed = true
	_, err = grades.Submit(ctx, in.ID)
	require.Error(t, err)
	list, err := grades.Records(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)

	store.armed = false
	_, err = grades.Submit(ctx, in.ID)
	require.NoError(t, err)
	list, err = grades.Records(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmitReopensInstanceWhenRecordWriteFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemoryStore(), prefix: kv.GradesKey("")}
	b := bank.New(store)
	quizzes := quiz.NewService(store, b, quiz.NewSampler(3))
	grades := grading.NewService(store, quizzes)
	_, err := b.Add(ctx, "c1", singleChoice("a"))
	require.NoError(t, err)
	in, err := quizzes.Start(ctx, "c1", 1)
	require.NoError(t, err)

	store.armed = true
	_, err = grades.Submit(ctx, in.ID)
	require.Error(t, err)
	got, err := quizzes.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.False(t, got.Submitted())
}
