package grading

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-assessment/internal/kv"
	"github.com/mind-engage/mindengage-assessment/internal/metrics"
	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
	"github.com/mind-engage/mindengage-assessment/internal/syncx"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

var ErrRecordNotFound = errors.New("grade record not found")

// Submission is the grading input contract.
type Submission struct {
	QuizID    string              `json:"quizId"`
	CourseID  string              `json:"courseId"`
	Questions []question.Question `json:"questions"`
	Answers   quiz.Answers        `json:"answers"`
}

// Evaluate grades every question of sub once and builds its record. Objective
// points are summed and rounded to two decimals; manual questions only add to
// ManualTotal. The record owns copies of questions and answers.
func Evaluate(g *Grader, sub Submission, at time.Time) Record {
	answers := quiz.NormalizeAll(sub.Questions, sub.Answers)
	rec := Record{
		QuizID:          sub.QuizID,
		CourseID:        sub.CourseID,
		Date:            at.UTC(),
		ManualBreakdown: map[string]float64{},
		Answers:         answers,
		Questions:       question.CloneAll(sub.Questions),
	}
	if rec.Questions == nil {
		rec.Questions = []question.Question{}
	}

	var objective float64
	for _, q := range rec.Questions {
		res := g.Grade(q, answers[q.ID])
		if res.NeedsManual {
			rec.ManualTotal += res.MaxPoints
			if res.Suggested > 0 {
				if rec.Hints == nil {
					rec.Hints = map[string]float64{}
				}
				rec.Hints[q.ID] = round2(res.Suggested)
			}
			continue
		}
		objective += res.AutoPoints
		rec.ObjectiveTotal += res.MaxPoints
	}
	rec.ObjectiveScore = round2(objective)

	if rec.ManualTotal > 0 {
		rec.Status = StatusPendingReview
	} else {
		rec.Status = StatusAuto
	}
	return rec
}

// Service persists grade records per course and runs the review and
// similarity passes over them.
type Service struct {
	kv      kv.Store
	quizzes *quiz.Service
	grader  *Grader
	events  syncx.Recorder
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time

	mu sync.Mutex
}

type ServiceOption func(*Service)

func WithGrader(g *Grader) ServiceOption           { return func(s *Service) { s.grader = g } }
func WithRecorder(r syncx.Recorder) ServiceOption  { return func(s *Service) { s.events = r } }
func WithMetrics(m *metrics.Metrics) ServiceOption { return func(s *Service) { s.metrics = m } }
func WithLogger(l *zap.Logger) ServiceOption       { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }

func NewService(store kv.Store, quizzes *quiz.Service, opts ...ServiceOption) *Service {
	s := &Service{
		kv:      store,
		quizzes: quizzes,
		grader:  NewGrader(),
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Evaluate grades sub without persisting anything.
func (s *Service) Evaluate(sub Submission) (Record, error) {
	if sub.QuizID == "" || sub.CourseID == "" || sub.Questions == nil {
		var flds []validation.FieldError
		if sub.QuizID == "" {
			flds = append(flds, validation.FieldError{Field: "quizId", Error: "required"})
		}
		if sub.CourseID == "" {
			flds = append(flds, validation.FieldError{Field: "courseId", Error: "required"})
		}
		if sub.Questions == nil {
			flds = append(flds, validation.FieldError{Field: "questions", Error: "required"})
		}
		return Record{}, validation.New(errors.New("invalid submission"), flds...)
	}
	return Evaluate(s.grader, sub, s.now()), nil
}

// Submit grades the instance, appends the record to its course grade list
// and marks the instance submitted. A second submit fails with
// quiz.ErrAlreadySubmitted.
func (s *Service) Submit(ctx context.Context, quizID string) (Record, error) {
	var rec Record
	err := s.quizzes.Finalize(ctx, quizID, func(in quiz.Instance) error {
		rec = Evaluate(s.grader, Submission{
			QuizID:    in.ID,
			CourseID:  in.CourseID,
			Questions: in.Questions,
			Answers:   in.Answers,
		}, s.now())
		return s.appendRecord(ctx, rec)
	})
	if err != nil {
		return Record{}, err
	}

	s.metrics.ObserveSubmission(string(rec.Status), rec.ObjectiveScore, rec.ObjectiveTotal)
	syncx.Emit(ctx, s.events, s.log, syncx.NewEvent(syncx.GradeRecorded, quizID, map[string]interface{}{
		"courseId":       rec.CourseID,
		"objectiveScore": rec.ObjectiveScore,
		"objectiveTotal": rec.ObjectiveTotal,
		"manualTotal":    rec.ManualTotal,
		"status":         rec.Status,
	}))
	s.log.Info("quiz graded",
		zap.String("quiz", quizID),
		zap.String("course", rec.CourseID),
		zap.Float64("objective_score", rec.ObjectiveScore),
		zap.Float64("objective_total", rec.ObjectiveTotal),
		zap.Float64("manual_total", rec.ManualTotal),
		zap.String("status", string(rec.Status)))
	return rec.Clone(), nil
}

// Records returns the course grade list in submission order.
func (s *Service) Records(ctx context.Context, courseID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, courseID)
}

// Record returns the most recent record for quizID.
func (s *Service) Record(ctx context.Context, quizID string) (Record, error) {
	in, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx, in.CourseID)
	if err != nil {
		return Record{}, err
	}
	i := latest(list, quizID)
	if i < 0 {
		return Record{}, errors.Wrapf(ErrRecordNotFound, "quiz %s", quizID)
	}
	return list[i], nil
}

// SubmitRubricScores reviews the record of quizID with scores keyed by
// question id.
func (s *Service) SubmitRubricScores(ctx context.Context, quizID string, scores map[string]float64) (Record, error) {
	rec, err := s.updateRecord(ctx, quizID, func(r Record) (Record, error) {
		return Review(r, scores)
	})
	if err != nil {
		return Record{}, err
	}
	s.metrics.ObserveReview()
	syncx.Emit(ctx, s.events, s.log, syncx.NewEvent(syncx.RubricReviewed, quizID, map[string]interface{}{
		"manualScore":     rec.ManualScore,
		"manualTotal":     rec.ManualTotal,
		"manualBreakdown": rec.ManualBreakdown,
	}))
	s.log.Info("rubric reviewed", zap.String("quiz", quizID), zap.Float64("manual_score", rec.ManualScore))
	return rec, nil
}

// ComputeSimilarity runs the similarity heuristic over the free-text answers
// of the record of quizID and stores the result on it.
func (s *Service) ComputeSimilarity(ctx context.Context, quizID string) (Record, error) {
	rec, err := s.updateRecord(ctx, quizID, func(r Record) (Record, error) {
		text, err := CombineFreeText(r.Questions, r.Answers)
		if err != nil {
			return Record{}, err
		}
		percent, level, err := Similarity(text)
		if err != nil {
			return Record{}, err
		}
		r.PlagiarismPercent = &percent
		r.PlagiarismLevel = level
		return r, nil
	})
	if err != nil {
		return Record{}, err
	}
	s.metrics.ObserveSimilarity(string(rec.PlagiarismLevel))
	syncx.Emit(ctx, s.events, s.log, syncx.NewEvent(syncx.SimilarityComputed, quizID, map[string]interface{}{
		"percent": *rec.PlagiarismPercent,
		"level":   rec.PlagiarismLevel,
	}))
	return rec, nil
}

func (s *Service) updateRecord(ctx context.Context, quizID string, fn func(Record) (Record, error)) (Record, error) {
	in, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx, in.CourseID)
	if err != nil {
		return Record{}, err
	}
	i := latest(list, quizID)
	if i < 0 {
		return Record{}, errors.Wrapf(ErrRecordNotFound, "quiz %s", quizID)
	}
	next, err := fn(list[i].Clone())
	if err != nil {
		return Record{}, err
	}
	list[i] = next
	if err := kv.SetJSON(ctx, s.kv, kv.GradesKey(in.CourseID), list); err != nil {
		return Record{}, err
	}
	return next.Clone(), nil
}

func (s *Service) appendRecord(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx, rec.CourseID)
	if err != nil {
		return err
	}
	list = append(list, rec)
	return kv.SetJSON(ctx, s.kv, kv.GradesKey(rec.CourseID), list)
}

func (s *Service) load(ctx context.Context, courseID string) ([]Record, error) {
	var list []Record
	if _, err := kv.GetJSON(ctx, s.kv, kv.GradesKey(courseID), &list); err != nil {
		return nil, errors.Wrap(err, "load grades")
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}

func latest(list []Record, quizID string) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].QuizID == quizID {
			return i
		}
	}
	return -1
}
