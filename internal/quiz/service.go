package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-assessment/internal/kv"
	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/syncx"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

var (
	ErrNotFound         = errors.New("quiz instance not found")
	ErrAlreadySubmitted = errors.New("quiz instance already submitted")
	ErrUnknownQuestion  = errors.New("question not in quiz instance")
)

// BankLister is the slice of the bank store the service samples from.
type BankLister interface {
	List(ctx context.Context, courseID string) ([]question.Question, error)
}

// Service owns quiz instances: creation by sampling, answer capture and the
// submitted marker. All mutations of one store are serialized.
type Service struct {
	kv      kv.Store
	bank    BankLister
	sampler *Sampler
	runner  CodeRunner
	events  syncx.Recorder
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
}

type Option func(*Service)

func WithRunner(r CodeRunner) Option        { return func(s *Service) { s.runner = r } }
func WithRecorder(r syncx.Recorder) Option  { return func(s *Service) { s.events = r } }
func WithLogger(l *zap.Logger) Option       { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithIDFunc(f func() string) Option     { return func(s *Service) { s.newID = f } }

func NewService(store kv.Store, bank BankLister, sampler *Sampler, opts ...Option) *Service {
	s := &Service{
		kv:      store,
		bank:    bank,
		sampler: sampler,
		runner:  EchoRunner{},
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   func() string { return "QZ" + uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start samples count questions from the course bank into a new instance with
// seeded answers.
func (s *Service) Start(ctx context.Context, courseID string, count int) (Instance, error) {
	if courseID == "" {
		return Instance{}, validation.Newf("courseId is required")
	}
	list, err := s.bank.List(ctx, courseID)
	if err != nil {
		return Instance{}, err
	}
	qs, err := s.sampler.Sample(list, count)
	if err != nil {
		return Instance{}, err
	}

	in := Instance{
		ID:        s.newID(),
		CourseID:  courseID,
		Questions: qs,
		Answers:   Seed(qs),
		StartedAt: s.now().UTC(),
	}

	s.mu.Lock()
	err = kv.SetJSON(ctx, s.kv, kv.InstanceKey(in.ID), in)
	s.mu.Unlock()
	if err != nil {
		return Instance{}, err
	}

	syncx.Emit(ctx, s.events, s.log, syncx.NewEvent(syncx.QuizStarted, in.ID, map[string]interface{}{
		"courseId": courseID,
		"count":    len(qs),
	}))
	s.log.Info("quiz started", zap.String("quiz", in.ID), zap.String("course", courseID), zap.Int("questions", len(qs)))
	return in.Clone(), nil
}

func (s *Service) Get(ctx context.Context, quizID string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, quizID)
}

// Answer stores raw as the answer to questionID after normalization. Values
// that cannot be coerced clear the answer.
func (s *Service) Answer(ctx context.Context, quizID, questionID string, raw interface{}) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, _ interface{}) (interface{}, error) {
		return Normalize(q, raw), nil
	})
}

func (s *Service) Toggle(ctx context.Context, quizID, questionID string, idx int) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, cur interface{}) (interface{}, error) {
		p, ok := q.Payload.(question.MultiSelect)
		if !ok {
			return nil, wrongType(q, question.TypeMultiSelect)
		}
		if idx < 0 || idx >= len(p.Options) {
			return nil, validation.Newf("option %d out of range", idx)
		}
		return ToggleOption(cur, idx), nil
	})
}

func (s *Service) Match(ctx context.Context, quizID, questionID string, left, right int) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, cur interface{}) (interface{}, error) {
		p, ok := q.Payload.(question.Matching)
		if !ok {
			return nil, wrongType(q, question.TypeMatching)
		}
		if left < 0 || left >= len(p.Left) || right < 0 || right >= len(p.Right) {
			return nil, validation.Newf("pair %d->%d out of range", left, right)
		}
		return SetMatch(cur, left, right), nil
	})
}

func (s *Service) Move(ctx context.Context, quizID, questionID string, from, dir int) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, cur interface{}) (interface{}, error) {
		if _, ok := q.Payload.(question.Ordering); !ok {
			return nil, wrongType(q, question.TypeOrdering)
		}
		return Move(cur, from, dir), nil
	})
}

func (s *Service) Hotspot(ctx context.Context, quizID, questionID string, x, y float64) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, _ interface{}) (interface{}, error) {
		p, ok := q.Payload.(question.Hotspot)
		if !ok {
			return nil, wrongType(q, question.TypeHotspot)
		}
		return ClampClick(p, x, y), nil
	})
}

// RunCode executes code through the configured runner and records both the
// code and its output.
func (s *Service) RunCode(ctx context.Context, quizID, questionID, code string) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, _ interface{}) (interface{}, error) {
		p, ok := q.Payload.(question.CodeOutput)
		if !ok {
			return nil, wrongType(q, question.TypeCodeOutput)
		}
		out, err := s.runner.Run(ctx, p, code)
		if err != nil {
			return nil, errors.Wrap(err, "run code")
		}
		return CodeRun{Code: code, Output: out}, nil
	})
}

// AttachFile records upload metadata. The file body is never stored.
func (s *Service) AttachFile(ctx context.Context, quizID, questionID string, f FileRef) (Instance, error) {
	return s.capture(ctx, quizID, questionID, func(q question.Question, _ interface{}) (interface{}, error) {
		if _, ok := q.Payload.(question.FileUpload); !ok {
			return nil, wrongType(q, question.TypeFileUpload)
		}
		if f.Name == "" {
			return nil, validation.New(errors.New("invalid file"), validation.FieldError{Field: "name", Error: "required"})
		}
		if f.Size < 0 {
			return nil, validation.New(errors.New("invalid file"), validation.FieldError{Field: "size", Error: "must not be negative"})
		}
		return f, nil
	})
}

// Replace swaps the question set of an open instance and re-seeds its
// answers. A missing instance is created under courseID. A submitted
// instance is rejected with ErrAlreadySubmitted: its grade record is filed
// under the instance's course and must stay reachable for review.
func (s *Service) Replace(ctx context.Context, quizID, courseID string, qs []question.Question) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.load(ctx, quizID)
	switch {
	case errors.Is(err, ErrNotFound):
		in = Instance{ID: quizID, CourseID: courseID, StartedAt: s.now().UTC()}
	case err != nil:
		return Instance{}, err
	case in.Submitted():
		return Instance{}, ErrAlreadySubmitted
	}
	in.CourseID = courseID
	in.Questions = question.CloneAll(qs)
	if in.Questions == nil {
		in.Questions = []question.Question{}
	}
	in.Answers = Seed(in.Questions)
	if err := kv.SetJSON(ctx, s.kv, kv.InstanceKey(quizID), in); err != nil {
		return Instance{}, err
	}
	return in.Clone(), nil
}

// Finalize marks the instance submitted and then runs fn on it. When fn
// fails the marker is rolled back, so fn never runs for an instance that
// could not be marked and a failed fn leaves the instance open. The instance
// stays locked throughout so a second submission observes
// ErrAlreadySubmitted.
func (s *Service) Finalize(ctx context.Context, quizID string, fn func(Instance) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.load(ctx, quizID)
	if err != nil {
		return err
	}
	if in.Submitted() {
		return ErrAlreadySubmitted
	}
	open := in.Clone()
	at := s.now().UTC()
	in.SubmittedAt = &at
	if err := kv.SetJSON(ctx, s.kv, kv.InstanceKey(quizID), in); err != nil {
		return err
	}
	if err := fn(in.Clone()); err != nil {
		if rerr := kv.SetJSON(ctx, s.kv, kv.InstanceKey(quizID), open); rerr != nil {
			s.log.Error("finalize rollback failed", zap.String("quiz", quizID), zap.Error(rerr))
			return errors.Wrapf(err, "rollback: %v", rerr)
		}
		return err
	}
	return nil
}

type captureFunc func(q question.Question, current interface{}) (interface{}, error)

func (s *Service) capture(ctx context.Context, quizID, questionID string, fn captureFunc) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.load(ctx, quizID)
	if err != nil {
		return Instance{}, err
	}
	if in.Submitted() {
		return Instance{}, ErrAlreadySubmitted
	}
	q, ok := in.Question(questionID)
	if !ok {
		return Instance{}, errors.Wrapf(ErrUnknownQuestion, "question %s", questionID)
	}
	next, err := fn(q, in.Answers[questionID])
	if err != nil {
		return Instance{}, err
	}
	if in.Answers == nil {
		in.Answers = Answers{}
	}
	in.Answers[questionID] = next
	if err := kv.SetJSON(ctx, s.kv, kv.InstanceKey(quizID), in); err != nil {
		return Instance{}, err
	}
	return in.Clone(), nil
}

func (s *Service) load(ctx context.Context, quizID string) (Instance, error) {
	var in Instance
	found, err := kv.GetJSON(ctx, s.kv, kv.InstanceKey(quizID), &in)
	if err != nil {
		return Instance{}, err
	}
	if !found {
		return Instance{}, errors.Wrapf(ErrNotFound, "quiz %s", quizID)
	}
	return in, nil
}

func wrongType(q question.Question, want question.Type) error {
	return validation.Newf("question %s is %s, not %s", q.ID, q.Type(), want)
}
