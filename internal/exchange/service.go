package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-assessment/internal/bank"
	"github.com/mind-engage/mindengage-assessment/internal/metrics"
	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
	"github.com/mind-engage/mindengage-assessment/internal/syncx"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

// Service moves question sets between exchange documents and the bank or a
// quiz instance. Every import replaces; nothing is merged.
type Service struct {
	bank    *bank.Store
	quizzes *quiz.Service
	events  syncx.Recorder
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithRecorder(r syncx.Recorder) Option  { return func(s *Service) { s.events = r } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(b *bank.Store, q *quiz.Service, opts ...Option) *Service {
	s := &Service{bank: b, quizzes: q, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) ExportInstance(ctx context.Context, quizID string) (Document, error) {
	in, err := s.quizzes.Get(ctx, quizID)
	s.metrics.ObserveExchange("export_quiz", err)
	if err != nil {
		return Document{}, err
	}
	d := Export(in.ID, in.CourseID, in.Questions, s.now())
	s.emit(ctx, syncx.QuizExported, quizID, d)
	return d, nil
}

// ImportInstance replaces the question set of quizID with the document's and
// clears its answers.
func (s *Service) ImportInstance(ctx context.Context, quizID string, b []byte) (quiz.Instance, error) {
	in, err := s.importInstance(ctx, quizID, b)
	s.metrics.ObserveExchange("import_quiz", err)
	return in, err
}

func (s *Service) importInstance(ctx context.Context, quizID string, b []byte) (quiz.Instance, error) {
	d, err := Decode(b)
	if err != nil {
		return quiz.Instance{}, err
	}
	in, err := s.quizzes.Replace(ctx, quizID, d.CourseID, d.Questions)
	if err != nil {
		return quiz.Instance{}, err
	}
	s.emit(ctx, syncx.QuizImported, quizID, d)
	return in, nil
}

func (s *Service) ExportBank(ctx context.Context, courseID string) (Document, error) {
	qs, err := s.bank.List(ctx, courseID)
	s.metrics.ObserveExchange("export_bank", err)
	if err != nil {
		return Document{}, err
	}
	d := Export("", courseID, qs, s.now())
	s.emit(ctx, syncx.BankExported, courseID, d)
	return d, nil
}

// ImportBank restores a course bank from a document. Every question must
// pass bank validation; the document's courseId must match.
func (s *Service) ImportBank(ctx context.Context, courseID string, b []byte) ([]question.Question, error) {
	qs, err := s.importBank(ctx, courseID, b)
	s.metrics.ObserveExchange("import_bank", err)
	return qs, err
}

func (s *Service) importBank(ctx context.Context, courseID string, b []byte) ([]question.Question, error) {
	d, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if d.CourseID != courseID {
		return nil, validation.New(errors.New("invalid exchange document"),
			validation.FieldError{Field: "courseId", Error: fmt.Sprintf("document is for course %q", d.CourseID)})
	}
	var flds []validation.FieldError
	for i, q := range d.Questions {
		var ve *validation.ValidationError
		if err := question.Validate(q); errors.As(err, &ve) {
			for _, f := range ve.Fields {
				flds = append(flds, validation.FieldError{Field: fmt.Sprintf("questions[%d].%s", i, f.Field), Error: f.Error})
			}
		}
	}
	if len(flds) > 0 {
		return nil, validation.New(errors.New("invalid exchange document"), flds...)
	}
	if err := s.bank.Replace(ctx, courseID, d.Questions); err != nil {
		return nil, err
	}
	s.emit(ctx, syncx.BankImported, courseID, d)
	return question.CloneAll(d.Questions), nil
}

func (s *Service) emit(ctx context.Context, typ, key string, d Document) {
	syncx.Emit(ctx, s.events, s.log, syncx.NewEvent(typ, key, map[string]interface{}{
		"quizId":    d.QuizID,
		"courseId":  d.CourseID,
		"questions": len(d.Questions),
	}))
	s.log.Info("exchange", zap.String("event", typ), zap.String("key", key), zap.Int("questions", len(d.Questions)))
}
