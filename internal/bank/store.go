// Package bank owns the durable question set of each course. The bank is
// append/remove only; a question is never edited in place.
package bank

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-assessment/internal/kv"
	"github.com/mind-engage/mindengage-assessment/internal/question"
)

type Store struct {
	kv    kv.Store
	log   *zap.Logger
	newID func() string

	mu sync.Mutex
}

type Option func(*Store)

// WithIDFunc overrides question id generation.
func WithIDFunc(f func() string) Option { return func(s *Store) { s.newID = f } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    store,
		log:   zap.NewNop(),
		newID: func() string { return "Q" + uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add validates q, assigns it a fresh id and prepends it to the course bank.
// Any id carried by q is ignored.
func (s *Store) Add(ctx context.Context, courseID string, q question.Question) (question.Question, error) {
	if err := question.Validate(q); err != nil {
		return question.Question{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx, courseID)
	if err != nil {
		return question.Question{}, err
	}
	q = q.Clone()
	q.ID = s.newID()
	for containsID(list, q.ID) {
		q.ID = s.newID()
	}

	next := make([]question.Question, 0, len(list)+1)
	next = append(next, q)
	next = append(next, list...)
	if err := kv.SetJSON(ctx, s.kv, kv.BankKey(courseID), next); err != nil {
		return question.Question{}, err
	}
	s.log.Debug("question added", zap.String("course", courseID), zap.String("question", q.ID), zap.String("type", string(q.Type())))
	return q.Clone(), nil
}

// Remove deletes the question with id. An absent id is not an error.
func (s *Store) Remove(ctx context.Context, courseID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx, courseID)
	if err != nil {
		return err
	}
	next := list[:0]
	for _, q := range list {
		if q.ID != id {
			next = append(next, q)
		}
	}
	if len(next) == len(list) {
		return nil
	}
	return s.save(ctx, courseID, next)
}

// List returns the bank most recent first. The slice is the caller's copy.
func (s *Store) List(ctx context.Context, courseID string) ([]question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, courseID)
}

// Replace swaps the whole bank, as when restoring from an exchange document.
func (s *Store) Replace(ctx context.Context, courseID string, qs []question.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, courseID, question.CloneAll(qs))
}

// save writes the bank document; an empty bank drops the document.
func (s *Store) save(ctx context.Context, courseID string, list []question.Question) error {
	if len(list) == 0 {
		if err := s.kv.Remove(ctx, kv.BankKey(courseID)); err != nil {
			return errors.Wrap(err, "remove bank")
		}
		return nil
	}
	return kv.SetJSON(ctx, s.kv, kv.BankKey(courseID), list)
}

func (s *Store) load(ctx context.Context, courseID string) ([]question.Question, error) {
	var list []question.Question
	if _, err := kv.GetJSON(ctx, s.kv, kv.BankKey(courseID), &list); err != nil {
		return nil, errors.Wrap(err, "load bank")
	}
	if list == nil {
		list = []question.Question{}
	}
	return list, nil
}

func containsID(list []question.Question, id string) bool {
	for _, q := range list {
		if q.ID == id {
			return true
		}
	}
	return false
}
