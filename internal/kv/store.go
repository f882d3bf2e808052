// Package kv is the persisted store boundary: a key to document map with
// synchronous get/set/remove. Keys are namespaced per course and instance.
package kv

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Store is last-write-wins; callers serialize their own read-modify-write.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, doc []byte) error
	Remove(ctx context.Context, key string) error
}

func BankKey(courseID string) string   { return "bank:" + courseID }
func InstanceKey(quizID string) string { return "instance:" + quizID }
func GradesKey(courseID string) string { return "grades:" + courseID }

// GetJSON decodes the document at key into v. It reports false when the key
// is absent.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (bool, error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get %s", key)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := s.Set(ctx, key, b); err != nil {
		return errors.Wrapf(err, "set %s", key)
	}
	return nil
}
