package quiz_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
)

func bankOf(n int) []question.Question {
	out := make([]question.Question, n)
	for i := range out {
		out[i] = question.Question{
			ID:      fmt.Sprintf("q%d", i),
			Text:    fmt.Sprintf("question %d", i),
			Points:  1,
			Payload: question.TrueFalse{Correct: question.Ptr(i%2 == 0)},
		}
	}
	return out
}

func ids(qs []question.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSampleCounts(t *testing.T) {
	s := quiz.NewSampler(7)
	bank := bankOf(5)

	for _, tc := range []struct{ count, want int }{
		{3, 3}, {5, 5}, {9, 5}, {0, 1}, {-4, 1},
	} {
		got, err := s.Sample(bank, tc.count)
		require.NoError(t, err)
		assert.Len(t, got, tc.want, "count=%d", tc.count)

		seen := map[string]bool{}
		for _, q := range got {
			assert.False(t, seen[q.ID], "duplicate %s", q.ID)
			seen[q.ID] = true
			assert.Contains(t, ids(bank), q.ID)
		}
	}
}

func TestSampleEmptyBank(t *testing.T) {
	_, err := quiz.NewSampler(1).Sample(nil, 3)
	assert.ErrorIs(t, err, quiz.ErrBankEmpty)
}

func TestSampleReproducibleWithSeed(t *testing.T) {
	bank := bankOf(20)
	a, err := quiz.NewSampler(42).Sample(bank, 20)
	require.NoError(t, err)
	b, err := quiz.NewSampler(42).Sample(bank, 20)
	require.NoError(t, err)
	assert.Equal(t, ids(a), ids(b))
}

func TestSampleVariesAcrossCalls(t *testing.T) {
	s := quiz.NewSampler(3)
	bank := bankOf(20)
	first, err := s.Sample(bank, 20)
	require.NoError(t, err)

	varied := false
	for i := 0; i < 10 && !varied; i++ {
		next, err := s.Sample(bank, 20)
		require.NoError(t, err)
		varied = fmt.Sprint(ids(next)) != fmt.Sprint(ids(first))
	}
	assert.True(t, varied)
}

func TestSampleCopiesQuestions(t *testing.T) {
	bank := bankOf(1)
	got, err := quiz.NewSampler(1).Sample(bank, 1)
	require.NoError(t, err)
	*got[0].Payload.(question.TrueFalse).Correct = false
	assert.True(t, *bank[0].Payload.(question.TrueFalse).Correct)
}
