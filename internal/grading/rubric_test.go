package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-assessment/internal/grading"
	"github.com/mind-engage/mindengage-assessment/internal/question"
	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

func pendingRecord() grading.Record {
	return grading.Record{
		QuizID: "q",
		Questions: []question.Question{
			{ID: "mc", Points: 1, Payload: question.SingleChoice{Options: []string{"a", "b"}, Correct: question.Ptr(0)}},
			{ID: "long", Points: 4, Payload: question.LongAnswer{}},
			{ID: "file", Points: 2, Payload: question.FileUpload{}},
		},
		ObjectiveScore:  1,
		ObjectiveTotal:  1,
		ManualTotal:     6,
		ManualBreakdown: map[string]float64{},
		Status:          grading.StatusPendingReview,
	}
}

func TestReviewClampsScores(t *testing.T) {
	rec, err := grading.Review(pendingRecord(), map[string]float64{"long": 9, "file": -3})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"long": 4, "file": 0}, rec.ManualBreakdown)
	assert.Equal(t, 4.0, rec.ManualScore)
	assert.Equal(t, grading.StatusGraded, rec.Status)
}

func TestReviewCoversEveryManualQuestion(t *testing.T) {
	rec, err := grading.Review(pendingRecord(), map[string]float64{"long": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"long": 2, "file": 0}, rec.ManualBreakdown)
}

func TestReviewOverwritesNotAdds(t *testing.T) {
	first, err := grading.Review(pendingRecord(), map[string]float64{"long": 3, "file": 2})
	require.NoError(t, err)
	second, err := grading.Review(first, map[string]float64{"long": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"long": 1, "file": 2}, second.ManualBreakdown)
	assert.Equal(t, 3.0, second.ManualScore)

	again, err := grading.Review(second, map[string]float64{"long": 1})
	require.NoError(t, err)
	assert.Equal(t, second.ManualScore, again.ManualScore)
}

func TestReviewRecomputesMissingTotal(t *testing.T) {
	rec := pendingRecord()
	rec.ManualTotal = 0
	out, err := grading.Review(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, out.ManualTotal)
}

func TestReviewRejectsForeignIDs(t *testing.T) {
	in := pendingRecord()
	_, err := grading.Review(in, map[string]float64{"mc": 1, "ghost": 1})
	require.Error(t, err)
	var ve *validation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
	assert.Equal(t, grading.StatusPendingReview, in.Status)
}

func TestReviewDoesNotMutateInput(t *testing.T) {
	in := pendingRecord()
	_, err := grading.Review(in, map[string]float64{"long": 2})
	require.NoError(t, err)
	assert.Empty(t, in.ManualBreakdown)
}

func TestParseScore(t *testing.T) {
	assert.Equal(t, 2.5, grading.ParseScore(2.5))
	assert.Equal(t, 3.0, grading.ParseScore(" 3 "))
	assert.Equal(t, 0.0, grading.ParseScore("abc"))
	assert.Equal(t, 0.0, grading.ParseScore(nil))
	assert.Equal(t, 0.0, grading.ParseScore(true))
	assert.Equal(t, 0.0, grading.ParseScore("NaN"))

	assert.Equal(t, map[string]float64{"a": 1, "b": 0}, grading.ParseScores(map[string]interface{}{"a": "1", "b": "x"}))
}
