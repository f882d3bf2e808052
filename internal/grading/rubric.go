package grading

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mind-engage/mindengage-assessment/internal/validation"
)

// ErrNoManualQuestions is returned when reviewing a record with nothing to
// score by hand.
var ErrNoManualQuestions = validation.Newf("no questions need rubric review")

// Review applies reviewer scores to the manual questions of rec and returns
// the graded copy. Each score is clamped to [0, points]. Questions absent
// from scores keep their previous value, 0 when never scored. Re-reviewing
// overwrites earlier scores.
func Review(rec Record, scores map[string]float64) (Record, error) {
	manual := rec.ManualQuestions()
	if len(manual) == 0 {
		return Record{}, ErrNoManualQuestions
	}

	points := make(map[string]float64, len(manual))
	for _, q := range manual {
		points[q.ID] = q.Points
	}
	var flds []validation.FieldError
	for _, id := range sortedKeys(scores) {
		if _, ok := points[id]; !ok {
			flds = append(flds, validation.FieldError{Field: "scores." + id, Error: "not a manual question of this record"})
		}
	}
	if len(flds) > 0 {
		return Record{}, validation.New(errors.New("invalid rubric scores"), flds...)
	}

	out := rec.Clone()
	breakdown := make(map[string]float64, len(manual))
	sum, total := 0.0, 0.0
	for _, q := range manual {
		v, ok := scores[q.ID]
		if !ok {
			v = rec.ManualBreakdown[q.ID]
		}
		v = clamp(v, 0, math.Max(q.Points, 0))
		breakdown[q.ID] = v
		sum += v
		total += q.Points
	}
	out.ManualBreakdown = breakdown
	out.ManualScore = round2(sum)
	if out.ManualTotal == 0 {
		out.ManualTotal = total
	}
	out.Status = StatusGraded
	return out, nil
}

// ParseScore reads a reviewer score given as a number or numeric string.
// Anything else is 0.
func ParseScore(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseScores applies ParseScore to each entry.
func ParseScores(raw map[string]interface{}) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		out[k] = ParseScore(v)
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
