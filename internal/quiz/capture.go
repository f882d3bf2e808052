package quiz

import (
	"context"
	"math"
	"strings"

	"github.com/mind-engage/mindengage-assessment/internal/question"
)

// Default hotspot canvas when the question does not carry image dimensions.
const (
	DefaultImageWidth  = 400
	DefaultImageHeight = 220
)

// Seed returns the initial answer state for every question. Composite types
// start in an explicit empty state; the rest are nil.
func Seed(qs []question.Question) Answers {
	out := make(Answers, len(qs))
	for _, q := range qs {
		out[q.ID] = SeedAnswer(q)
	}
	return out
}

func SeedAnswer(q question.Question) interface{} {
	switch p := q.Payload.(type) {
	case question.Ordering:
		order := make([]int, len(p.Items))
		for i := range order {
			order[i] = i
		}
		return order
	case question.Matching:
		return map[int]int{}
	case question.MultiSelect:
		return []int{}
	case question.CodeOutput:
		return CodeRun{Code: p.Starter}
	default:
		return nil
	}
}

// ToggleOption flips idx in a multi-select answer. The result stays sorted
// and distinct.
func ToggleOption(current interface{}, idx int) []int {
	cur, _ := current.([]int)
	out := make([]int, 0, len(cur)+1)
	found := false
	for _, i := range cur {
		if i == idx {
			found = true
			continue
		}
		out = append(out, i)
	}
	if !found {
		out = append(out, idx)
	}
	return sortedSet(out)
}

// SetMatch maps left to right in a matching answer.
func SetMatch(current interface{}, left, right int) map[int]int {
	cur, _ := current.(map[int]int)
	out := make(map[int]int, len(cur)+1)
	for k, v := range cur {
		out[k] = v
	}
	out[left] = right
	return out
}

// Move swaps the item at from with its neighbour in direction dir (-1 up,
// +1 down). Moves that leave the list are no-ops.
func Move(current interface{}, from, dir int) []int {
	cur, _ := current.([]int)
	out := make([]int, len(cur))
	copy(out, cur)
	if dir > 0 {
		dir = 1
	} else {
		dir = -1
	}
	to := from + dir
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) {
		return out
	}
	out[from], out[to] = out[to], out[from]
	return out
}

// ClampClick pins a click inside the hotspot image.
func ClampClick(p question.Hotspot, x, y float64) Point {
	w, h := p.ImageWidth, p.ImageHeight
	if w <= 0 {
		w = DefaultImageWidth
	}
	if h <= 0 {
		h = DefaultImageHeight
	}
	return Point{X: clamp(x, 0, w), Y: clamp(y, 0, h)}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// CodeRunner produces the output of a learner's code. The grader only ever
// compares the recorded output.
type CodeRunner interface {
	Run(ctx context.Context, q question.CodeOutput, code string) (string, error)
}

// EchoRunner is the offline runner: it reports the expected output when the
// code mentions it.
type EchoRunner struct{}

const mismatchOutput = "demo: output mismatch"

func (EchoRunner) Run(_ context.Context, q question.CodeOutput, code string) (string, error) {
	want := strings.TrimSpace(q.ExpectedOutput)
	if want != "" && strings.Contains(code, want) {
		return q.ExpectedOutput, nil
	}
	return mismatchOutput, nil
}
