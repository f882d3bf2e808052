package quiz

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-assessment/internal/question"
)

// Answers maps question id to the learner's answer. Values are canonical
// once they pass through Normalize:
//
//	single choice  int             true/false   bool
//	multi-select   []int (sorted)  matching     map[int]int
//	ordering       []int           calculation  float64
//	text types     string          hotspot      Point
//	code-output    CodeRun         file upload  FileRef
//
// nil means unanswered.
type Answers map[string]interface{}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CodeRun struct {
	Code   string `json:"code"`
	Output string `json:"output"`
}

// FileRef describes an uploaded file. Only metadata is kept.
type FileRef struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Normalize coerces a raw answer (typed Go value or decoded JSON) into the
// canonical shape for q. Values that cannot be coerced become nil.
func Normalize(q question.Question, raw interface{}) interface{} {
	if raw == nil {
		return nil
	}
	return question.Visit[interface{}](q, normalizer{raw: raw})
}

// NormalizeAll normalizes every answer that belongs to one of qs. Entries for
// ids outside qs are kept verbatim.
func NormalizeAll(qs []question.Question, in Answers) Answers {
	out := make(Answers, len(in))
	for k, v := range in {
		out[k] = v
	}
	for _, q := range qs {
		if v, ok := in[q.ID]; ok {
			out[q.ID] = Normalize(q, v)
		}
	}
	return out
}

// CloneAnswers deep copies canonical answers.
func CloneAnswers(in Answers) Answers {
	if in == nil {
		return nil
	}
	out := make(Answers, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, int, bool, float64, string, Point, CodeRun, FileRef:
		return t
	case []int:
		out := make([]int, len(t))
		copy(out, t)
		return out
	case map[int]int:
		out := make(map[int]int, len(t))
		for k, x := range t {
			out[k] = x
		}
		return out
	default:
		// Non-canonical value (unknown question type): copy through JSON.
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		var out interface{}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil
		}
		return out
	}
}

type normalizer struct{ raw interface{} }

func (n normalizer) SingleChoice(question.Question, question.SingleChoice) interface{} {
	if i, ok := toIndex(n.raw); ok {
		return i
	}
	return nil
}

func (n normalizer) TrueFalse(question.Question, question.TrueFalse) interface{} {
	if b, ok := n.raw.(bool); ok {
		return b
	}
	return nil
}

func (n normalizer) MultiSelect(question.Question, question.MultiSelect) interface{} {
	list, ok := toIndexList(n.raw)
	if !ok {
		return nil
	}
	return sortedSet(list)
}

func (n normalizer) Matching(question.Question, question.Matching) interface{} {
	m, ok := toIndexMap(n.raw)
	if !ok {
		return nil
	}
	return m
}

func (n normalizer) Ordering(question.Question, question.Ordering) interface{} {
	list, ok := toIndexList(n.raw)
	if !ok {
		return nil
	}
	return list
}

func (n normalizer) FillBlank(question.Question, question.FillBlank) interface{} {
	return toText(n.raw)
}

func (n normalizer) Calculation(question.Question, question.Calculation) interface{} {
	if f, ok := toNumber(n.raw); ok {
		return f
	}
	return nil
}

func (n normalizer) Hotspot(question.Question, question.Hotspot) interface{} {
	switch t := n.raw.(type) {
	case Point:
		return t
	case *Point:
		if t != nil {
			return *t
		}
	case map[string]interface{}:
		x, okx := toNumber(t["x"])
		y, oky := toNumber(t["y"])
		if okx && oky {
			return Point{X: x, Y: y}
		}
	}
	return nil
}

func (n normalizer) CodeOutput(question.Question, question.CodeOutput) interface{} {
	switch t := n.raw.(type) {
	case CodeRun:
		return t
	case *CodeRun:
		if t != nil {
			return *t
		}
	case map[string]interface{}:
		code, _ := t["code"].(string)
		out, _ := t["output"].(string)
		return CodeRun{Code: code, Output: out}
	}
	return nil
}

func (n normalizer) ShortAnswer(question.Question, question.ShortAnswer) interface{} {
	return toText(n.raw)
}

func (n normalizer) LongAnswer(question.Question, question.LongAnswer) interface{} {
	return toText(n.raw)
}

func (n normalizer) OpenEnded(question.Question, question.OpenEnded) interface{} {
	return toText(n.raw)
}

func (n normalizer) FileUpload(question.Question, question.FileUpload) interface{} {
	switch t := n.raw.(type) {
	case FileRef:
		return t
	case *FileRef:
		if t != nil {
			return *t
		}
	case map[string]interface{}:
		name, _ := t["name"].(string)
		if name == "" {
			return nil
		}
		typ, _ := t["type"].(string)
		size, _ := toNumber(t["size"])
		return FileRef{Name: name, Size: int64(size), Type: typ}
	}
	return nil
}

func (n normalizer) Unknown(question.Question, question.Unknown) interface{} {
	return n.raw
}

// --- coercion helpers ---

func toNumber(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toIndex accepts only numeric values with no fractional part.
func toIndex(v interface{}) (int, bool) {
	if _, isStr := v.(string); isStr {
		return 0, false
	}
	f, ok := toNumber(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func toIndexList(v interface{}) ([]int, bool) {
	switch t := v.(type) {
	case []int:
		out := make([]int, len(t))
		copy(out, t)
		return out, true
	case []interface{}:
		out := make([]int, 0, len(t))
		for _, e := range t {
			i, ok := toIndex(e)
			if !ok {
				return nil, false
			}
			out = append(out, i)
		}
		return out, true
	}
	return nil, false
}

func toIndexMap(v interface{}) (map[int]int, bool) {
	switch t := v.(type) {
	case map[int]int:
		out := make(map[int]int, len(t))
		for k, x := range t {
			out[k] = x
		}
		return out, true
	case map[string]int:
		out := make(map[int]int, len(t))
		for k, x := range t {
			if l, err := strconv.Atoi(k); err == nil {
				out[l] = x
			}
		}
		return out, true
	case map[string]interface{}:
		out := make(map[int]int, len(t))
		for k, x := range t {
			l, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if r, ok := toIndex(x); ok {
				out[l] = r
			}
		}
		return out, true
	}
	return nil, false
}

// toText accepts strings and renders plain numbers and booleans as text, so
// a numeric reply to a fill-in-blank still compares against its key.
func toText(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	if f, ok := toNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return nil
}

func sortedSet(list []int) []int {
	seen := make(map[int]struct{}, len(list))
	out := make([]int, 0, len(list))
	for _, i := range list {
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
