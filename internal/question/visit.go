package question

// Visitor has one method per question variant. Adding a variant adds a
// method here, so every grading or seeding rule fails to compile until it
// handles the new type.
type Visitor[T any] interface {
	SingleChoice(q Question, p SingleChoice) T
	TrueFalse(q Question, p TrueFalse) T
	MultiSelect(q Question, p MultiSelect) T
	Matching(q Question, p Matching) T
	Ordering(q Question, p Ordering) T
	FillBlank(q Question, p FillBlank) T
	Calculation(q Question, p Calculation) T
	Hotspot(q Question, p Hotspot) T
	CodeOutput(q Question, p CodeOutput) T
	ShortAnswer(q Question, p ShortAnswer) T
	LongAnswer(q Question, p LongAnswer) T
	OpenEnded(q Question, p OpenEnded) T
	FileUpload(q Question, p FileUpload) T
	Unknown(q Question, p Unknown) T
}

// Visit dispatches q to the method matching its payload. A nil payload is
// reported as Unknown.
func Visit[T any](q Question, v Visitor[T]) T {
	switch p := q.Payload.(type) {
	case SingleChoice:
		return v.SingleChoice(q, p)
	case TrueFalse:
		return v.TrueFalse(q, p)
	case MultiSelect:
		return v.MultiSelect(q, p)
	case Matching:
		return v.Matching(q, p)
	case Ordering:
		return v.Ordering(q, p)
	case FillBlank:
		return v.FillBlank(q, p)
	case Calculation:
		return v.Calculation(q, p)
	case Hotspot:
		return v.Hotspot(q, p)
	case CodeOutput:
		return v.CodeOutput(q, p)
	case ShortAnswer:
		return v.ShortAnswer(q, p)
	case LongAnswer:
		return v.LongAnswer(q, p)
	case OpenEnded:
		return v.OpenEnded(q, p)
	case FileUpload:
		return v.FileUpload(q, p)
	case Unknown:
		return v.Unknown(q, p)
	default:
		return v.Unknown(q, Unknown{})
	}
}
