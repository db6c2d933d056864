package detect

import "time"

// Point is a screen coordinate suggested by the classifier.
type Point struct {
	X int
	Y int
}

// Verdict is the untrusted output of one classification call, already pulled
// out of the LLM's JSON but not yet mapped onto a Category. It is consumed by
// Normalize and discarded.
type Verdict struct {
	HasModal  bool
	RawType   string
	RawLabel  string
	ModalText string
	Rationale string
	Semantic  string
	CloseHint *Point
}

// Record is one confirmed sighting of harmful content. Created once per
// category, never mutated afterwards.
type Record struct {
	Category       Category
	ObservedAt     time.Time
	ModalText      string
	Rationale      string
	Label          string
	Semantic       string
	ScreenshotPath string
}

// NewRecord builds a Record from a verdict, filling empty classifier fields
// with the canonical fallbacks for the category.
func NewRecord(c Category, v Verdict, now time.Time) Record {
	rec := Record{
		Category:   c,
		ObservedAt: now,
		ModalText:  v.ModalText,
		Rationale:  v.Rationale,
		Label:      v.RawLabel,
		Semantic:   v.Semantic,
	}
	if rec.ModalText == "" {
		rec.ModalText = CanonicalMessage(c)
	}
	if rec.Rationale == "" {
		rec.Rationale = "violates terms of service"
	}
	if rec.Label == "" {
		rec.Label = Label(c)
	}
	if rec.Semantic == "" {
		rec.Semantic = "This content promotes harmful behavior which violates game terms of service"
	}
	return rec
}
