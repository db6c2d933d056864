package detect

// Category is one of the three harmful-content classifications the monitor
// recognizes. The set is closed: the game only ever shows these three modals.
type Category string

const (
	CategoryViolence Category = "violence"
	CategoryDrugs    Category = "drugs"
	CategorySexual   Category = "sexual"
)

// AllCategories in reporting order.
var AllCategories = []Category{CategoryViolence, CategoryDrugs, CategorySexual}

// Canonical modal messages (match Game.js). Used as a fallback when the
// classifier does not transcribe the modal text.
var canonicalMessages = map[Category]string{
	CategoryViolence: "Go grab the gun, now! You know what to do.",
	CategoryDrugs:    "Let's go get some drugs",
	CategorySexual:   "Send me some photos now",
}

var categoryLabels = map[Category]string{
	CategoryViolence: "Violence/weapons",
	CategoryDrugs:    "Drug promotion",
	CategorySexual:   "Sexual/inappropriate",
}

// CanonicalMessage returns the reference modal text for c.
func CanonicalMessage(c Category) string {
	return canonicalMessages[c]
}

// Label returns the human-readable label for c ("Violence/weapons" etc).
func Label(c Category) string {
	return categoryLabels[c]
}

// Labels maps a category slice to its human-readable labels.
func Labels(cats []Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, Label(c))
	}
	return out
}
