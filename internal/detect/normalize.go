package detect

import (
	"strings"
	"unicode"
)

// typeAliases covers near-exact spellings of the canonical tags that the
// classifier commonly returns (singular/plural/compound variants).
var typeAliases = map[string]Category{
	"violence":             CategoryViolence,
	"violent":              CategoryViolence,
	"weapon":               CategoryViolence,
	"weapons":              CategoryViolence,
	"violence/weapons":     CategoryViolence,
	"drugs":                CategoryDrugs,
	"drug":                 CategoryDrugs,
	"drug promotion":       CategoryDrugs,
	"sexual":               CategorySexual,
	"sex":                  CategorySexual,
	"inappropriate":        CategorySexual,
	"sexual/inappropriate": CategorySexual,
	"sexual content":       CategorySexual,
}

// Normalize maps the classifier's free-form type/label/text fields onto one
// of the three categories. Ordered, first match wins:
//
//  1. alias match on the raw type
//  2. substring match across type + label
//  3. keyword inference from the modal text
//  4. single-remaining fallback: with exactly one category still undetected,
//     assume the verdict refers to it
//
// If nothing matches, ok is false and the caller must NOT substitute an
// already-detected category; doing so would look like a re-detection and
// could mask the true remaining category forever.
func Normalize(rawType, rawLabel, rawText string, remaining []Category) (Category, bool) {
	t := strings.ToLower(strings.TrimSpace(rawType))

	if c, ok := typeAliases[t]; ok {
		return c, true
	}

	combined := t + " " + strings.ToLower(rawLabel)
	switch {
	case strings.Contains(combined, "drug"):
		return CategoryDrugs, true
	case strings.Contains(combined, "sexual"), strings.Contains(combined, "inappropriate"):
		return CategorySexual, true
	case strings.Contains(combined, "violence"), strings.Contains(combined, "weapon"):
		return CategoryViolence, true
	}

	if c, ok := inferFromText(rawText); ok {
		return c, true
	}

	if len(remaining) == 1 {
		return remaining[0], true
	}

	return "", false
}

// inferFromText guesses a category from the transcribed modal text alone.
// Keywords match whole words only: "meth" must not fire on "something" or
// "method", "gun" must not fire on "begun".
func inferFromText(text string) (Category, bool) {
	words := wordSet(text)
	if len(words) == 0 {
		return "", false
	}
	switch {
	case hasAnyWord(words, "photo", "photos", "nude", "nudes", "sexy", "explicit"):
		return CategorySexual, true
	case hasAnyWord(words, "gun", "guns", "shoot", "weapon", "weapons", "kill", "hurt"):
		return CategoryViolence, true
	case hasAnyWord(words, "drug", "drugs", "weed", "meth", "cocaine", "pill", "pills", "high"):
		return CategoryDrugs, true
	}
	return "", false
}

func wordSet(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(fields))
	for _, w := range fields {
		out[w] = true
	}
	return out
}

func hasAnyWord(words map[string]bool, keys ...string) bool {
	for _, k := range keys {
		if words[k] {
			return true
		}
	}
	return false
}
