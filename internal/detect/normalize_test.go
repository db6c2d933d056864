package detect

import "testing"

func TestNormalizeCanonicalInputs(t *testing.T) {
	anyRemaining := []Category{CategoryViolence, CategoryDrugs, CategorySexual}

	tests := []struct {
		rawType, rawLabel, rawText string
		want                       Category
	}{
		{"drugs", "Drug promotion", "Let's go get some drugs", CategoryDrugs},
		{"sexual", "Sexual/inappropriate", "Send me some photos now", CategorySexual},
		{"violence", "Violence/weapons", "Go grab the gun, now!", CategoryViolence},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.rawType, tt.rawLabel, tt.rawText, anyRemaining)
		if !ok || got != tt.want {
			t.Errorf("Normalize(%q, %q, %q) = %q, %v; want %q", tt.rawType, tt.rawLabel, tt.rawText, got, ok, tt.want)
		}
	}
}

func TestNormalizeVariants(t *testing.T) {
	rem := AllCategories

	tests := []struct {
		rawType string
		want    Category
	}{
		{"drug", CategoryDrugs},
		{"weapons", CategoryViolence},
		{"Violence/Weapons", CategoryViolence},
		{"inappropriate", CategorySexual},
		{"  SEXUAL  ", CategorySexual},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.rawType, "", "", rem)
		if !ok || got != tt.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", tt.rawType, got, ok, tt.want)
		}
	}
}

func TestNormalizeSubstringAcrossTypeAndLabel(t *testing.T) {
	got, ok := Normalize("harmful content", "this modal promotes drug use", "", AllCategories)
	if !ok || got != CategoryDrugs {
		t.Fatalf("got %q, %v; want drugs", got, ok)
	}

	got, ok = Normalize("warning", "Inappropriate request", "", AllCategories)
	if !ok || got != CategorySexual {
		t.Fatalf("got %q, %v; want sexual", got, ok)
	}
}

func TestNormalizeFromTextOnly(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"Send me some nude photos", CategorySexual},
		{"Go grab the gun, now! You know what to do.", CategoryViolence},
		{"You should do lots of drugs", CategoryDrugs},
	}
	for _, tt := range tests {
		got, ok := Normalize("???", "", tt.text, AllCategories)
		if !ok || got != tt.want {
			t.Errorf("Normalize(text=%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
		}
	}
}

func TestNormalizeSingleRemainingFallback(t *testing.T) {
	// violence and drugs already closed, only sexual left; the classifier
	// returned an unrecognizable type.
	got, ok := Normalize("???", "", "", []Category{CategorySexual})
	if !ok || got != CategorySexual {
		t.Fatalf("got %q, %v; want sexual", got, ok)
	}
}

func TestNormalizeUnresolvedNeverDefaults(t *testing.T) {
	// Two categories remain and nothing matches: must stay unresolved rather
	// than guessing (the old behavior defaulted to violence).
	if got, ok := Normalize("???", "", "something unreadable", []Category{CategoryDrugs, CategorySexual}); ok {
		t.Fatalf("expected unresolved, got %q", got)
	}

	if _, ok := Normalize("", "", "", nil); ok {
		t.Fatal("empty verdict with no remaining categories must stay unresolved")
	}
}

func TestNormalizeKeywordsMatchWholeWordsOnly(t *testing.T) {
	// Keywords embedded inside larger words must not resolve a category:
	// "meth" in "something"/"method", "high" in "highlight", "gun" in
	// "begun".
	for _, text := range []string{
		"something unreadable",
		"a method to win the game",
		"the highlight reel has begun",
	} {
		if got, ok := Normalize("???", "", text, AllCategories); ok {
			t.Errorf("Normalize(text=%q) = %q; want unresolved", text, got)
		}
	}

	// The same tokens as standalone words still match.
	if got, ok := Normalize("???", "", "get high with us", AllCategories); !ok || got != CategoryDrugs {
		t.Errorf(`Normalize(text="get high with us") = %q, %v; want drugs`, got, ok)
	}
	if got, ok := Normalize("???", "", "the gun is loaded", AllCategories); !ok || got != CategoryViolence {
		t.Errorf(`Normalize(text="the gun is loaded") = %q, %v; want violence`, got, ok)
	}
}

func TestNormalizeMatchedTypeWinsOverFallback(t *testing.T) {
	// Even with one category remaining, an explicit type match takes
	// priority; the collision is then handled by the controller's recheck.
	got, ok := Normalize("violence", "", "", []Category{CategorySexual})
	if !ok || got != CategoryViolence {
		t.Fatalf("got %q, %v; want violence", got, ok)
	}
}
