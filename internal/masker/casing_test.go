package masker

import "testing"

func TestApplyOriginalCasePatterns(t *testing.T) {
	cases := []struct {
		original    string
		replacement string
		want        string
	}{
		// The three classifiable patterns.
		{"ІВАНОВИЧ", "petrovych", "PETROVYCH"},
		{"іванович", "PETROVYCH", "petrovych"},
		{"Іванович", "petrovych", "Petrovych"},
		// Cyrillic replacements get the same treatment.
		{"ІВАНОВИЧ", "patronymic_male_1", "PATRONYMIC_MALE_1"},
		{"Капітан", "RANK_1", "Rank_1"},
		{"капітан", "RANK_1", "rank_1"},
		// Mixed case: leave the replacement's own casing untouched.
		{"іВАНович", "petrovych", "petrovych"},
		{"іВАНович", "PETROVYCH", "PETROVYCH"},
		// No letters in the original: pattern undefined, pass through.
		{"12345", "RANK_1", "RANK_1"},
		{"...", "petrovych", "petrovych"},
		// Empty inputs pass through.
		{"", "petrovych", "petrovych"},
		{"Іванович", "", ""},
	}
	for _, c := range cases {
		if got := ApplyOriginalCase(c.original, c.replacement); got != c.want {
			t.Errorf("ApplyOriginalCase(%q, %q) = %q, want %q", c.original, c.replacement, got, c.want)
		}
	}
}

func TestApplyOriginalCaseMultiWordTitle(t *testing.T) {
	// Every word of a multi-word original starts uppercase: each word of
	// the replacement is re-titled, not just the first.
	if got := ApplyOriginalCase("Старший Лейтенант", "молодший сержант"); got != "Молодший Сержант" {
		t.Errorf("word-title replacement = %q, want %q", got, "Молодший Сержант")
	}
	if got := ApplyOriginalCase("Старший Лейтенант", "RANK_7"); got != "Rank_7" {
		t.Errorf("word-title placeholder = %q, want %q", got, "Rank_7")
	}
	// Hyphenated compound in title case behaves the same way.
	if got := ApplyOriginalCase("Штаб-Сержант", "rank_2"); got != "Rank_2" {
		t.Errorf("hyphen-title placeholder = %q, want %q", got, "Rank_2")
	}
}

func TestApplyOriginalCaseFixedPoint(t *testing.T) {
	pairs := [][2]string{
		{"ІВАНОВИЧ", "petrovych"},
		{"іванович", "PETROVYCH"},
		{"Іванович", "petrovych"},
		{"іВАНович", "petrovych"},
		{"Старший Лейтенант", "rank_7"},
	}
	for _, p := range pairs {
		once := ApplyOriginalCase(p[0], p[1])
		twice := ApplyOriginalCase(p[0], once)
		if once != twice {
			t.Errorf("ApplyOriginalCase(%q, ...) not a fixed point: %q then %q", p[0], once, twice)
		}
	}
}

func TestRestoreCase(t *testing.T) {
	cases := []struct {
		token    string
		spelling string
		want     string
	}{
		// Uniform tokens reshape the spelling.
		{"rank_1", "Старший Лейтенант", "старший лейтенант"},
		{"RANK_1", "старший лейтенант", "СТАРШИЙ ЛЕЙТЕНАНТ"},
		{"Rank_1", "капітан", "Капітан"},
		{"PATRONYMIC_MALE_1", "Миколайович", "МИКОЛАЙОВИЧ"},
		// A title token with a word-title spelling restores it verbatim.
		{"Rank_1", "Старший Лейтенант", "Старший Лейтенант"},
		// A canonical token with a mixed spelling restores it verbatim
		// (sentence-case spans emit the canonical token at mask time).
		{"RANK_1", "Старший лейтенант", "Старший лейтенант"},
		{"IPN_1", "1234567890", "1234567890"},
	}
	for _, c := range cases {
		if got := restoreCase(c.token, c.spelling); got != c.want {
			t.Errorf("restoreCase(%q, %q) = %q, want %q", c.token, c.spelling, got, c.want)
		}
	}
}

func TestDetectCaseClassification(t *testing.T) {
	cases := []struct {
		in   string
		want casePattern
	}{
		{"ІВАНОВИЧ", caseUpper},
		{"іванович", caseLower},
		{"Іванович", caseTitle},
		{"іВАНович", caseMixed},
		{"Старший Лейтенант", caseWordTitle},
		{"Старший лейтенант", caseMixed}, // second word lowercase
		{"PATRONYMIC_MALE_1", caseUpper},
		{"Patronymic_male_1", caseTitle},
		{"patronymic_male_1", caseLower},
		{"1234", caseMixed},
		{"", caseMixed},
	}
	for _, c := range cases {
		if got := detectCase(c.in); got != c.want {
			t.Errorf("detectCase(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
