package masker

import (
	"errors"
	"strings"
	"testing"

	"ukr-pii-masker/internal/metrics"
)

func newTestMasker() *Masker {
	return New(DefaultOptions(), nil, nil)
}

func TestMaskTextDocumentRoundTrip(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	doc := "старший лейтенант Іванов Петро Миколайович, ІПН 1234567890, " +
		"в/ч А0588, наказ № 123 від 01.02.2023."

	masked, err := m.MaskText(doc, d)
	if err != nil {
		t.Fatalf("MaskText: %v", err)
	}

	for _, leaked := range []string{
		"Іванов", "Петро", "Миколайович", "старший лейтенант",
		"1234567890", "А0588", "01.02.2023",
	} {
		if strings.Contains(masked, leaked) {
			t.Errorf("masked text still contains %q: %s", leaked, masked)
		}
	}
	for _, token := range []string{
		"Surname_1", "Name_1", "Patronymic_male_1", "rank_1",
		"IPN_1", "MILITARY_UNIT_1", "ORDER_NUMBER_1", "DATE_1",
	} {
		if !strings.Contains(masked, token) {
			t.Errorf("masked text missing %q: %s", token, masked)
		}
	}

	if restored := m.UnmaskText(masked, d); restored != doc {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", restored, doc)
	}
}

func TestMaskTextRepeatedValuesShareTokens(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	doc := "Іванов Петро Миколайович доповів. Іванов Петро Миколайович вибув."
	masked, err := m.MaskText(doc, d)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(masked, "Surname_1"); n != 2 {
		t.Errorf("Surname_1 appears %d times, want 2: %s", n, masked)
	}
	if strings.Contains(masked, "SURNAME_2") || strings.Contains(masked, "Surname_2") {
		t.Errorf("second occurrence minted a new placeholder: %s", masked)
	}
	if d.Count(CategorySurname) != 1 {
		t.Errorf("surname counter = %d, want 1", d.Count(CategorySurname))
	}
}

func TestMaskTextGluesLineBrokenRanks(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	masked, err := m.MaskText("підпис: старшого\nсержанта Петренка", d)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(masked, "сержант") {
		t.Errorf("line-broken rank not masked: %s", masked)
	}
	if _, ok := d.Lookup(CategoryRank, "старшого сержанта"); !ok {
		t.Errorf("glued rank missing from dictionary, got categories %v", d.Categories())
	}
}

func TestMaskTextRankStemDoesNotEatSurnames(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	// "Майоров" carries the "майор" stem but is a surname, not a rank.
	masked, err := m.MaskText("доповідь підготував Майоров", d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(masked, "Майоров") {
		t.Errorf("surname swallowed by the rank pass: %s", masked)
	}
	if d.Count(CategoryRank) != 0 {
		t.Errorf("rank counter = %d, want 0", d.Count(CategoryRank))
	}
}

func TestMaskTextSkipsNonNameTriples(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	// Three capitalized words whose last word is not patronymic-shaped.
	doc := "Збройні Сили України відповіли"
	masked, err := m.MaskText(doc, d)
	if err != nil {
		t.Fatal(err)
	}
	if masked != doc {
		t.Errorf("non-name triple rewritten: %q", masked)
	}
}

func TestMaskTextUppercaseFullName(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	masked, err := m.MaskText("ІВАНОВ ПЕТРО МИКОЛАЙОВИЧ", d)
	if err != nil {
		t.Fatal(err)
	}
	if want := "SURNAME_1 NAME_1 PATRONYMIC_MALE_1"; masked != want {
		t.Errorf("masked = %q, want %q", masked, want)
	}
}

func TestMaskTextFemaleFullName(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	masked, err := m.MaskText("Шевченко Олена Петрівна", d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(masked, "Patronymic_female_1") {
		t.Errorf("female patronymic not tagged: %s", masked)
	}
}

func TestMaskTextInvalidValuesPassThrough(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	doc := "дата 31.02.2023, номер 12345"
	masked, err := m.MaskText(doc, d)
	if err != nil {
		t.Fatal(err)
	}
	if masked != doc {
		t.Errorf("invalid values rewritten: %q", masked)
	}
	if d.Len() != 0 {
		t.Errorf("dictionary gained %d entries from invalid input", d.Len())
	}
}

func TestMaskTextPreserveCaseDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.PreserveCase = false
	m := New(opts, nil, nil)
	d := NewDictionary()

	masked, err := m.MaskText("звання Капітан", d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(masked, "RANK_1") {
		t.Errorf("placeholder not emitted in canonical form: %s", masked)
	}
}

func TestMaskTextDisabledPasses(t *testing.T) {
	opts := DefaultOptions()
	opts.MaskRanks = false
	opts.MaskNames = false
	m := New(opts, nil, nil)
	d := NewDictionary()

	doc := "капітан Іванов Петро Миколайович, ІПН 1234567890"
	masked, err := m.MaskText(doc, d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(masked, "капітан Іванов Петро Миколайович") {
		t.Errorf("disabled passes still rewrote text: %s", masked)
	}
	if !strings.Contains(masked, "IPN_1") {
		t.Errorf("identifier pass should stay active: %s", masked)
	}
}

func TestMaskTextCollisionKeepsOriginalAndReports(t *testing.T) {
	met := metrics.New()
	m := New(DefaultOptions(), nil, met)
	d, err := Restore(map[Category]map[string]string{
		CategoryRank: {"сержант": "RANK_2"},
	}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	masked, err := m.MaskText("звання капітан", d)
	if !errors.Is(err, ErrPlaceholderCollision) {
		t.Fatalf("err = %v, want ErrPlaceholderCollision", err)
	}
	if !strings.Contains(masked, "капітан") {
		t.Errorf("collided span dropped from output: %s", masked)
	}
	if got := met.Collisions.Load(); got != 1 {
		t.Errorf("collision counter = %d, want 1", got)
	}
}

func TestMaskTextRoundTripMultiWordCasings(t *testing.T) {
	m := newTestMasker()

	// Title Case and sentence-case multi-word spans collapse to the same
	// placeholder shapes as single-word spans; the stored spelling is what
	// brings the exact text back.
	for _, doc := range []string{
		"Старший Лейтенант Іванов",
		"Старший лейтенант на місці",
		"СТАРШИЙ ЛЕЙТЕНАНТ",
		"старший лейтенант",
	} {
		d := NewDictionary()
		masked, err := m.MaskText(doc, d)
		if err != nil {
			t.Fatalf("MaskText(%q): %v", doc, err)
		}
		for _, leaked := range []string{"лейтенант", "Лейтенант", "ЛЕЙТЕНАНТ"} {
			if strings.Contains(masked, leaked) {
				t.Errorf("rank not masked in %q: %s", doc, masked)
			}
		}
		if restored := m.UnmaskText(masked, d); restored != doc {
			t.Errorf("round trip mismatch for %q:\n got %q", doc, restored)
		}
	}
}

func TestMaskTextRoundTripCrossCasingOccurrences(t *testing.T) {
	m := newTestMasker()
	d := NewDictionary()

	// One value, two uniform casings in one document: each token carries
	// its own span's casing home.
	doc := "старший лейтенант і СТАРШИЙ ЛЕЙТЕНАНТ"
	masked, err := m.MaskText(doc, d)
	if err != nil {
		t.Fatal(err)
	}
	if d.Count(CategoryRank) != 1 {
		t.Fatalf("rank counter = %d, want 1", d.Count(CategoryRank))
	}
	if restored := m.UnmaskText(masked, d); restored != doc {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", restored, doc)
	}
}

func TestMaskSpanCollisionCountsMetric(t *testing.T) {
	met := metrics.New()
	m := New(DefaultOptions(), nil, met)
	d, err := Restore(map[Category]map[string]string{
		CategoryRank: {"сержант": "RANK_2"},
	}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = m.MaskSpan(CategoryRank, "капітан", GenderUnknown, d)
	if !errors.Is(err, ErrPlaceholderCollision) {
		t.Fatalf("err = %v, want ErrPlaceholderCollision", err)
	}
	if got := met.Collisions.Load(); got != 1 {
		t.Errorf("collision counter = %d, want 1", got)
	}
}

func TestMaskSpanUnknownGenderRecordsFallback(t *testing.T) {
	met := metrics.New()
	m := New(DefaultOptions(), nil, met)
	d := NewDictionary()

	masked, err := m.MaskSpan(CategoryPatronymic, "Іванович", GenderUnknown, d)
	if err != nil {
		t.Fatalf("MaskSpan: %v", err)
	}
	if masked != "Patronymic_1" {
		t.Errorf("masked = %q, want the neutral tag", masked)
	}
	if got := met.GenderFallbacks.Load(); got != 1 {
		t.Errorf("gender fallback counter = %d, want 1", got)
	}
}

func TestMaskTextEmptyInput(t *testing.T) {
	m := newTestMasker()
	masked, err := m.MaskText("", NewDictionary())
	if err != nil || masked != "" {
		t.Errorf("MaskText(\"\") = %q, %v; want \"\", nil", masked, err)
	}
}
