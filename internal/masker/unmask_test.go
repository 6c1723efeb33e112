package masker

import "testing"

func TestUnmaskUnknownPlaceholderPassthrough(t *testing.T) {
	d := NewDictionary()
	in := "Hello XYZ_99 world"
	if got := Unmask(in, d); got != in {
		t.Errorf("Unmask(%q) = %q, want unchanged", in, got)
	}
}

func TestUnmaskRestoresTokenCasing(t *testing.T) {
	d := NewDictionary()
	for _, in := range []string{"Миколайович", "миколайович", "МИКОЛАЙОВИЧ"} {
		masked, err := MaskPatronymic(in, GenderMale, d)
		if err != nil {
			t.Fatalf("MaskPatronymic(%q): %v", in, err)
		}
		if got := Unmask(masked, d); got != in {
			t.Errorf("Unmask(Mask(%q)) = %q, want the original back", in, got)
		}
	}
}

func TestUnmaskMixedKnownAndUnknown(t *testing.T) {
	d := NewDictionary()
	if _, err := MaskRank("капітан", d); err != nil {
		t.Fatal(err)
	}

	got, restored, unknown := unmaskCounting("звання rank_1, токен ALIEN_7", d)
	if want := "звання капітан, токен ALIEN_7"; got != want {
		t.Errorf("unmasked = %q, want %q", got, want)
	}
	if restored != 1 || unknown != 1 {
		t.Errorf("restored=%d unknown=%d, want 1 and 1", restored, unknown)
	}
}

func TestUnmaskEmptyDictionaryCountsUnknown(t *testing.T) {
	got, restored, unknown := unmaskCounting("SURNAME_1 і NAME_2", NewDictionary())
	if got != "SURNAME_1 і NAME_2" {
		t.Errorf("text rewritten with empty dictionary: %q", got)
	}
	if restored != 0 || unknown != 2 {
		t.Errorf("restored=%d unknown=%d, want 0 and 2", restored, unknown)
	}
}

func TestUnmaskIgnoresNonPlaceholderTokens(t *testing.T) {
	d := NewDictionary()
	if _, err := MaskRank("капітан", d); err != nil {
		t.Fatal(err)
	}
	// Words without a trailing _N are not placeholder-shaped.
	in := "RANK і RANK_ та rank_x"
	if got := Unmask(in, d); got != in {
		t.Errorf("Unmask(%q) = %q, want unchanged", in, got)
	}
}
