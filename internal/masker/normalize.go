package masker

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var valueReplacer = strings.NewReplacer(
	"ʼ", "'", "’", "'", "`", "'", // apostrophe variants used in Ukrainian text
	" ", " ", // NBSP
	".", " ",
	";", " ",
)

// NormalizeValue produces the case-insensitive dictionary key for
// free-text categories (names, patronymics, ranks): NFC fold, lowercase,
// apostrophe and punctuation unification, whitespace collapse. The same
// value in any casing or spacing yields the same key, which is what makes
// "same original → same placeholder" hold.
func NormalizeValue(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = cases.Lower(language.Ukrainian).String(s)
	s = valueReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeIdentifier canonicalizes identifier-shaped values (military IDs
// and the like) for format validation: NFC fold, uppercase, separator
// stripping. Dictionary keys for identifiers keep their exact spelling;
// this form is only used to check the shape.
func NormalizeIdentifier(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = cases.Upper(language.Ukrainian).String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '.', ' ':
			return -1
		}
		return r
	}, s)
}
