package masker

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// casePattern is the result of classifying a string's letter casing.
type casePattern int

const (
	caseMixed casePattern = iota // irregular, or no letters at all
	caseUpper                    // every letter uppercase
	caseLower                    // every letter lowercase
	caseTitle                    // first letter uppercase, the rest lowercase
	caseWordTitle                // multi-word, every word starts uppercase
)

// detectCase classifies s into one of the case patterns, evaluated in
// priority order: upper, lower, title, word-title, mixed. Strings without
// letters are mixed — their pattern is undefined and must not be imposed
// on a replacement.
func detectCase(s string) casePattern {
	var hasUpper, hasLower bool
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		} else if unicode.IsLower(r) {
			hasLower = true
		}
	}
	switch {
	case !hasUpper && !hasLower:
		return caseMixed
	case !hasLower:
		return caseUpper
	case !hasUpper:
		return caseLower
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '-' })
	if len(words) == 1 {
		if firstLetterUpperRestLower(s) {
			return caseTitle
		}
		return caseMixed
	}
	for _, w := range words {
		if !startsUpper(w) {
			return caseMixed
		}
	}
	return caseWordTitle
}

func startsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

func firstLetterUpperRestLower(s string) bool {
	seenFirst := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !seenFirst {
			if !unicode.IsUpper(r) {
				return false
			}
			seenFirst = true
			continue
		}
		if !unicode.IsLower(r) {
			return false
		}
	}
	return seenFirst
}

// ApplyOriginalCase returns replacement reshaped to the case pattern of
// original, so the substitution looks like a natural continuation of the
// source text:
//
//	ІВАНОВИЧ + petrovych → PETROVYCH
//	іванович + PETROVYCH → petrovych
//	Іванович + petrovych → Petrovych
//	Старший Лейтенант + rank_7 → Rank_7 (each word re-titled)
//
// Mixed or letterless originals, and empty inputs, leave replacement
// untouched. The function is pure and reapplying it with its own output
// as the replacement is a fixed point.
func ApplyOriginalCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	switch detectCase(original) {
	case caseUpper:
		return cases.Upper(language.Ukrainian).String(replacement)
	case caseLower:
		return cases.Lower(language.Ukrainian).String(replacement)
	case caseTitle:
		return titleFirst(replacement)
	case caseWordTitle:
		lowered := cases.Lower(language.Ukrainian).String(replacement)
		return cases.Title(language.Ukrainian).String(lowered)
	default:
		return replacement
	}
}

// restoreCase maps a placeholder token's observed casing back onto the
// stored first-seen spelling of the value it replaced. Placeholder tokens
// are single ASCII words, so only three patterns are distinguishable:
//
//	lower (rank_1)  → the span was lowercase: lowercase the spelling
//	title (Rank_1)  → single-word Title spans and multi-word Title Case
//	                  spans both emit this; a Title Case spelling is
//	                  restored verbatim, otherwise first-letter title
//	upper (RANK_1)  → the canonical form, emitted by uppercase spans and
//	                  by mixed spans left unshaped at mask time; a mixed
//	                  spelling is restored verbatim, otherwise uppercased
//
// When the document's span casing differs from the stored spelling in a
// way the token cannot carry (two distinct mixed spellings of one value),
// the first-seen spelling wins.
func restoreCase(token, spelling string) string {
	switch detectCase(token) {
	case caseLower:
		return cases.Lower(language.Ukrainian).String(spelling)
	case caseTitle:
		if detectCase(spelling) == caseWordTitle {
			return spelling
		}
		return titleFirst(spelling)
	case caseUpper:
		if detectCase(spelling) == caseMixed {
			return spelling
		}
		return cases.Upper(language.Ukrainian).String(spelling)
	default:
		return spelling
	}
}

// titleFirst lowercases replacement and uppercases its first letter only.
func titleFirst(s string) string {
	lowered := cases.Lower(language.Ukrainian).String(s)
	for i, r := range lowered {
		if unicode.IsLetter(r) {
			return lowered[:i] + string(unicode.ToUpper(r)) + lowered[i+len(string(r)):]
		}
	}
	return lowered
}
