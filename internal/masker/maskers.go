package masker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// maskValue is the shared substitution path: look up or mint a placeholder
// for key under cat, then reshape it to the case pattern of original.
// A value that normalizes to an empty key (pure punctuation) degrades to
// pass-through. On collision the original value is returned untouched
// alongside the error so a caller that ignores the error never drops PII
// silently.
func maskValue(d *Dictionary, cat Category, key, original string, preserveCase bool) (string, bool, error) {
	if key == "" {
		return original, false, nil
	}
	placeholder, isNew, err := d.GetOrCreatePlaceholder(cat, key, original)
	if err != nil {
		return original, false, err
	}
	if !preserveCase {
		return placeholder, isNew, nil
	}
	return ApplyOriginalCase(original, placeholder), isNew, nil
}

// MaskPatronymic replaces a patronymic with a gender-tagged placeholder.
// Gender folds into the category key (patronymic_male / patronymic_female);
// an unrecognized gender falls back to the neutral patronymic category
// rather than failing. Empty input is a no-op.
func MaskPatronymic(value string, gender Gender, d *Dictionary) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	masked, _, err := maskValue(d, patronymicCategory(gender), NormalizeValue(value), value, true)
	return masked, err
}

// MaskRank replaces a military or official rank with a RANK_N placeholder.
// The dictionary key is case-normalized, so КАПІТАН, Капітан and капітан
// all share one placeholder and differ only in the applied casing.
func MaskRank(value string, d *Dictionary) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryRank, NormalizeValue(value), value, true)
	return masked, err
}

// MaskSurname replaces a surname with a SURNAME_N placeholder.
func MaskSurname(value string, d *Dictionary) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	masked, _, err := maskValue(d, CategorySurname, NormalizeValue(value), value, true)
	return masked, err
}

// MaskGivenName replaces a given name with a NAME_N placeholder.
func MaskGivenName(value string, d *Dictionary) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryGivenName, NormalizeValue(value), value, true)
	return masked, err
}

// MaskIPN replaces a 10-digit tax number. Values that are not exactly ten
// digits are returned unchanged — format validation is pass-through, not
// an error. Identifier keys keep their exact spelling so unmasking
// restores them byte-for-byte.
func MaskIPN(value string, d *Dictionary) (string, error) {
	if !isDigits(value, 10) {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryIPN, value, value, true)
	return masked, err
}

// MaskPassportID replaces a 9-digit passport ID; non-conforming values
// pass through unchanged.
func MaskPassportID(value string, d *Dictionary) (string, error) {
	if !isDigits(value, 9) {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryPassportID, value, value, true)
	return masked, err
}

// MaskMilitaryID replaces a military ID of the form 123456, АБ 123456 or
// АБ-123456. Anything else passes through unchanged.
func MaskMilitaryID(value string, d *Dictionary) (string, error) {
	if !validMilitaryID(value) {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryMilitaryID, strings.TrimSpace(value), value, true)
	return masked, err
}

// MaskMilitaryUnit replaces a military unit code (А0000).
func MaskMilitaryUnit(value string, d *Dictionary) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryMilitaryUnit, strings.TrimSpace(value), value, true)
	return masked, err
}

// MaskDate replaces a dd.mm.yyyy date. Calendar-invalid dates pass through.
func MaskDate(value string, d *Dictionary) (string, error) {
	if !validDate(value) {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryDate, value, value, true)
	return masked, err
}

// MaskOrderNumber replaces an order/decree number (123, 45/2, 12-7).
func MaskOrderNumber(value string, d *Dictionary) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	masked, _, err := maskValue(d, CategoryOrderNumber, strings.TrimSpace(value), value, true)
	return masked, err
}

// MaskSpan masks one caller-identified span under the given category.
// This is the entry point for external span detectors: gender is consulted
// only for the patronymic category, and an unrecognized gender token is a
// recorded fallback to the neutral tag, never an error.
func (m *Masker) MaskSpan(cat Category, value string, gender Gender, d *Dictionary) (string, error) {
	var (
		masked string
		err    error
	)
	before := d.Len()
	switch cat {
	case CategoryPatronymic, CategoryPatronymicMale, CategoryPatronymicFemale:
		if gender == GenderUnknown && strings.TrimSpace(value) != "" {
			if m.met != nil {
				m.met.GenderFallbacks.Add(1)
			}
			if m.log != nil {
				m.log.Warnf("gender_fallback", "patronymic %q: unknown gender, using neutral tag", value)
			}
		}
		masked, err = MaskPatronymic(value, gender, d)
	case CategoryRank:
		masked, err = MaskRank(value, d)
	case CategorySurname:
		masked, err = MaskSurname(value, d)
	case CategoryGivenName:
		masked, err = MaskGivenName(value, d)
	case CategoryIPN:
		masked, err = MaskIPN(value, d)
	case CategoryPassportID:
		masked, err = MaskPassportID(value, d)
	case CategoryMilitaryID:
		masked, err = MaskMilitaryID(value, d)
	case CategoryMilitaryUnit:
		masked, err = MaskMilitaryUnit(value, d)
	case CategoryDate:
		masked, err = MaskDate(value, d)
	case CategoryOrderNumber:
		masked, err = MaskOrderNumber(value, d)
	default:
		return value, fmt.Errorf("unsupported category %q", cat)
	}
	if err != nil {
		if m.met != nil && errors.Is(err, ErrPlaceholderCollision) {
			m.met.Collisions.Add(1)
		}
		return masked, err
	}
	if m.met != nil && masked != value {
		m.met.RecordReplacement(string(cat), d.Len() > before)
	}
	return masked, nil
}

var (
	milIDShape = regexp.MustCompile(`^[` + cyrUpper + `A-Z]{2}\d{6}$|^\d{6}$`)
	digitsOnly = regexp.MustCompile(`^\d+$`)
	dateShape  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
)

func isDigits(s string, n int) bool {
	return len(s) == n && digitsOnly.MatchString(s)
}

// validMilitaryID checks the separator-insensitive ID shape:
// two uppercase letters (optional) followed by six digits.
func validMilitaryID(s string) bool {
	return milIDShape.MatchString(NormalizeIdentifier(s))
}

// validDate accepts dd.mm.yyyy strings that denote a real calendar date.
func validDate(s string) bool {
	parts := dateShape.FindStringSubmatch(s)
	if parts == nil {
		return false
	}
	day := atoi(parts[1])
	month := atoi(parts[2])
	year := atoi(parts[3])
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 {
		return false
	}
	daysIn := [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	max := daysIn[month-1]
	if month == 2 && year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		max = 29
	}
	return day <= max
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
