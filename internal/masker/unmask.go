package masker

import (
	"regexp"
	"strings"
)

// placeholderRE matches the synthesized token grammar TAG[_TAG...]_N.
// Matching is case-insensitive: masked output carries placeholders in
// whatever casing the original span imposed (patronymic_male_1,
// Patronymic_male_1, PATRONYMIC_MALE_1 are all the same token).
var placeholderRE = regexp.MustCompile(`(?i)\b[A-Z]+(?:_[A-Z]+)*_\d+\b`)

// Unmask restores original values in a masked document. Each placeholder
// is canonicalized to uppercase for the reverse lookup, which yields the
// first-seen exact spelling of the value; the token's own observed case
// pattern then decides how that spelling is reshaped (see restoreCase) —
// a lowercased placeholder came from a lowercase span, a canonical one
// from an uppercase or mixed span.
//
// Placeholders missing from the dictionary pass through verbatim:
// unmasking is safe on partially-masked or foreign text and never fails.
func Unmask(text string, d *Dictionary) string {
	out, _, _ := unmaskCounting(text, d)
	return out
}

func unmaskCounting(text string, d *Dictionary) (out string, restored, unknown int) {
	if text == "" || d == nil || d.Len() == 0 {
		if text != "" {
			unknown = len(placeholderRE.FindAllString(text, -1))
		}
		return text, 0, unknown
	}
	out = placeholderRE.ReplaceAllStringFunc(text, func(token string) string {
		original, ok := d.Resolve(strings.ToUpper(token))
		if !ok {
			unknown++
			return token
		}
		restored++
		return restoreCase(token, original)
	})
	return out, restored, unknown
}
