// Package masker de-identifies PII in free-form Ukrainian text.
// Every sensitive span is replaced with a reversible placeholder token
// (SURNAME_1, PATRONYMIC_MALE_2, ...) whose casing mirrors the span it
// replaced, so masked text stays visually consistent with the source.
//
// The engine has three layers:
//  1. ApplyOriginalCase — reshapes a placeholder to the case pattern of
//     the text it replaces (and, at unmask time, the reverse).
//  2. Dictionary — the per-document bidirectional original↔placeholder
//     store with per-category instance counters.
//  3. Category maskers — MaskPatronymic, MaskRank and siblings, which
//     normalize a value, mint or reuse a placeholder, and case it.
//
// A Masker ties the layers together into a whole-document scan: compiled
// patterns for structured identifiers (IPN, passport, military IDs,
// unit designators, dates, order numbers), a rank lexicon pass, and a
// full-name (surname / given name / patronymic) pass with gender
// inference from the patronymic suffix.
//
// Masking one document is sequential by design: each substitution depends
// on the dictionary state built by the previous ones. A Dictionary must
// never be shared between concurrently masked documents.
package masker

import (
	"regexp"
	"strings"

	"ukr-pii-masker/internal/logger"
	"ukr-pii-masker/internal/metrics"
)

// Category classifies the kind of PII a span belongs to. The category
// determines the placeholder tag and its instance counter.
type Category string

// Supported PII categories.
const (
	CategorySurname          Category = "surname"
	CategoryGivenName        Category = "name"
	CategoryPatronymic       Category = "patronymic" // gender-neutral fallback
	CategoryPatronymicMale   Category = "patronymic_male"
	CategoryPatronymicFemale Category = "patronymic_female"
	CategoryRank             Category = "rank"
	CategoryIPN              Category = "ipn"
	CategoryPassportID       Category = "passport_id"
	CategoryMilitaryID       Category = "military_id"
	CategoryMilitaryUnit     Category = "military_unit"
	CategoryDate             Category = "date"
	CategoryOrderNumber      Category = "order_number"
)

// Tag returns the uppercase placeholder tag for the category,
// e.g. "patronymic_male" → "PATRONYMIC_MALE".
func (c Category) Tag() string { return strings.ToUpper(string(c)) }

// Gender constrains which patronymic placeholder family is used.
// Ukrainian patronymics are gender-marked (-ович vs -івна endings), and an
// unmasking consumer needs to know which family a placeholder came from.
type Gender string

// Recognized gender tags. Anything else is treated as GenderUnknown.
const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps a free-form gender token to a Gender. Unrecognized
// tokens map to GenderUnknown — masking stays total on bad input.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "чоловічий":
		return GenderMale
	case "female", "f", "жіночий":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// patronymicCategory folds gender into the category key. Unknown gender
// falls back to the neutral patronymic category with its own counter.
func patronymicCategory(g Gender) Category {
	switch g {
	case GenderMale:
		return CategoryPatronymicMale
	case GenderFemale:
		return CategoryPatronymicFemale
	default:
		return CategoryPatronymic
	}
}

// Options controls which scanner passes run and whether placeholders are
// re-cased to match the spans they replace.
type Options struct {
	PreserveCase    bool
	MaskNames       bool
	MaskRanks       bool
	MaskIdentifiers bool
	MaskDates       bool
}

// DefaultOptions enables every pass with case preservation on.
func DefaultOptions() Options {
	return Options{
		PreserveCase:    true,
		MaskNames:       true,
		MaskRanks:       true,
		MaskIdentifiers: true,
		MaskDates:       true,
	}
}

// Masker runs the whole-document masking passes over Ukrainian text.
// It holds compiled patterns only; all per-document state lives in the
// Dictionary passed to MaskText, so one Masker can serve many documents.
type Masker struct {
	opts Options
	log  *logger.Logger
	met  *metrics.Metrics

	ipnRE      *regexp.Regexp
	passportRE *regexp.Regexp
	milIDRE    *regexp.Regexp
	milUnitRE  *regexp.Regexp
	dateRE     *regexp.Regexp
	orderRE    *regexp.Regexp
	rankRE     *regexp.Regexp
	pibRE      *regexp.Regexp
	brokenRE   *regexp.Regexp
}

// Cyrillic letter classes used by the scanner patterns. Go's \b is
// ASCII-only, so Cyrillic boundaries are expressed as explicit
// leading-context groups instead.
const (
	cyrUpper = `А-ЯІЇЄҐ`
	cyrLower = `а-яіїєґ`
	cyrApos  = `'ʼ’`
)

// New compiles the scanner patterns and returns a ready Masker.
// log and met may be nil; both are then no-ops.
func New(opts Options, log *logger.Logger, met *metrics.Metrics) *Masker {
	word := `[` + cyrUpper + `][` + cyrUpper + cyrLower + cyrApos + `]`

	m := &Masker{opts: opts, log: log, met: met}

	// Structured identifiers. Digit-delimited patterns can rely on \b.
	m.ipnRE = regexp.MustCompile(`\b\d{10}\b`)
	m.passportRE = regexp.MustCompile(`\b\d{9}\b`)
	m.milIDRE = regexp.MustCompile(`(^|[^\pL\d])([` + cyrUpper + `A-Z]{2}[ -]?\d{6})\b`)
	m.milUnitRE = regexp.MustCompile(`(?i)(^|[^\pL])(в/ч|військов[` + cyrLower + `]*\s+частин[` + cyrLower + `]*)\s+([` + cyrUpper + `A-Z]?\d{4})\b`)
	m.dateRE = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	m.orderRE = regexp.MustCompile(`(?i)(^|[^\pL])(наказ[` + cyrLower + `]*\s*№\s*)(\d+(?:[-/]\d+)*)`)

	// Rank lexicon: optional declined modifier + declined base rank.
	// The trailing context group keeps the bounded ending from matching
	// inside a longer word.
	m.rankRE = regexp.MustCompile(`(?i)(^|[^\pL` + cyrApos + `-])(` + rankBody + `)($|[^\pL])`)
	m.brokenRE = regexp.MustCompile(`(?i)((?:` + rankModifiers + `)[` + cyrLower + `]*)[ \t]*\n[ \t]*((?:` + rankStems + `)[` + cyrLower + `]*)`)

	// Full name: three capitalized Cyrillic words; the third must carry a
	// patronymic suffix (checked in code, not in the pattern).
	m.pibRE = regexp.MustCompile(
		`(^|[^\pL` + cyrApos + `-])(` + word + `*(?:-` + word + `*)?)[ \t]+(` + word + `*)[ \t]+(` + word + `*)`)

	return m
}

// MaskText runs every enabled pass over text using d for placeholder state
// and returns the masked document. The only failure mode is a placeholder
// collision, which aborts the offending substitution and is returned after
// the pass completes; all other malformed input degrades to pass-through.
func (m *Masker) MaskText(text string, d *Dictionary) (string, error) {
	if text == "" {
		return text, nil
	}
	var firstErr error
	keep := func(cat Category, original, key string) string {
		masked, isNew, err := maskValue(d, cat, key, original, m.opts.PreserveCase)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if m.met != nil {
				m.met.Collisions.Add(1)
			}
			m.logf(logger.LevelError, "mask_collision", "category %s: %v", cat, err)
			return original
		}
		if m.met != nil {
			m.met.RecordReplacement(string(cat), isNew)
		}
		return masked
	}

	result := text
	if m.opts.MaskRanks {
		result = m.brokenRE.ReplaceAllString(result, "$1 $2")
	}
	if m.opts.MaskIdentifiers {
		result = replaceGroup(m.milUnitRE, result, 3, func(s string) string {
			return keep(CategoryMilitaryUnit, s, strings.TrimSpace(s))
		})
		result = replaceGroup(m.milIDRE, result, 2, func(s string) string {
			if !validMilitaryID(s) {
				return s
			}
			return keep(CategoryMilitaryID, s, strings.TrimSpace(s))
		})
		result = m.ipnRE.ReplaceAllStringFunc(result, func(s string) string {
			return keep(CategoryIPN, s, s)
		})
		result = m.passportRE.ReplaceAllStringFunc(result, func(s string) string {
			return keep(CategoryPassportID, s, s)
		})
		result = replaceGroup(m.orderRE, result, 3, func(s string) string {
			return keep(CategoryOrderNumber, s, s)
		})
	}
	if m.opts.MaskDates {
		result = m.dateRE.ReplaceAllStringFunc(result, func(s string) string {
			if !validDate(s) {
				return s
			}
			return keep(CategoryDate, s, s)
		})
	}
	if m.opts.MaskRanks {
		result = replaceGroup(m.rankRE, result, 2, func(s string) string {
			return keep(CategoryRank, s, NormalizeValue(s))
		})
	}
	if m.opts.MaskNames {
		result = m.maskFullNames(result, keep)
	}
	return result, firstErr
}

// maskFullNames finds surname / given-name / patronymic triples and masks
// each word under its own category. Triples whose last word has no
// patronymic suffix are left untouched.
func (m *Masker) maskFullNames(text string, keep func(Category, string, string) string) string {
	matches := m.pibRE.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, idx := range matches {
		surStart, surEnd := idx[4], idx[5]
		nameStart, nameEnd := idx[6], idx[7]
		patStart, patEnd := idx[8], idx[9]

		patronymic := text[patStart:patEnd]
		gender := DetectGenderByPatronymic(patronymic)
		if gender == GenderUnknown {
			continue // three capitalized words, but not a full name
		}

		b.WriteString(text[last:surStart])
		b.WriteString(keep(CategorySurname, text[surStart:surEnd], NormalizeValue(text[surStart:surEnd])))
		b.WriteString(text[surEnd:nameStart])
		b.WriteString(keep(CategoryGivenName, text[nameStart:nameEnd], NormalizeValue(text[nameStart:nameEnd])))
		b.WriteString(text[nameEnd:patStart])
		b.WriteString(keep(patronymicCategory(gender), patronymic, NormalizeValue(patronymic)))
		last = patEnd
	}
	b.WriteString(text[last:])
	return b.String()
}

// UnmaskText restores a masked document and records metrics.
func (m *Masker) UnmaskText(text string, d *Dictionary) string {
	out, restored, unknown := unmaskCounting(text, d)
	if m.met != nil {
		m.met.TokensRestored.Add(int64(restored))
		m.met.UnknownTokens.Add(int64(unknown))
	}
	return out
}

func (m *Masker) logf(level logger.Level, action, format string, args ...any) {
	if m.log == nil {
		return
	}
	switch level {
	case logger.LevelError:
		m.log.Errorf(action, format, args...)
	case logger.LevelWarn:
		m.log.Warnf(action, format, args...)
	default:
		m.log.Debugf(action, format, args...)
	}
}

// replaceGroup rewrites capture group g of every match of re in s through
// fn, leaving the rest of each match (and the text between matches) intact.
func replaceGroup(re *regexp.Regexp, s string, g int, fn func(string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, idx := range matches {
		start, end := idx[2*g], idx[2*g+1]
		if start < 0 {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(fn(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
