package masker

import "strings"

// Rank detection is stem-based: a base-rank stem plus a declined-ending
// tail covers the nominative, genitive, dative and instrumental forms
// without carrying full declension tables ("капітан", "капітана",
// "капітану", "капітаном" all match the stem "капітан").
const (
	// rankStems are base rank stems of the Ukrainian army, navy and
	// NCO hierarchies. Longer alternatives come first so "підполковник"
	// is not matched as "полковник".
	rankStems = `підполковник|полковник|генерал|адмірал|лейтенант|капітан|майор|` +
		`сержант|старшин|солдат|матрос|прапорщик|мічман|хорунж`

	// rankModifiers precede a base rank in compound ranks
	// ("старший лейтенант", "молодшого сержанта", "штаб-сержант").
	rankModifiers = `молодш|старш|головн|бригадн|штаб`

	// rankTail is the closed set of declension endings. Bounding the tail
	// (instead of swallowing any letters) keeps surnames like "Майоров"
	// from matching the "майор" stem.
	rankTail = `(?:ові|ого|ому|ами|ам|ах|ів|им|ий|ій|ою|ої|кою|ка|ки|ці|а|у|е|и|і|ом)?`

	// rankBody is the full rank expression: optional declined modifier,
	// base stem, optional compound tail (генерал-майор), declined ending.
	rankBody = `(?:(?:` + rankModifiers + `)[` + cyrLower + `]*[ -])?` +
		`(?:` + rankStems + `)` +
		`(?:-(?:майор|лейтенант|полковник|сержант))?` +
		rankTail
)

// maleSuffixes and femaleSuffixes are the gender-marked patronymic endings
// across grammatical cases (nominative, genitive, dative, instrumental).
var (
	maleSuffixes = []string{
		"ович", "йович", "ійович", "євич", "їйович",
		"овича", "йовича", "ійовича", "євича",
		"овичу", "йовичу", "ійовичу", "євичу",
		"овичем", "йовичем", "ійовичем", "євичем",
	}
	femaleSuffixes = []string{
		"івна", "ївна", "овна",
		"івни", "ївни", "овни",
		"івні", "ївні", "овні",
		"івною", "ївною", "овною",
	}
)

// DetectGenderByPatronymic infers gender from the patronymic's suffix.
// Words without a patronymic-shaped ending report GenderUnknown, which is
// also the scanner's signal that a capitalized-word triple is not a name.
func DetectGenderByPatronymic(patronymic string) Gender {
	p := strings.TrimRight(NormalizeValue(patronymic), ".,!?;:")
	if p == "" {
		return GenderUnknown
	}
	for _, suf := range maleSuffixes {
		if strings.HasSuffix(p, suf) {
			return GenderMale
		}
	}
	for _, suf := range femaleSuffixes {
		if strings.HasSuffix(p, suf) {
			return GenderFemale
		}
	}
	return GenderUnknown
}
