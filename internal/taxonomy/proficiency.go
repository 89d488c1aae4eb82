package taxonomy

import (
	"sort"
	"strings"
)

// proficiencyAliases folds the many ways sources express language skill
// into four levels. CEFR grades map onto the nearest level.
var proficiencyAliases = map[string][]string{
	"native":         {"native proficiency", "native speaker", "mother tongue", "first language", "native", "l1"},
	"fluent":         {"full professional", "professional", "proficient", "bilingual", "advanced", "fluent", "c1", "c2"},
	"conversational": {"working knowledge", "limited working", "conversational", "intermediate", "functional", "b1", "b2"},
	"basic":          {"elementary", "beginner", "basic", "some", "limited", "a1", "a2"},
}

// proficiencyRank orders levels so a language claimed at two levels keeps
// the stronger claim regardless of term order.
var proficiencyRank = map[string]int{"native": 4, "fluent": 3, "conversational": 2, "basic": 1}

// proficiencyMarkers holds every alias paired with its level, longest
// first so "limited working" is found before "limited".
var proficiencyMarkers []alias

func init() {
	for level, keys := range proficiencyAliases {
		for _, k := range keys {
			proficiencyMarkers = append(proficiencyMarkers, alias{text: k, code: level})
		}
	}
	sort.Slice(proficiencyMarkers, func(i, j int) bool {
		if len(proficiencyMarkers[i].text) != len(proficiencyMarkers[j].text) {
			return len(proficiencyMarkers[i].text) > len(proficiencyMarkers[j].text)
		}
		return proficiencyMarkers[i].text < proficiencyMarkers[j].text
	})
}

// NormalizeProficiency maps a raw proficiency string to one of
// native/fluent/conversational/basic, or "" when unrecognized.
func NormalizeProficiency(raw string) string {
	norm := NormalizeTerm(raw)
	for _, m := range proficiencyMarkers {
		if m.text == norm {
			return m.code
		}
	}
	return ""
}

// SplitProficiency strips a proficiency marker from a raw language term,
// returning the remaining normalized term and the marker's level ("" when
// the term carries none). "English (Native)" becomes ("english", "native").
func SplitProficiency(raw string) (string, string) {
	norm := NormalizeTerm(raw)
	for _, m := range proficiencyMarkers {
		if !containsToken(norm, m.text) {
			continue
		}
		cleaned := strings.ReplaceAll(norm, m.text, " ")
		cleaned = strings.Map(func(r rune) rune {
			switch r {
			case '(', ')', '-', ':', ',', '/':
				return ' '
			}
			return r
		}, cleaned)
		return strings.Join(strings.Fields(cleaned), " "), m.code
	}
	return norm, ""
}

// strongerProficiency keeps the higher-ranked of two levels. Unknown or
// empty levels rank lowest.
func strongerProficiency(a, b string) string {
	if proficiencyRank[a] >= proficiencyRank[b] {
		return a
	}
	return b
}
