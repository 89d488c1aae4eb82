// Package resolve decides whether two source records describe the same
// person. Candidate search is restricted to blocking buckets keyed on
// normalized surname and country; candidates are scored with weighted
// string similarity.
package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// honorifics are leading titles stripped from names before matching.
var honorifics = []string{
	"dr.", "dr", "prof.", "prof", "professor",
	"mr.", "mr", "mrs.", "mrs", "ms.", "ms", "miss",
	"sir", "dame", "rev.", "rev", "hon.", "hon",
}

// credentialSuffixes are post-nominals that sources append to names.
// They are stripped for matching and surfaced as raw credential terms.
var credentialSuffixes = []string{
	"phd", "ph.d.", "ph.d", "dphil", "edd", "ed.d.", "md", "m.d.",
	"jd", "j.d.", "dba", "psyd", "dsc",
	"mba", "m.b.a.", "ms", "m.s.", "msc", "ma", "m.a.", "med", "meng",
	"mph", "mpa", "mfa", "llm", "msw",
	"cpa", "c.p.a.", "cfa", "csp", "cpae", "dtm", "pmp", "cissp",
	"esq", "esq.", "jr", "jr.", "sr", "sr.", "ii", "iii", "iv",
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldDiacritics removes combining marks so "José" and "Jose" compare equal.
func foldDiacritics(s string) string {
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}

// ParsedName is a speaker name split into its parts.
type ParsedName struct {
	Full        string
	First       string
	Last        string
	Honorific   string
	Credentials []string
}

// ParseName splits a raw name into honorific, given/family names, and any
// post-nominal credentials ("Dr. Jane Smith, PhD").
func ParseName(raw string) ParsedName {
	var p ParsedName

	// Trailing pronouns occasionally ride along on scraped names.
	cleaned := pronounTailRe.ReplaceAllString(strings.TrimSpace(raw), "")

	// Post-nominals arrive comma-separated after the name proper.
	parts := strings.Split(cleaned, ",")
	name := strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		candidate := strings.TrimSpace(part)
		if isCredentialSuffix(candidate) {
			p.Credentials = append(p.Credentials, candidate)
		}
	}

	words := strings.Fields(name)
	if len(words) > 0 && isHonorific(words[0]) {
		p.Honorific = strings.TrimSuffix(words[0], ".")
		words = words[1:]
	}
	// Credentials sometimes trail without a comma. Only unambiguous
	// tokens are stripped here so surnames like "Ma" survive.
	for len(words) > 1 && isBareCredential(words[len(words)-1]) {
		p.Credentials = append(p.Credentials, words[len(words)-1])
		words = words[:len(words)-1]
	}

	p.Full = strings.Join(words, " ")
	if len(words) > 0 {
		p.First = words[0]
		if len(words) > 1 {
			p.Last = words[len(words)-1]
		}
	}
	return p
}

var pronounTailRe = regexp.MustCompile(`(?i)\s*\(?(she/her(/hers)?|he/him(/his)?|they/them(/theirs)?)\)?\s*$`)

// PronounTail returns the pronoun declaration riding on the end of a raw
// name, lower-cased without surrounding parens, or "" when absent.
func PronounTail(raw string) string {
	m := pronounTailRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// StripPronounTail removes a trailing pronoun declaration from a raw name.
func StripPronounTail(raw string) string {
	return pronounTailRe.ReplaceAllString(strings.TrimSpace(raw), "")
}

func isHonorific(word string) bool {
	w := strings.ToLower(word)
	for _, h := range honorifics {
		if w == h {
			return true
		}
	}
	return false
}

func isCredentialSuffix(s string) bool {
	w := strings.ToLower(strings.TrimSpace(s))
	for _, c := range credentialSuffixes {
		if w == c {
			return true
		}
	}
	return false
}

// bareCredentials can be stripped without a comma separator. Two-letter
// post-nominals are excluded: "Ma" and "Md" are real surnames.
var bareCredentials = []string{
	"phd", "dphil", "mba", "cissp", "cpa", "cfa", "csp", "cpae",
	"dtm", "pmp", "esq", "jr", "sr", "ii", "iii", "iv",
}

func isBareCredential(s string) bool {
	w := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(w, ".") {
		return isCredentialSuffix(w)
	}
	for _, c := range bareCredentials {
		if w == c {
			return true
		}
	}
	return false
}

// NormalizeName produces the canonical matching form of a name: honorifics
// and post-nominals removed, diacritics folded, lower-cased, single-spaced.
func NormalizeName(raw string) string {
	p := ParseName(raw)
	s := foldDiacritics(strings.ToLower(p.Full))
	s = multiSpaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// NormalizeLocation folds a location string for equality comparison.
func NormalizeLocation(raw string) string {
	s := foldDiacritics(strings.ToLower(strings.TrimSpace(raw)))
	s = strings.NewReplacer(",", " ", ".", " ", "-", " ").Replace(s)
	return multiSpaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// BlockingKey buckets profiles by normalized surname plus a coarse country
// token. Only records sharing a key are ever compared pairwise.
func BlockingKey(normalizedName, country string) string {
	surname := normalizedName
	if i := strings.LastIndex(normalizedName, " "); i >= 0 {
		surname = normalizedName[i+1:]
	}
	c := foldDiacritics(strings.ToLower(strings.TrimSpace(country)))
	if c == "" {
		c = "unknown"
	}
	return surname + "|" + c
}
