package taxonomy

import (
	"strings"
	"unicode"

	"github.com/sells-group/speaker-cli/internal/model"
)

// Result is the outcome of classifying a term list against one table.
// All category fields hold closed taxonomy codes; raw text survives only
// in Keywords and Unmatched.
type Result struct {
	Primary       model.StringSet
	Secondary     model.StringSet
	Parents       model.StringSet
	Keywords      model.StringSet
	ResearchAreas model.StringSet

	// Proficiency maps a resolved code to its declared skill level, for
	// tables that track proficiency markers.
	Proficiency map[string]string
	Unmatched   []string
}

func emptyResult() Result {
	return Result{
		Primary:       model.StringSet{},
		Secondary:     model.StringSet{},
		Parents:       model.StringSet{},
		Keywords:      model.StringSet{},
		ResearchAreas: model.StringSet{},
		Proficiency:   map[string]string{},
	}
}

// Classifier applies one taxonomy table. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	table *Table
}

// NewClassifier builds a classifier over a loaded table.
func NewClassifier(table *Table) *Classifier {
	return &Classifier{table: table}
}

// junk terms carry no signal and are dropped before matching.
func isJunkTerm(norm string) bool {
	switch norm {
	case "", "none", "n/a", "na", "-":
		return true
	}
	return false
}

// Classify maps raw terms (and, for free-text capable domains, biography
// text) onto the table's categories. Four stages run in confidence order;
// each stage applies only to terms unresolved by earlier stages. Output is
// set-valued, so classification is order-independent and idempotent.
func (c *Classifier) Classify(terms []string, freeText string) Result {
	res := emptyResult()

	for _, raw := range terms {
		norm := NormalizeTerm(raw)
		level := ""
		if c.table.TrackProficiency {
			norm, level = SplitProficiency(raw)
		}
		if isJunkTerm(norm) {
			continue
		}
		code, secondaries, ok := c.resolveTerm(norm)
		if !ok {
			res.Unmatched = append(res.Unmatched, raw)
			res.Keywords.Add(norm)
			continue
		}
		res.Keywords.Add(norm)
		if code != "" {
			res.Primary.Add(code)
			res.Parents.Add(c.table.ParentOf(code))
			if level != "" {
				res.Proficiency[code] = strongerProficiency(res.Proficiency[code], level)
			}
		}
		for _, sec := range secondaries {
			if !res.Primary.Has(sec) {
				res.Secondary.Add(sec)
			}
			res.Parents.Add(c.table.ParentOf(sec))
		}
	}

	// A code promoted to primary by a later term loses its secondary slot.
	for sec := range res.Secondary {
		if res.Primary.Has(sec) {
			delete(res.Secondary, sec)
		}
	}
	delete(res.Parents, "")

	if c.table.ScanFreeText && freeText != "" {
		c.scanFreeText(freeText, &res)
	}
	return res
}

// resolveTerm runs stages 1-3 for one normalized term. It returns the
// term's primary code (stage 1 or 2), extra stage-2 candidates and stage-3
// matches as secondaries, and whether anything resolved at all.
func (c *Classifier) resolveTerm(norm string) (primary string, secondary []string, ok bool) {
	// Stage 1: exact alias match.
	if code, found := c.table.exact[norm]; found {
		return code, nil, true
	}
	if c.table.ExactOnly {
		return "", nil, false
	}

	// Stage 2: token-boundary containment, longest alias first.
	var candidates []string
	seen := map[string]struct{}{}
	for _, a := range c.table.ordered {
		if len(a.text) <= 3 {
			continue
		}
		if !containsToken(norm, a.text) && !containsToken(a.text, norm) {
			continue
		}
		if _, dup := seen[a.code]; dup {
			continue
		}
		seen[a.code] = struct{}{}
		candidates = append(candidates, a.code)
	}
	if len(candidates) > 0 {
		return candidates[0], candidates[1:], true
	}

	// Stage 3: multi-word decomposition against single-word aliases.
	words := strings.Fields(norm)
	if len(words) < 2 {
		return "", nil, false
	}
	votes := map[string]int{}
	for _, w := range words {
		if code, found := c.table.singleWord[w]; found {
			votes[code]++
		}
	}
	best, bestVotes := "", 0
	for code, n := range votes {
		if n > bestVotes || (n == bestVotes && code < best) {
			best, bestVotes = code, n
		}
	}
	if bestVotes*2 >= len(words) && best != "" {
		return "", []string{best}, true
	}
	return "", nil, false
}

// scanFreeText finds alias occurrences in biography text and records the
// matched categories as research areas. These never promote to primary or
// secondary categories.
func (c *Classifier) scanFreeText(text string, res *Result) {
	lowered := NormalizeTerm(text)
	for _, a := range c.table.ordered {
		if len(a.text) <= 3 {
			continue
		}
		if containsToken(lowered, a.text) {
			res.ResearchAreas.Add(a.code)
		}
	}
}

// NormalizeTerm lower-cases and whitespace-normalizes a raw term.
func NormalizeTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// containsToken reports whether needle occurs in haystack on token
// boundaries: the characters adjacent to the match must not be letters or
// digits. This keeps "ai" from matching inside "chairman".
func containsToken(haystack, needle string) bool {
	if needle == "" || len(needle) > len(haystack) {
		return false
	}
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(rune(haystack[start-1]))
		afterOK := end == len(haystack) || !isWordChar(rune(haystack[end]))
		if beforeOK && afterOK {
			return true
		}
		from = start + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
