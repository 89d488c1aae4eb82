// Package adapter maps raw per-source documents onto the common source
// record shape. One adapter per source; each knows its source's field
// names, trust tier, and quirks. Adapters never normalize terminology,
// they only extract it.
package adapter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/resolve"
	"github.com/sells-group/speaker-cli/internal/taxonomy"
)

// ErrNoName marks a document that cannot be keyed to a person. The
// pipeline logs and skips these rather than aborting the run.
var ErrNoName = eris.New("document has no usable speaker name")

// Adapter converts one source's documents into source records.
type Adapter interface {
	// Source returns the canonical source name used in provenance maps.
	Source() string
	// Tier is the source's default trust tier. Adapters may refine it
	// per document.
	Tier() model.Tier
	// Adapt extracts a source record from a decoded document.
	Adapt(doc map[string]any) (*model.SourceRecord, error)
}

// Registry holds the configured adapters in processing order: most
// trusted tier first, alphabetical within a tier.
type Registry struct {
	ordered []Adapter
	byName  map[string]Adapter
}

// NewRegistry builds a registry over the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	r.ordered = append(r.ordered, adapters...)
	sort.SliceStable(r.ordered, func(i, j int) bool {
		ti, tj := r.ordered[i].Tier(), r.ordered[j].Tier()
		if ti.MoreTrusted(tj) {
			return true
		}
		if tj.MoreTrusted(ti) {
			return false
		}
		return r.ordered[i].Source() < r.ordered[j].Source()
	})
	for _, a := range r.ordered {
		r.byName[a.Source()] = a
	}
	return r
}

// Ordered returns adapters in processing order.
func (r *Registry) Ordered() []Adapter {
	return r.ordered
}

// Get looks an adapter up by source name.
func (r *Registry) Get(source string) (Adapter, bool) {
	a, ok := r.byName[source]
	return a, ok
}

// newRecord validates the name and seeds a record with credentials and
// pronoun declarations carried on the name itself.
func newRecord(source, name string, tier model.Tier) (*model.SourceRecord, error) {
	trimmed := strings.TrimSpace(name)
	switch strings.ToLower(trimmed) {
	case "", "none", "n/a", "na":
		return nil, eris.Wrapf(ErrNoName, "adapter: %s", source)
	}

	rec := &model.SourceRecord{
		Source:      source,
		QualityTier: tier,
		RawName:     resolve.StripPronounTail(trimmed),
	}
	parsed := resolve.ParseName(trimmed)
	rec.RawCredentialTerms = append(rec.RawCredentialTerms, parsed.Credentials...)
	if pr := resolve.PronounTail(trimmed); pr != "" {
		rec.RawDemographicTerms = append(rec.RawDemographicTerms, pr)
	}
	return rec, nil
}

// Document field coercion. Source collections are schemaless, so numbers
// arrive as float64, ints, or digit strings depending on the scraper.

func docString(doc map[string]any, key string) string {
	if s, ok := doc[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// docID stringifies an identifier that may be numeric in the source.
func docID(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

func docStrings(doc map[string]any, key string) []string {
	var out []string
	switch v := doc[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func docInt(doc map[string]any, key string) int {
	switch v := doc[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func docFloat(doc map[string]any, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

func docBool(doc map[string]any, key string) bool {
	switch v := doc[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	return false
}

func docMap(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

// docLanguages extracts language lists whose entries are either bare
// strings ("English (Native)") or objects with "language" and a
// "proficiency" or "fluency" field. Object entries are flattened back to
// the parenthesized string form so every source feeds the classifier the
// same shape.
func docLanguages(doc map[string]any, key string) []string {
	items, ok := doc[key].([]any)
	if !ok {
		return docStrings(doc, key)
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			name := docString(v, "language")
			if name == "" {
				name = docString(v, "name")
			}
			if name == "" {
				continue
			}
			level := firstNonEmpty(docString(v, "proficiency"), docString(v, "fluency"))
			if norm := taxonomy.NormalizeProficiency(level); norm != "" {
				out = append(out, fmt.Sprintf("%s (%s)", name, norm))
			} else {
				out = append(out, name)
			}
		}
	}
	return out
}

// docURLs extracts link lists whose entries are either bare strings or
// objects with a "url" field.
func docURLs(doc map[string]any, key string) []string {
	items, ok := doc[key].([]any)
	if !ok {
		return docStrings(doc, key)
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if u := docString(v, "url"); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

// socialURLs flattens a platform->link object into a link list.
func socialURLs(doc map[string]any, key string) []string {
	m := docMap(doc, key)
	if m == nil {
		return docStrings(doc, key)
	}
	platforms := make([]string, 0, len(m))
	for platform := range m {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	var out []string
	for _, platform := range platforms {
		if u, ok := m[platform].(string); ok {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

// splitCSV splits comma-separated term lists, dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
