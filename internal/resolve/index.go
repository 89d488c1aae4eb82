package resolve

import (
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"

	"github.com/sells-group/speaker-cli/internal/model"
)

// Match decision thresholds. Scores in the ambiguous band are treated as
// no-match: duplicate profiles are recoverable, wrongly merged strangers
// are not.
const (
	AcceptThreshold    = 0.85
	AmbiguousThreshold = 0.70
)

// Component weights for the similarity score.
const (
	nameWeight     = 0.6
	locationWeight = 0.2
	socialWeight   = 0.2
)

// MatchCandidate is the resolver's verdict for one incoming record. It is
// consumed immediately by the merger and never persisted.
type MatchCandidate struct {
	Profile   *model.CanonicalProfile
	Score     float64
	MatchedOn []string
}

// Index is the blocking index over the live profile set. It is not safe
// for concurrent mutation; the pipeline serializes resolve+merge per run.
type Index struct {
	buckets map[string][]*model.CanonicalProfile
	keys    map[string]string // profile_id -> blocking key
	count   int
}

// NewIndex returns an empty blocking index.
func NewIndex() *Index {
	return &Index{
		buckets: map[string][]*model.CanonicalProfile{},
		keys:    map[string]string{},
	}
}

// Len returns the number of indexed profiles.
func (ix *Index) Len() int { return ix.count }

// profileKey derives the blocking key from a profile's current identity.
func profileKey(p *model.CanonicalProfile) string {
	return BlockingKey(NormalizeName(p.Identity.FullName), p.Location.Country)
}

// recordKey derives the blocking key for an incoming record.
func recordKey(r *model.SourceRecord) string {
	return BlockingKey(NormalizeName(r.RawName), r.RawCountry)
}

// Add inserts a new profile into its bucket.
func (ix *Index) Add(p *model.CanonicalProfile) {
	key := profileKey(p)
	ix.buckets[key] = append(ix.buckets[key], p)
	ix.keys[p.ProfileID] = key
	ix.count++
}

// Reindex moves a profile to a new bucket if a merge changed its blocking
// key (a higher-trust source filled in the country, say).
func (ix *Index) Reindex(p *model.CanonicalProfile) {
	oldKey, ok := ix.keys[p.ProfileID]
	newKey := profileKey(p)
	if ok && oldKey == newKey {
		return
	}
	if ok {
		bucket := ix.buckets[oldKey]
		for i, existing := range bucket {
			if existing.ProfileID == p.ProfileID {
				ix.buckets[oldKey] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		ix.count--
	}
	ix.buckets[newKey] = append(ix.buckets[newKey], p)
	ix.keys[p.ProfileID] = newKey
	ix.count++
}

// FindMatch returns the best candidate at or above the accept threshold,
// or nil when the record is a new person. Ties on score fall to the
// profile holding more information.
func (ix *Index) FindMatch(r *model.SourceRecord) *MatchCandidate {
	bucket := ix.buckets[recordKey(r)]
	if len(bucket) == 0 {
		return nil
	}

	recName := NormalizeName(r.RawName)
	recLoc := recordLocation(r)
	recURLs := normalizeURLs(r.SocialURLs)

	var best *MatchCandidate
	for _, p := range bucket {
		score, matchedOn := similarity(recName, recLoc, recURLs, p)
		if score < AcceptThreshold {
			if score >= AmbiguousThreshold {
				zap.L().Debug("resolve: ambiguous candidate treated as no-match",
					zap.String("record", r.RawName),
					zap.String("profile_id", p.ProfileID),
					zap.Float64("score", score),
				)
			}
			continue
		}
		if best == nil ||
			score > best.Score ||
			(score == best.Score && informationWeight(p) > informationWeight(best.Profile)) {
			best = &MatchCandidate{Profile: p, Score: score, MatchedOn: matchedOn}
		}
	}
	return best
}

// informationWeight counts populated evidence on a profile. Scores are
// only finalized after ingest, so score ties fall to the profile carrying
// more live data rather than to bucket insertion order.
func informationWeight(p *model.CanonicalProfile) int {
	n := p.Metadata.Sources.Len() + p.Contact.SocialURLs.Len()
	n += p.Expertise.Primary.Len() + p.Industry.Primary.Len() +
		p.Credentials.Primary.Len() + p.Languages.Primary.Len()
	for _, s := range []string{
		p.Professional.JobTitle, p.Professional.Company,
		p.Location.City, p.Location.Country,
		p.Biography.Short, p.Biography.Full,
		p.Contact.Email, p.Contact.Website,
	} {
		if s != "" {
			n++
		}
	}
	return n
}

// similarity combines name, location, and social-URL evidence. Weights
// renormalize over the components both sides can testify to, so a record
// without location data is judged on its name alone. An exact social URL
// match is conclusive on its own, and a name match at or above the accept
// threshold cannot be dragged below it by disagreeing side evidence.
func similarity(recName, recLoc string, recURLs model.StringSet, p *model.CanonicalProfile) (float64, []string) {
	profURLs := normalizeURLs(p.Contact.SocialURLs.Values())
	if len(recURLs) > 0 && len(profURLs) > 0 {
		for u := range recURLs {
			if profURLs.Has(u) {
				return 1.0, []string{"social_link"}
			}
		}
	}

	var matchedOn []string
	nameSim := levenshtein.Similarity(recName, NormalizeName(p.Identity.FullName), nil)
	score := nameWeight * nameSim
	total := nameWeight
	if nameSim >= AcceptThreshold {
		matchedOn = append(matchedOn, "name")
	}

	profLoc := profileLocation(p)
	if recLoc != "" && profLoc != "" {
		total += locationWeight
		if recLoc == profLoc {
			score += locationWeight
			matchedOn = append(matchedOn, "location")
		}
	}

	if len(recURLs) > 0 && len(profURLs) > 0 {
		// Both sides have URLs but none overlap: counted against.
		total += socialWeight
	}

	combined := score / total
	// A name that clears the accept threshold on its own is decisive
	// within a bucket. Location and social evidence can rescue the
	// ambiguous band, never veto a name match.
	if nameSim >= AcceptThreshold && nameSim > combined {
		combined = nameSim
	}
	return combined, matchedOn
}

func recordLocation(r *model.SourceRecord) string {
	if r.RawLocation != "" {
		return NormalizeLocation(r.RawLocation)
	}
	return NormalizeLocation(strings.TrimSpace(strings.Join([]string{r.RawCity, r.RawState, r.RawCountry}, " ")))
}

func profileLocation(p *model.CanonicalProfile) string {
	if p.Location.Raw != "" {
		return NormalizeLocation(p.Location.Raw)
	}
	return NormalizeLocation(strings.TrimSpace(strings.Join([]string{p.Location.City, p.Location.State, p.Location.Country}, " ")))
}

// normalizeURLs canonicalizes social links for overlap comparison.
func normalizeURLs(urls []string) model.StringSet {
	out := model.StringSet{}
	for _, u := range urls {
		n := strings.ToLower(strings.TrimSpace(u))
		n = strings.TrimPrefix(n, "https://")
		n = strings.TrimPrefix(n, "http://")
		n = strings.TrimPrefix(n, "www.")
		n = strings.TrimSuffix(n, "/")
		out.Add(n)
	}
	return out
}
