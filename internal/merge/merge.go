// Package merge combines a matched source record into its canonical
// profile under a deterministic field-level conflict policy. Applying the
// same record twice always yields the same profile as applying it once.
package merge

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/resolve"
	"github.com/sells-group/speaker-cli/internal/taxonomy"
)

// Merger folds source records into canonical profiles, re-deriving
// taxonomy categories from the full term history on every merge.
type Merger struct {
	classifiers map[string]*taxonomy.Classifier
	log         *zap.Logger
}

// New builds a merger over the loaded taxonomy tables.
func New(tables *taxonomy.Set) *Merger {
	classifiers := map[string]*taxonomy.Classifier{}
	for _, domain := range tables.Domains() {
		classifiers[domain] = taxonomy.NewClassifier(tables.Table(domain))
	}
	return &Merger{
		classifiers: classifiers,
		log:         zap.L().With(zap.String("component", "merge")),
	}
}

// Merge applies a record to an existing profile, or founds a new profile
// when existing is nil. matchScore is the resolver's similarity for the
// accepted match (zero for a new profile).
func (m *Merger) Merge(existing *model.CanonicalProfile, rec *model.SourceRecord, matchScore float64, now time.Time) *model.CanonicalProfile {
	p := existing
	if p == nil {
		p = model.NewCanonicalProfile(model.NewProfileID(rec.RawName, rec.Source), now)
	}
	if p.Metadata.FieldTiers == nil {
		p.Metadata.FieldTiers = map[string]model.Tier{}
	}

	tier := rec.QualityTier
	m.mergeIdentity(p, rec, tier)
	m.mergeScalars(p, rec, tier)
	m.mergeSets(p, rec)
	m.mergeSpeakingStats(p, rec)
	m.rederiveCategories(p, rec)

	p.Metadata.Sources.Add(rec.Source)
	// Reprocessing the same source replaces its id rather than duplicating.
	p.Metadata.SourceIDs[rec.Source] = rec.SourceID
	p.Metadata.QualityTier = model.MostTrusted(p.Metadata.QualityTier, tier)
	p.Metadata.MergeConfidence = matchScore
	p.Metadata.UpdatedAt = now
	return p
}

// mergeScalar fills an empty slot, or overwrites a populated one only when
// the incoming tier is strictly more trusted than the field's recorded
// contributor.
func (m *Merger) mergeScalar(p *model.CanonicalProfile, key string, dst *string, incoming string, tier model.Tier) {
	if incoming == "" {
		return
	}
	if *dst == "" {
		*dst = incoming
		p.Metadata.FieldTiers[key] = tier
		return
	}
	prev, tracked := p.Metadata.FieldTiers[key]
	if tracked && tier.MoreTrusted(prev) {
		if *dst != incoming {
			m.log.Debug("scalar overwritten by higher tier",
				zap.String("profile_id", p.ProfileID),
				zap.String("field", key),
				zap.String("old_tier", string(prev)),
				zap.String("new_tier", string(tier)),
			)
		}
		*dst = incoming
		p.Metadata.FieldTiers[key] = tier
	}
}

func (m *Merger) mergeIdentity(p *model.CanonicalProfile, rec *model.SourceRecord, tier model.Tier) {
	parsed := resolve.ParseName(rec.RawName)
	m.mergeScalar(p, "identity.full_name", &p.Identity.FullName, parsed.Full, tier)
	m.mergeScalar(p, "identity.first_name", &p.Identity.FirstName, parsed.First, tier)
	m.mergeScalar(p, "identity.last_name", &p.Identity.LastName, parsed.Last, tier)
	m.mergeScalar(p, "identity.honorific", &p.Identity.Honorific, parsed.Honorific, tier)
}

func (m *Merger) mergeScalars(p *model.CanonicalProfile, rec *model.SourceRecord, tier model.Tier) {
	m.mergeScalar(p, "professional.job_title", &p.Professional.JobTitle, rec.RawTitle, tier)
	m.mergeScalar(p, "professional.company", &p.Professional.Company, rec.RawCompany, tier)
	m.mergeScalar(p, "professional.tagline", &p.Professional.Tagline, rec.RawTagline, tier)

	m.mergeScalar(p, "location.city", &p.Location.City, rec.RawCity, tier)
	m.mergeScalar(p, "location.state", &p.Location.State, rec.RawState, tier)
	m.mergeScalar(p, "location.country", &p.Location.Country, rec.RawCountry, tier)
	m.mergeScalar(p, "location.raw", &p.Location.Raw, rec.RawLocation, tier)

	m.mergeScalar(p, "biography.short", &p.Biography.Short, rec.BioShort, tier)
	m.mergeScalar(p, "biography.full", &p.Biography.Full, rec.BioFull, tier)

	m.mergeScalar(p, "speaking.fee_text", &p.Speaking.FeeText, rec.FeeText, tier)
	m.mergeScalar(p, "contact.email", &p.Contact.Email, rec.Email, tier)
	m.mergeScalar(p, "contact.website", &p.Contact.Website, rec.Website, tier)
}

// mergeSets unions list-valued fields. Sets never shrink.
func (m *Merger) mergeSets(p *model.CanonicalProfile, rec *model.SourceRecord) {
	for _, u := range rec.SocialURLs {
		p.Contact.SocialURLs.Add(u)
	}
	for _, u := range rec.ImageURLs {
		p.Media.Images.Add(u)
	}
	for _, u := range rec.VideoURLs {
		p.Media.Videos.Add(u)
	}
	for _, b := range rec.Books {
		p.Publications.Books.Add(b)
	}
	for _, a := range rec.Awards {
		p.Publications.Awards.Add(a)
	}
	p.Publications.Testimonials = appendUnique(p.Publications.Testimonials, rec.Testimonials)
}

// mergeSpeakingStats keeps the maximum of each engagement statistic, which
// is both monotone and merge-order independent.
func (m *Merger) mergeSpeakingStats(p *model.CanonicalProfile, rec *model.SourceRecord) {
	if rec.YearsSpeaking > p.Speaking.YearsSpeaking {
		p.Speaking.YearsSpeaking = rec.YearsSpeaking
	}
	if rec.TotalTalks > p.Speaking.TotalTalks {
		p.Speaking.TotalTalks = rec.TotalTalks
	}
	if rec.MaxAudienceSize > p.Speaking.MaxAudienceSize {
		p.Speaking.MaxAudienceSize = rec.MaxAudienceSize
	}
	if rec.ComfortableLargeAudience {
		p.Speaking.ComfortableLargeAudience = true
	}
	// The rating backed by more reviews wins; same count, higher wins.
	if rec.RatingCount > p.Speaking.RatingCount ||
		(rec.RatingCount == p.Speaking.RatingCount && rec.AverageRating > p.Speaking.AverageRating) {
		p.Speaking.AverageRating = rec.AverageRating
		p.Speaking.RatingCount = rec.RatingCount
	}
}

// rederiveCategories appends the record's raw terms to each domain's
// history and reclassifies over the full union, so category sets are
// always consistent with every term ever seen.
func (m *Merger) rederiveCategories(p *model.CanonicalProfile, rec *model.SourceRecord) {
	termsByDomain := map[string][]string{
		taxonomy.DomainExpertise:    rec.RawExpertiseTerms,
		taxonomy.DomainIndustry:     rec.RawIndustryTerms,
		taxonomy.DomainCredential:   rec.RawCredentialTerms,
		taxonomy.DomainLanguage:     rec.RawLanguageTerms,
		taxonomy.DomainFormat:       rec.RawFormatTerms,
		taxonomy.DomainAudience:     rec.RawAudienceTerms,
		taxonomy.DomainDemographics: rec.RawDemographicTerms,
	}

	for domain, set := range p.CategorySets() {
		c, ok := m.classifiers[domain]
		if !ok {
			continue
		}
		set.AddOriginalTerms(termsByDomain[domain])

		freeText := ""
		if domain == taxonomy.DomainExpertise {
			freeText = p.Biography.Full
		}
		res := c.Classify(set.OriginalTerms, freeText)
		set.Primary = res.Primary
		set.Secondary = res.Secondary
		set.Parents = res.Parents
		set.Keywords = res.Keywords
		if domain == taxonomy.DomainExpertise {
			set.ResearchAreas = res.ResearchAreas
		}
		if domain == taxonomy.DomainLanguage && len(res.Proficiency) > 0 {
			set.Proficiency = res.Proficiency
		}
	}
}

func appendUnique(dst []string, add []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
