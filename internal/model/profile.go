package model

import "time"

// CategorySet holds the output of taxonomy classification for one domain.
// Category fields contain only closed taxonomy codes; raw text survives in
// OriginalTerms, which is append-only and preserves provenance.
type CategorySet struct {
	Primary       StringSet         `json:"primary_categories"`
	Secondary     StringSet         `json:"secondary_categories"`
	Parents       StringSet         `json:"parent_categories"`
	Keywords      StringSet         `json:"keywords"`
	OriginalTerms []string          `json:"original_terms"`
	ResearchAreas StringSet         `json:"research_areas,omitempty"`
	Proficiency   map[string]string `json:"proficiency,omitempty"`
}

// NewCategorySet returns an empty, non-nil result.
func NewCategorySet() CategorySet {
	return CategorySet{
		Primary:   StringSet{},
		Secondary: StringSet{},
		Parents:   StringSet{},
		Keywords:  StringSet{},
	}
}

// Empty reports whether no term has ever been seen for this domain.
func (c CategorySet) Empty() bool {
	return len(c.OriginalTerms) == 0 && c.Primary.Len() == 0 && c.Keywords.Len() == 0
}

// AddOriginalTerms appends terms not already present, preserving order of
// first appearance.
func (c *CategorySet) AddOriginalTerms(terms []string) {
	seen := make(map[string]struct{}, len(c.OriginalTerms))
	for _, t := range c.OriginalTerms {
		seen[t] = struct{}{}
	}
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		c.OriginalTerms = append(c.OriginalTerms, t)
	}
}

// Identity is the who-is-this field group.
type Identity struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Honorific string `json:"honorific,omitempty"`
}

// Professional describes current role and positioning.
type Professional struct {
	JobTitle string `json:"job_title,omitempty"`
	Company  string `json:"company,omitempty"`
	Tagline  string `json:"tagline,omitempty"`
}

// Location is the speaker's home base.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// Biography holds the short and long bio texts.
type Biography struct {
	Short string `json:"short,omitempty"`
	Full  string `json:"full,omitempty"`
}

// Speaking aggregates engagement statistics across sources.
type Speaking struct {
	FeeText                  string  `json:"fee_text,omitempty"`
	YearsSpeaking            int     `json:"years_speaking,omitempty"`
	TotalTalks               int     `json:"total_talks,omitempty"`
	AverageRating            float64 `json:"average_rating,omitempty"`
	RatingCount              int     `json:"rating_count,omitempty"`
	MaxAudienceSize          int     `json:"max_audience_size,omitempty"`
	ComfortableLargeAudience bool    `json:"comfortable_large_audience,omitempty"`
}

// Media holds profile imagery and video links.
type Media struct {
	Images StringSet `json:"images"`
	Videos StringSet `json:"videos"`
}

// Contact holds reachability fields.
type Contact struct {
	Email      string    `json:"email,omitempty"`
	Website    string    `json:"website,omitempty"`
	SocialURLs StringSet `json:"social_urls"`
}

// Publications holds authored and earned artifacts.
type Publications struct {
	Books        StringSet `json:"books"`
	Awards       StringSet `json:"awards"`
	Testimonials []string  `json:"testimonials,omitempty"`
}

// Metadata tracks provenance and derived scores. FieldTiers remembers the
// most trusted tier that has written each scalar field, so a populated
// field is only overwritten by strictly better-trusted data.
type Metadata struct {
	Sources           StringSet         `json:"sources"`
	SourceIDs         map[string]string `json:"source_ids"`
	FieldTiers        map[string]Tier   `json:"field_tiers,omitempty"`
	QualityTier       Tier              `json:"data_quality_tier"`
	ProfileScore      int               `json:"profile_score"`
	ExperienceScore   int               `json:"experience_score"`
	CompletenessScore float64           `json:"completeness_score"`
	MergeConfidence   float64           `json:"merge_confidence"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// CanonicalProfile is the single merged representation of one real person.
// ProfileID never changes after creation.
type CanonicalProfile struct {
	ProfileID string `json:"profile_id"`

	Identity     Identity     `json:"identity"`
	Professional Professional `json:"professional"`
	Location     Location     `json:"location"`
	Biography    Biography    `json:"biography"`

	Expertise    CategorySet `json:"expertise"`
	Industry     CategorySet `json:"industry"`
	Credentials  CategorySet `json:"credentials"`
	Languages    CategorySet `json:"languages"`
	Formats      CategorySet `json:"speaking_formats"`
	Audiences    CategorySet `json:"audiences"`
	Demographics CategorySet `json:"demographics"`

	Speaking     Speaking     `json:"speaking"`
	Media        Media        `json:"media"`
	Contact      Contact      `json:"contact"`
	Publications Publications `json:"publications"`

	Metadata Metadata `json:"metadata"`
}

// NewCanonicalProfile allocates an empty profile with all sets initialized
// and the id derived from the founding record's name and source.
func NewCanonicalProfile(id string, now time.Time) *CanonicalProfile {
	return &CanonicalProfile{
		ProfileID:    id,
		Expertise:    NewCategorySet(),
		Industry:     NewCategorySet(),
		Credentials:  NewCategorySet(),
		Languages:    NewCategorySet(),
		Formats:      NewCategorySet(),
		Audiences:    NewCategorySet(),
		Demographics: NewCategorySet(),
		Media:        Media{Images: StringSet{}, Videos: StringSet{}},
		Contact:      Contact{SocialURLs: StringSet{}},
		Publications: Publications{
			Books:  StringSet{},
			Awards: StringSet{},
		},
		Metadata: Metadata{
			Sources:    StringSet{},
			SourceIDs:  map[string]string{},
			FieldTiers: map[string]Tier{},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

// CategorySets returns the taxonomy-backed groups keyed by domain name.
// The pointers allow in-place re-derivation during merge.
func (p *CanonicalProfile) CategorySets() map[string]*CategorySet {
	return map[string]*CategorySet{
		"expertise":    &p.Expertise,
		"industry":     &p.Industry,
		"credential":   &p.Credentials,
		"language":     &p.Languages,
		"format":       &p.Formats,
		"audience":     &p.Audiences,
		"demographics": &p.Demographics,
	}
}
