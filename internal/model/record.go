package model

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// SourceRecord is one speaker document as extracted from one source by its
// schema adapter. All text slots hold raw, unnormalized values; taxonomy
// classification happens downstream. A record is never mutated after the
// adapter returns it.
type SourceRecord struct {
	Source      string `json:"source"`
	SourceID    string `json:"source_id"`
	SourceURL   string `json:"source_url,omitempty"`
	QualityTier Tier   `json:"quality_tier"`

	RawName    string `json:"raw_name"`
	RawTitle   string `json:"raw_title,omitempty"`
	RawCompany string `json:"raw_company,omitempty"`
	RawTagline string `json:"raw_tagline,omitempty"`

	RawLocation string `json:"raw_location,omitempty"`
	RawCity     string `json:"raw_city,omitempty"`
	RawState    string `json:"raw_state,omitempty"`
	RawCountry  string `json:"raw_country,omitempty"`

	BioShort string `json:"bio_short,omitempty"`
	BioFull  string `json:"bio_full,omitempty"`

	RawExpertiseTerms  []string `json:"raw_expertise_terms,omitempty"`
	RawIndustryTerms   []string `json:"raw_industry_terms,omitempty"`
	RawCredentialTerms []string `json:"raw_credential_terms,omitempty"`
	RawLanguageTerms   []string `json:"raw_language_terms,omitempty"`
	RawFormatTerms     []string `json:"raw_format_terms,omitempty"`
	RawAudienceTerms   []string `json:"raw_audience_terms,omitempty"`

	// Demographic terms are only ever explicit self-declared values
	// (pronouns, stated gender); nothing is inferred from free text.
	RawDemographicTerms []string `json:"raw_demographic_terms,omitempty"`

	SocialURLs []string `json:"social_urls,omitempty"`
	ImageURLs  []string `json:"image_urls,omitempty"`
	VideoURLs  []string `json:"video_urls,omitempty"`
	Email      string   `json:"email,omitempty"`
	Website    string   `json:"website,omitempty"`
	FeeText    string   `json:"fee_text,omitempty"`

	YearsSpeaking            int     `json:"years_speaking,omitempty"`
	TotalTalks               int     `json:"total_talks,omitempty"`
	AverageRating            float64 `json:"average_rating,omitempty"`
	RatingCount              int     `json:"rating_count,omitempty"`
	ComfortableLargeAudience bool    `json:"comfortable_large_audience,omitempty"`
	MaxAudienceSize          int     `json:"max_audience_size,omitempty"`

	Testimonials []string `json:"testimonials,omitempty"`
	Awards       []string `json:"awards,omitempty"`
	Books        []string `json:"books,omitempty"`
}

var nonIDChars = regexp.MustCompile(`[^a-z0-9 ]`)

// NewProfileID derives the stable profile identifier from a speaker name
// and the first source that contributed the profile. The id is generated
// once and preserved across all subsequent merges.
func NewProfileID(name, source string) string {
	cleaned := nonIDChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	sum := md5.Sum([]byte(cleaned + "_" + source))
	return hex.EncodeToString(sum[:])
}
