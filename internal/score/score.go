// Package score derives profile quality metrics. All scores are pure
// functions of the profile's current state, so recomputing after any merge
// is safe and order-independent.
package score

import "github.com/sells-group/speaker-cli/internal/model"

// Group point allocations for the profile score. All-or-nothing per
// group: a group earns its full allocation once minimally populated,
// otherwise zero. Allocations sum to 100.
const (
	identityPoints     = 15
	demographicsPoints = 5
	professionalPoints = 10
	credentialsPoints  = 15
	languagesPoints    = 5
	biographyPoints    = 10
	locationPoints     = 5
	expertisePoints    = 15
	speakingPoints     = 10
	mediaPoints        = 5
	contactPoints      = 5
)

// Biography earns full points past this length, half above the short
// threshold, nothing below.
const (
	bioFullThreshold  = 500
	bioShortThreshold = 200
)

// Breakdown itemizes a profile score by field group.
type Breakdown struct {
	Identity     int `json:"identity"`
	Demographics int `json:"demographics"`
	Professional int `json:"professional"`
	Credentials  int `json:"credentials"`
	Languages    int `json:"languages"`
	Biography    int `json:"biography"`
	Location     int `json:"location"`
	Expertise    int `json:"expertise"`
	Speaking     int `json:"speaking"`
	Media        int `json:"media"`
	Contact      int `json:"contact"`
	Total        int `json:"total"`
}

// Profile computes the 0-100 profile score with its per-group breakdown.
func Profile(p *model.CanonicalProfile) Breakdown {
	var b Breakdown

	if p.Identity.FullName != "" {
		b.Identity = identityPoints
	}
	if !p.Demographics.Empty() {
		b.Demographics = demographicsPoints
	}
	if p.Professional.JobTitle != "" || p.Professional.Company != "" || p.Professional.Tagline != "" {
		b.Professional = professionalPoints
	}
	if !p.Credentials.Empty() {
		b.Credentials = credentialsPoints
	}
	if !p.Languages.Empty() {
		b.Languages = languagesPoints
	}
	switch {
	case len(p.Biography.Full) > bioFullThreshold:
		b.Biography = biographyPoints
	case len(p.Biography.Full) > bioShortThreshold:
		b.Biography = biographyPoints / 2
	}
	if p.Location.City != "" || p.Location.Country != "" || p.Location.Raw != "" {
		b.Location = locationPoints
	}
	if !p.Expertise.Empty() {
		b.Expertise = expertisePoints
	}
	if p.Speaking.FeeText != "" || p.Speaking.TotalTalks > 0 ||
		p.Speaking.YearsSpeaking > 0 || !p.Formats.Empty() {
		b.Speaking = speakingPoints
	}
	if p.Media.Images.Len() > 0 || p.Media.Videos.Len() > 0 {
		b.Media = mediaPoints
	}
	if p.Contact.Email != "" || p.Contact.Website != "" || p.Contact.SocialURLs.Len() > 0 {
		b.Contact = contactPoints
	}

	b.Total = b.Identity + b.Demographics + b.Professional + b.Credentials +
		b.Languages + b.Biography + b.Location + b.Expertise + b.Speaking +
		b.Media + b.Contact
	if b.Total > 100 {
		b.Total = 100
	}
	return b
}

// Experience computes the 0-100 experience score from five engagement
// signals, each capped at 20 points.
func Experience(p *model.CanonicalProfile) int {
	total := 0

	switch years := p.Speaking.YearsSpeaking; {
	case years >= 20:
		total += 20
	case years >= 10:
		total += 15
	case years >= 5:
		total += 10
	case years >= 2:
		total += 5
	}

	switch talks := p.Speaking.TotalTalks; {
	case talks >= 500:
		total += 20
	case talks >= 200:
		total += 15
	case talks >= 100:
		total += 10
	case talks >= 50:
		total += 5
	}

	if n := p.Formats.Primary.Len() * 4; n > 0 {
		if n > 20 {
			n = 20
		}
		total += n
	}

	switch {
	case p.Speaking.ComfortableLargeAudience:
		total += 20
	case p.Speaking.MaxAudienceSize > 500:
		total += 10
	}

	switch rating := p.Speaking.AverageRating; {
	case rating >= 4.8:
		total += 20
	case rating >= 4.5:
		total += 15
	case rating >= 4.0:
		total += 10
	case rating >= 3.5:
		total += 5
	}

	if total > 100 {
		total = 100
	}
	return total
}

// Completeness returns the fraction of defined leaf fields that are
// populated, expressed 0-100.
func Completeness(p *model.CanonicalProfile) float64 {
	leaves := []bool{
		p.Identity.FullName != "",
		p.Identity.FirstName != "",
		p.Identity.LastName != "",
		p.Professional.JobTitle != "",
		p.Professional.Company != "",
		p.Professional.Tagline != "",
		p.Location.City != "",
		p.Location.State != "",
		p.Location.Country != "",
		p.Biography.Short != "",
		p.Biography.Full != "",
		!p.Expertise.Empty(),
		!p.Industry.Empty(),
		!p.Credentials.Empty(),
		!p.Languages.Empty(),
		!p.Formats.Empty(),
		!p.Audiences.Empty(),
		!p.Demographics.Empty(),
		p.Speaking.FeeText != "",
		p.Speaking.YearsSpeaking > 0,
		p.Speaking.TotalTalks > 0,
		p.Speaking.AverageRating > 0,
		p.Media.Images.Len() > 0,
		p.Media.Videos.Len() > 0,
		p.Contact.Email != "",
		p.Contact.Website != "",
		p.Contact.SocialURLs.Len() > 0,
		p.Publications.Books.Len() > 0,
		p.Publications.Awards.Len() > 0,
		len(p.Publications.Testimonials) > 0,
	}

	filled := 0
	for _, ok := range leaves {
		if ok {
			filled++
		}
	}
	return float64(filled) / float64(len(leaves)) * 100
}

// Apply recomputes all three scores on the profile in place.
func Apply(p *model.CanonicalProfile) {
	b := Profile(p)
	p.Metadata.ProfileScore = b.Total
	p.Metadata.ExperienceScore = Experience(p)
	p.Metadata.CompletenessScore = Completeness(p)
}
