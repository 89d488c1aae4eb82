package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// speakerHandbook joins thespeakerhandbook.com bureau listings with
// detail profiles on speaker_id. Listings carry a two-letter home country
// code and an explicit gender field.
type speakerHandbook struct {
	profiles map[string]map[string]any
}

// countryNames expands the home_country codes the source actually emits;
// unknown codes pass through unchanged.
var countryNames = map[string]string{
	"gb": "United Kingdom",
	"us": "United States",
	"ca": "Canada",
	"au": "Australia",
}

// NewTheSpeakerHandbook returns the thespeakerhandbook adapter joined
// against the detail profile documents.
func NewTheSpeakerHandbook(profileDocs []map[string]any) Adapter {
	profiles := make(map[string]map[string]any, len(profileDocs))
	for _, p := range profileDocs {
		if id := docID(p, "speaker_id"); id != "" {
			profiles[id] = p
		}
	}
	return speakerHandbook{profiles: profiles}
}

func (speakerHandbook) Source() string   { return "thespeakerhandbook" }
func (speakerHandbook) Tier() model.Tier { return model.TierCat3 }

func (h speakerHandbook) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(h.Source(), docString(doc, "display_name"), h.Tier())
	if err != nil {
		return nil, err
	}

	id := docID(doc, "speaker_id")
	rec.SourceID = firstNonEmpty(id, docID(doc, "_id"))
	rec.SourceURL = docString(doc, "profile_url")
	rec.RawTagline = docString(doc, "strapline")

	if gender := docString(doc, "gender"); gender != "" {
		rec.RawDemographicTerms = append(rec.RawDemographicTerms, gender)
	}
	if code := docString(doc, "home_country"); code != "" {
		if full, ok := countryNames[code]; ok {
			rec.RawCountry = full
		} else {
			rec.RawCountry = code
		}
	}

	rec.RawExpertiseTerms = docStrings(doc, "topics")
	rec.RawLanguageTerms = docLanguages(doc, "languages")
	rec.RawFormatTerms = docStrings(doc, "event_type")
	rec.RawAudienceTerms = docStrings(doc, "engagement_types")
	rec.Awards = docStrings(doc, "notability")

	if img := docString(doc, "image_url"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}

	detail := h.profiles[id]
	if detail == nil {
		return rec, nil
	}

	rec.BioFull = docString(detail, "biography")
	rec.RawCompany = docString(detail, "company")
	if loc := docMap(detail, "location"); loc != nil {
		rec.RawCity = docString(loc, "city")
		rec.RawState = docString(loc, "state")
	}
	rec.VideoURLs = docURLs(detail, "videos")
	rec.Awards = append(rec.Awards, docStrings(detail, "awards")...)
	rec.Books = append(rec.Books, bookTitles(detail, "books")...)
	rec.Testimonials = append(rec.Testimonials, reviewTexts(detail, "testimonials")...)
	if contact := docMap(detail, "contact_info"); contact != nil {
		rec.Email = docString(contact, "email")
	}
	rec.SocialURLs = socialURLs(detail, "social_media")
	rec.Website = docString(detail, "website")
	return rec, nil
}

// bookTitles handles book lists whose entries are strings or objects
// with a "title" field.
func bookTitles(doc map[string]any, key string) []string {
	items, ok := doc[key].([]any)
	if !ok {
		return docStrings(doc, key)
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case map[string]any:
			if title := docString(v, "title"); title != "" {
				out = append(out, title)
			}
		}
	}
	return out
}
