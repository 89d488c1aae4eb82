package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// bigSpeak joins the bigspeak.com listing collection with its detail
// profile collection on speaker_id. Listings carry the short pitch;
// profiles carry biography, languages, books, awards, and social links.
type bigSpeak struct {
	profiles map[string]map[string]any
}

// NewBigSpeak returns the bigspeak adapter joined against the detail
// profile documents.
func NewBigSpeak(profileDocs []map[string]any) Adapter {
	profiles := make(map[string]map[string]any, len(profileDocs))
	for _, p := range profileDocs {
		if id := docID(p, "speaker_id"); id != "" {
			profiles[id] = p
		}
	}
	return bigSpeak{profiles: profiles}
}

func (bigSpeak) Source() string   { return "bigspeak" }
func (bigSpeak) Tier() model.Tier { return model.TierCat2 }

func (b bigSpeak) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(b.Source(), docString(doc, "name"), b.Tier())
	if err != nil {
		return nil, err
	}

	id := docID(doc, "speaker_id")
	rec.SourceID = firstNonEmpty(id, docID(doc, "_id"))
	rec.SourceURL = docString(doc, "url")
	rec.RawTagline = docString(doc, "description")
	rec.BioShort = docString(doc, "description")
	rec.FeeText = docString(doc, "fee_range")
	rec.RawExpertiseTerms = docStrings(doc, "topics")
	if img := docString(doc, "image_url"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}

	detail := b.profiles[id]
	if detail == nil {
		return rec, nil
	}

	rec.BioFull = docString(detail, "biography")
	rec.RawExpertiseTerms = append(rec.RawExpertiseTerms, docStrings(detail, "keynote_topics")...)
	rec.RawLanguageTerms = docLanguages(detail, "languages")
	rec.VideoURLs = docURLs(detail, "videos")
	rec.Books = docStrings(detail, "books")
	rec.Awards = docStrings(detail, "awards")
	rec.Testimonials = docStrings(detail, "testimonials")
	rec.SocialURLs = socialURLs(detail, "social_media")

	if loc := docMap(detail, "location"); loc != nil {
		rec.RawCity = docString(loc, "city")
		rec.RawState = docString(loc, "state")
		rec.RawCountry = docString(loc, "country")
	}
	return rec, nil
}
