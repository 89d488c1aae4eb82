package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// speakerHub joins the speakerhub.com listing collection with detail
// documents on uid. Details carry pronouns, fees, certifications, and the
// long biography.
type speakerHub struct {
	details map[string]map[string]any
}

// NewSpeakerHub returns the speakerhub adapter joined against the detail
// documents.
func NewSpeakerHub(detailDocs []map[string]any) Adapter {
	details := make(map[string]map[string]any, len(detailDocs))
	for _, d := range detailDocs {
		if uid := docID(d, "uid"); uid != "" {
			details[uid] = d
		}
	}
	return speakerHub{details: details}
}

func (speakerHub) Source() string   { return "speakerhub" }
func (speakerHub) Tier() model.Tier { return model.TierCat3 }

func (s speakerHub) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(s.Source(), docString(doc, "name"), s.Tier())
	if err != nil {
		return nil, err
	}

	uid := docID(doc, "uid")
	rec.SourceID = firstNonEmpty(uid, docID(doc, "_id"))
	rec.SourceURL = docString(doc, "profile_url")
	rec.RawTitle = docString(doc, "job_title")
	rec.RawCompany = docString(doc, "company")
	rec.RawTagline = docString(doc, "bio_summary")
	rec.BioShort = docString(doc, "bio_summary")
	rec.RawCity = docString(doc, "city")
	rec.RawState = docString(doc, "state")
	rec.RawCountry = docString(doc, "country")

	rec.RawExpertiseTerms = docStrings(doc, "topics")
	rec.RawLanguageTerms = docLanguages(doc, "languages")
	rec.RawFormatTerms = docStrings(doc, "event_types")

	if img := docString(doc, "profile_picture"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}

	detail := s.details[uid]
	if detail == nil {
		return rec, nil
	}

	rec.BioFull = docString(detail, "full_bio")
	rec.RawExpertiseTerms = append(rec.RawExpertiseTerms, docStrings(detail, "topic_categories")...)
	rec.RawCredentialTerms = append(rec.RawCredentialTerms, docStrings(detail, "certifications")...)
	if pronouns := docString(detail, "pronouns"); pronouns != "" {
		rec.RawDemographicTerms = append(rec.RawDemographicTerms, pronouns)
	}

	rec.VideoURLs = docURLs(detail, "videos")
	rec.Awards = docStrings(detail, "awards")
	rec.Books = docStrings(detail, "publications")
	rec.Testimonials = docStrings(detail, "testimonials")
	rec.TotalTalks = docInt(detail, "total_talks")
	rec.MaxAudienceSize = docInt(detail, "max_audience_size")
	rec.ComfortableLargeAudience = docBool(detail, "comfortable_with_large_audiences")

	if fees := docMap(detail, "speaker_fees"); fees != nil {
		rec.FeeText = docString(fees, "display")
	}
	return rec, nil
}
