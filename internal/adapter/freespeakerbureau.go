package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// freeSpeakerBureau reads freespeakerbureau.com member profiles. The
// source records a "speaker since" year rather than years of experience,
// so the adapter carries the reference year for the conversion.
type freeSpeakerBureau struct {
	year int
}

// NewFreeSpeakerBureau returns the freespeakerbureau adapter. year is the
// calendar year used to convert speaker_since into years speaking.
func NewFreeSpeakerBureau(year int) Adapter {
	return freeSpeakerBureau{year: year}
}

func (freeSpeakerBureau) Source() string   { return "freespeakerbureau" }
func (freeSpeakerBureau) Tier() model.Tier { return model.TierCat3 }

func (f freeSpeakerBureau) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	name := firstNonEmpty(docString(doc, "name"), docString(doc, "member_name"))
	rec, err := newRecord(f.Source(), name, f.Tier())
	if err != nil {
		return nil, err
	}

	rec.SourceID = firstNonEmpty(docID(doc, "_id"), docString(doc, "profile_url"))
	rec.SourceURL = docString(doc, "profile_url")
	rec.RawTitle = docString(doc, "role")
	rec.RawCompany = docString(doc, "company")
	rec.RawCity = docString(doc, "city")
	rec.RawState = docString(doc, "state")
	rec.RawCountry = docString(doc, "country")
	rec.BioFull = docString(doc, "biography")

	rec.RawExpertiseTerms = docStrings(doc, "speaking_topics")
	rec.RawIndustryTerms = docStrings(doc, "areas_of_expertise")
	rec.RawCredentialTerms = append(rec.RawCredentialTerms, splitCSV(docString(doc, "credentials_summary"))...)

	if contact := docMap(doc, "contact_info"); contact != nil {
		rec.Email = docString(contact, "email")
	}
	if awards := docString(doc, "awards"); awards != "" {
		rec.Awards = append(rec.Awards, awards)
	}
	rec.SocialURLs = socialURLs(doc, "social_media")

	if since := docInt(doc, "speaker_since"); since > 0 && since <= f.year {
		rec.YearsSpeaking = f.year - since
	}
	return rec, nil
}
