package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// eventRaptor reads eventraptor.com speaker documents. Names frequently
// carry trailing pronoun declarations, and credentials arrive as a
// comma-separated string.
type eventRaptor struct{}

// NewEventRaptor returns the eventraptor adapter.
func NewEventRaptor() Adapter { return eventRaptor{} }

func (eventRaptor) Source() string   { return "eventraptor" }
func (eventRaptor) Tier() model.Tier { return model.TierCat3 }

func (e eventRaptor) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(e.Source(), docString(doc, "name"), e.Tier())
	if err != nil {
		return nil, err
	}

	rec.SourceID = firstNonEmpty(docID(doc, "speaker_id"), docID(doc, "_id"))
	rec.SourceURL = docString(doc, "profile_url")
	rec.RawTagline = docString(doc, "tagline")
	rec.BioFull = docString(doc, "biography")
	rec.Email = docString(doc, "email")

	rec.RawCredentialTerms = append(rec.RawCredentialTerms, splitCSV(docString(doc, "credentials"))...)
	rec.RawExpertiseTerms = docStrings(doc, "business_areas")

	if events, ok := doc["events"].([]any); ok {
		rec.TotalTalks = len(events)
	}

	rec.SocialURLs = socialURLs(doc, "social_media")
	if img := docString(doc, "profile_image"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}
	return rec, nil
}
