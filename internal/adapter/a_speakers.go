package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// aSpeakers reads the a-speakers.com listing collection. One flat
// document per speaker keyed by profile URL.
type aSpeakers struct{}

// NewASpeakers returns the a_speakers adapter.
func NewASpeakers() Adapter { return aSpeakers{} }

func (aSpeakers) Source() string   { return "a_speakers" }
func (aSpeakers) Tier() model.Tier { return model.TierCat2 }

func (a aSpeakers) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(a.Source(), docString(doc, "name"), a.Tier())
	if err != nil {
		return nil, err
	}

	rec.SourceID = firstNonEmpty(docString(doc, "url"), docID(doc, "_id"))
	rec.SourceURL = docString(doc, "url")
	rec.RawTitle = docString(doc, "job_title")
	rec.RawTagline = docString(doc, "description")
	rec.RawLocation = docString(doc, "location")
	rec.BioShort = docString(doc, "description")
	rec.BioFull = docString(doc, "full_bio")
	rec.FeeText = docString(doc, "fee_range")

	rec.RawExpertiseTerms = docStrings(doc, "topics")
	// Keynote titles carry topical signal; unmatched ones degrade to
	// keywords downstream.
	rec.RawExpertiseTerms = append(rec.RawExpertiseTerms, docStrings(doc, "keynotes")...)

	if img := docString(doc, "image_url"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}
	rec.VideoURLs = docURLs(doc, "videos")
	rec.AverageRating = docFloat(doc, "average_rating")
	rec.RatingCount = docInt(doc, "total_reviews")
	rec.Testimonials = reviewTexts(doc, "reviews")
	return rec, nil
}
