package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// allAmerican reads allamericanspeakers.com documents. Speaker ids are
// numeric in the source, ratings arrive as an embedded object, and the
// fee range is an object rather than display text.
type allAmerican struct{}

// NewAllAmericanSpeakers returns the allamericanspeakers adapter.
func NewAllAmericanSpeakers() Adapter { return allAmerican{} }

func (allAmerican) Source() string   { return "allamericanspeakers" }
func (allAmerican) Tier() model.Tier { return model.TierCat2 }

func (a allAmerican) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(a.Source(), docString(doc, "name"), a.Tier())
	if err != nil {
		return nil, err
	}

	rec.SourceID = firstNonEmpty(docID(doc, "speaker_id"), docID(doc, "_id"))
	rec.SourceURL = docString(doc, "url")
	rec.RawTitle = docString(doc, "job_title")
	rec.RawLocation = docString(doc, "location")
	rec.BioFull = docString(doc, "biography")

	rec.RawExpertiseTerms = docStrings(doc, "speaking_topics")
	// Listing categories are industry labels ("Business", "Healthcare").
	rec.RawIndustryTerms = docStrings(doc, "categories")
	rec.RawAudienceTerms = docStrings(doc, "audience_types")
	rec.RawFormatTerms = docStrings(doc, "event_types")
	rec.RawFormatTerms = append(rec.RawFormatTerms, docStrings(doc, "presentation_types")...)

	switch fee := doc["fee_range"].(type) {
	case map[string]any:
		rec.FeeText = firstNonEmpty(docString(fee, "display"), docString(fee, "live_event"))
	case string:
		rec.FeeText = fee
	}

	if rating := docMap(doc, "rating"); rating != nil {
		rec.AverageRating = docFloat(rating, "average")
		rec.RatingCount = docInt(rating, "count")
	}
	rec.Testimonials = reviewTexts(doc, "reviews")

	if img := docString(doc, "image_url"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}
	rec.VideoURLs = docURLs(doc, "videos")
	rec.Awards = docStrings(doc, "awards")
	return rec, nil
}

// reviewTexts handles review lists whose entries are strings or objects
// with a "text" field.
func reviewTexts(doc map[string]any, key string) []string {
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
			if text := docString(v, "text"); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}
