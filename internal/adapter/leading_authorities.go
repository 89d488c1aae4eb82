package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// leadingAuthorities reads leadingauthorities.com speaker detail pages.
// The description doubles as tagline and biography, and fees arrive as a
// min/max/display object.
type leadingAuthorities struct{}

// NewLeadingAuthorities returns the leading_authorities adapter.
func NewLeadingAuthorities() Adapter { return leadingAuthorities{} }

func (leadingAuthorities) Source() string   { return "leading_authorities" }
func (leadingAuthorities) Tier() model.Tier { return model.TierCat2 }

func (l leadingAuthorities) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(l.Source(), docString(doc, "name"), l.Tier())
	if err != nil {
		return nil, err
	}

	rec.SourceID = firstNonEmpty(docID(doc, "_id"), docString(doc, "speaker_page_url"))
	rec.SourceURL = docString(doc, "speaker_page_url")
	rec.RawTitle = docString(doc, "job_title")
	rec.RawTagline = docString(doc, "description")
	rec.BioFull = docString(doc, "description")
	rec.RawExpertiseTerms = docStrings(doc, "topics")

	if fees := docMap(doc, "speaker_fees"); fees != nil {
		rec.FeeText = docString(fees, "display")
	}

	if img := docString(doc, "speaker_image_url"); img != "" {
		rec.ImageURLs = append(rec.ImageURLs, img)
	}
	rec.VideoURLs = docURLs(doc, "videos")
	rec.Books = docStrings(doc, "books_and_publications")
	rec.Testimonials = docStrings(doc, "client_testimonials")
	rec.SocialURLs = socialURLs(doc, "social_media")
	rec.Website = docString(doc, "speaker_website")
	return rec, nil
}
