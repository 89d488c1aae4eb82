package adapter

import "github.com/sells-group/speaker-cli/internal/model"

// llmParsed reads pre-extracted speaker documents that carry their own
// data_quality_tier (cat_1 best through cat_4). Documents without a tier
// fall back to cat_4.
type llmParsed struct{}

// NewLLMParsed returns the llm_parsed adapter.
func NewLLMParsed() Adapter { return llmParsed{} }

func (llmParsed) Source() string   { return "llm_parsed" }
func (llmParsed) Tier() model.Tier { return model.TierCat4 }

func (l llmParsed) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(l.Source(), docString(doc, "speaker_name"), l.Tier())
	if err != nil {
		return nil, err
	}

	if tier, err := model.ParseTier(docString(doc, "data_quality_tier")); err == nil {
		rec.QualityTier = tier
	}

	rec.SourceID = docID(doc, "_id")
	rec.RawTitle = docString(doc, "job_title")
	rec.BioFull = docString(doc, "bio")
	rec.RawExpertiseTerms = docStrings(doc, "field_of_expertise")
	rec.RawFormatTerms = dropNones(docStrings(doc, "event_types"))
	rec.RawAudienceTerms = dropNones(docStrings(doc, "audience_types"))
	rec.RawCredentialTerms = append(rec.RawCredentialTerms, dropNones(docStrings(doc, "education"))...)
	return rec, nil
}

// dropNones removes the literal "None" placeholders the extraction step
// leaves behind.
func dropNones(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t != "" && t != "None" {
			out = append(out, t)
		}
	}
	return out
}
