package merge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/taxonomy"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMerger(t *testing.T) *Merger {
	t.Helper()
	tables, err := taxonomy.LoadEmbedded()
	require.NoError(t, err)
	return New(tables)
}

func baseRecord() *model.SourceRecord {
	return &model.SourceRecord{
		Source:             "a_speakers",
		SourceID:           "https://a-speakers.example/jane-smith",
		QualityTier:        model.TierCat2,
		RawName:            "Dr. Jane Smith, PhD",
		RawExpertiseTerms:  []string{"AI", "Leadership"},
		RawCredentialTerms: []string{"PhD"},
	}
}

func TestMerge_FoundsNewProfile(t *testing.T) {
	m := newMerger(t)
	p := m.Merge(nil, baseRecord(), 0, fixedNow)

	assert.Equal(t, model.NewProfileID("Dr. Jane Smith, PhD", "a_speakers"), p.ProfileID)
	assert.Equal(t, "Jane Smith", p.Identity.FullName)
	assert.Equal(t, "Smith", p.Identity.LastName)
	assert.True(t, p.Expertise.Primary.Has("artificial_intelligence"))
	assert.True(t, p.Expertise.Primary.Has("leadership"))
	assert.True(t, p.Credentials.Primary.Has("PhD"))
	assert.Equal(t, model.TierCat2, p.Metadata.QualityTier)
	assert.Equal(t, map[string]string{"a_speakers": "https://a-speakers.example/jane-smith"}, p.Metadata.SourceIDs)
}

func TestMerge_Idempotent(t *testing.T) {
	m := newMerger(t)
	rec := baseRecord()

	once := m.Merge(nil, rec, 0, fixedNow)
	onceJSON, err := json.Marshal(once)
	require.NoError(t, err)

	twice := m.Merge(once, rec, 0, fixedNow)
	twiceJSON, err := json.Marshal(twice)
	require.NoError(t, err)

	assert.JSONEq(t, string(onceJSON), string(twiceJSON))
}

func TestMerge_SecondSourceFillsAndUnions(t *testing.T) {
	m := newMerger(t)
	p := m.Merge(nil, baseRecord(), 0, fixedNow)

	second := &model.SourceRecord{
		Source:            "bigspeak",
		SourceID:          "bs-77",
		QualityTier:       model.TierCat2,
		RawName:           "Jane Smith",
		RawLocation:       "NYC",
		RawExpertiseTerms: []string{"artificial intelligence"},
	}
	p = m.Merge(p, second, 0.92, fixedNow)

	assert.Len(t, p.Metadata.SourceIDs, 2)
	assert.Equal(t, "NYC", p.Location.Raw)
	assert.True(t, p.Expertise.Primary.Has("artificial_intelligence"))
	assert.True(t, p.Expertise.Primary.Has("leadership"))
	assert.True(t, p.Credentials.Primary.Has("PhD"))
	assert.Equal(t, 0.92, p.Metadata.MergeConfidence)
	assert.Equal(t, []string{"AI", "Leadership", "artificial intelligence"}, p.Expertise.OriginalTerms)
}

func TestMerge_ScalarNotOverwrittenBySameTier(t *testing.T) {
	m := newMerger(t)
	first := baseRecord()
	first.RawTitle = "Chief Scientist"
	p := m.Merge(nil, first, 0, fixedNow)

	second := baseRecord()
	second.Source = "leading_authorities"
	second.RawTitle = "Keynote Speaker"
	p = m.Merge(p, second, 1.0, fixedNow)

	assert.Equal(t, "Chief Scientist", p.Professional.JobTitle)
}

func TestMerge_HigherTierOverwritesScalar(t *testing.T) {
	m := newMerger(t)
	first := baseRecord()
	first.Source = "eventraptor"
	first.QualityTier = model.TierCat3
	first.RawTitle = "Speaker"
	p := m.Merge(nil, first, 0, fixedNow)

	second := baseRecord()
	second.Source = "llm_parsed"
	second.QualityTier = model.TierCat1
	second.RawTitle = "Chief AI Officer"
	p = m.Merge(p, second, 1.0, fixedNow)

	assert.Equal(t, "Chief AI Officer", p.Professional.JobTitle)
	assert.Equal(t, model.TierCat1, p.Metadata.QualityTier)
}

func TestMerge_LowerTierNeverOverwrites(t *testing.T) {
	m := newMerger(t)
	first := baseRecord()
	first.RawTitle = "Chief Scientist"
	p := m.Merge(nil, first, 0, fixedNow)

	worse := baseRecord()
	worse.Source = "speakerhub"
	worse.QualityTier = model.TierCat3
	worse.RawTitle = "Consultant"
	p = m.Merge(p, worse, 1.0, fixedNow)

	assert.Equal(t, "Chief Scientist", p.Professional.JobTitle)
}

func TestMerge_SourceIDReplacedOnReprocess(t *testing.T) {
	m := newMerger(t)
	p := m.Merge(nil, baseRecord(), 0, fixedNow)

	updated := baseRecord()
	updated.SourceID = "https://a-speakers.example/jane-smith-2"
	p = m.Merge(p, updated, 1.0, fixedNow)

	assert.Len(t, p.Metadata.SourceIDs, 1)
	assert.Equal(t, "https://a-speakers.example/jane-smith-2", p.Metadata.SourceIDs["a_speakers"])
}

func TestMerge_SpeakingStatsTakeMax(t *testing.T) {
	m := newMerger(t)
	first := baseRecord()
	first.TotalTalks = 120
	first.AverageRating = 4.2
	first.RatingCount = 40
	p := m.Merge(nil, first, 0, fixedNow)

	second := baseRecord()
	second.Source = "allamericanspeakers"
	second.TotalTalks = 80
	second.AverageRating = 4.9
	second.RatingCount = 12
	p = m.Merge(p, second, 1.0, fixedNow)

	assert.Equal(t, 120, p.Speaking.TotalTalks)
	// Fewer reviews back the higher rating, so the old one stands.
	assert.Equal(t, 4.2, p.Speaking.AverageRating)
	assert.Equal(t, 40, p.Speaking.RatingCount)
}

func TestMerge_ResearchAreasFromBio(t *testing.T) {
	m := newMerger(t)
	rec := baseRecord()
	rec.BioFull = "Jane's work focuses on quantum computing and public health."
	p := m.Merge(nil, rec, 0, fixedNow)

	assert.True(t, p.Expertise.ResearchAreas.Has("emerging_tech"))
	assert.True(t, p.Expertise.ResearchAreas.Has("public_health"))
	assert.False(t, p.Expertise.Primary.Has("emerging_tech"))
}

func TestMerge_LanguageProficiencyCarried(t *testing.T) {
	m := newMerger(t)
	rec := baseRecord()
	rec.RawLanguageTerms = []string{"English (Native)", "Spanish - Conversational"}
	p := m.Merge(nil, rec, 0, fixedNow)

	assert.True(t, p.Languages.Primary.Has("en"))
	assert.True(t, p.Languages.Primary.Has("es"))
	assert.Equal(t, "native", p.Languages.Proficiency["en"])
	assert.Equal(t, "conversational", p.Languages.Proficiency["es"])

	// A weaker later claim never downgrades the recorded level.
	second := &model.SourceRecord{
		Source:           "speakerhub",
		SourceID:         "sh-9",
		QualityTier:      model.TierCat3,
		RawName:          "Jane Smith",
		RawLanguageTerms: []string{"English (Basic)"},
	}
	p = m.Merge(p, second, 1.0, fixedNow)
	assert.Equal(t, "native", p.Languages.Proficiency["en"])
}

func TestMerge_OrderIndependentCategories(t *testing.T) {
	m := newMerger(t)

	a := baseRecord()
	b := &model.SourceRecord{
		Source:            "speakerhub",
		SourceID:          "sh-1",
		QualityTier:       model.TierCat3,
		RawName:           "Jane Smith",
		RawExpertiseTerms: []string{"machine learning", "storytelling"},
	}

	ab := m.Merge(m.Merge(nil, a, 0, fixedNow), b, 1.0, fixedNow)
	ba := m.Merge(m.Merge(nil, b, 0, fixedNow), a, 1.0, fixedNow)

	assert.True(t, ab.Expertise.Primary.Equal(ba.Expertise.Primary))
	assert.True(t, ab.Expertise.Secondary.Equal(ba.Expertise.Secondary))
	assert.True(t, ab.Expertise.Parents.Equal(ba.Expertise.Parents))
}
