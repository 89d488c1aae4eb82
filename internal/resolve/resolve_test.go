package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/speaker-cli/internal/model"
)

func TestParseName_HonorificAndPostNominal(t *testing.T) {
	p := ParseName("Dr. Jane Smith, PhD")
	assert.Equal(t, "Dr", p.Honorific)
	assert.Equal(t, "Jane Smith", p.Full)
	assert.Equal(t, "Jane", p.First)
	assert.Equal(t, "Smith", p.Last)
	assert.Equal(t, []string{"PhD"}, p.Credentials)
}

func TestParseName_BareTrailingCredential(t *testing.T) {
	p := ParseName("John Carter MBA")
	assert.Equal(t, "John Carter", p.Full)
	assert.Equal(t, []string{"MBA"}, p.Credentials)
}

func TestParseName_SurnameMaSurvives(t *testing.T) {
	p := ParseName("Jack Ma")
	assert.Equal(t, "Jack Ma", p.Full)
	assert.Empty(t, p.Credentials)
}

func TestParseName_PronounTailStripped(t *testing.T) {
	p := ParseName("Sam Rivera she/her/hers")
	assert.Equal(t, "Sam Rivera", p.Full)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jane smith", NormalizeName("Dr. Jane Smith, PhD"))
	assert.Equal(t, "jose garcia", NormalizeName("José García"))
	assert.Equal(t, "jane smith", NormalizeName("  Jane   Smith  "))
}

func TestBlockingKey(t *testing.T) {
	assert.Equal(t, "smith|usa", BlockingKey("jane smith", "USA"))
	assert.Equal(t, "smith|unknown", BlockingKey("jane smith", ""))
	assert.Equal(t, "cher|unknown", BlockingKey("cher", ""))
}

func newProfile(t *testing.T, name, country string) *model.CanonicalProfile {
	t.Helper()
	p := model.NewCanonicalProfile(model.NewProfileID(name, "a_speakers"), time.Now().UTC())
	p.Identity.FullName = name
	p.Location.Country = country
	return p
}

func record(name string) *model.SourceRecord {
	return &model.SourceRecord{
		Source:      "bigspeak",
		SourceID:    "42",
		QualityTier: model.TierCat2,
		RawName:     name,
	}
}

func TestFindMatch_SameBucketHighSimilarity(t *testing.T) {
	ix := NewIndex()
	ix.Add(newProfile(t, "Jane Smith", ""))

	got := ix.FindMatch(record("Dr. Jane Smith, PhD"))
	require.NotNil(t, got)
	assert.GreaterOrEqual(t, got.Score, AcceptThreshold)
	assert.Contains(t, got.MatchedOn, "name")
}

func TestFindMatch_LowSimilarityNoMatch(t *testing.T) {
	ix := NewIndex()
	ix.Add(newProfile(t, "Jonathan Smith", ""))

	// Same surname bucket, but the full names are far apart.
	got := ix.FindMatch(record("Abigail Smith"))
	assert.Nil(t, got)
}

func TestFindMatch_DifferentCountriesNeverCompared(t *testing.T) {
	ix := NewIndex()
	ix.Add(newProfile(t, "John Smith", "USA"))

	rec := record("John Smith")
	rec.RawCountry = "Australia"
	assert.Nil(t, ix.FindMatch(rec))
}

func TestFindMatch_SocialURLForcesAccept(t *testing.T) {
	ix := NewIndex()
	p := newProfile(t, "Jonathan Q. Smith", "")
	p.Contact.SocialURLs.Add("https://www.linkedin.com/in/jqsmith")
	ix.Add(p)

	rec := record("Johnny Smith")
	rec.SocialURLs = []string{"http://linkedin.com/in/jqsmith/"}
	got := ix.FindMatch(rec)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, []string{"social_link"}, got.MatchedOn)
}

func TestFindMatch_LocationDisagreementDoesNotVetoExactName(t *testing.T) {
	ix := NewIndex()
	p := newProfile(t, "Jane Smith", "USA")
	p.Location.City = "New York"
	ix.Add(p)

	// Same surname+country bucket, identical name, conflicting cities.
	// People move; a disagreeing location never splits an exact name.
	rec := record("Jane Smith")
	rec.RawCountry = "USA"
	rec.RawCity = "Boston"
	got := ix.FindMatch(rec)
	require.NotNil(t, got)
	assert.GreaterOrEqual(t, got.Score, AcceptThreshold)
	assert.Contains(t, got.MatchedOn, "name")
}

func TestFindMatch_AmbiguousNameDecidedByLocation(t *testing.T) {
	ix := NewIndex()
	p := newProfile(t, "Joanne Smith", "")
	p.Location.Raw = "London, UK"
	ix.Add(p)

	// Name similarity sits in the ambiguous band; a conflicting location
	// leaves it there.
	rec := record("Jane Smith")
	rec.RawLocation = "New York City"
	assert.Nil(t, ix.FindMatch(rec))

	// An agreeing location lifts the same pair over the threshold.
	rec = record("Jane Smith")
	rec.RawLocation = "London, UK"
	got := ix.FindMatch(rec)
	require.NotNil(t, got)
	assert.GreaterOrEqual(t, got.Score, AcceptThreshold)
	assert.Contains(t, got.MatchedOn, "location")
}

func TestFindMatch_TieBreakPrefersBetterDocumentedProfile(t *testing.T) {
	ix := NewIndex()
	sparse := newProfile(t, "Jane Smith", "")
	rich := newProfile(t, "Jane Smith", "")
	rich.Professional.JobTitle = "Chief Scientist"
	rich.Biography.Full = "Jane Smith leads the applied research group."
	rich.Contact.Email = "jane@example.com"
	ix.Add(sparse)
	ix.Add(rich)

	got := ix.FindMatch(record("Jane Smith"))
	require.NotNil(t, got)
	assert.Same(t, rich, got.Profile)
}

func TestReindex_MovesBucketWhenCountryFilled(t *testing.T) {
	ix := NewIndex()
	p := newProfile(t, "Jane Smith", "")
	ix.Add(p)
	require.NotNil(t, ix.FindMatch(record("Jane Smith")))

	p.Location.Country = "Canada"
	ix.Reindex(p)
	assert.Equal(t, 1, ix.Len())

	// The unknown-country bucket no longer holds her.
	assert.Nil(t, ix.FindMatch(record("Jane Smith")))
	rec := record("Jane Smith")
	rec.RawCountry = "Canada"
	assert.NotNil(t, ix.FindMatch(rec))
}
