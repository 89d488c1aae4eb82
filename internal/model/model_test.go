package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSet_MarshalSorted(t *testing.T) {
	s := NewStringSet("zebra", "apple", "mango")
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `["apple","mango","zebra"]`, string(data))
}

func TestStringSet_AddIgnoresEmpty(t *testing.T) {
	s := StringSet{}
	s.Add("")
	s.Add("x")
	assert.Equal(t, 1, s.Len())
}

func TestStringSet_RoundTrip(t *testing.T) {
	s := NewStringSet("a", "b")
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back StringSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, s.Equal(back))
}

func TestTier_MoreTrusted(t *testing.T) {
	assert.True(t, TierCat1.MoreTrusted(TierCat2))
	assert.True(t, TierCat2.MoreTrusted(TierCat4))
	assert.False(t, TierCat3.MoreTrusted(TierCat3))
	assert.False(t, TierCat4.MoreTrusted(TierCat1))
}

func TestTier_UnknownNeverWins(t *testing.T) {
	assert.False(t, Tier("mystery").MoreTrusted(TierCat4))
	assert.True(t, TierCat4.MoreTrusted(Tier("mystery")))
}

func TestMostTrusted(t *testing.T) {
	assert.Equal(t, TierCat1, MostTrusted(TierCat3, TierCat1))
	assert.Equal(t, TierCat2, MostTrusted(TierCat2, ""))
	assert.Equal(t, TierCat2, MostTrusted("", TierCat2))
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier(" CAT_2 ")
	require.NoError(t, err)
	assert.Equal(t, TierCat2, tier)

	_, err = ParseTier("cat_9")
	assert.Error(t, err)
}

func TestNewProfileID_Stable(t *testing.T) {
	a := NewProfileID("Dr. Jane Smith", "a_speakers")
	b := NewProfileID("dr jane smith", "a_speakers")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestNewProfileID_SourceScoped(t *testing.T) {
	assert.NotEqual(t,
		NewProfileID("Jane Smith", "a_speakers"),
		NewProfileID("Jane Smith", "bigspeak"),
	)
}

func TestCategorySet_AddOriginalTerms(t *testing.T) {
	c := NewCategorySet()
	c.AddOriginalTerms([]string{"AI", "Leadership", "AI", ""})
	assert.Equal(t, []string{"AI", "Leadership"}, c.OriginalTerms)

	c.AddOriginalTerms([]string{"Leadership", "Fintech"})
	assert.Equal(t, []string{"AI", "Leadership", "Fintech"}, c.OriginalTerms)
}

func TestCategorySet_Empty(t *testing.T) {
	c := NewCategorySet()
	assert.True(t, c.Empty())
	c.AddOriginalTerms([]string{"AI"})
	assert.False(t, c.Empty())
}

func TestNewCanonicalProfile_SetsInitialized(t *testing.T) {
	p := NewCanonicalProfile(NewProfileID("Jane Smith", "a_speakers"), time.Now().UTC())
	require.NotNil(t, p.Metadata.SourceIDs)
	assert.NotNil(t, p.Contact.SocialURLs)
	assert.Len(t, p.CategorySets(), 7)
}
