package taxonomy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestSet(t *testing.T) *Set {
	t.Helper()
	set, err := LoadEmbedded()
	require.NoError(t, err)
	return set
}

func expertiseClassifier(t *testing.T) *Classifier {
	t.Helper()
	table := loadTestSet(t).Table(DomainExpertise)
	require.NotNil(t, table)
	return NewClassifier(table)
}

func TestLoadEmbedded_AllDomains(t *testing.T) {
	set := loadTestSet(t)
	assert.Equal(t, []string{
		"audience", "credential", "demographics", "expertise",
		"format", "industry", "language",
	}, set.Domains())
}

func TestClassify_ExactAliasVariants(t *testing.T) {
	c := expertiseClassifier(t)
	for _, term := range []string{"AI", "Artificial Intelligence", "artificial intelligence"} {
		res := c.Classify([]string{term}, "")
		assert.Equal(t, []string{"artificial_intelligence"}, res.Primary.Values(), "term %q", term)
		assert.True(t, res.Parents.Has("technology"))
	}
}

func TestClassify_EmptyTermList(t *testing.T) {
	c := expertiseClassifier(t)
	res := c.Classify(nil, "")
	assert.Equal(t, 0, res.Primary.Len())
	assert.Equal(t, 0, res.Secondary.Len())
	assert.Empty(t, res.Unmatched)
}

func TestClassify_JunkTermsSkipped(t *testing.T) {
	c := expertiseClassifier(t)
	res := c.Classify([]string{"none", "N/A", "  "}, "")
	assert.Equal(t, 0, res.Keywords.Len())
	assert.Empty(t, res.Unmatched)
}

func TestClassify_ContainmentLongerAliasWins(t *testing.T) {
	c := expertiseClassifier(t)
	// "machine learning engineer" contains both "machine learning" (16)
	// and "engineer" is not an alias; the longer alias decides primary.
	res := c.Classify([]string{"machine learning engineer"}, "")
	assert.True(t, res.Primary.Has("artificial_intelligence"))
}

func TestClassify_TokenBoundary(t *testing.T) {
	c := expertiseClassifier(t)
	// "chairman" must not match the "ai" alias buried inside it.
	res := c.Classify([]string{"chairman"}, "")
	assert.False(t, res.Primary.Has("artificial_intelligence"))
	assert.False(t, res.Secondary.Has("artificial_intelligence"))
}

func TestClassify_MultiWordDecomposition(t *testing.T) {
	c := expertiseClassifier(t)
	// "ai" is too short for containment, so "ai ethics" falls through to
	// per-word matching: half the words resolve to one category.
	res := c.Classify([]string{"ai ethics"}, "")
	assert.True(t, res.Secondary.Has("artificial_intelligence"))
	assert.False(t, res.Primary.Has("artificial_intelligence"))
}

func TestClassify_UnresolvedKeptAsKeyword(t *testing.T) {
	c := expertiseClassifier(t)
	res := c.Classify([]string{"Underwater Basket Weaving"}, "")
	assert.Equal(t, []string{"Underwater Basket Weaving"}, res.Unmatched)
	assert.True(t, res.Keywords.Has("underwater basket weaving"))
	assert.Equal(t, 0, res.Primary.Len())
}

func TestClassify_FreeTextResearchAreasOnly(t *testing.T) {
	c := expertiseClassifier(t)
	bio := "Her research spans quantum computing and public health policy."
	res := c.Classify(nil, bio)
	assert.True(t, res.ResearchAreas.Has("emerging_tech"))
	assert.True(t, res.ResearchAreas.Has("public_health"))
	assert.Equal(t, 0, res.Primary.Len(), "free text never promotes categories")
}

func TestClassify_OrderIndependent(t *testing.T) {
	c := expertiseClassifier(t)
	terms := []string{"AI", "Leadership", "quantum computing", "gardening", "sales strategy"}
	base := c.Classify(terms, "")

	shuffled := append([]string(nil), terms...)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := c.Classify(shuffled, "")
		assert.True(t, base.Primary.Equal(got.Primary))
		assert.True(t, base.Secondary.Equal(got.Secondary))
		assert.True(t, base.Parents.Equal(got.Parents))
		assert.True(t, base.Keywords.Equal(got.Keywords))
	}
}

func TestClassify_IdempotentOverOwnTerms(t *testing.T) {
	c := expertiseClassifier(t)
	terms := []string{"AI", "Leadership", "gardening"}
	first := c.Classify(terms, "")
	second := c.Classify(terms, "")
	assert.True(t, first.Primary.Equal(second.Primary))
	assert.True(t, first.Secondary.Equal(second.Secondary))
	assert.Equal(t, first.Unmatched, second.Unmatched)
}

func TestClassify_CredentialPunctuationVariants(t *testing.T) {
	c := NewClassifier(loadTestSet(t).Table(DomainCredential))
	a := c.Classify([]string{"Ph.D."}, "")
	b := c.Classify([]string{"PhD"}, "")
	assert.Equal(t, []string{"PhD"}, a.Primary.Values())
	assert.True(t, a.Primary.Equal(b.Primary))
}

func TestClassify_CredentialParents(t *testing.T) {
	c := NewClassifier(loadTestSet(t).Table(DomainCredential))
	res := c.Classify([]string{"MBA", "CISSP", "TEDx"}, "")
	assert.True(t, res.Parents.Has("degree"))
	assert.True(t, res.Parents.Has("certification"))
	assert.True(t, res.Parents.Has("award"))
}

func TestClassify_LanguageCodes(t *testing.T) {
	c := NewClassifier(loadTestSet(t).Table(DomainLanguage))
	res := c.Classify([]string{"English", "Brazilian Portuguese", "eng"}, "")
	assert.True(t, res.Primary.Has("en"))
	assert.True(t, res.Primary.Has("pt-BR"))
}

func TestClassify_DemographicsExactOnly(t *testing.T) {
	c := NewClassifier(loadTestSet(t).Table(DomainDemographics))
	res := c.Classify([]string{"she/her/hers"}, "")
	assert.True(t, res.Primary.Has("she_her"))

	// Containment must not apply in this domain.
	loose := c.Classify([]string{"she/her pronouns preferred"}, "")
	assert.Equal(t, 0, loose.Primary.Len())
	assert.Equal(t, 0, loose.Secondary.Len())
}

func TestClassify_FormatAndAudience(t *testing.T) {
	set := loadTestSet(t)
	f := NewClassifier(set.Table(DomainFormat)).Classify([]string{"Opening Keynote", "fireside chat"}, "")
	assert.True(t, f.Primary.Has("keynote"))
	assert.True(t, f.Primary.Has("fireside"))

	a := NewClassifier(set.Table(DomainAudience)).Classify([]string{"C-Suite", "nurses"}, "")
	assert.True(t, a.Primary.Has("executives"))
	assert.True(t, a.Primary.Has("healthcare_professionals"))
}

func TestNormalizeProficiency(t *testing.T) {
	assert.Equal(t, "native", NormalizeProficiency("Mother Tongue"))
	assert.Equal(t, "fluent", NormalizeProficiency("C1"))
	assert.Equal(t, "conversational", NormalizeProficiency("B2"))
	assert.Equal(t, "basic", NormalizeProficiency("beginner"))
	assert.Equal(t, "", NormalizeProficiency("telepathic"))
}

func TestSplitProficiency(t *testing.T) {
	term, level := SplitProficiency("English (Native)")
	assert.Equal(t, "english", term)
	assert.Equal(t, "native", level)

	term, level = SplitProficiency("Spanish - Conversational")
	assert.Equal(t, "spanish", term)
	assert.Equal(t, "conversational", level)

	term, level = SplitProficiency("French")
	assert.Equal(t, "french", term)
	assert.Equal(t, "", level)
}

func TestClassify_LanguageProficiency(t *testing.T) {
	c := NewClassifier(loadTestSet(t).Table(DomainLanguage))
	res := c.Classify([]string{"English (Native)", "Spanish - Conversational", "German"}, "")
	assert.True(t, res.Primary.Has("en"))
	assert.True(t, res.Primary.Has("es"))
	assert.True(t, res.Primary.Has("de"))
	assert.Equal(t, "native", res.Proficiency["en"])
	assert.Equal(t, "conversational", res.Proficiency["es"])
	assert.NotContains(t, res.Proficiency, "de")
}

func TestClassify_ProficiencyStrongestWins(t *testing.T) {
	c := NewClassifier(loadTestSet(t).Table(DomainLanguage))
	forward := c.Classify([]string{"English (Basic)", "English (Native)"}, "")
	reverse := c.Classify([]string{"English (Native)", "English (Basic)"}, "")
	assert.Equal(t, "native", forward.Proficiency["en"])
	assert.Equal(t, "native", reverse.Proficiency["en"])
}

func TestBuildTable_UndeclaredParentRejected(t *testing.T) {
	_, err := buildTable(tableFile{
		Domain:  "expertise",
		Parents: map[string]string{"technology": "Technology"},
		Categories: []Category{
			{Code: "quantum", Parent: "physics", Aliases: []string{"quantum"}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared parent")
}

func TestTable_ParentOf(t *testing.T) {
	table := loadTestSet(t).Table(DomainExpertise)
	assert.Equal(t, "technology", table.ParentOf("artificial_intelligence"))
	assert.Equal(t, "", table.ParentOf("missing_code"))
}
