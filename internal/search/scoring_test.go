package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditAllowance(t *testing.T) {
	assert.Equal(t, 0, editAllowance("go"))
	assert.Equal(t, 1, editAllowance("hello"))
	assert.Equal(t, 2, editAllowance("murmurs"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("hello", "hello"))
	assert.InDelta(t, 1-1.0/6, similarity("hello", "helo"), 1e-9)
	assert.Equal(t, prefixSimilarity, similarity("mur", "murmuration"))
	assert.Zero(t, similarity("go", "gx"))
	assert.Zero(t, similarity("hello", "world"))
}

func TestScoreWeightsNamesAboveBio(t *testing.T) {
	terms := queryTerms("gopher")
	byName := scoreAccount(terms, AccountHit{AccountDocument: AccountDocument{ID: "1", Name: "Gopher", Handle: "g1"}})
	byBio := scoreAccount(terms, AccountHit{AccountDocument: AccountDocument{ID: "2", Name: "Someone", Handle: "s2", Bio: "I like the gopher"}})
	post := scorePost(terms, PostHit{PostDocument: PostDocument{ID: "3", Content: "a gopher appeared", AuthorHandle: "x"}})

	assert.Greater(t, byName.Score, post.Score)
	assert.Greater(t, post.Score, byBio.Score)
	assert.Greater(t, byBio.Score, 0.0)
}

func TestScoreSumsAcrossTerms(t *testing.T) {
	one := score(queryTerms("quiet"), []weightedField{{"quiet morning", 1}})
	two := score(queryTerms("quiet morning"), []weightedField{{"quiet morning", 1}})
	assert.InDelta(t, 2*one, two, 1e-9)
}

func TestScoreMatchesDecomposedSpelling(t *testing.T) {
	assert.Equal(t, []string{"café"}, queryTerms("cafe\u0301"))
	composed := score(queryTerms("café"), []weightedField{{"cafe\u0301 opens", 1}})
	assert.Equal(t, score(queryTerms("café"), []weightedField{{"café opens", 1}}), composed)
	assert.Greater(t, composed, 0.0)
	assert.Equal(t, "<em>cafe\u0301</em> opens", highlight("cafe\u0301 opens", queryTerms("café")))
}

func TestHighlight(t *testing.T) {
	got := highlight("Hello, wrld! hello again.", queryTerms("hello world"))
	assert.Equal(t, "<em>Hello</em>, <em>wrld</em>! <em>hello</em> again.", got)
	assert.Equal(t, "nothing here", highlight("nothing here", queryTerms("zebra")))
}

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, `\b(?:hel|a\.b)`, prefixPattern([]string{"hello", "a.b"}))
	assert.Empty(t, prefixPattern(nil))
}
