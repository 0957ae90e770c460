package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// Relative field weights. Names and handles count twice as much as
// free text; post content sits in between.
const (
	weightName         = 2.0
	weightHandle       = 2.0
	weightContent      = 1.5
	weightBio          = 1.0
	weightAuthorName   = 1.0
	weightAuthorHandle = 1.0

	prefixSimilarity = 0.8
)

type weightedField struct {
	text   string
	weight float64
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_'
}

// tokenize NFC-normalizes and lower-cases s, then splits it into words.
// Composed and decomposed spellings of a word yield the same token.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(norm.NFC.String(s)), func(r rune) bool { return !isWordRune(r) })
}

// queryTerms tokenizes a query and drops duplicate words.
func queryTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range tokenize(query) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

// editAllowance mirrors the usual AUTO fuzziness: exact for very short
// terms, one edit up to five characters, two beyond.
func editAllowance(term string) int {
	n := utf8.RuneCountInString(term)
	switch {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// similarity scores how well word matches term, in [0, 1].
func similarity(term, word string) float64 {
	if term == word {
		return 1
	}
	best := 0.0
	if strings.HasPrefix(word, term) && utf8.RuneCountInString(term) >= 2 {
		best = prefixSimilarity
	}
	if allowed := editAllowance(term); allowed > 0 {
		if d := fuzzy.LevenshteinDistance(term, word); d <= allowed {
			s := 1 - float64(d)/float64(utf8.RuneCountInString(term)+1)
			if s > best {
				best = s
			}
		}
	}
	return best
}

// score sums, over query terms, the best weighted match among fields.
func score(terms []string, fields []weightedField) float64 {
	total := 0.0
	for _, term := range terms {
		best := 0.0
		for _, f := range fields {
			for _, word := range tokenize(f.text) {
				if s := similarity(term, word) * f.weight; s > best {
					best = s
				}
			}
		}
		total += best
	}
	return total
}

func matchesAny(terms []string, word string) bool {
	lw := strings.ToLower(norm.NFC.String(word))
	for _, t := range terms {
		if similarity(t, lw) > 0 {
			return true
		}
	}
	return false
}

// highlight wraps every word of text that matches a term in <em></em>.
func highlight(text string, terms []string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)
	start := -1
	flush := func(end int) {
		word := text[start:end]
		if matchesAny(terms, word) {
			b.WriteString("<em>")
			b.WriteString(word)
			b.WriteString("</em>")
		} else {
			b.WriteString(word)
		}
		start = -1
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i)
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		flush(len(text))
	}
	return b.String()
}

func scoreAccount(terms []string, h AccountHit) Result {
	s := score(terms, []weightedField{
		{h.Name, weightName},
		{h.Handle, weightHandle},
		{h.Bio, weightBio},
	})
	snippet := h.Bio
	if snippet == "" {
		snippet = "@" + h.Handle
	}
	return Result{
		ID:        h.ID,
		Type:      TypeAccount,
		Title:     h.Name,
		Snippet:   highlight(snippet, terms),
		AvatarURL: h.AvatarURL,
		CreatedAt: h.CreatedAt,
		Score:     s,
	}
}

func scorePost(terms []string, h PostHit) Result {
	s := score(terms, []weightedField{
		{h.Content, weightContent},
		{h.AuthorName, weightAuthorName},
		{h.AuthorHandle, weightAuthorHandle},
	})
	title := h.AuthorName
	if title == "" {
		title = "@" + h.AuthorHandle
	}
	return Result{
		ID:        h.ID,
		Type:      TypePost,
		Title:     title,
		Snippet:   highlight(h.Content, terms),
		CreatedAt: h.CreatedAt,
		Score:     s,
	}
}
